// Package repair strips malformed relation fields from Prisma schemas.
//
// Introspection leaves back-relation lines such as
//
//	tenants Tenant[]
//
// in models where they do not belong. Repair deletes every line consisting
// only of such a declaration and then collapses runs of blank lines so that
// at most one blank line separates blocks. The transform works on text; it
// never parses the Prisma grammar and does not check that the result is a
// valid schema.
//
// Repair is idempotent: running it on its own output changes nothing.
//
// Repairer wraps the transform with file I/O:
//
//	r := repair.New(afero.NewOsFs())
//	res, err := r.RepairFile(ctx, "apps/api/prisma/schema.prisma", repair.WriteOptions{})
package repair
