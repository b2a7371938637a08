// Package diff renders unified diffs of schema rewrites so changes can be
// previewed before they are written.
//
//	r := diff.Renderer{Color: output.IsTerminal()}
//	fmt.Print(r.Unified("schema.prisma", "schema.prisma", before, after))
package diff
