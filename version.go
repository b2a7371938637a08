// Package prismafix repairs malformed relation fields in Prisma schema files.
package prismafix

// Version is the current prismafix release.
const Version = "0.1.0"

// DefaultSchemaPath is where the Academia Hub API keeps its Prisma schema.
const DefaultSchemaPath = "apps/api/prisma/schema.prisma"
