// Package config loads prismafix.yml.
//
// A minimal file only needs the schema path:
//
//	schema: apps/api/prisma/schema.prisma
//
// Additional relation rules can be listed under rules; a rule without a
// field derives it from the model name:
//
//	rules:
//	  - model: Tenant          # matches "tenants Tenant" and "tenants Tenant[]"
//	  - model: Category        # matches "categories Category[]"
//	  - model: User
//	    field: owners
package config
