// Package fileop replaces files on disk without leaving partial writes.
//
// Writes are staged in a temp file beside the target and renamed into
// place. Anything staged is removed again if a later step fails:
//
//	err := fileop.Replace(afero.NewOsFs(), "schema.prisma", fixed, fileop.Options{Backup: true})
//
// All operations go through an afero.Fs so callers can run against an
// in-memory filesystem in tests.
package fileop
