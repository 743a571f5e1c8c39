// Package sqlite implements the record store on SQLite via the pure-Go
// modernc.org/sqlite driver, so the binary builds without CGO.
//
// Schema changes are embedded SQL migrations applied at open; the
// store never alters tables outside a migration.
package sqlite
