// Package migrations embebe los scripts SQL del esquema (NNNN_nombre.up.sql / .down.sql).
package migrations

import "embed"

// FS contiene todos los scripts; postgres.Migrator los aplica en orden lexicográfico.
//
//go:embed *.sql
var FS embed.FS
