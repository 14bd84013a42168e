// Package db provides the embedded database migrations.
package db

import "embed"

// Migrations holds the versioned schema migrations in golang-migrate layout
// (NNNN_name.up.sql / NNNN_name.down.sql) under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
