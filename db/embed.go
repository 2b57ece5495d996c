// Package db embeds the database schema and the default seed catalog so
// the binaries can bootstrap a fresh database without extra files.
package db

import _ "embed"

// Schema holds the DDL for every application table. Statements are
// idempotent so the schema can be re-applied on startup.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the built-in product catalog in the seed JSON format,
// used by seed-db when no catalog file is given.
//
//go:embed seed/products.json
var SeedProducts []byte
