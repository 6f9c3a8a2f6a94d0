// Package migrations embeds the schema for the client's local SQLite cache.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
