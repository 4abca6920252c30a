// Package migrations embeds the goose migrations of the authority ACL store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
