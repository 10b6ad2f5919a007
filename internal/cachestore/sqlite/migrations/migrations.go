// Package migrations embeds the snapshot schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
