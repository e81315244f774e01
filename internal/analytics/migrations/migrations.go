// Package migrations embeds the analytics schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
