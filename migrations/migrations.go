// Package migrations embeds the schema scripts. Table names are
// text/template fields filled in from the database configuration.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
