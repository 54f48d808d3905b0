// Package migrations содержит SQL-миграции схемы postgres.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
