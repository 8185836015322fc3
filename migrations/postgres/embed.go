// Package postgres embebe las migraciones goose del esquema de usuarios.
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
