package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed seed/*.json
var SeedFiles embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
