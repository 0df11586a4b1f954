// Package migrations embeds the schema for every supported SQL driver.
package migrations

import "embed"

// FS holds postgres/*.sql and sqlite/*.sql; database.RunMigrations picks the
// directory matching the configured driver.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
