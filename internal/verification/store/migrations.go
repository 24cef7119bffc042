package store

import _ "embed"

// Migrations is the verification store schema. Deployments apply it
// out-of-band; integration tests apply it directly.
//
//go:embed migrations.sql
var Migrations string
