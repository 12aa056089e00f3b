// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains all files embedded in the Go binary:
// - templates/roadmap.html - the dashboard page
// - templates/schema.sql - the cache database schema
//
//go:embed templates
var Files embed.FS

// RoadmapTemplate is the path of the dashboard template inside Files.
const RoadmapTemplate = "templates/roadmap.html"

// CacheSchema is the path of the cache database schema inside Files.
const CacheSchema = "templates/schema.sql"
