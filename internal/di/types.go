// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/roadmap/internal/clientdata"
	"github.com/aristath/roadmap/internal/clients/notion"
	"github.com/aristath/roadmap/internal/database"
	"github.com/aristath/roadmap/internal/modules/roadmap"
	roadmaphandlers "github.com/aristath/roadmap/internal/modules/roadmap/handlers"
	"github.com/aristath/roadmap/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	CacheDB *database.DB // Ephemeral roadmap snapshots, safe to delete

	// Clients - External API integrations
	NotionClient *notion.Client

	// Repositories - Data access layer
	ClientDataRepo *clientdata.Repository // TTL cache tables

	// Roadmap pipeline
	StageTable     *roadmap.StageTable
	PeriodOrder    *roadmap.PeriodOrder
	Fetcher        *roadmap.Fetcher
	Normalizer     *roadmap.Normalizer
	RoadmapCache   *roadmap.Cache
	RoadmapService *roadmap.Service
	WarmFilters    []roadmap.FilterOptions // Cache keys kept warm by the refresh job

	// HTTP handlers
	RoadmapHandler *roadmaphandlers.Handler

	// Scheduler runs the jobs below on their cron schedules
	Scheduler *scheduler.Scheduler
}

// JobInstances holds job references for manual triggering via API
type JobInstances struct {
	RoadmapRefresh    scheduler.Job
	ClientDataCleanup scheduler.Job
	WALCheckpoints    scheduler.Job
}

// Close releases the container's databases
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.CacheDB != nil {
		c.CacheDB.Close()
	}
}
