package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/roadmap/internal/clientdata"
	"github.com/aristath/roadmap/internal/config"
	"github.com/aristath/roadmap/internal/modules/roadmap"
	"github.com/aristath/roadmap/internal/scheduler"
)

// Job schedules that are not configurable
const (
	cleanupSchedule = "0 3 * * *"  // Daily at 03:00
	walSchedule     = "30 * * * *" // Hourly
)

// RegisterJobs creates the background jobs and registers them with the scheduler
// Returns JobInstances for manual triggering via API
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{
		RoadmapRefresh:    roadmap.NewRefreshJob(container.RoadmapService, container.WarmFilters, log),
		ClientDataCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, log),
		WALCheckpoints:    scheduler.NewCheckWALCheckpointsJob(log, container.CacheDB),
	}

	sched := scheduler.New(log)

	if cfg.Roadmap.RefreshSchedule != "" {
		if err := sched.AddJob(cfg.Roadmap.RefreshSchedule, instances.RoadmapRefresh); err != nil {
			return nil, fmt.Errorf("failed to schedule roadmap refresh: %w", err)
		}
	}
	if err := sched.AddJob(cleanupSchedule, instances.ClientDataCleanup); err != nil {
		return nil, fmt.Errorf("failed to schedule client data cleanup: %w", err)
	}
	if err := sched.AddJob(walSchedule, instances.WALCheckpoints); err != nil {
		return nil, fmt.Errorf("failed to schedule WAL checkpoints: %w", err)
	}

	container.Scheduler = sched

	return instances, nil
}
