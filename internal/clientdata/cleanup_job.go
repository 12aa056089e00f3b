package clientdata

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CleanupResult reports one table after expired rows were removed.
type CleanupResult struct {
	Table     string
	Deleted   int64
	Remaining int64
}

// CleanupJob removes expired roadmap snapshots. Expired rows are never
// served, so this only keeps cache.db from growing with old filter keys.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates the cache cleanup job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Cleanup deletes expired rows and counts the fresh rows left per table.
func (j *CleanupJob) Cleanup() ([]CleanupResult, error) {
	deleted, err := j.repo.DeleteAllExpired()
	if err != nil {
		return nil, err
	}

	results := make([]CleanupResult, 0, len(AllTables))
	for _, table := range AllTables {
		fresh, _, err := j.repo.Count(table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s after cleanup: %w", table, err)
		}
		results = append(results, CleanupResult{Table: table, Deleted: deleted[table], Remaining: fresh})
	}
	return results, nil
}

// Run executes the cleanup and logs what was removed.
func (j *CleanupJob) Run() error {
	results, err := j.Cleanup()
	if err != nil {
		j.log.Error().Err(err).Msg("Roadmap cache cleanup failed")
		return err
	}

	for _, r := range results {
		evt := j.log.Debug()
		if r.Deleted > 0 {
			evt = j.log.Info()
		}
		evt.Str("table", r.Table).
			Int64("deleted", r.Deleted).
			Int64("remaining", r.Remaining).
			Msg("Expired roadmap snapshots removed")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
