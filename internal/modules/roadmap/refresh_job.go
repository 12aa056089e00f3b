package roadmap

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RefreshJob rebuilds the cached roadmap for each configured filter so
// page loads rarely wait on the source.
type RefreshJob struct {
	service *Service
	filters []FilterOptions
	timeout time.Duration
	log     zerolog.Logger
}

// NewRefreshJob creates a cache warm-up job.
func NewRefreshJob(service *Service, filters []FilterOptions, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		service: service,
		filters: filters,
		timeout: 2 * time.Minute,
		log:     log.With().Str("job", "roadmap_refresh").Logger(),
	}
}

// Run refreshes every filter and returns the first error after trying all of them.
func (j *RefreshJob) Run() error {
	var firstErr error
	for _, opts := range j.filters {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		err := j.service.Refresh(ctx, opts)
		cancel()
		if err != nil {
			j.log.Error().Err(err).Str("key", opts.CacheKey()).Msg("Failed to refresh roadmap")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Name returns the job name for scheduling and logging.
func (j *RefreshJob) Name() string {
	return "roadmap_refresh"
}
