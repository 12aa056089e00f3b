package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/roadmap/internal/clientdata"
	"github.com/aristath/roadmap/internal/di"
	"github.com/aristath/roadmap/internal/scheduler"
)

// SystemHandlers serves status and maintenance endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	container   *di.Container
	jobs        *di.JobInstances

	// run executes a triggered job; replaced in tests to run synchronously
	run func(job scheduler.Job)

	mu      sync.Mutex
	running map[string]bool
}

// NewSystemHandlers creates a new system handlers instance. Container and
// jobs may be nil; the affected fields and triggers are then reported as unavailable.
func NewSystemHandlers(log zerolog.Logger, container *di.Container, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		container:   container,
		jobs:        jobs,
		running:     make(map[string]bool),
	}
	h.run = func(job scheduler.Job) { go h.runJob(job) }
	return h
}

// CacheTableStatus reports entry counts for one cache table
type CacheTableStatus struct {
	Table   string `json:"table"`
	Fresh   int64  `json:"fresh"`
	Expired int64  `json:"expired"`
}

// SystemStatusResponse represents system status
type SystemStatusResponse struct {
	Status        string             `json:"status"` // "healthy" or "degraded"
	Uptime        string             `json:"uptime"`
	CPUPercent    float64            `json:"cpu_percent"`
	MemoryPercent float64            `json:"memory_percent"`
	CurrentPeriod string             `json:"current_period,omitempty"`
	PeriodCount   int                `json:"period_count"`
	Cache         []CacheTableStatus `json:"cache"`
	DatabaseBytes int64              `json:"database_bytes"`
	ScheduledJobs int                `json:"scheduled_jobs"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	response := h.GetSystemStatusSnapshot()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": response,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// GetSystemStatusSnapshot collects the current status. Collection
// failures are reported as warnings rather than errors.
func (h *SystemHandlers) GetSystemStatusSnapshot() SystemStatusResponse {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		Uptime:        time.Since(h.startupTime).Round(time.Second).String(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Cache:         []CacheTableStatus{},
	}

	c := h.container
	if c == nil {
		response.Warnings = append(response.Warnings, "services not initialized")
		response.Status = "degraded"
		return response
	}

	if c.RoadmapService != nil && c.PeriodOrder != nil {
		response.CurrentPeriod = c.RoadmapService.CurrentPeriod()
		response.PeriodCount = len(c.PeriodOrder.Labels())
		if _, ok := c.PeriodOrder.Position(response.CurrentPeriod); !ok {
			response.Status = "degraded"
			response.Warnings = append(response.Warnings, "current period missing from period table")
		}
	}

	if c.ClientDataRepo != nil {
		for _, table := range clientdata.AllTables {
			fresh, expired, err := c.ClientDataRepo.Count(table)
			if err != nil {
				h.log.Warn().Err(err).Str("table", table).Msg("Failed to count cache entries")
				response.Warnings = append(response.Warnings, "failed to count "+table)
				continue
			}
			response.Cache = append(response.Cache, CacheTableStatus{Table: table, Fresh: fresh, Expired: expired})
		}
	}

	if c.Scheduler != nil {
		response.ScheduledJobs = c.Scheduler.Entries()
	}

	if c.CacheDB != nil {
		if stats, err := c.CacheDB.GetStats(); err == nil {
			response.DatabaseBytes = stats.SizeBytes + stats.WALSizeBytes
		} else {
			h.log.Warn().Err(err).Msg("Failed to get cache database stats")
		}
	}

	return response
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// HandleTriggerRefresh triggers the roadmap refresh job
// POST /api/system/refresh
func (h *SystemHandlers) HandleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	var job scheduler.Job
	if h.jobs != nil {
		job = h.jobs.RoadmapRefresh
	}
	h.trigger(w, job, "Roadmap refresh")
}

// HandleTriggerCleanup triggers the expired cache cleanup job
// POST /api/system/cleanup
func (h *SystemHandlers) HandleTriggerCleanup(w http.ResponseWriter, r *http.Request) {
	var job scheduler.Job
	if h.jobs != nil {
		job = h.jobs.ClientDataCleanup
	}
	h.trigger(w, job, "Cache cleanup")
}

// HandleClearCache drops the cached roadmap for every warmed filter so the
// next page load refetches from Notion
// DELETE /api/system/cache
func (h *SystemHandlers) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	if h.container == nil || h.container.RoadmapService == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "roadmap service not initialized",
		})
		return
	}

	cleared := 0
	for _, opts := range h.container.WarmFilters {
		if err := h.container.RoadmapService.Invalidate(opts); err != nil {
			h.log.Error().Err(err).Str("key", opts.CacheKey()).Msg("Failed to clear roadmap cache")
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status":  "error",
				"message": "failed to clear roadmap cache",
			})
			return
		}
		cleared++
	}

	h.log.Info().Int("keys", cleared).Msg("Roadmap cache cleared")
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"cleared": cleared,
	})
}

func (h *SystemHandlers) trigger(w http.ResponseWriter, job scheduler.Job, label string) {
	if job == nil {
		h.log.Warn().Str("job", label).Msg("Job not registered")
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": label + " job not registered",
		})
		return
	}

	h.mu.Lock()
	if h.running[job.Name()] {
		h.mu.Unlock()
		h.writeJSON(w, http.StatusConflict, map[string]string{
			"status":  "error",
			"message": label + " already running",
		})
		return
	}
	h.running[job.Name()] = true
	h.mu.Unlock()

	h.log.Info().Str("job", job.Name()).Msg("Manual job triggered")
	h.run(job)

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": label + " triggered",
	})
}

func (h *SystemHandlers) runJob(job scheduler.Job) {
	defer func() {
		h.mu.Lock()
		delete(h.running, job.Name())
		h.mu.Unlock()
	}()

	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", job.Name()).Msg("Manual job failed")
		return
	}
	h.log.Info().Str("job", job.Name()).Msg("Manual job completed")
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
