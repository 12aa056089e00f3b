package roadmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/roadmap/internal/clientdata"
	"github.com/aristath/roadmap/internal/clients/notion"
)

// RecordFetcher returns the raw records matching a filter.
type RecordFetcher interface {
	FetchAll(ctx context.Context, opts FilterOptions) ([]notion.Page, error)
}

// ViewOptions selects what a rendered roadmap contains.
type ViewOptions struct {
	Filter FilterOptions
	// Private adds source links to each project.
	Private bool
}

// ProjectView is a project with its display decorations.
type ProjectView struct {
	Project
	Badge *StageBadge `json:"badge,omitempty"`
	URL   string      `json:"url,omitempty"`
}

// PeriodGroup is one period's heading and stage-ordered projects.
type PeriodGroup struct {
	Label    string        `json:"label"`
	Heading  string        `json:"heading"`
	Projects []ProjectView `json:"projects"`
}

// View is everything the renderer needs.
type View struct {
	GeneratedAt   time.Time     `json:"generated_at"`
	CurrentPeriod string        `json:"current_period"`
	Private       bool          `json:"private"`
	ProjectCount  int           `json:"project_count"`
	Past          []PeriodGroup `json:"past"`
	Upcoming      []PeriodGroup `json:"upcoming"`
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Fetcher    RecordFetcher
	Normalizer *Normalizer
	Stages     *StageTable
	Periods    *PeriodOrder
	Calendar   FiscalCalendar
	Cache      RoadmapCache
	TTL        time.Duration
	// Workspace is the path segment used in project links.
	Workspace string
	Log       zerolog.Logger
}

// Service runs the fetch, normalize, group, order and partition pipeline.
type Service struct {
	fetcher    RecordFetcher
	normalizer *Normalizer
	stages     *StageTable
	periods    *PeriodOrder
	calendar   FiscalCalendar
	cache      RoadmapCache
	ttl        time.Duration
	workspace  string
	now        func() time.Time
	log        zerolog.Logger
}

// NewService creates a roadmap service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("roadmap service requires a fetcher")
	}
	if cfg.Stages == nil {
		return nil, errors.New("roadmap service requires a stage table")
	}
	if cfg.Periods == nil {
		return nil, errors.New("roadmap service requires a period table")
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = NewNormalizer(NormalizerConfig{})
	}
	if cfg.Cache == nil {
		cfg.Cache = NewCache(nil, cfg.Log)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = clientdata.TTLRoadmap
	}

	return &Service{
		fetcher:    cfg.Fetcher,
		normalizer: cfg.Normalizer,
		stages:     cfg.Stages,
		periods:    cfg.Periods,
		calendar:   cfg.Calendar,
		cache:      cfg.Cache,
		ttl:        cfg.TTL,
		workspace:  strings.Trim(cfg.Workspace, "/"),
		now:        time.Now,
		log:        cfg.Log.With().Str("service", "roadmap").Logger(),
	}, nil
}

// Roadmap returns the grouped roadmap for opts, from cache when fresh.
func (s *Service) Roadmap(ctx context.Context, opts FilterOptions) (Roadmap, error) {
	return s.cache.GetOrCompute(ctx, opts.CacheKey(), s.ttl, func(ctx context.Context) (Roadmap, error) {
		return s.compute(ctx, opts)
	})
}

// Refresh recomputes the roadmap for opts and replaces the cached copy.
// A request computing the same key at the time shares the fetch.
func (s *Service) Refresh(ctx context.Context, opts FilterOptions) error {
	roadmap, err := s.cache.Recompute(ctx, opts.CacheKey(), s.ttl, func(ctx context.Context) (Roadmap, error) {
		return s.compute(ctx, opts)
	})
	if err != nil {
		return err
	}
	s.log.Info().
		Str("key", opts.CacheKey()).
		Int("projects", roadmap.Count()).
		Msg("Roadmap refreshed")
	return nil
}

// Invalidate drops the cached roadmap for opts; the next request refetches.
func (s *Service) Invalidate(opts FilterOptions) error {
	return s.cache.Invalidate(opts.CacheKey())
}

func (s *Service) compute(ctx context.Context, opts FilterOptions) (Roadmap, error) {
	pages, err := s.fetcher.FetchAll(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roadmap records: %w", err)
	}
	projects, err := s.normalizer.NormalizeAll(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize roadmap records: %w", err)
	}
	return Group(projects), nil
}

// CurrentPeriod returns the label of the fiscal quarter containing now.
func (s *Service) CurrentPeriod() string {
	return s.calendar.QuarterFor(s.now()).Label()
}

// Build produces the display view for opts.
func (s *Service) Build(ctx context.Context, opts ViewOptions) (*View, error) {
	roadmap, err := s.Roadmap(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}
	return s.Arrange(roadmap, opts.Private)
}

// Arrange orders and partitions an already grouped roadmap.
func (s *Service) Arrange(roadmap Roadmap, private bool) (*View, error) {
	now := s.now()
	current := s.calendar.QuarterFor(now).Label()

	past, upcoming, err := s.periods.Partition(roadmap.Labels(), current)
	if err != nil {
		return nil, err
	}

	return &View{
		GeneratedAt:   now,
		CurrentPeriod: current,
		Private:       private,
		ProjectCount:  roadmap.Count(),
		Past:          s.groups(roadmap, past, private),
		Upcoming:      s.groups(roadmap, upcoming, private),
	}, nil
}

func (s *Service) groups(roadmap Roadmap, labels []string, private bool) []PeriodGroup {
	groups := make([]PeriodGroup, 0, len(labels))
	for _, label := range labels {
		sorted := s.stages.SortByStage(roadmap[label])
		views := make([]ProjectView, 0, len(sorted))
		for _, p := range sorted {
			v := ProjectView{Project: p}
			if badge, ok := s.stages.Badge(p.Stage); ok {
				v.Badge = &badge
			}
			if private {
				v.URL = s.projectURL(p.ID)
			}
			views = append(views, v)
		}
		groups = append(groups, PeriodGroup{
			Label:    label,
			Heading:  PeriodHeading(label),
			Projects: views,
		})
	}
	return groups
}

func (s *Service) projectURL(id string) string {
	cleaned := strings.ReplaceAll(id, "-", "")
	if s.workspace == "" {
		return "https://www.notion.so/" + cleaned
	}
	return "https://www.notion.so/" + s.workspace + "/" + cleaned
}

// IsConfigError reports whether err comes from a stale or incomplete period table.
func IsConfigError(err error) bool {
	var unknown *UnknownPeriodError
	var stale *StalePeriodTableError
	return errors.As(err, &unknown) || errors.As(err, &stale)
}
