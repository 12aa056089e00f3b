package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/roadmap/internal/clientdata"
	"github.com/aristath/roadmap/internal/clients/notion"
	"github.com/aristath/roadmap/internal/config"
	"github.com/aristath/roadmap/internal/modules/roadmap"
	roadmaphandlers "github.com/aristath/roadmap/internal/modules/roadmap/handlers"
)

// InitializeRepositories creates repositories on top of the opened databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.CacheDB == nil {
		return fmt.Errorf("cache database not initialized")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())

	log.Debug().Msg("Repositories initialized")
	return nil
}

// InitializeServices builds the roadmap pipeline and its HTTP handler
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	// Notion client
	container.NotionClient = notion.NewClient(cfg.NotionToken, cfg.NotionBaseURL, log)

	// Stage table (immutable)
	stages, err := roadmap.NewStageTable(
		roadmap.DefaultStageEntries(),
		roadmap.DefaultStageRank,
		roadmap.DefaultBadgeThreshold,
	)
	if err != nil {
		return fmt.Errorf("failed to build stage table: %w", err)
	}
	container.StageTable = stages

	// Period table (immutable), from the periods file or generated
	calendar := roadmap.FiscalCalendar{Convention: cfg.Roadmap.FiscalYear}
	labels := cfg.Roadmap.PeriodLabels
	if labels == nil {
		labels = roadmap.DefaultPeriodLabels(calendar)
	}
	periods, err := roadmap.NewPeriodOrder(labels)
	if err != nil {
		return fmt.Errorf("failed to build period table: %w", err)
	}
	container.PeriodOrder = periods

	fields := roadmap.DefaultFieldNames()
	container.Normalizer = roadmap.NewNormalizer(roadmap.NormalizerConfig{Fields: fields})
	container.Fetcher = roadmap.NewFetcher(container.NotionClient, cfg.NotionDatabase, fields, log)
	container.RoadmapCache = roadmap.NewCache(container.ClientDataRepo, log)

	service, err := roadmap.NewService(roadmap.ServiceConfig{
		Fetcher:    container.Fetcher,
		Normalizer: container.Normalizer,
		Stages:     stages,
		Periods:    periods,
		Calendar:   calendar,
		Cache:      container.RoadmapCache,
		TTL:        cfg.Roadmap.CacheTTL,
		Workspace:  cfg.NotionSpace,
		Log:        log,
	})
	if err != nil {
		return fmt.Errorf("failed to create roadmap service: %w", err)
	}
	container.RoadmapService = service
	container.WarmFilters = cfg.Roadmap.WarmFilters()

	handler, err := roadmaphandlers.NewHandler(service, roadmaphandlers.Options{
		Title:        cfg.Title,
		Filter:       cfg.Roadmap.Filter(),
		AllowPrivate: cfg.Roadmap.AllowPrivate,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create roadmap handler: %w", err)
	}
	container.RoadmapHandler = handler

	log.Info().
		Int("periods", len(periods.Labels())).
		Str("current_period", service.CurrentPeriod()).
		Str("fiscal_convention", cfg.Roadmap.FiscalYear.String()).
		Msg("Roadmap services initialized")

	return nil
}
