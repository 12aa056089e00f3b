package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/roadmap/internal/config"
	"github.com/aristath/roadmap/internal/database"
)

// InitializeDatabases opens the cache database and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// cache.db - roadmap snapshots keyed by filter, expire after the cache TTL
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	if err := cacheDB.Migrate(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	log.Info().Str("path", cacheDB.Path()).Msg("Cache database initialized")

	return container, nil
}
