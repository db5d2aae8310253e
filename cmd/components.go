package cmd

import (
	"context"
	"time"

	"example.com/outcry/config"
	"example.com/outcry/internal/cache"
	"example.com/outcry/internal/database"
	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/search"
	"example.com/outcry/internal/service"
	"example.com/outcry/internal/storage"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const connectAttempts = 5

// components holds everything a command builds from the configuration
type components struct {
	db        database.DB
	cache     *cache.RedisCache
	messaging messaging.ServiceBusClient
	metrics   *metrics.Collector
	service   service.Service
}

// connectDatabase opens the database, retrying with exponential backoff
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	var (
		db  database.DB
		err error
	)
	retryInterval := time.Second

	for i := 0; i < connectAttempts; i++ {
		log.Info().Int("attempt", i+1).Str("driver", cfg.Driver).Msg("Connecting to database...")
		db, err = database.Connect(cfg)
		if err == nil {
			return db, nil
		}

		log.Error().Err(err).Int("retry_attempt", i+1).Int("max_retries", connectAttempts).
			Msg("Failed to connect to database, retrying...")
		if i < connectAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryInterval):
			}
			retryInterval *= 2
		}
	}
	return nil, errors.Wrapf(err, "failed to connect to database after %d attempts", connectAttempts)
}

// prepareSchema migrates and seeds when the configuration asks for it
func prepareSchema(cfg config.DatabaseConfig, db database.DB) error {
	if !cfg.AutoMigrate {
		return nil
	}
	log.Info().Msg("Running database migrations...")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	return database.SeedLookups(db)
}

// buildComponents wires the database and the optional integrations into a service.
// Integrations that fail to start are logged and replaced by their disabled variants.
func buildComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := prepareSchema(cfg.Database, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &components{db: db, metrics: metrics.Default()}
	svcCfg := service.ServiceConfig{
		Repository: repository.NewRepository(db),
		Metrics:    c.metrics,
		App:        cfg.App,
		Upload:     cfg.Upload,
		Logger:     log.Logger,
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	} else {
		c.cache = redisCache
		svcCfg.Cache = redisCache
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	} else {
		svcCfg.Search = elasticClient
	}

	busClient, err := messaging.NewServiceBusClient(cfg.ServiceBus, cfg.App.Name, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Service Bus client, events will only be logged")
	} else {
		c.messaging = busClient
		svcCfg.Messaging = busClient
	}

	store, err := storage.NewObjectStore(ctx, cfg.Storage, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize object storage, attachments are disabled")
	} else {
		svcCfg.Storage = store
	}

	c.service, err = service.NewService(svcCfg)
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "failed to initialize service")
	}
	return c, nil
}

// Close releases every connection the components hold
func (c *components) Close() {
	if c.messaging != nil {
		if err := c.messaging.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing messaging connection")
		}
	}
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Redis connection")
		}
	}
	log.Info().Msg("Closing database connection...")
	if err := c.db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	}
}
