package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/internal/config"
	"github.com/pagedeck/pagedeck/internal/server"
	"github.com/pagedeck/pagedeck/pkg/cache"
	"github.com/pagedeck/pagedeck/pkg/store"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the PageDeck HTTP API",
		Long: `Serve runs the HTTP API over the configured store and cache backends.

The file store and null cache are the defaults; production deployments
typically configure the mongo store and redis cache in the TOML config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			logger.Debug("effective config", "config", cfg.String())

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			artifactCache, err := openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer artifactCache.Close()

			srv := server.New(st, logger, server.WithCache(artifactCache, cfg.CacheTTL()))
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}

// openStore builds the configured page store backend.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreFile:
		return store.NewFileStore(cfg.StoreDir())
	case config.StoreMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.URI,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// openCache builds the configured artifact cache backend.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNull:
		return cache.NewNullCache(), nil
	case config.CacheFile:
		return cache.NewFileCache(cfg.CacheDir())
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   cfg.Cache.Addr,
			Prefix: "pagedeck:",
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
