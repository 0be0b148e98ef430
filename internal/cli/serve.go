package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/config"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/store"

	"github.com/matzehuels/masonry/internal/server"
)

// serveCommand creates the serve command for running the layout service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the masonry layout service",
		Long: `Run the masonry layout service.

The service exposes the layout pipeline over HTTP: POST a feed to /v1/layout
and get back balanced columns. With a store configured (mongo_uri in the
config file), named layouts can be saved and fetched under /v1/layouts.

The cache backend, listen address, and store are taken from the config file
and can be overridden by flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, :8080)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./masonry.toml)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	pipelineCache, err := serviceCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	runner := pipeline.NewRunner(pipelineCache, nil, c.Logger)
	defer runner.Close()

	opts := []server.Option{server.WithLogger(c.Logger)}
	if cfg.Store.MongoURI != "" {
		st, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
		if err != nil {
			return fmt.Errorf("connect store: %w", err)
		}
		defer st.Close(context.Background())
		opts = append(opts, server.WithStore(st))
		c.Logger.Info("layout store enabled", "database", cfg.Store.Database)
	}

	return server.New(runner, opts...).ListenAndServe(ctx, addr)
}

// serviceCache builds the configured cache backend.
func serviceCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheBackendNone:
		return cache.NewNullCache(), nil
	case config.CacheBackendRedis:
		return cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}
