package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benoitkugler/svg2png/internal/cache"
	"github.com/benoitkugler/svg2png/internal/config"
	"github.com/benoitkugler/svg2png/internal/server"
	"github.com/benoitkugler/svg2png/svgpng"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := a.cfg

			opts, err := converterOptions(cfg.Render, logger)
			if err != nil {
				return err
			}

			c, err := newCache(ctx, cfg.Cache, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := server.New(server.Config{
				Addr:          addr,
				MaxBodyBytes:  cfg.Server.MaxBodyBytes,
				ReadTimeout:   cfg.Server.ReadTimeout.Std(),
				WriteTimeout:  cfg.Server.WriteTimeout.Std(),
				ShutdownGrace: cfg.Server.ShutdownGrace.Std(),
				CacheControl:  cfg.Server.CacheControl,
				CachePrefix:   cfg.Cache.Prefix,
				CacheTTL:      cfg.Cache.TTL.Std(),
			}, svgpng.New(opts), c, logger)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// newCache builds the response cache selected by the configuration.
func newCache(ctx context.Context, cfg config.Cache, logger *log.Logger) (cache.Cache, error) {
	switch backend := cfg.BackendName(); backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		n := cfg.MaxEntries
		if n <= 0 {
			n = cache.DefaultMaxEntries
		}
		logger.Infof("Caching up to %d responses in memory", n)
		return cache.NewMemoryCache(n), nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Caching responses in redis at %s", cfg.RedisAddr)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
