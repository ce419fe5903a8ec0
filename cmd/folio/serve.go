package main

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-folio/internal/config"
	"github.com/alnah/go-folio/internal/content"
	"github.com/alnah/go-folio/internal/dateutil"
	"github.com/alnah/go-folio/internal/hints"
	"github.com/alnah/go-folio/internal/logging"
	"github.com/alnah/go-folio/internal/server"
)

// ErrRedisConnect indicates the configured redis server did not answer.
var ErrRedisConnect = errors.New("redis connection failed")

const redisPingTimeout = 5 * time.Second

func runServe(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, positional[0])
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return err
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := newLogProvider(cfg)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, provider, env)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func newLogProvider(cfg *config.Config) (logging.Provider, error) {
	p, err := logging.NewProvider(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	return p, nil
}

// app is a loaded library, its HTTP server and optional watcher.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	library *content.Library
	server  *server.Server
	watcher *content.Watcher
	redis   *redis.Client
}

// newApp resolves and loads every content kind, then wires the server.
// A kind whose directory is missing is served as unavailable.
func newApp(ctx context.Context, cfg *config.Config, provider logging.Provider, env *Environment) (*app, error) {
	a := &app{cfg: cfg, logger: logging.Named(provider, logging.ServerLogger)}

	assetLoader, err := newAssetLoader(cfg)
	if err != nil {
		return nil, err
	}
	dates, err := dateutil.NewFormatter(cfg.Content.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: content.dateFormat: %v", config.ErrInvalidValue, err)
	}

	contentLog := logging.Named(provider, logging.ContentLogger)
	loader := content.NewLoader(newRenderer(cfg, assetLoader),
		content.WithLogger(contentLog),
		content.WithDateFormatter(dates),
	)
	metrics := server.NewMetrics()

	resolver := content.NewResolver(cfg.Content.Roots...)
	var repos []*content.Repository
	var unavailable []*content.ResolveError
	for _, kind := range content.Kinds {
		dir, err := resolver.Resolve(kind)
		if err != nil {
			var re *content.ResolveError
			if !errors.As(err, &re) {
				return nil, err
			}
			a.logger.Warn("content directory not found", "kind", kind, "attempted", re.Attempted)
			unavailable = append(unavailable, re)
			continue
		}
		repo := content.NewRepository(kind, dir, loader,
			content.WithReloadHook(metrics.ObserveReload),
			content.WithRepositoryLogger(contentLog),
		)
		if _, err := repo.Refresh(ctx); err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	a.library = content.NewLibrary(repos...)

	opts := []server.Option{
		server.WithMetrics(metrics),
		server.WithAssets(assetLoader),
		server.WithLoggers(provider),
		server.WithAllowOrigins(cfg.Server.AllowOrigins...),
		server.WithUnavailable(unavailable...),
		server.WithNow(env.Now),
	}

	backendOpts, err := a.contactBackends(ctx)
	if err != nil {
		return nil, err
	}
	opts = append(opts, backendOpts...)

	if cfg.SMTP.Enabled() {
		opts = append(opts, server.WithNotifier(server.NewSMTPNotifier(server.SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		}, assetLoader)))
	}

	a.server = server.New(a.library, opts...)

	if cfg.Content.Watch && len(repos) > 0 {
		w, err := content.NewWatcher(logging.Named(provider, logging.WatcherLogger))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.watcher = w
		for _, repo := range repos {
			if err := w.WatchRepository(ctx, repo, cfg.Content.Debounce.Std()); err != nil {
				a.Close()
				return nil, err
			}
		}
	}

	return a, nil
}

// contactBackends connects redis when configured and picks the limiter
// and comment store.
func (a *app) contactBackends(ctx context.Context) ([]server.Option, error) {
	rl := a.cfg.RateLimit
	var opts []server.Option

	if a.cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%w: %s: %v%s", ErrRedisConnect, a.cfg.Redis.Addr, err, hints.ForRedisConnect(a.cfg.Redis.Addr))
		}
		a.redis = client
		opts = append(opts, server.WithCommentStore(server.NewRedisCommentStore(client, a.cfg.Redis.Prefix)))
	}

	if rl.Backend == config.BackendRedis && a.redis != nil {
		opts = append(opts, server.WithLimiter(server.NewRedisLimiter(a.redis, a.cfg.Redis.Prefix, rl.Window.Std(), rl.Max)))
	} else {
		opts = append(opts, server.WithLimiter(server.NewMemoryLimiter(rl.Window.Std(), rl.Max)))
	}
	return opts, nil
}

// Run serves until ctx is done. The watcher and the server share one
// errgroup, so either failing stops the other.
func (a *app) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Run(gctx, a.cfg.Server.Addr, a.cfg.Server.ShutdownTimeout.Std())
	})
	if a.watcher != nil {
		g.Go(func() error {
			return a.watcher.Run(gctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, syscall.EADDRINUSE) {
		return fmt.Errorf("%w%s", err, hints.ForAddrInUse(a.cfg.Server.Addr))
	}
	return err
}

// Close releases the watcher and the redis client.
func (a *app) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
