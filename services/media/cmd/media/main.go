package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/platform/auth"
	"github.com/example/media-catalog/internal/platform/config"
	"github.com/example/media-catalog/internal/platform/db"
	"github.com/example/media-catalog/internal/platform/events"
	"github.com/example/media-catalog/internal/platform/httpserver"
	"github.com/example/media-catalog/internal/platform/logging"
	"github.com/example/media-catalog/internal/platform/natsconn"
	"github.com/example/media-catalog/internal/platform/run"
	"github.com/example/media-catalog/services/media/internal/cache"
	mediaconfig "github.com/example/media-catalog/services/media/internal/config"
	"github.com/example/media-catalog/services/media/internal/handlers"
	"github.com/example/media-catalog/services/media/internal/httpx"
	"github.com/example/media-catalog/services/media/internal/store"
)

func main() {
	cfg, err := config.Load(":3001")
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	mcfg := mediaconfig.LoadMedia()
	ctx := context.Background()

	var ms store.MediaStore
	var ready func() error
	if mcfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, mcfg.DatabaseURL)
		if err != nil {
			log.Error("db open", zap.Error(err))
			run.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgresMediaStore(pool)
		if err := pg.AutoMigrate(ctx); err != nil {
			log.Error("db migrate", zap.Error(err))
			run.Exit(1)
		}
		ms = pg
		ready = func() error { return pool.Ping(context.Background()) }
	} else {
		mem := store.NewInMemoryMediaStore()
		if err := store.Seed(ctx, mem, mcfg.SeedCount); err != nil {
			log.Error("seed", zap.Error(err))
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory store", zap.Int("seeded", mcfg.SeedCount))
		ms = mem
	}

	if mcfg.RedisURL != "" {
		cs, err := cache.New(mcfg.RedisURL, mcfg.CacheTTL, ms, log)
		if err != nil {
			log.Error("redis", zap.Error(err))
			run.Exit(1)
		}
		defer func() { _ = cs.Close() }()
		ms = cs

		dbReady := ready
		ready = func() error {
			if dbReady != nil {
				if err := dbReady(); err != nil {
					return err
				}
			}
			return cs.Ping(context.Background())
		}
	}

	pub := events.New(nil, log)
	if mcfg.NATSURL != "" {
		nc, err := natsconn.Connect(natsconn.Options{URL: mcfg.NATSURL, Name: cfg.ServiceName})
		if err != nil {
			log.Error("nats connect", zap.Error(err))
			run.Exit(1)
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			log.Error("jetstream", zap.Error(err))
			run.Exit(1)
		}
		if err := events.EnsureStream(js); err != nil {
			log.Error("ensure stream", zap.Error(err))
			run.Exit(1)
		}
		pub = events.New(js, log)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: ready, Logger: log})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("media api"))
	})

	r.Route(mcfg.APIPrefix, func(r chi.Router) {
		r.Use(httpx.RateLimit(mcfg.RateLimit, mcfg.RateWindow))
		if mcfg.AuthEnabled() {
			r.Use(auth.RequireUser(auth.JWTVerifier{Secret: mcfg.JWTSecret}))
		}
		handlers.Mount(r, handlers.Deps{Store: ms, Events: pub, Log: log})
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			runner.Graceful(srv.Shutdown)
		}()
		return srv.Start()
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}
