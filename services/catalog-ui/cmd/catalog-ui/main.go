package main

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/platform/auth"
	"github.com/example/media-catalog/internal/platform/config"
	"github.com/example/media-catalog/internal/platform/httpserver"
	"github.com/example/media-catalog/internal/platform/logging"
	"github.com/example/media-catalog/internal/platform/run"
	uiconfig "github.com/example/media-catalog/services/catalog-ui/internal/config"
	"github.com/example/media-catalog/services/catalog-ui/internal/listctl"
	"github.com/example/media-catalog/services/catalog-ui/internal/mediaapi"
	"github.com/example/media-catalog/services/catalog-ui/internal/view"
)

func main() {
	cfg, err := config.Load(":3000")
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ucfg := uiconfig.LoadUI()

	client := mediaapi.New(ucfg.APIURL, ucfg.APITimeout)
	client.CB = mediaapi.NewBreaker(mediaapi.BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          ucfg.BreakerTimeout,
		FailureThreshold: ucfg.BreakerFailures,
	}, log)
	switch {
	case ucfg.APIToken != "":
		client.Token = mediaapi.StaticToken(ucfg.APIToken)
	case len(ucfg.JWTSecret) > 0:
		client.Token = auth.Signer{Secret: ucfg.JWTSecret, Subject: ucfg.JWTSubject}.Token
	}

	sessions := view.NewSessions(ucfg.SessionTTL, client, listctl.Options{
		PageSize:       ucfg.PageSize,
		DedupeOnAppend: ucfg.Dedupe,
	}, log)

	h, err := view.New(client, sessions, log)
	if err != nil {
		log.Error("templates", zap.Error(err))
		run.Exit(1)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{Logger: log})
	h.Mount(r)

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Logger: log, Router: r})

	log.Info("catalog ui",
		zap.String("media_api", ucfg.APIURL),
		zap.Int("page_size", ucfg.PageSize),
		zap.Bool("dedupe", ucfg.Dedupe),
	)

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go sessions.Run(ctx, ucfg.SweepInterval)
		go func() {
			<-ctx.Done()
			runner.Graceful(srv.Shutdown)
		}()
		return srv.Start()
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}
