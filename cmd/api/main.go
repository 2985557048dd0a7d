package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/card-gateway/internal/config"
	"github.com/nimasrn/card-gateway/internal/generator"
	"github.com/nimasrn/card-gateway/internal/handlers"
	"github.com/nimasrn/card-gateway/internal/repository"
	"github.com/nimasrn/card-gateway/internal/services"
	"github.com/nimasrn/card-gateway/internal/storage"
	xhttp "github.com/nimasrn/card-gateway/pkg/http"
	"github.com/nimasrn/card-gateway/pkg/logger"
	"github.com/nimasrn/card-gateway/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	c := config.Get()
	logger.Info("starting card gateway", "version", version, "commit", commit, "date", date, "env", c.AppEnv)

	host, _ := os.Hostname()
	if err = prom.Create(host, c.AppEnv, c.PromNamespace); err != nil {
		logger.Error("failed creating metrics", "error", err)
		return
	}
	if c.AppDebugMetricsAddr != "" {
		go func() {
			if err := prom.ListenAndServe(c.AppDebugMetricsAddr, c.AppDebugMetricsURI); err != nil {
				logger.Error("error in running metrics server", "error", err)
			}
		}()
	}

	store, closeStore, err := storage.Open(c)
	if err != nil {
		logger.Error("failed opening storage", "error", err)
		return
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed closing storage", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := repository.NewCardRepository(store, generator.New())

	// services
	latency := services.LatencyFromConfig(c)
	cardService := services.NewCardService(repo, latency, c.CardsSeedOnEmpty)
	transactionService := services.NewTransactionService(repo, latency)
	healthService := services.NewHealthService(store)

	if _, err = cardService.EnsureSeeded(ctx); err != nil {
		logger.Error("failed seeding default cards", "error", err)
		return
	}

	// transport
	opts := xhttp.DefaultServerOption
	opts.ReadBufferSize = c.HttpServerReadBufferSize
	opts.WriteBufferSize = c.HttpServerWriteBufferSize
	s := xhttp.NewServer(opts)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.TimeoutMiddleware(c.HttpRequestTimeout))
	s.Use(xhttp.CompressMiddleware(6))

	// v1 handlers
	g := s.Router.Group("/api/v1")
	handlers.RegisterCardRoutes(g, handlers.NewCardHandler(cardService))
	handlers.RegisterTransactionRoutes(g, handlers.NewTransactionHandler(transactionService))
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService))

	go func() {
		if err := s.ListenAndServe(c.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			p := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(p); err != nil {
				logger.Error("failed to open the passed env file", "path", p, "error", err)
				return ""
			}
			return p
		}
	}
	return ""
}
