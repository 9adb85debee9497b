package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caffito/internal/config"
	"caffito/internal/infra"
	"caffito/internal/metrics"
	"caffito/internal/repository"
	"caffito/internal/router"
	"caffito/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Print bridge breaker, shared by the print worker, the retry cron and /health.
	cbCfg := infra.DefaultCBConfig()
	cbCfg.OnStateChange = func(from, to infra.CBState) {
		metrics.CircuitBreakerState.Set(float64(to))
		log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("print bridge breaker changed state")
	}
	printCB := infra.NewCircuitBreaker(cbCfg)

	// Worker handlers are wired here (composition root) so the pool has
	// access to every infrastructure dependency.
	facturaRepo := repository.NewFacturaRepository(db)
	mailer := infra.NewMailer(cfg)
	if !mailer.Configurado() {
		log.Warn().Msg("SMTP_HOST not set, invoice e-mails will fail and stay in the DLQ")
	}
	pool := worker.NewPool(rdb, map[string]worker.Handler{
		worker.JobImpresion: worker.NewImpresionWorker(facturaRepo, infra.NewPrintBridge(cfg.PrintBridgeURL),
			printCB, cfg.PrinterName, cfg.NombreNegocio, cfg.TicketAncho),
		worker.JobEmail: worker.NewEmailWorker(facturaRepo, mailer, cfg.NombreNegocio, cfg.PDFStoragePath),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		RDB:      rdb,
		CB:       printCB,
		Interval: time.Duration(cfg.RetryCronSecs) * time.Second,
	})

	r, err := router.New(cfg, db, rdb, printCB)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("caffito listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Workers finish their current job; BRPOP returns within 5s of cancel.
	cancel()
	pool.Wait()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
