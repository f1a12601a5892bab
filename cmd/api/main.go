package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"privescreen/internal/adapters/auth/jwtverifier"
	notifymem "privescreen/internal/adapters/notify/memory"
	"privescreen/internal/adapters/notify/outbox"
	"privescreen/internal/adapters/notify/webhook"
	pg "privescreen/internal/adapters/storage/postgres"
	"privescreen/internal/config"
	"privescreen/internal/platform/logger"
	"privescreen/internal/ports/auth"
	"privescreen/internal/ports/notify"
	"privescreen/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		App:    "privescreen-api",
	})

	var verifier auth.AuthVerifier
	if cfg.JWTSecret != "" {
		verifier = jwtverifier.New(jwtverifier.Config{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		})
	} else {
		log.Warn().Msg("JWT_SECRET not set, running with dev header auth")
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open postgres")
		}
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier, runPublisher := buildNotifier(cfg, db, log)

	r := router.NewRouter(router.Options{
		AuthVerifier:    verifier,
		DB:              db,
		Notifier:        notifier,
		Logger:          log,
		MaxValidityDays: cfg.CodeValidityMaxDays,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if runPublisher != nil {
		go runPublisher(ctx)
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// buildNotifier picks the sponsor notifier: the Kafka outbox when brokers and
// a DB are configured, the webhook when a URL is set, otherwise the in-process
// recorder (dev only). The second return is non-nil when a background
// publisher has to run alongside the server.
func buildNotifier(cfg *config.Config, db *sql.DB, log zerolog.Logger) (notify.SponsorNotifier, func(context.Context)) {
	if brokers := cfg.Brokers(); len(brokers) > 0 && db != nil {
		writer := &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
		publisher := outbox.NewPublisher(db, writer, cfg.SponsorTopic, log)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.SponsorTopic).Msg("sponsor notices via kafka outbox")
		return outbox.NewStore(db), func(ctx context.Context) {
			defer writer.Close()
			publisher.Run(ctx)
		}
	}

	if cfg.SponsorWebhookURL != "" {
		n, err := webhook.New(webhook.Config{
			BaseURL: cfg.SponsorWebhookURL,
			APIKey:  cfg.SponsorWebhookAPIKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("invalid sponsor webhook config")
		}
		log.Info().Str("url", cfg.SponsorWebhookURL).Msg("sponsor notices via webhook")
		return n, nil
	}

	log.Warn().Msg("no sponsor notifier configured, recording notices in memory")
	return notifymem.NewNotifier(), nil
}
