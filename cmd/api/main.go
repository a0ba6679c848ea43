package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"jacksonjar/internal/adapter/repo"
	"jacksonjar/internal/http/handlers"
	httpapi "jacksonjar/internal/http/httpapi"
	"jacksonjar/internal/infra"
	"jacksonjar/internal/infra/geoip"
	"jacksonjar/internal/jar"
	"jacksonjar/internal/middleware"
	"jacksonjar/internal/notify"
	"jacksonjar/internal/payments"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)
	merchants := repo.NewMerchantRepository(sqlRunner)
	donations := repo.NewDonationRepository(sqlRunner)

	platform := payments.New(payments.Config{
		SecretKey:     cfg.SecretKey,
		ClientID:      cfg.ClientID,
		WebhookSecret: cfg.WebhookSecret,
		Timeout:       cfg.StripeTimeout,
		MaxRetries:    cfg.StripeRetries,
		Logger:        logger,
	})

	opts := []jar.Option{}
	if cfg.NotifyFromEmail != "" {
		ses, err := notify.NewSES(ctx, cfg.AWSRegion, cfg.NotifyFromEmail)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure SES")
		}
		opts = append(opts, jar.WithNotifier(notify.New(ses, cfg.PublicBaseURL)))
		logger.Info().Str("from", cfg.NotifyFromEmail).Msg("donation e-mails enabled")
	}

	svc := jar.NewService(merchants, donations, platform, jar.Settings{
		JacksonCents:   cfg.JacksonCents,
		PlatformFee:    cfg.PlatformFee,
		Currency:       cfg.Currency,
		PublishableKey: cfg.PublishableKey,
	}, logger, opts...)

	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	sessions := middleware.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	app := handlers.NewApp(svc, sessions, dbpool, cfg.PublicBaseURL, cfg.CookieSecure, logger)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:           logger,
		Merchants:        merchants,
		CountryLookup:    lookup,
		DefaultLocale:    cfg.DefaultLocale,
		ChargeRatePerMin: cfg.ChargeRatePerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
