package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"freightquote/internal/alias"
	"freightquote/internal/chat"
	"freightquote/internal/config"
	"freightquote/internal/db"
	"freightquote/internal/logging"
	"freightquote/internal/quotelog"
	"freightquote/internal/rate"
	"freightquote/internal/server"
	"freightquote/internal/session"
	"freightquote/internal/sheets"
	"freightquote/internal/whatsapp"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if cfg.EnvFileErr != nil {
		log.Info().Msg(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := dataSource(cfg.Sheets)
	if err != nil {
		log.Fatal().Err(err).Msg("data source")
	}
	loc := sheets.NewLocator(src)

	aliases := alias.Default()
	if cfg.AliasesFile != "" {
		if aliases, err = alias.Load(cfg.AliasesFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.AliasesFile).Msg("load aliases")
		}
	}

	engines := rate.NewSet(loc, aliases, rate.Config{
		Air:          rate.Table{CollectionID: cfg.Sheets.RatesID, Hint: cfg.Sheets.TabAereo, ExtraHints: []string{"aereo", "air"}, Range: cfg.Sheets.RangeAereo},
		Sea:          rate.Table{CollectionID: cfg.Sheets.RatesID, Hint: cfg.Sheets.TabMaritimo, ExtraHints: []string{"maritimo", "sea"}, Range: cfg.Sheets.RangeMaritimo},
		Land:         rate.Table{CollectionID: cfg.Sheets.RatesID, Hint: cfg.Sheets.TabTerrestre, ExtraHints: []string{"terrestre", "land"}, Range: cfg.Sheets.RangeTerrestre},
		Courier:      rate.Table{CollectionID: cfg.Sheets.CourierID, Hint: cfg.Sheets.TabCourier, Range: cfg.Sheets.RangeCourier},
		HubAir:       cfg.Pricing.HubAereo,
		HubSea:       cfg.Pricing.HubMaritimo,
		HubLand:      cfg.Pricing.HubTerrestre,
		DefaultMinKg: cfg.Pricing.AirMinKg,
	})

	store, closeStore := sessionStore(ctx, cfg.Session, log)
	defer closeStore()

	sinks := quotelog.Multi{quotelog.NewSheetSink(loc, cfg.Sheets.LogID, cfg.Sheets.TabLog, "log", "registro")}
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect db")
		}
		defer pool.Close()
		pg := quotelog.NewPostgresSink(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("quote log schema")
		}
		sinks = append(sinks, pg)
		log.Info().Msg("quote log mirrored to postgres")
	}

	ctl := chat.New(store, engines, sinks, log, chat.Options{
		ValidityDays:       cfg.Pricing.ValidityDays,
		RestartKeywords:    cfg.Pricing.RestartKeywords,
		WelcomeImageURL:    cfg.WhatsApp.WelcomeImageURL,
		CourierDestination: cfg.Pricing.HubAereo,
	})
	wa := whatsapp.NewClient(whatsapp.Config{
		APIVersion:    cfg.WhatsApp.APIVersion,
		Token:         cfg.WhatsApp.Token,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		SendRPS:       cfg.WhatsApp.SendRPS,
	})
	api := server.New(ctl, wa, log, server.Config{
		VerifyToken: cfg.WhatsApp.VerifyToken,
		AppSecret:   cfg.WhatsApp.AppSecret,
	})
	if cfg.WhatsApp.AppSecret == "" {
		log.Warn().Msg("WHATSAPP_APP_SECRET not set, webhook signatures are not checked")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Routes(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("data_source", cfg.Sheets.Source).Str("session_store", cfg.Session.Store).Msg("api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	api.Wait()
	log.Info().Msg("stopped")
}

func dataSource(cfg config.SheetsConfig) (sheets.Source, error) {
	switch cfg.Source {
	case "yaml", "file":
		m, err := sheets.LoadYAML(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return sheets.NewGoogleSource(sheets.GoogleCredentials{JSON: cfg.CredentialsJSON, File: cfg.CredentialsFile}), nil
	}
}

func sessionStore(ctx context.Context, cfg config.SessionConfig, log zerolog.Logger) (session.Store, func()) {
	if cfg.Store != "redis" {
		return session.NewMemoryStore(cfg.TTL), func() {}
	}
	rs, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("session store")
	}
	return rs, func() { _ = rs.Close() }
}
