// Command stanbot runs the community bot: the Telegram command surface,
// the feed fan-out listener, the background counter flusher, and the
// operational HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stanbotdev/stanbot/internal/bot"
	"github.com/stanbotdev/stanbot/internal/config"
	"github.com/stanbotdev/stanbot/internal/counters"
	"github.com/stanbotdev/stanbot/internal/feed"
	"github.com/stanbotdev/stanbot/internal/httpapi"
	"github.com/stanbotdev/stanbot/internal/repo"
	"github.com/stanbotdev/stanbot/internal/services"
	"github.com/stanbotdev/stanbot/internal/sysutil"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("cannot open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("cannot migrate database")
	}

	registry := services.NewRegistryService(db)
	links := services.NewLinkService(db, registry)
	subs := services.NewSubscriptionService(db)
	community := services.NewCommunityService(db)
	tracker := counters.NewTracker(db)

	api, err := telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, true))
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create bot api client")
	}

	b := bot.New(api, bot.Deps{
		Registry:        registry,
		Links:           links,
		Subs:            subs,
		Community:       community,
		Tracker:         tracker,
		SendRate:        cfg.SendRate,
		SendBurst:       cfg.SendBurst,
		LeaderboardSize: cfg.LeaderboardSize,
	})

	renderer := feed.NewRenderer()
	renderer.ProxyHost = cfg.Feed.ProxyHost
	renderer.MediaHosts = cfg.Feed.MediaHosts
	router := feed.NewRouter(subs, renderer, b.DeliverRendering)

	events := make(chan feed.Event, 64)
	listener := &feed.Listener{Events: events, Router: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go tracker.Run(ctx, cfg.FlushInterval)
	go listener.Run(ctx)

	srv := httpapi.NewServer(":"+cfg.HTTPPort, community, events)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops server failed")
		}
	}()

	go func() {
		if err := b.Run(); err != nil {
			log.Error().Err(err).Msg("bot stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server shutdown failed")
	}
}
