package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	appConfig "lyricsearch/config"
	"lyricsearch/genius"
	"lyricsearch/handlers"
	"lyricsearch/lyrics"
	"lyricsearch/search"
	appSentry "lyricsearch/sentry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}
	appConfig.NewConfig()
	setupLogging(appConfig.Config.Options.LogLevel)
	appSentry.Init(appConfig.Config.Sentry.DSN, appConfig.Config.Sentry.Release)
	defer appSentry.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(level string) {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        false,
		FieldsOrder:     []string{"module", "function", "artist_id", "song_id", "strategy"},
		TimestampFormat: time.RFC3339,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// newResolver builds the strategy chain: canonical page, mobile page,
// API embed, then lrclib when enabled.
func newResolver(cfg *appConfig.ConfigStruct, catalog *genius.Client) *lyrics.Resolver {
	fetcher := lyrics.NewPageFetcher(cfg.Scraper.UserAgent, cfg.Scraper.RelayURL)
	strategies := []lyrics.Strategy{
		lyrics.NewPageStrategy(fetcher),
		lyrics.NewMobileStrategy(fetcher, cfg.Genius.MobileURL),
		lyrics.NewEmbedStrategy(catalog),
	}
	if cfg.Scraper.LrclibEnabled {
		strategies = append(strategies, lyrics.NewLrclibStrategy())
	}
	return lyrics.NewResolver(cfg.Search.SongTimeoutDuration(), strategies...)
}

func run(ctx context.Context) error {
	cfg := appConfig.Config
	if !cfg.Genius.HasToken() {
		log.Warn("GENIUS_ACCESS_TOKEN is not set, catalog requests will fail")
	}

	catalog := genius.New(cfg.Genius.AccessToken, cfg.Genius.APIURL)
	resolver := newResolver(cfg, catalog)
	service := search.NewService(catalog, resolver, search.Options{
		MaxPages:  cfg.Search.MaxPages,
		PageSize:  cfg.Search.PageSize,
		BatchSize: cfg.Search.BatchSize,
		Timeout:   cfg.Search.Timeout(),
	})
	log.WithFields(log.Fields{
		"strategies": resolver.Strategies(),
		"relay":      cfg.Scraper.RelayEnabled(),
		"max_pages":  cfg.Search.MaxPages,
		"batch_size": cfg.Search.BatchSize,
	}).Info("lyric search configured")

	router := gin.Default()
	router.Use(appSentry.GetSentryGin())
	handlers.NewManager(catalog, service).Register(router)

	port := cfg.Options.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
