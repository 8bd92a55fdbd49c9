package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kickbu2towski/breakout-api/internal/data"
	"go.uber.org/zap"
)

type application struct {
	logger *zap.Logger
	config config
	pool   *pgxpool.Pool
	models *data.Models
	hub    *Hub
}

type config struct {
	port             string
	dsn              string
	webURL           string
	linkBase         string
	categories       []string
	roomsPerCategory int
	cleanupInterval  time.Duration
	cors             struct {
		allowedOrigins []string
	}
	google struct {
		clientID     string
		clientSecret string
		redirectURL  string
	}
}

func main() {
	var cfg config
	parseFlags(&cfg)

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	// A missing DSN leaves the pool nil: the server still starts but every
	// store-backed operation reports that it is not configured.
	var pool *pgxpool.Pool
	if cfg.dsn == "" {
		logger.Warn("no postgres dsn configured, room operations are disabled")
	} else {
		pool, err = getPool(context.Background(), cfg.dsn)
		if err != nil {
			logger.Fatal("connecting to postgres", zap.Error(err))
		}
	}

	models := data.NewModels(pool, logger, cfg.linkBase)
	if pool != nil {
		err = models.Sessions.EnsureTable(context.Background())
		if err != nil {
			logger.Fatal("creating sessions table", zap.Error(err))
		}
	}

	app := application{
		logger: logger,
		config: cfg,
		pool:   pool,
		models: models,
		hub:    NewHub(logger),
	}

	server := &http.Server{
		Handler:      app.routes(),
		Addr:         fmt.Sprintf(":%s", cfg.port),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	go app.hub.run()
	go app.runCleanup()

	logger.Info("server starting", zap.String("port", cfg.port))
	err = server.ListenAndServe()
	logger.Fatal("server stopped", zap.Error(err))
}

func getPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return pool, nil
}

func parseFlags(cfg *config) {
	flag.StringVar(&cfg.port, "port", "6969", "API server port")
	flag.StringVar(&cfg.dsn, "dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN")
	flag.StringVar(&cfg.webURL, "web-url", "http://localhost:3000", "Dashboard URL")
	flag.StringVar(&cfg.linkBase, "link-base", "https://teams.microsoft.com/l/meetup-join", "Base URL for derived meeting links")
	flag.IntVar(&cfg.roomsPerCategory, "rooms-per-category", 10, "Number of rooms seeded per category")
	flag.DurationVar(&cfg.cleanupInterval, "cleanup-interval", 24*time.Hour, "How often the pool is reset to all-free (0 disables)")

	flag.StringVar(&cfg.google.clientID, "google-client-id", os.Getenv("GOOGLE_CLIENT_ID"), "Google Client ID")
	flag.StringVar(&cfg.google.clientSecret, "google-client-secret", os.Getenv("GOOGLE_CLIENT_SECRET"), "Google Client Secret")
	flag.StringVar(&cfg.google.redirectURL, "google-redirect-url", os.Getenv("GOOGLE_REDIRECT_URL"), "Google Redirect URL")

	cfg.categories = []string{"1", "2", "3"}
	flag.Func("categories", "A list of room categories", func(s string) error {
		cfg.categories = strings.Split(s, " ")
		return nil
	})

	cfg.cors.allowedOrigins = []string{"http://localhost:3000"}
	flag.Func("allowed-origins", "A list of allowed origins", func(s string) error {
		cfg.cors.allowedOrigins = strings.Split(s, " ")
		return nil
	})

	flag.Parse()
}
