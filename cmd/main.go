package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/navanithaadhav/Herbal-Hot/internal/application"
	"github.com/navanithaadhav/Herbal-Hot/internal/config"
	"github.com/navanithaadhav/Herbal-Hot/internal/gateway"
	"github.com/navanithaadhav/Herbal-Hot/internal/kafka"
	"github.com/navanithaadhav/Herbal-Hot/internal/logger"
	"github.com/navanithaadhav/Herbal-Hot/internal/metrics"
	"github.com/navanithaadhav/Herbal-Hot/internal/migrate"
	"github.com/navanithaadhav/Herbal-Hot/internal/presentation"
	"github.com/navanithaadhav/Herbal-Hot/internal/repository"
	"github.com/navanithaadhav/Herbal-Hot/internal/signature"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed", "err", err)
		os.Exit(1)
	}

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Warn("migrations failed", "err", err)
		os.Exit(1)
	}

	// DB pool
	pool, err := pgxpool.New(context.Background(), cfg.DB_STRING)
	if err != nil {
		logger.Warn("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Warn("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	// Kafka producer for lifecycle events
	var prod *kafka.Producer
	if cfg.KAFKA_BROKERS != "" {
		prod = kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
		defer prod.Close()
	} else {
		logger.Warn("KAFKA_BROKERS not set, lifecycle events disabled")
	}

	// Wiring
	repo := repository.NewOrderRepository(pool)
	gw := gateway.NewRazorpayGateway(cfg.RAZORPAY_KEY_ID, cfg.RAZORPAY_KEY_SECRET)
	verifier := signature.NewVerifier(cfg.RAZORPAY_KEY_SECRET)
	m := metrics.New()

	var events application.EventPublisher
	if prod != nil {
		events = prod
	}
	svc := application.NewOrdersService(repo, gw, verifier, events, m, cfg.CURRENCY)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API
	h := presentation.NewOrdersHandler(svc)
	h.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Warn("http server crashed", "err", err)
		os.Exit(1)
	}
}
