package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	alertapp "campus-energy/internal/alerts/application"
	alerts "campus-energy/internal/alerts/domain"
	alertmemory "campus-energy/internal/alerts/infrastructure/memory"
	alertpostgres "campus-energy/internal/alerts/infrastructure/postgres"
	alerthttp "campus-energy/internal/alerts/interfaces/http"
	"campus-energy/internal/audit"
	"campus-energy/internal/auth"
	"campus-energy/internal/masterdata"
	"campus-energy/internal/observability/metrics"
	simapp "campus-energy/internal/simulation/application"
	simulation "campus-energy/internal/simulation/domain"
	"campus-energy/internal/stream"
	telemetryapp "campus-energy/internal/telemetry/application"
	telemetry "campus-energy/internal/telemetry/domain"
	telemetrymemory "campus-energy/internal/telemetry/infrastructure/memory"
	telemetrypostgres "campus-energy/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	registry := masterdata.DefaultRegistry()
	if cfg.TenantsFile != "" {
		loaded, err := masterdata.LoadRegistry(cfg.TenantsFile)
		if err != nil {
			logger.Fatalf("tenant registry error: %v", err)
		}
		registry = loaded
	}

	var (
		alertRepo   alerts.AlertRepository        = alertmemory.NewAlertRepository()
		energyRepo  telemetry.EnergyLogRepository = telemetrymemory.NewEnergyLogRepository()
		auditLogger audit.Logger
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		alertRepo = alertpostgres.NewAlertRepository(db)
		energyRepo = telemetrypostgres.NewEnergyLogRepository(db)
		auditLogger = audit.NewRepository(db)
	} else {
		logger.Printf("DATABASE_URL not set, using in-memory stores")
	}

	metrics.Init()

	hub := stream.NewHub(logger)
	wsOpts := []stream.WSHandlerOption{}
	if cfg.JWTSecret != "" {
		wsOpts = append(wsOpts, stream.WithAuthSecret([]byte(cfg.JWTSecret)))
	}
	wsHandler, err := stream.NewWSHandler(hub, logger, wsOpts...)
	if err != nil {
		logger.Fatalf("ws handler error: %v", err)
	}

	alertService, err := alertapp.NewService(alertRepo, logger, alertapp.WithBroadcaster(hub))
	if err != nil {
		logger.Fatalf("alert service error: %v", err)
	}
	sink, err := telemetryapp.NewSink(registry, energyRepo, logger)
	if err != nil {
		logger.Fatalf("energy log sink error: %v", err)
	}

	simService, err := simapp.NewService(simulation.NewSynthesizer(), hub, logger,
		simapp.WithInterval(cfg.TickInterval),
		simapp.WithConsumer("energy-log", sink),
		simapp.WithConsumer("alerts", alertService),
	)
	if err != nil {
		logger.Fatalf("simulation service error: %v", err)
	}

	alertHandler, err := alerthttp.NewHandler(alertService, auditLogger)
	if err != nil {
		logger.Fatalf("alert handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/api/v1/alerts", alertHandler)
	mux.Handle("/api/v1/alerts/", alertHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if cfg.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/ws"}, nil)
		handler = auth.NewMiddleware([]byte(cfg.JWTSecret), policy).Wrap(mux)
	} else {
		logger.Printf("JWT_SECRET not set, API auth disabled")
	}
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(handler, logger)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := simService.Start(ctx); err != nil {
		logger.Fatalf("simulation start error: %v", err)
	}

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutdown signal received")
	simService.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown error: %v", err)
	}
}

type config struct {
	DatabaseURL  string
	HTTPAddr     string
	JWTSecret    string
	TickInterval time.Duration
	TenantsFile  string
}

func loadConfig() config {
	return config{
		DatabaseURL:  getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:     getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:    getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		TickInterval: getenvDuration("TICK_INTERVAL", simapp.DefaultInterval),
		TenantsFile:  getenvDefault("TENANTS_FILE", ""),
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps the websocket upgrade working through the logging wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}
