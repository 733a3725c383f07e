package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch-service/internal/adapters/cache"
	"dispatch-service/internal/adapters/distance"
	"dispatch-service/internal/adapters/events"
	"dispatch-service/internal/adapters/repositories"
	"dispatch-service/internal/api"
	"dispatch-service/internal/config"
	"dispatch-service/internal/platform/db"
	"dispatch-service/internal/platform/logging"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/services"
	"dispatch-service/internal/services/simulation"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const distanceCacheTTL = 30 * 24 * time.Hour

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS, WebSocket) behind ports and starts the HTTP server.
func main() {
	cfg := config.Load()
	log := logging.Setup(cfg.LogLevel, cfg.Development())

	if err := cfg.RequireServer(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal(err)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := repositories.SeedAdmin(ctx, conn, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal(err)
		}
	}

	engine, err := newEngine(cfg, log)
	if err != nil {
		log.Fatal(err)
	}

	estimator, err := newEstimator(ctx, cfg, conn)
	if err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()
	go hub.Run(ctx)

	drivers := repositories.NewPostgresDriverRepository(conn)
	routes := repositories.NewPostgresRouteRepository(conn)
	orders := repositories.NewPostgresOrderRepository(conn)

	sim := &services.SimulationService{
		Drivers: drivers,
		Routes:  routes,
		Orders:  orders,
		Results: repositories.NewPostgresSimulationRepository(conn),
		Events:  hub,
		Engine:  engine,
	}
	auth := &services.AuthService{
		Users:  repositories.NewPostgresUserRepository(conn),
		Secret: []byte(cfg.JWTSecret),
	}

	router := api.NewRouter(api.Deps{
		Drivers:        drivers,
		Routes:         routes,
		Orders:         orders,
		Simulation:     sim,
		Auth:           auth,
		Estimator:      estimator,
		Hub:            hub,
		DB:             conn,
		AllowedOrigins: cfg.AllowedOrigins,
		ExposeErrors:   cfg.Development(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "env": cfg.AppEnv}).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}
}

func newEngine(cfg config.Config, log *logrus.Logger) (*simulation.Engine, error) {
	engine := simulation.NewEngine()
	engine.Log = log

	if cfg.RulesPath != "" {
		rules, err := simulation.LoadRules(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		engine.Rules = rules
	}

	strategy, err := simulation.ParseStrategy(cfg.AssignmentStrategy)
	if err != nil {
		return nil, err
	}
	engine.Strategy = strategy

	return engine, nil
}

// newEstimator returns nil when no ORS key is configured; route estimation
// then answers 503.
func newEstimator(ctx context.Context, cfg config.Config, conn *sqlx.DB) (ports.DistanceProvider, error) {
	if cfg.ORSAPIKey == "" {
		logrus.Warn("ORS_API_KEY not set, route estimation disabled")
		return nil, nil
	}

	var distances ports.DistanceCache = cache.NewSQLDistanceCache(conn, distanceCacheTTL)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		distances = cache.NewRedisDistanceCache(client, distanceCacheTTL)
	}

	provider, err := distance.NewORSDistanceProvider(
		distance.ORSConfig{APIKey: cfg.ORSAPIKey},
		distances,
		cache.NewSQLGeocodeCache(conn),
	)
	if err != nil {
		return nil, err
	}
	return provider, nil
}
