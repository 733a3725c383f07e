package api

import (
	"net/http"

	"dispatch-service/internal/adapters/events"
	"dispatch-service/internal/api/handlers"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the HTTP layer is built from. Estimator, Hub
// and DB may be nil.
type Deps struct {
	Drivers    ports.DriverRepository
	Routes     ports.RouteRepository
	Orders     ports.OrderRepository
	Simulation handlers.SimulationRunner
	Auth       *services.AuthService
	Estimator  ports.DistanceProvider
	Hub        *events.Hub
	DB         handlers.Pinger

	AllowedOrigins []string
	// ExposeErrors includes internal error text in 500 responses.
	ExposeErrors bool
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(d Deps) http.Handler {
	errs := handlers.Errors{Expose: d.ExposeErrors}

	health := handlers.Health{DB: d.DB}
	authH := &handlers.AuthHandler{Auth: d.Auth, Errors: errs}
	driverH := &handlers.DriverHandler{Repo: d.Drivers, Errors: errs}
	routeH := &handlers.RouteHandler{Repo: d.Routes, Estimator: d.Estimator, Errors: errs}
	orderH := &handlers.OrderHandler{Repo: d.Orders, Routes: d.Routes, Drivers: d.Drivers, Errors: errs}
	simH := &handlers.SimulationHandler{Service: d.Simulation, Errors: errs}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", health.Check)

	if d.Hub != nil {
		r.Get("/ws", events.Handler(d.Hub, func(token string) (string, error) {
			claims, err := d.Auth.Parse(token)
			if err != nil {
				return "", err
			}
			return claims.UserID, nil
		}, d.AllowedOrigins))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(d.Auth))

			r.Route("/drivers", func(r chi.Router) {
				r.Get("/", driverH.List)
				r.Post("/", driverH.Create)
				r.Get("/{id}", driverH.Get)
				r.Put("/{id}", driverH.Update)
				r.Delete("/{id}", driverH.Delete)
			})

			r.Route("/routes", func(r chi.Router) {
				r.Get("/", routeH.List)
				r.Post("/", routeH.Create)
				r.Post("/estimate", routeH.Estimate)
				r.Get("/{id}", routeH.Get)
				r.Put("/{id}", routeH.Update)
				r.Delete("/{id}", routeH.Delete)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderH.List)
				r.Post("/", orderH.Create)
				r.Get("/{id}", orderH.Get)
				r.Put("/{id}", orderH.Update)
				r.Delete("/{id}", orderH.Delete)
			})

			r.Route("/simulation", func(r chi.Router) {
				r.Post("/", simH.Run)
				r.Get("/history", simH.History)
				r.Get("/status", simH.Status)
			})
		})
	})

	return r
}
