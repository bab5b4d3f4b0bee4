package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openfleet/harrier/internal/discount"
	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/rental"
	"github.com/openfleet/harrier/internal/report"
	"github.com/openfleet/harrier/internal/repo"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, rentals *rental.Service, reports *report.Service, cache domain.Cache, bus domain.EventBus, engine *discount.Engine, ruleConfigs *repo.Collection[domain.DiscountRuleConfig], version string) *Server {
	handler := NewHandler(rentals, reports, cache, bus, engine, ruleConfigs, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// Fleet
	router.Post("/vehicles", handler.RegisterVehicle)
	router.Get("/vehicles", handler.ListVehicles)
	router.Get("/vehicles/stats", handler.VehicleStats)
	router.Get("/vehicles/{plate}", handler.GetVehicle)

	// Customers
	router.Post("/customers", handler.RegisterCustomer)
	router.Get("/customers", handler.ListCustomers)
	router.Get("/customers/{document}", handler.GetCustomer)

	// Rental lifecycle
	router.Post("/rentals", handler.Checkout)
	router.Post("/rentals/{plate}/return", handler.Return)
	router.Get("/rentals", handler.ListRentals)

	// Reports
	router.Get("/reports/revenue", handler.RevenueReport)
	router.Get("/reports/top-vehicles", handler.TopVehicles)
	router.Get("/reports/top-customers", handler.TopCustomers)

	// Discount rule management
	router.Get("/discount-rules", handler.ListDiscountRules)
	router.Post("/discount-rules", handler.CreateDiscountRule)
	router.Delete("/discount-rules/{id}", handler.DeleteDiscountRule)

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
