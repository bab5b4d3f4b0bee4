package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openfleet/harrier/internal/discount"
	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/rental"
	"github.com/openfleet/harrier/internal/report"
	"github.com/openfleet/harrier/internal/repo"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	rentals     *rental.Service
	reports     *report.Service
	cache       domain.Cache
	bus         domain.EventBus
	engine      *discount.Engine
	ruleConfigs *repo.Collection[domain.DiscountRuleConfig]
	version     string
}

// NewHandler creates a new API handler.
func NewHandler(rentals *rental.Service, reports *report.Service, cache domain.Cache, bus domain.EventBus, engine *discount.Engine, ruleConfigs *repo.Collection[domain.DiscountRuleConfig], version string) *Handler {
	return &Handler{
		rentals:     rentals,
		reports:     reports,
		cache:       cache,
		bus:         bus,
		engine:      engine,
		ruleConfigs: ruleConfigs,
		version:     version,
	}
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if err := errors.Join(
		h.rentals.Vehicles().SaveErr(),
		h.rentals.Customers().SaveErr(),
		h.rentals.Rentals().SaveErr(),
	); err != nil {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// RegisterVehicle handles POST /vehicles.
func (h *Handler) RegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var v domain.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if err := h.rentals.RegisterVehicle(r.Context(), v); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"plate": strings.ToUpper(v.Plate),
	})
}

// ListVehicles handles GET /vehicles with optional paging, category and
// availability filters.
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles := h.rentals.Vehicles()

	category := r.URL.Query().Get("category")
	available := r.URL.Query().Get("available")
	if category != "" || available != "" {
		matches := vehicles.Filter(func(v domain.Vehicle) bool {
			if category != "" && string(v.Category) != category {
				return false
			}
			if available != "" && strconv.FormatBool(v.Available) != available {
				return false
			}
			return true
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"vehicles": matches,
			"count":    len(matches),
		})
		return
	}

	page, size := pageParams(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicles": vehicles.Page(page, size),
		"total":    vehicles.Count(),
		"page":     page,
	})
}

// VehicleStats handles GET /vehicles/stats: fleet counts per category.
func (h *Handler) VehicleStats(w http.ResponseWriter, r *http.Request) {
	counts := h.rentals.Vehicles().GroupCount(func(v domain.Vehicle) string {
		return string(v.Category)
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"byCategory": counts,
		"total":      h.rentals.Vehicles().Count(),
	})
}

// GetVehicle handles GET /vehicles/{plate}.
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	plate := strings.ToUpper(chi.URLParam(r, "plate"))
	v, ok := h.rentals.Vehicles().Find(plate)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "vehicle not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// RegisterCustomer handles POST /customers.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var c domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if err := h.rentals.RegisterCustomer(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"document": c.Document,
	})
}

// ListCustomers handles GET /customers with optional paging and kind filter.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.rentals.Customers()

	if kind := r.URL.Query().Get("kind"); kind != "" {
		matches := customers.Filter(func(c domain.Customer) bool {
			return string(c.Kind) == kind
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"customers": matches,
			"count":     len(matches),
		})
		return
	}

	page, size := pageParams(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"customers": customers.Page(page, size),
		"total":     customers.Count(),
		"page":      page,
	})
}

// GetCustomer handles GET /customers/{document}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	document := chi.URLParam(r, "document")
	c, ok := h.rentals.Customers().Find(document)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "customer not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CheckoutRequest is the request body for POST /rentals.
type CheckoutRequest struct {
	Plate    string `json:"plate"`
	Document string `json:"document"`
	Location string `json:"location"`
}

// Checkout handles POST /rentals.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.Plate == "" || req.Document == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "plate and document are required",
		})
		return
	}

	rent, err := h.rentals.Checkout(r.Context(), req.Plate, req.Document, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rent)
}

// Return handles POST /rentals/{plate}/return.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	plate := chi.URLParam(r, "plate")

	rent, err := h.rentals.Return(r.Context(), plate)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rent)
}

// ListRentals handles GET /rentals. status=active (default) lists open
// rentals; status=all lists the full history.
func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	var rentals []domain.Rental
	status := r.URL.Query().Get("status")
	switch status {
	case "", "active":
		rentals = h.rentals.Active(page, size)
	case "all":
		rentals = h.rentals.History(page, size)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "status must be 'active' or 'all'",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rentals": rentals,
		"count":   len(rentals),
		"page":    page,
	})
}

// RevenueReport handles GET /reports/revenue?start=YYYY-MM-DD&end=YYYY-MM-DD.
// Both bounds are inclusive; end covers the whole day.
func (h *Handler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "start must be a YYYY-MM-DD date",
		})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "end must be a YYYY-MM-DD date",
		})
		return
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	writeJSON(w, http.StatusOK, h.reports.Revenue(r.Context(), start, end))
}

// TopVehicles handles GET /reports/top-vehicles.
func (h *Handler) TopVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ranking": h.reports.TopVehicles(r.Context()),
	})
}

// TopCustomers handles GET /reports/top-customers.
func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ranking": h.reports.TopCustomers(r.Context()),
	})
}

// CreateDiscountRuleRequest is the request body for POST /discount-rules.
type CreateDiscountRuleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression"`
}

// ListDiscountRules handles GET /discount-rules.
func (h *Handler) ListDiscountRules(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "discount engine not available",
		})
		return
	}
	rules := h.engine.LoadedRules()
	writeJSON(w, http.StatusOK, map[string]any{
		"rules": rules,
		"count": len(rules),
	})
}

// CreateDiscountRule handles POST /discount-rules: the expression is
// compiled before anything is stored, so a bad rule never lands in the
// engine or on disk.
func (h *Handler) CreateDiscountRule(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "discount engine not available",
		})
		return
	}

	var req CreateDiscountRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name and expression are required",
		})
		return
	}

	now := time.Now().UTC()
	cfg := &domain.DiscountRuleConfig{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Expression:  req.Expression,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.engine.ValidateRule(cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	if h.ruleConfigs != nil {
		if err := h.ruleConfigs.Register(r.Context(), *cfg); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := h.engine.LoadRule(cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	slog.Info("discount rule created", "id", cfg.ID, "name", cfg.Name)
	writeJSON(w, http.StatusCreated, cfg)
}

// DeleteDiscountRule handles DELETE /discount-rules/{id}. The rule is
// unloaded from the engine and disabled in storage; history keeps the
// config for audit.
func (h *Handler) DeleteDiscountRule(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "discount engine not available",
		})
		return
	}

	id := chi.URLParam(r, "id")

	var found bool
	for _, cfg := range h.engine.LoadedRules() {
		if cfg.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "discount rule not found",
		})
		return
	}

	h.engine.RemoveRule(id)
	if h.ruleConfigs != nil {
		if cfg, ok := h.ruleConfigs.Find(id); ok {
			cfg.Enabled = false
			cfg.UpdatedAt = time.Now().UTC()
			h.ruleConfigs.Update(r.Context(), cfg)
		}
	}

	slog.Info("discount rule removed", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "discount rule removed",
	})
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	return page, size
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
