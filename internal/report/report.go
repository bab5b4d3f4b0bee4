// Package report builds aggregate views over the rental ledger: revenue
// for a period and the most-rented vehicles and customers.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/repo"
)

// topLimit caps the ranking reports.
const topLimit = 10

// cacheTTL bounds how stale a cached ranking may be.
const cacheTTL = 30 * time.Second

// Service computes reports over the rental ledger. Rankings are cached
// because they walk the whole ledger; revenue is always computed fresh.
type Service struct {
	rentals *repo.Collection[domain.Rental]
	cache   domain.Cache
	sink    domain.Sink
	bus     domain.EventBus
}

// NewService wires the report service. Cache, sink and bus may be nil.
func NewService(rentals *repo.Collection[domain.Rental], cache domain.Cache, sink domain.Sink, bus domain.EventBus) *Service {
	return &Service{rentals: rentals, cache: cache, sink: sink, bus: bus}
}

// RevenueReport summarizes the closed rentals picked up inside a period.
type RevenueReport struct {
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Count         int           `json:"count"`
	Total         float64       `json:"total"`
	AverageTicket float64       `json:"averageTicket"`
	Lines         []RevenueLine `json:"lines"`
}

// RevenueLine is one closed rental inside a revenue report.
type RevenueLine struct {
	RentalID   string    `json:"rentalId"`
	Plate      string    `json:"plate"`
	Customer   string    `json:"customer"`
	PickedUpAt time.Time `json:"pickedUpAt"`
	BilledDays int64     `json:"billedDays"`
	Amount     float64   `json:"amount"`
}

// RankEntry is one row in a ranking report.
type RankEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Revenue sums the final amounts of closed rentals whose pickup falls in
// [start, end], both bounds inclusive.
func (s *Service) Revenue(ctx context.Context, start, end time.Time) RevenueReport {
	rep := RevenueReport{Start: start, End: end}
	for r := range s.rentals.All() {
		if r.Open() {
			continue
		}
		if r.PickedUpAt.Before(start) || r.PickedUpAt.After(end) {
			continue
		}
		rep.Count++
		rep.Total += r.FinalAmount
		rep.Lines = append(rep.Lines, RevenueLine{
			RentalID:   r.ID,
			Plate:      r.Vehicle.Plate,
			Customer:   r.Customer.Name,
			PickedUpAt: r.PickedUpAt,
			BilledDays: r.BilledDays,
			Amount:     r.FinalAmount,
		})
	}
	if rep.Count > 0 {
		rep.AverageTicket = rep.Total / float64(rep.Count)
	}

	s.emit(ctx, "revenue", renderRevenue(rep))
	return rep
}

// TopVehicles ranks vehicles by how many rentals they appear in, open ones
// included.
func (s *Service) TopVehicles(ctx context.Context) []RankEntry {
	return s.top(ctx, "top_vehicles", func(r domain.Rental) string {
		return r.Vehicle.Plate + " - " + r.Vehicle.Model
	})
}

// TopCustomers ranks customers by rental count.
func (s *Service) TopCustomers(ctx context.Context) []RankEntry {
	return s.top(ctx, "top_customers", func(r domain.Rental) string {
		return fmt.Sprintf("%s (%s)", r.Customer.Name, r.Customer.Document)
	})
}

// top computes a ranking, with cache-aside reuse of a recent result. Ties
// keep the order in which keys first entered the ledger.
func (s *Service) top(ctx context.Context, name string, key func(domain.Rental) string) []RankEntry {
	cacheKey := "report:" + name

	if s.cache != nil {
		if body, err := s.cache.Get(ctx, cacheKey); err == nil && body != nil {
			var cached []RankEntry
			if err := json.Unmarshal(body, &cached); err == nil {
				return cached
			}
		}
	}

	counts := s.rentals.GroupCount(key)

	// First-seen order is the tie-break, so walk the ledger once more to
	// recover it before the stable sort by count.
	var order []string
	seen := make(map[string]bool, len(counts))
	for r := range s.rentals.All() {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	entries := make([]RankEntry, 0, len(order))
	for _, k := range order {
		entries = append(entries, RankEntry{Key: k, Count: counts[k]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > topLimit {
		entries = entries[:topLimit]
	}

	if s.cache != nil {
		if body, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, cacheKey, body, cacheTTL); err != nil {
				slog.Warn("report cache write failed", "key", cacheKey, "error", err)
			}
		}
	}

	s.emit(ctx, name, renderRanking(name, entries))
	return entries
}

func (s *Service) emit(ctx context.Context, name, body string) {
	if s.sink != nil {
		s.sink.Emit(name, body)
	}
	if s.bus != nil {
		payload, err := json.Marshal(map[string]string{"report": name})
		if err == nil {
			if err := s.bus.Publish(ctx, domain.TopicReportGenerated, payload); err != nil {
				slog.Warn("report event publish failed", "report", name, "error", err)
			}
		}
	}
}

func renderRevenue(rep RevenueReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "REVENUE %s to %s\n", rep.Start.Format("02/01/2006"), rep.End.Format("02/01/2006"))
	fmt.Fprintf(&b, "Rentals: %d  Total: %.2f  Average: %.2f\n", rep.Count, rep.Total, rep.AverageTicket)
	for _, line := range rep.Lines {
		fmt.Fprintf(&b, "  %s  %s  %s  %d day(s)  %.2f\n",
			line.PickedUpAt.Format("02/01/2006"), line.Plate, line.Customer, line.BilledDays, line.Amount)
	}
	return b.String()
}

func renderRanking(name string, entries []RankEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", strings.ToUpper(strings.ReplaceAll(name, "_", " ")))
	for i, e := range entries {
		fmt.Fprintf(&b, "%2d. %s (%d)\n", i+1, e.Key, e.Count)
	}
	return b.String()
}
