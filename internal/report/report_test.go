package report

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/repo"
)

type memStore[T any] struct {
	items []T
}

func (m *memStore[T]) Load(ctx context.Context) ([]T, error) { return m.items, nil }
func (m *memStore[T]) Save(ctx context.Context, items []T) error {
	m.items = append([]T(nil), items...)
	return nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.data[key], nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }
func (c *memCache) Close() error                   { return nil }

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
}

func closed(id, plate, model, customer, document string, pickup time.Time, amount float64) domain.Rental {
	returned := pickup.Add(24 * time.Hour)
	return domain.Rental{
		ID:          id,
		Vehicle:     domain.Vehicle{Plate: plate, Model: model, Category: domain.CategorySmall},
		Customer:    domain.Customer{Kind: domain.KindIndividual, Name: customer, Document: document},
		PickedUpAt:  pickup,
		ReturnedAt:  &returned,
		BilledDays:  1,
		FinalAmount: amount,
	}
}

func ledger(t *testing.T, rentals ...domain.Rental) *repo.Collection[domain.Rental] {
	t.Helper()
	ctx := context.Background()
	coll := repo.New(ctx, "rentals", &memStore[domain.Rental]{}, func(r domain.Rental) string {
		return r.Vehicle.Plate
	}, repo.Options[domain.Rental]{
		AllowDuplicateKeys: true,
		Active:             func(r domain.Rental) bool { return r.Open() },
	})
	for _, r := range rentals {
		if err := coll.Register(ctx, r); err != nil {
			t.Fatalf("register rental: %v", err)
		}
	}
	return coll
}

func TestRevenue(t *testing.T) {
	open := domain.Rental{
		ID:         "open-1",
		Vehicle:    domain.Vehicle{Plate: "CCC-3C33", Model: "Onix"},
		Customer:   domain.Customer{Name: "Cora"},
		PickedUpAt: day(5),
	}
	svc := NewService(ledger(t,
		closed("r1", "AAA-1A11", "Gol", "Ana", "12345678901", day(2), 100),
		closed("r2", "BBB-2B22", "Uno", "Bruno", "23456789012", day(10), 200),
		closed("r3", "AAA-1A11", "Gol", "Ana", "12345678901", day(20), 300),
		open,
	), nil, nil, nil)

	t.Run("InclusiveBounds", func(t *testing.T) {
		rep := svc.Revenue(context.Background(), day(2), day(10))
		if rep.Count != 2 {
			t.Fatalf("Count = %d, want 2", rep.Count)
		}
		if rep.Total != 300 {
			t.Errorf("Total = %v, want 300", rep.Total)
		}
		if rep.AverageTicket != 150 {
			t.Errorf("AverageTicket = %v, want 150", rep.AverageTicket)
		}
		if len(rep.Lines) != 2 {
			t.Errorf("Lines = %d, want 2", len(rep.Lines))
		}
	})

	t.Run("OpenRentalsExcluded", func(t *testing.T) {
		rep := svc.Revenue(context.Background(), day(1), day(28))
		if rep.Count != 3 {
			t.Errorf("Count = %d, want 3 (open rental must not bill)", rep.Count)
		}
	})

	t.Run("EmptyPeriod", func(t *testing.T) {
		rep := svc.Revenue(context.Background(), day(25), day(28))
		if rep.Count != 0 || rep.Total != 0 || rep.AverageTicket != 0 {
			t.Errorf("empty period should be all zeros, got %+v", rep)
		}
	})
}

func TestTopVehicles(t *testing.T) {
	svc := NewService(ledger(t,
		closed("r1", "AAA-1A11", "Gol", "Ana", "12345678901", day(1), 100),
		closed("r2", "BBB-2B22", "Uno", "Bruno", "23456789012", day(2), 100),
		closed("r3", "AAA-1A11", "Gol", "Ana", "12345678901", day(3), 100),
		closed("r4", "CCC-3C33", "Onix", "Cora", "34567890123", day(4), 100),
	), nil, nil, nil)

	entries := svc.TopVehicles(context.Background())
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Key != "AAA-1A11 - Gol" || entries[0].Count != 2 {
		t.Errorf("first = %+v, want AAA-1A11 - Gol with 2", entries[0])
	}
	// Uno and Onix tie at one rental each; first into the ledger ranks first.
	if entries[1].Key != "BBB-2B22 - Uno" {
		t.Errorf("second = %+v, want BBB-2B22 - Uno", entries[1])
	}
	if entries[2].Key != "CCC-3C33 - Onix" {
		t.Errorf("third = %+v, want CCC-3C33 - Onix", entries[2])
	}
}

func TestTopCustomers(t *testing.T) {
	svc := NewService(ledger(t,
		closed("r1", "AAA-1A11", "Gol", "Ana", "12345678901", day(1), 100),
		closed("r2", "BBB-2B22", "Uno", "Ana", "12345678901", day(2), 100),
		closed("r3", "CCC-3C33", "Onix", "Bruno", "23456789012", day(3), 100),
	), nil, nil, nil)

	entries := svc.TopCustomers(context.Background())
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != "Ana (12345678901)" || entries[0].Count != 2 {
		t.Errorf("first = %+v, want Ana (12345678901) with 2", entries[0])
	}
}

func TestTopLimit(t *testing.T) {
	var rentals []domain.Rental
	for i := 0; i < 15; i++ {
		plate := string(rune('A'+i)) + "AA-1A11"
		rentals = append(rentals, closed("r", plate, "Gol", "Ana", "12345678901", day(1+i%27), 100))
	}
	svc := NewService(ledger(t, rentals...), nil, nil, nil)

	if entries := svc.TopVehicles(context.Background()); len(entries) != topLimit {
		t.Errorf("expected ranking capped at %d, got %d", topLimit, len(entries))
	}
}

func TestRankingCache(t *testing.T) {
	cache := newMemCache()
	coll := ledger(t,
		closed("r1", "AAA-1A11", "Gol", "Ana", "12345678901", day(1), 100),
	)
	svc := NewService(coll, cache, nil, nil)
	ctx := context.Background()

	first := svc.TopVehicles(ctx)
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	// A new rental lands between the two calls. The second call must serve
	// the cached ranking anyway.
	if err := coll.Register(ctx, closed("r2", "BBB-2B22", "Uno", "Bruno", "23456789012", day(2), 100)); err != nil {
		t.Fatalf("register: %v", err)
	}
	second := svc.TopVehicles(ctx)
	if len(second) != len(first) {
		t.Errorf("expected cached result of %d entries, got %d", len(first), len(second))
	}
	if cache.sets != 1 {
		t.Errorf("expected no second cache write, got %d", cache.sets)
	}
}

func TestReportArtifactsEmitted(t *testing.T) {
	sink := &recordSink{}
	svc := NewService(ledger(t,
		closed("r1", "AAA-1A11", "Gol", "Ana", "12345678901", day(1), 100),
	), nil, sink, nil)

	svc.Revenue(context.Background(), day(1), day(28))
	svc.TopVehicles(context.Background())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.names) != 2 {
		t.Fatalf("expected 2 artifacts, got %v", sink.names)
	}
	if sink.names[0] != "revenue" || sink.names[1] != "top_vehicles" {
		t.Errorf("artifact names = %v", sink.names)
	}
}

type recordSink struct {
	mu    sync.Mutex
	names []string
}

func (r *recordSink) Emit(name, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}
