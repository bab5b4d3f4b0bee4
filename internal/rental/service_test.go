package rental

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openfleet/harrier/internal/domain"
)

type memStore[T any] struct {
	mu    sync.Mutex
	items []T
}

func (m *memStore[T]) Load(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.items...), nil
}

func (m *memStore[T]) Save(ctx context.Context, items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]T(nil), items...)
	return nil
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

func newTestService(t *testing.T) (*Service, *recordSink) {
	t.Helper()
	ctx := context.Background()
	sink := &recordSink{}
	svc := NewService(
		NewVehicleCollection(ctx, &memStore[domain.Vehicle]{}),
		NewCustomerCollection(ctx, &memStore[domain.Customer]{}),
		NewRentalCollection(ctx, &memStore[domain.Rental]{}),
		nil,
		nil,
		sink,
	)

	if err := svc.RegisterVehicle(ctx, domain.Vehicle{
		Plate:        "ABC-1D23",
		Model:        "Compass",
		Manufacturer: "Jeep",
		Category:     domain.CategoryMedium,
	}); err != nil {
		t.Fatalf("register vehicle: %v", err)
	}
	if err := svc.RegisterCustomer(ctx, domain.Customer{
		Kind:     domain.KindOrganization,
		Document: "12.345.678/0001-90",
		Name:     "Acme Logistics",
		Email:    "fleet@acme.example",
		Phone:    "+55 11 98765-4321",
	}); err != nil {
		t.Fatalf("register customer: %v", err)
	}
	return svc, sink
}

func TestCheckout(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()

	r, err := svc.Checkout(ctx, "abc-1d23", "12345678000190", "Airport")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if r.ID == "" {
		t.Error("expected a rental ID")
	}
	if !r.Open() {
		t.Error("fresh rental should be open")
	}
	if r.Customer.Name != "Acme Logistics" {
		t.Errorf("customer snapshot = %q", r.Customer.Name)
	}

	vehicle, ok := svc.Vehicles().Find("ABC-1D23")
	if !ok {
		t.Fatal("vehicle disappeared")
	}
	if vehicle.Available {
		t.Error("vehicle should be unavailable after checkout")
	}

	if active := svc.Active(1, 10); len(active) != 1 {
		t.Errorf("expected 1 active rental, got %d", len(active))
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.names) == 0 || !strings.HasPrefix(sink.names[len(sink.names)-1], "checkout_") {
		t.Errorf("expected a checkout receipt, got %v", sink.names)
	}
}

func TestCheckoutErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("UnknownVehicle", func(t *testing.T) {
		_, err := svc.Checkout(ctx, "XYZ-9X99", "12345678000190", "Downtown")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("UnknownCustomer", func(t *testing.T) {
		_, err := svc.Checkout(ctx, "ABC-1D23", "99999999999", "Downtown")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("AlreadyRented", func(t *testing.T) {
		if _, err := svc.Checkout(ctx, "ABC-1D23", "12345678000190", "Downtown"); err != nil {
			t.Fatalf("first checkout: %v", err)
		}
		_, err := svc.Checkout(ctx, "ABC-1D23", "12345678000190", "Downtown")
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})
}

func TestReturn(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()

	pickedUp := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return pickedUp }
	if _, err := svc.Checkout(ctx, "ABC-1D23", "12345678000190", "Airport"); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// 3 days and 2 hours on the road bills as 4 days. Four days for an
	// organization earns the 10% discount on the 150/day medium rate.
	svc.now = func() time.Time { return pickedUp.Add(74 * time.Hour) }
	r, err := svc.Return(ctx, "ABC-1D23")
	if err != nil {
		t.Fatalf("return: %v", err)
	}

	if r.Open() {
		t.Error("returned rental should be closed")
	}
	if r.BilledDays != 4 {
		t.Errorf("BilledDays = %d, want 4", r.BilledDays)
	}
	if r.BaseAmount != 600 {
		t.Errorf("BaseAmount = %v, want 600", r.BaseAmount)
	}
	if r.Discount != 60 {
		t.Errorf("Discount = %v, want 60", r.Discount)
	}
	if r.FinalAmount != 540 {
		t.Errorf("FinalAmount = %v, want 540", r.FinalAmount)
	}

	vehicle, _ := svc.Vehicles().Find("ABC-1D23")
	if !vehicle.Available {
		t.Error("vehicle should be available again after return")
	}
	if active := svc.Active(1, 10); len(active) != 0 {
		t.Errorf("expected no active rentals, got %d", len(active))
	}
	if history := svc.History(1, 10); len(history) != 1 {
		t.Errorf("expected 1 rental in history, got %d", len(history))
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.names) == 0 || !strings.HasPrefix(sink.names[len(sink.names)-1], "return_") {
		t.Errorf("expected a return receipt, got %v", sink.names)
	}
}

func TestReturnWithoutOpenRental(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Return(context.Background(), "ABC-1D23")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVehicleRentableAgainAfterReturn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.Checkout(ctx, "ABC-1D23", "12345678000190", "Airport"); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	svc.now = func() time.Time { return base.Add(24 * time.Hour) }
	if _, err := svc.Return(ctx, "ABC-1D23"); err != nil {
		t.Fatalf("return: %v", err)
	}
	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	if _, err := svc.Checkout(ctx, "ABC-1D23", "12345678000190", "Downtown"); err != nil {
		t.Fatalf("second checkout: %v", err)
	}

	if got := svc.Rentals().Count(); got != 2 {
		t.Errorf("ledger count = %d, want 2", got)
	}
	if active := svc.Active(1, 10); len(active) != 1 {
		t.Errorf("expected 1 active rental, got %d", len(active))
	}
}

func TestHistoryOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i*48) * time.Hour) }
		if _, err := svc.Checkout(ctx, "ABC-1D23", "12345678000190", "Airport"); err != nil {
			t.Fatalf("checkout %d: %v", i, err)
		}
		svc.now = func() time.Time { return base.Add(time.Duration(i*48+24) * time.Hour) }
		if _, err := svc.Return(ctx, "ABC-1D23"); err != nil {
			t.Fatalf("return %d: %v", i, err)
		}
	}

	history := svc.History(1, 10)
	if len(history) != 3 {
		t.Fatalf("expected 3 rentals, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].PickedUpAt.After(history[i-1].PickedUpAt) {
			t.Error("history should be ordered most recent pickup first")
		}
	}
}

func TestRegisterDuplicateVehicle(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.RegisterVehicle(context.Background(), domain.Vehicle{
		Plate:        "abc-1d23",
		Model:        "Compass",
		Manufacturer: "Jeep",
		Category:     domain.CategoryMedium,
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestRegisterInvalidCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.RegisterCustomer(context.Background(), domain.Customer{
		Kind:     domain.KindIndividual,
		Document: "11111111111",
		Name:     "Nobody",
		Email:    "nobody@example.com",
		Phone:    "11987654321",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
