// Package rental implements the checkout and return lifecycle that ties
// vehicles, customers and billing together.
package rental

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/openfleet/harrier/internal/billing"
	"github.com/openfleet/harrier/internal/discount"
	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/repo"
	"github.com/openfleet/harrier/internal/validate"
)

var tracer = otel.Tracer("harrier-rental")

const receiptTimeLayout = "02/01/2006 15:04"

// Service coordinates the rental lifecycle. A single mutex serializes
// checkout and return so the availability flag and the open-rental ledger
// can never disagree; the collections keep their own finer-grained locks
// for reads.
type Service struct {
	mu        sync.Mutex
	vehicles  *repo.Collection[domain.Vehicle]
	customers *repo.Collection[domain.Customer]
	rentals   *repo.Collection[domain.Rental]
	discount  discount.Rule
	bus       domain.EventBus
	sink      domain.Sink
	now       func() time.Time
}

// NewService wires the rental service. The discount rule decides the
// fraction applied at return time; bus and sink may be nil when events or
// receipts are not wanted.
func NewService(
	vehicles *repo.Collection[domain.Vehicle],
	customers *repo.Collection[domain.Customer],
	rentals *repo.Collection[domain.Rental],
	rule discount.Rule,
	bus domain.EventBus,
	sink domain.Sink,
) *Service {
	if rule == nil {
		rule = discount.Standard
	}
	return &Service{
		vehicles:  vehicles,
		customers: customers,
		rentals:   rentals,
		discount:  rule,
		bus:       bus,
		sink:      sink,
		now:       time.Now,
	}
}

// Vehicles returns the fleet collection.
func (s *Service) Vehicles() *repo.Collection[domain.Vehicle] { return s.vehicles }

// Customers returns the customer collection.
func (s *Service) Customers() *repo.Collection[domain.Customer] { return s.customers }

// Rentals returns the rental ledger.
func (s *Service) Rentals() *repo.Collection[domain.Rental] { return s.rentals }

// RegisterVehicle adds a vehicle to the fleet and announces it.
func (s *Service) RegisterVehicle(ctx context.Context, v domain.Vehicle) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	v.Available = true
	if err := s.vehicles.Register(ctx, v); err != nil {
		return err
	}
	s.publish(ctx, domain.TopicVehicleRegistered, v)
	return nil
}

// RegisterCustomer adds a customer and announces it.
func (s *Service) RegisterCustomer(ctx context.Context, c domain.Customer) error {
	c.Document = strings.TrimSpace(c.Document)
	if err := s.customers.Register(ctx, c); err != nil {
		return err
	}
	s.publish(ctx, domain.TopicCustomerRegistered, c)
	return nil
}

// Checkout opens a rental: it finds the vehicle and customer, verifies the
// vehicle is free, marks it unavailable and records the pickup. The rental
// snapshot embeds the vehicle and customer as they were at checkout.
func (s *Service) Checkout(ctx context.Context, plate, document, location string) (domain.Rental, error) {
	ctx, span := tracer.Start(ctx, "rental.Checkout",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(strings.TrimSpace(plate))
	vehicle, ok := s.vehicles.Find(key)
	if !ok {
		return domain.Rental{}, fmt.Errorf("%w: vehicle %s", domain.ErrNotFound, key)
	}

	customer, ok := s.customers.Find(validate.Digits(document))
	if !ok {
		return domain.Rental{}, fmt.Errorf("%w: customer %s", domain.ErrNotFound, document)
	}

	if _, open := s.rentals.Find(key); open || !vehicle.Available {
		return domain.Rental{}, fmt.Errorf("%w: vehicle %s is already rented", domain.ErrConflict, key)
	}

	r := domain.Rental{
		ID:         uuid.New().String(),
		Vehicle:    vehicle,
		Customer:   customer,
		Location:   strings.TrimSpace(location),
		PickedUpAt: s.now(),
	}
	if err := s.rentals.Register(ctx, r); err != nil {
		return domain.Rental{}, err
	}

	vehicle.Available = false
	s.vehicles.Update(ctx, vehicle)

	slog.Info("rental checkout",
		"rental_id", r.ID,
		"plate", vehicle.Plate,
		"customer", customer.Name,
		"location", r.Location)

	s.emit("checkout_"+vehicle.Plate, checkoutReceipt(r))
	s.publish(ctx, domain.TopicRentalCheckout, r)

	return r, nil
}

// Return closes the open rental for the given plate, computes the charge
// and puts the vehicle back in circulation. Billing rounds any started
// hour and any started day up, so the minimum charge is one day.
func (s *Service) Return(ctx context.Context, plate string) (domain.Rental, error) {
	ctx, span := tracer.Start(ctx, "rental.Return",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(strings.TrimSpace(plate))
	r, ok := s.rentals.Find(key)
	if !ok {
		return domain.Rental{}, fmt.Errorf("%w: no open rental for vehicle %s", domain.ErrNotFound, key)
	}

	returnedAt := s.now()
	hours := billing.Hours(r.PickedUpAt, returnedAt)
	days := billing.Days(hours)
	base := billing.Base(days, r.Vehicle.Category.DailyRate())
	fraction := s.discount(r.Customer.Kind, days)

	r.ReturnedAt = &returnedAt
	r.BilledDays = days
	r.BaseAmount = base
	r.Discount = base * fraction
	r.FinalAmount = billing.Final(base, fraction)
	s.rentals.Update(ctx, r)

	if vehicle, ok := s.vehicles.Find(key); ok {
		vehicle.Available = true
		s.vehicles.Update(ctx, vehicle)
	}

	slog.Info("rental return",
		"rental_id", r.ID,
		"plate", r.Vehicle.Plate,
		"billed_days", days,
		"final_amount", r.FinalAmount)

	s.emit("return_"+r.Vehicle.Plate, returnReceipt(r))
	s.publish(ctx, domain.TopicRentalReturned, r)

	return r, nil
}

// Active returns the requested page of open rentals, most recent pickup
// first.
func (s *Service) Active(page, size int) []domain.Rental {
	open := s.rentals.Filter(func(r domain.Rental) bool { return r.Open() })
	return paginate(open, page, size)
}

// History returns the requested page of all rentals ever recorded, open
// and closed, most recent pickup first.
func (s *Service) History(page, size int) []domain.Rental {
	var all []domain.Rental
	for r := range s.rentals.All() {
		all = append(all, r)
	}
	return paginate(all, page, size)
}

func paginate(rentals []domain.Rental, page, size int) []domain.Rental {
	sort.SliceStable(rentals, func(i, j int) bool {
		return rentals[i].PickedUpAt.After(rentals[j].PickedUpAt)
	})
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	start := (page - 1) * size
	if start >= len(rentals) {
		return nil
	}
	end := min(start+size, len(rentals))
	return rentals[start:end]
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.bus == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, topic, body); err != nil {
		slog.Warn("event publish failed", "topic", topic, "error", err)
	}
}

func (s *Service) emit(name, body string) {
	if s.sink != nil {
		s.sink.Emit(name, body)
	}
}

func checkoutReceipt(r domain.Rental) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RENTAL RECEIPT\n")
	fmt.Fprintf(&b, "Rental:    %s\n", r.ID)
	fmt.Fprintf(&b, "Vehicle:   %s - %s %s\n", r.Vehicle.Plate, r.Vehicle.Manufacturer, r.Vehicle.Model)
	fmt.Fprintf(&b, "Customer:  %s (%s)\n", r.Customer.Name, r.Customer.Kind.Label())
	fmt.Fprintf(&b, "Location:  %s\n", r.Location)
	fmt.Fprintf(&b, "Picked up: %s\n", r.PickedUpAt.Format(receiptTimeLayout))
	return b.String()
}

func returnReceipt(r domain.Rental) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RETURN RECEIPT\n")
	fmt.Fprintf(&b, "Rental:      %s\n", r.ID)
	fmt.Fprintf(&b, "Vehicle:     %s - %s %s\n", r.Vehicle.Plate, r.Vehicle.Manufacturer, r.Vehicle.Model)
	fmt.Fprintf(&b, "Customer:    %s (%s)\n", r.Customer.Name, r.Customer.Kind.Label())
	fmt.Fprintf(&b, "Picked up:   %s\n", r.PickedUpAt.Format(receiptTimeLayout))
	fmt.Fprintf(&b, "Returned:    %s\n", r.ReturnedAt.Format(receiptTimeLayout))
	fmt.Fprintf(&b, "Billed days: %d\n", r.BilledDays)
	fmt.Fprintf(&b, "Base:        %.2f\n", r.BaseAmount)
	fmt.Fprintf(&b, "Discount:    %.2f\n", r.Discount)
	fmt.Fprintf(&b, "Total:       %.2f\n", r.FinalAmount)
	return b.String()
}
