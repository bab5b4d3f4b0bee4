package rental

import (
	"context"
	"fmt"
	"strings"

	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/repo"
	"github.com/openfleet/harrier/internal/validate"
)

// NewVehicleCollection builds the fleet collection: vehicles are keyed by
// uppercased plate and validated on registration.
func NewVehicleCollection(ctx context.Context, store domain.Store[domain.Vehicle]) *repo.Collection[domain.Vehicle] {
	return repo.New(ctx, "vehicles", store, vehicleKey, repo.Options[domain.Vehicle]{
		Validate: func(v domain.Vehicle) error {
			if !validate.Plate(v.Plate) {
				return fmt.Errorf("%w: malformed plate %q", domain.ErrValidation, v.Plate)
			}
			if strings.TrimSpace(v.Model) == "" {
				return fmt.Errorf("%w: model is required", domain.ErrValidation)
			}
			if !v.Category.Valid() {
				return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, v.Category)
			}
			return nil
		},
	})
}

// NewCustomerCollection builds the customer collection, keyed by the
// digit-normalized document.
func NewCustomerCollection(ctx context.Context, store domain.Store[domain.Customer]) *repo.Collection[domain.Customer] {
	return repo.New(ctx, "customers", store, customerKey, repo.Options[domain.Customer]{
		Validate: func(c domain.Customer) error {
			if !c.Kind.Valid() {
				return fmt.Errorf("%w: unknown customer kind %q", domain.ErrValidation, c.Kind)
			}
			switch c.Kind {
			case domain.KindIndividual:
				if !validate.IndividualDocument(c.Document) {
					return fmt.Errorf("%w: malformed individual document", domain.ErrValidation)
				}
			case domain.KindOrganization:
				if !validate.OrganizationDocument(c.Document) {
					return fmt.Errorf("%w: malformed organization document", domain.ErrValidation)
				}
			}
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("%w: name is required", domain.ErrValidation)
			}
			if !validate.Email(c.Email) {
				return fmt.Errorf("%w: malformed email %q", domain.ErrValidation, c.Email)
			}
			if !validate.Phone(c.Phone) {
				return fmt.Errorf("%w: malformed phone %q", domain.ErrValidation, c.Phone)
			}
			return nil
		},
	})
}

// NewRentalCollection builds the rental ledger. Rentals are keyed by the
// rented vehicle's plate and only open rentals are addressable, so the key
// space holds at most one live entry per vehicle while closed rentals
// accumulate as history.
func NewRentalCollection(ctx context.Context, store domain.Store[domain.Rental]) *repo.Collection[domain.Rental] {
	return repo.New(ctx, "rentals", store, rentalKey, repo.Options[domain.Rental]{
		AllowDuplicateKeys: true,
		Active: func(r domain.Rental) bool {
			return r.Open()
		},
	})
}

func vehicleKey(v domain.Vehicle) string {
	return strings.ToUpper(v.Plate)
}

func customerKey(c domain.Customer) string {
	return validate.Digits(c.Document)
}

func rentalKey(r domain.Rental) string {
	return strings.ToUpper(r.Vehicle.Plate)
}
