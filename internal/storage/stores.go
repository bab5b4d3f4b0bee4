package storage

import (
	"database/sql"
	"fmt"

	"github.com/openfleet/harrier/internal/domain"
)

// Stores bundles one snapshot store per collection, all backed by the same
// configured driver.
type Stores struct {
	Vehicles      domain.Store[domain.Vehicle]
	Customers     domain.Store[domain.Customer]
	Rentals       domain.Store[domain.Rental]
	DiscountRules domain.Store[domain.DiscountRuleConfig]

	db *sql.DB
}

// Open creates the per-collection stores based on configuration.
func Open(cfg domain.StorageConfig) (*Stores, error) {
	switch cfg.Driver {
	case "json", "":
		return openJSONStores(cfg)
	case "sqlite", "postgres":
		return openSQLStores(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func openJSONStores(cfg domain.StorageConfig) (*Stores, error) {
	vehicles, err := NewJSONStore[domain.Vehicle](cfg.DataDir, "vehicles")
	if err != nil {
		return nil, err
	}
	customers, err := NewJSONStore[domain.Customer](cfg.DataDir, "customers")
	if err != nil {
		return nil, err
	}
	rentals, err := NewJSONStore[domain.Rental](cfg.DataDir, "rentals")
	if err != nil {
		return nil, err
	}
	rules, err := NewJSONStore[domain.DiscountRuleConfig](cfg.DataDir, "discount_rules")
	if err != nil {
		return nil, err
	}
	return &Stores{
		Vehicles:      vehicles,
		Customers:     customers,
		Rentals:       rentals,
		DiscountRules: rules,
	}, nil
}

func openSQLStores(cfg domain.StorageConfig) (*Stores, error) {
	var db *sql.DB
	var err error
	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	vehicles, err := NewSQLStore[domain.Vehicle](db, cfg.Driver, "vehicles")
	if err != nil {
		db.Close()
		return nil, err
	}
	customers, err := NewSQLStore[domain.Customer](db, cfg.Driver, "customers")
	if err != nil {
		db.Close()
		return nil, err
	}
	rentals, err := NewSQLStore[domain.Rental](db, cfg.Driver, "rentals")
	if err != nil {
		db.Close()
		return nil, err
	}
	rules, err := NewSQLStore[domain.DiscountRuleConfig](db, cfg.Driver, "discount_rules")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Stores{
		Vehicles:      vehicles,
		Customers:     customers,
		Rentals:       rentals,
		DiscountRules: rules,
		db:            db,
	}, nil
}

// Close releases the shared database handle, if any.
func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
