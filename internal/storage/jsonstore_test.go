package storage

import (
	"context"
	"testing"

	"github.com/openfleet/harrier/internal/domain"
)

func TestJSONStoreRoundTrip(t *testing.T) {
	store, err := NewJSONStore[domain.Vehicle](t.TempDir(), "vehicles")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	fleet := []domain.Vehicle{
		{Plate: "AAA-1A11", Model: "Gol", Manufacturer: "Volkswagen", Category: domain.CategorySmall, Available: true},
		{Plate: "BBB-2B22", Model: "Corolla", Manufacturer: "Toyota", Category: domain.CategoryMedium},
	}
	if err := store.Save(ctx, fleet); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(loaded))
	}
	if loaded[0].Plate != "AAA-1A11" || !loaded[0].Available {
		t.Errorf("unexpected first vehicle: %+v", loaded[0])
	}
	if loaded[1].Category != domain.CategoryMedium {
		t.Errorf("unexpected second vehicle: %+v", loaded[1])
	}
}

func TestJSONStoreLoadMissingFile(t *testing.T) {
	store, err := NewJSONStore[domain.Vehicle](t.TempDir(), "vehicles")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("expected missing file to load as empty, got %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil slice, got %v", loaded)
	}
}

func TestJSONStoreOverwrite(t *testing.T) {
	store, err := NewJSONStore[domain.Customer](t.TempDir(), "customers")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, []domain.Customer{{Name: "Ana"}, {Name: "Bruno"}}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.Save(ctx, []domain.Customer{{Name: "Carla"}}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Carla" {
		t.Errorf("expected latest snapshot only, got %+v", loaded)
	}
}
