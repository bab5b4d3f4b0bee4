// Package seed populates a fictitious fleet and customer base for local
// development. Everything goes through the regular registration path, so
// seeded data obeys the same validation as API input.
package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openfleet/harrier/internal/domain"
	"github.com/openfleet/harrier/internal/rental"
)

var vehicles = []domain.Vehicle{
	{Plate: "FLT-1A01", Model: "Gol", Manufacturer: "Volkswagen", Category: domain.CategorySmall},
	{Plate: "FLT-1A02", Model: "Uno", Manufacturer: "Fiat", Category: domain.CategorySmall},
	{Plate: "FLT-1A03", Model: "Onix", Manufacturer: "Chevrolet", Category: domain.CategorySmall},
	{Plate: "FLT-1A04", Model: "Kwid", Manufacturer: "Renault", Category: domain.CategorySmall},
	{Plate: "FLT-1A05", Model: "Mobi", Manufacturer: "Fiat", Category: domain.CategorySmall},
	{Plate: "FLT-1A06", Model: "HB20", Manufacturer: "Hyundai", Category: domain.CategorySmall},
	{Plate: "FLT-1A07", Model: "Argo", Manufacturer: "Fiat", Category: domain.CategorySmall},
	{Plate: "FLT-2B01", Model: "Corolla", Manufacturer: "Toyota", Category: domain.CategoryMedium},
	{Plate: "FLT-2B02", Model: "Civic", Manufacturer: "Honda", Category: domain.CategoryMedium},
	{Plate: "FLT-2B03", Model: "Jetta", Manufacturer: "Volkswagen", Category: domain.CategoryMedium},
	{Plate: "FLT-2B04", Model: "Cruze", Manufacturer: "Chevrolet", Category: domain.CategoryMedium},
	{Plate: "FLT-2B05", Model: "Sentra", Manufacturer: "Nissan", Category: domain.CategoryMedium},
	{Plate: "FLT-2B06", Model: "Virtus", Manufacturer: "Volkswagen", Category: domain.CategoryMedium},
	{Plate: "FLT-2B07", Model: "City", Manufacturer: "Honda", Category: domain.CategoryMedium},
	{Plate: "FLT-3C01", Model: "Compass", Manufacturer: "Jeep", Category: domain.CategorySUV},
	{Plate: "FLT-3C02", Model: "Tiguan", Manufacturer: "Volkswagen", Category: domain.CategorySUV},
	{Plate: "FLT-3C03", Model: "RAV4", Manufacturer: "Toyota", Category: domain.CategorySUV},
	{Plate: "FLT-3C04", Model: "CR-V", Manufacturer: "Honda", Category: domain.CategorySUV},
	{Plate: "FLT-3C05", Model: "Tracker", Manufacturer: "Chevrolet", Category: domain.CategorySUV},
	{Plate: "FLT-3C06", Model: "Renegade", Manufacturer: "Jeep", Category: domain.CategorySUV},
}

var customers = []domain.Customer{
	{Kind: domain.KindIndividual, Document: "123.456.789-01", Name: "Ana Souza", Email: "ana.souza@example.com", Phone: "+55 11 98765-0001"},
	{Kind: domain.KindIndividual, Document: "234.567.890-12", Name: "Bruno Lima", Email: "bruno.lima@example.com", Phone: "+55 11 98765-0002"},
	{Kind: domain.KindIndividual, Document: "345.678.901-23", Name: "Carla Mendes", Email: "carla.mendes@example.com", Phone: "+55 21 98765-0003"},
	{Kind: domain.KindIndividual, Document: "456.789.012-34", Name: "Diego Rocha", Email: "diego.rocha@example.com", Phone: "+55 21 98765-0004"},
	{Kind: domain.KindIndividual, Document: "567.890.123-45", Name: "Elisa Castro", Email: "elisa.castro@example.com", Phone: "+55 31 98765-0005"},
	{Kind: domain.KindIndividual, Document: "678.901.234-56", Name: "Fabio Nunes", Email: "fabio.nunes@example.com", Phone: "+55 31 98765-0006"},
	{Kind: domain.KindIndividual, Document: "789.012.345-67", Name: "Gabriela Dias", Email: "gabriela.dias@example.com", Phone: "+55 41 98765-0007"},
	{Kind: domain.KindIndividual, Document: "890.123.456-78", Name: "Hugo Pereira", Email: "hugo.pereira@example.com", Phone: "+55 41 98765-0008"},
	{Kind: domain.KindIndividual, Document: "901.234.567-89", Name: "Iris Carvalho", Email: "iris.carvalho@example.com", Phone: "+55 51 98765-0009"},
	{Kind: domain.KindIndividual, Document: "012.345.678-90", Name: "Joao Teixeira", Email: "joao.teixeira@example.com", Phone: "+55 51 98765-0010"},
	{Kind: domain.KindOrganization, Document: "12.345.678/0001-90", Name: "Acme Logistics", Email: "fleet@acme.example.com", Phone: "+55 11 3000-0001"},
	{Kind: domain.KindOrganization, Document: "23.456.789/0001-01", Name: "Borealis Tours", Email: "ops@borealis.example.com", Phone: "+55 11 3000-0002"},
	{Kind: domain.KindOrganization, Document: "34.567.890/0001-12", Name: "Cedro Engenharia", Email: "compras@cedro.example.com", Phone: "+55 21 3000-0003"},
	{Kind: domain.KindOrganization, Document: "45.678.901/0001-23", Name: "Delta Eventos", Email: "contato@delta.example.com", Phone: "+55 21 3000-0004"},
	{Kind: domain.KindOrganization, Document: "56.789.012/0001-34", Name: "Estrela Filmes", Email: "prod@estrela.example.com", Phone: "+55 31 3000-0005"},
	{Kind: domain.KindOrganization, Document: "67.890.123/0001-45", Name: "Farol Seguros", Email: "frota@farol.example.com", Phone: "+55 31 3000-0006"},
	{Kind: domain.KindOrganization, Document: "78.901.234/0001-56", Name: "Granito Construtora", Email: "obras@granito.example.com", Phone: "+55 41 3000-0007"},
	{Kind: domain.KindOrganization, Document: "89.012.345/0001-67", Name: "Horizonte Viagens", Email: "reservas@horizonte.example.com", Phone: "+55 41 3000-0008"},
	{Kind: domain.KindOrganization, Document: "90.123.456/0001-78", Name: "Itapema Alimentos", Email: "log@itapema.example.com", Phone: "+55 51 3000-0009"},
	{Kind: domain.KindOrganization, Document: "01.234.567/0001-89", Name: "Jacaranda Moveis", Email: "entregas@jacaranda.example.com", Phone: "+55 51 3000-0010"},
}

// Run registers the seed fleet and customers. Records that already exist
// are skipped, so seeding an already-populated store is harmless.
func Run(ctx context.Context, svc *rental.Service) error {
	var seeded, skipped int
	for _, v := range vehicles {
		if err := svc.RegisterVehicle(ctx, v); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				continue
			}
			return err
		}
		seeded++
	}
	for _, c := range customers {
		if err := svc.RegisterCustomer(ctx, c); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				continue
			}
			return err
		}
		seeded++
	}

	slog.Info("seed data loaded", "seeded", seeded, "skipped", skipped)
	return nil
}
