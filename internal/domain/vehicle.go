package domain

// Category classifies a vehicle and fixes its daily rental rate.
type Category string

const (
	CategorySmall  Category = "small"
	CategoryMedium Category = "medium"
	CategorySUV    Category = "suv"
)

// DailyRate returns the fixed daily rate charged for the category.
func (c Category) DailyRate() float64 {
	switch c {
	case CategorySmall:
		return 100.0
	case CategoryMedium:
		return 150.0
	case CategorySUV:
		return 200.0
	}
	return 0
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySmall, CategoryMedium, CategorySUV:
		return true
	}
	return false
}

// Vehicle is a fleet vehicle. The plate is its unique identifier; model,
// manufacturer and availability are mutable after registration.
type Vehicle struct {
	Plate        string   `json:"plate"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	Category     Category `json:"category"`
	Available    bool     `json:"available"`
}
