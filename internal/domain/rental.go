package domain

import "time"

// Rental records one checkout-to-return cycle. Vehicle and Customer are
// snapshots taken at checkout; referential integrity against the live
// collections is enforced by the rental service at checkout time, not
// continuously.
//
// ReturnedAt is nil while the rental is open. BilledDays, BaseAmount,
// Discount and FinalAmount stay zero until the return is processed.
type Rental struct {
	ID          string     `json:"id"`
	Vehicle     Vehicle    `json:"vehicle"`
	Customer    Customer   `json:"customer"`
	Location    string     `json:"location"`
	PickedUpAt  time.Time  `json:"pickedUpAt"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty"`
	BilledDays  int64      `json:"billedDays,omitempty"`
	BaseAmount  float64    `json:"baseAmount,omitempty"`
	Discount    float64    `json:"discount,omitempty"`
	FinalAmount float64    `json:"finalAmount,omitempty"`
}

// Open reports whether the vehicle has not been returned yet. For a given
// vehicle at most one open rental exists at any time.
func (r *Rental) Open() bool {
	return r.ReturnedAt == nil
}
