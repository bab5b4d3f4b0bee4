package domain

import "time"

// DiscountRuleConfig is an operator-defined discount rule. The expression is
// CEL over the variables `kind` (customer kind as a string) and `billed_days`
// (int); it must evaluate to the discount fraction, which the engine clamps
// to [0, 0.20].
//
// These rules extend the built-in tiered discounts; the built-ins themselves
// are code, not configuration.
type DiscountRuleConfig struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Expression  string    `json:"expression"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
