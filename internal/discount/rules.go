// Package discount computes the discount fraction applied to a rental
// charge based on the customer kind and the number of billed days.
package discount

import "github.com/openfleet/harrier/internal/domain"

// MaxFraction caps the combined discount regardless of how many rules fire.
const MaxFraction = 0.20

// Rule computes a discount fraction in [0, MaxFraction] for a rental.
type Rule func(kind domain.CustomerKind, billedDays int64) float64

// Standard is the baseline loyalty discount. Individuals get 5% on
// rentals longer than five days, organizations 10% on rentals longer
// than three days.
func Standard(kind domain.CustomerKind, billedDays int64) float64 {
	switch kind {
	case domain.KindIndividual:
		if billedDays > 5 {
			return 0.05
		}
	case domain.KindOrganization:
		if billedDays > 3 {
			return 0.10
		}
	}
	return 0
}

// Promotional layers a long-rental promotion over Standard: rentals
// longer than ten days get at least 15%.
func Promotional(kind domain.CustomerKind, billedDays int64) float64 {
	std := Standard(kind, billedDays)
	if billedDays > 10 {
		return max(std, 0.15)
	}
	return std
}

// Combine builds a rule that applies the best of the given rules,
// clamped to MaxFraction. Negative fractions are ignored.
func Combine(rules ...Rule) Rule {
	return func(kind domain.CustomerKind, billedDays int64) float64 {
		var best float64
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if f := rule(kind, billedDays); f > best {
				best = f
			}
		}
		return min(best, MaxFraction)
	}
}
