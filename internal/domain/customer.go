package domain

// CustomerKind distinguishes the two customer variants. The variant decides
// which document format identifies the customer and which discount tier
// applies at return time.
type CustomerKind string

const (
	// KindIndividual carries an 11-digit identifying document.
	KindIndividual CustomerKind = "individual"

	// KindOrganization carries a 14-digit identifying document.
	KindOrganization CustomerKind = "organization"
)

// Valid reports whether k is a known customer kind.
func (k CustomerKind) Valid() bool {
	return k == KindIndividual || k == KindOrganization
}

// Label returns the display name for the kind.
func (k CustomerKind) Label() string {
	switch k {
	case KindIndividual:
		return "Individual"
	case KindOrganization:
		return "Organization"
	}
	return string(k)
}

// Customer is a rental customer. The document is the unique identifier
// across both kinds; name, email and phone are mutable after registration.
type Customer struct {
	Kind     CustomerKind `json:"kind"`
	Document string       `json:"document"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
}
