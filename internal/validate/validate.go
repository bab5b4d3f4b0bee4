// Package validate provides the pure predicates used by registration.
// Predicates have no side effects; multi-field checks compose them with
// plain boolean logic.
package validate

import "regexp"

var (
	// platePattern matches the AAA-9A99 fleet plate format: three uppercase
	// letters, a dash, a digit, an alphanumeric, two digits.
	platePattern = regexp.MustCompile(`^[A-Z]{3}-[0-9][A-Z0-9][0-9]{2}$`)

	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	nonDigits = regexp.MustCompile(`[^0-9]`)
)

// Plate reports whether s is a well-formed vehicle plate. Matching is exact:
// lowercase letters or a missing dash fail.
func Plate(s string) bool {
	return platePattern.MatchString(s)
}

// Email reports whether s is a plausible email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// Phone reports whether s carries at least ten digits once punctuation is
// stripped.
func Phone(s string) bool {
	return len(Digits(s)) >= 10
}

// IndividualDocument checks the simplified 11-digit individual document
// form: punctuation is stripped, the digit count must be exactly eleven, and
// a single repeated digit is rejected. Real check-digit arithmetic is
// deliberately out of scope.
func IndividualDocument(s string) bool {
	d := Digits(s)
	return len(d) == 11 && !allSame(d)
}

// OrganizationDocument checks the simplified 14-digit organization document
// form, with the same repeated-digit exclusion as IndividualDocument.
func OrganizationDocument(s string) bool {
	d := Digits(s)
	return len(d) == 14 && !allSame(d)
}

// Document reports whether s is valid in either document form.
func Document(s string) bool {
	return IndividualDocument(s) || OrganizationDocument(s)
}

// Digits strips everything but digits from s. Collections key customers by
// this normalized form so "123.456.789-01" and "12345678901" address the
// same record.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
