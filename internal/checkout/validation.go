package checkout

import (
	"regexp"
	"strings"

	"bakehouse/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Loose phone shape: optional leading +, then digits with spaces and
	// hyphens allowed. Digit count is checked separately.
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]*$`)
)

const minPhoneDigits = 8

// ValidateCustomerDetails checks the checkout contact form. The returned
// map is keyed by field name; an empty map means all fields passed.
func ValidateCustomerDetails(details model.CustomerDetails) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(details.Name) == "" {
		errs["name"] = "Naam is verplicht"
	}

	if !emailPattern.MatchString(details.Email) {
		errs["email"] = "Ongeldig e-mailadres"
	}

	if !phonePattern.MatchString(details.Phone) || countDigits(details.Phone) < minPhoneDigits {
		errs["phone"] = "Ongeldig telefoonnummer"
	}

	return errs
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
