package entity

import "strings"

// PostalAddress is an address resolved from a postal code (CEP).
type PostalAddress struct {
	PostalCode   string `json:"postalCode"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Format renders the single-line form stored on users and vendors.
func (a PostalAddress) Format(number string) string {
	street := a.Street
	if n := strings.TrimSpace(number); n != "" && street != "" {
		street += ", " + n
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{street, a.Neighborhood} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	city := a.City
	if a.State != "" {
		city += " - " + a.State
	}
	parts = append(parts, city)
	return strings.Join(parts, ", ")
}
