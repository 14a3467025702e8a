package valueobject

import (
	"encoding/json"
	"errors"
	"strings"
)

// Address is a value object for delivery and farm locations.
// Country codes are ISO 3166-1 alpha-2 (e.g. "GH", "NG", "KE").
type Address struct {
	country string
	region  string
	city    string
	street  string
}

// NewAddress creates a new Address. Country and city are required.
func NewAddress(country, region, city, street string) (Address, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	region = strings.TrimSpace(region)
	city = strings.TrimSpace(city)
	street = strings.TrimSpace(street)

	if len(country) != 2 {
		return Address{}, errors.New("country must be a two-letter ISO code")
	}
	if city == "" {
		return Address{}, errors.New("city cannot be empty")
	}
	return Address{
		country: country,
		region:  region,
		city:    city,
		street:  street,
	}, nil
}

// Country returns the ISO country code
func (a Address) Country() string { return a.country }

// Region returns the region or state
func (a Address) Region() string { return a.region }

// City returns the city or town
func (a Address) City() string { return a.city }

// Street returns the street line
func (a Address) Street() string { return a.street }

// IsZero reports whether the address is unset
func (a Address) IsZero() bool {
	return a.country == "" && a.city == ""
}

// String returns a single-line representation
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.street, a.city, a.region, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type addressJSON struct {
	Country string `json:"country"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city"`
	Street  string `json:"street,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Country: a.country,
		Region:  a.region,
		City:    a.city,
		Street:  a.street,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var raw addressJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	addr, err := NewAddress(raw.Country, raw.Region, raw.City, raw.Street)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
