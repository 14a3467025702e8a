package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit represents a unit of measurement for agricultural produce
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitTon        Unit = "tons"
	UnitPiece      Unit = "pieces"
	UnitBunch      Unit = "bunches"
	UnitBag        Unit = "bags"
	UnitLiter      Unit = "liters"
	UnitMilliliter Unit = "ml"
)

// AllUnits lists every unit produce can be listed in
var AllUnits = []Unit{
	UnitKilogram, UnitGram, UnitTon, UnitPiece,
	UnitBunch, UnitBag, UnitLiter, UnitMilliliter,
}

// ParseUnit parses a unit string, case-insensitively
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range AllUnits {
		if v == u {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown unit: %q", s)
}

// IsValid reports whether the unit is one of the supported units
func (u Unit) IsValid() bool {
	for _, v := range AllUnits {
		if v == u {
			return true
		}
	}
	return false
}

// IsMass reports whether the unit measures mass
func (u Unit) IsMass() bool {
	return u == UnitKilogram || u == UnitGram || u == UnitTon
}

// kilogramFactors converts mass units to kilograms
var kilogramFactors = map[Unit]decimal.Decimal{
	UnitKilogram: decimal.NewFromInt(1),
	UnitGram:     decimal.New(1, -3),
	UnitTon:      decimal.NewFromInt(1000),
}

// ToKilograms converts a quantity in this unit to kilograms.
// Returns an error for units that do not measure mass; shipping
// weight can only be derived from mass units.
func (u Unit) ToKilograms(quantity decimal.Decimal) (decimal.Decimal, error) {
	factor, ok := kilogramFactors[u]
	if !ok {
		return decimal.Zero, fmt.Errorf("unit %s is not a mass unit", u)
	}
	return quantity.Mul(factor), nil
}

// String returns the unit code
func (u Unit) String() string {
	return string(u)
}

// Value implements driver.Valuer
func (u Unit) Value() (driver.Value, error) {
	return string(u), nil
}

// Scan implements sql.Scanner
func (u *Unit) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*u = Unit(v)
	case []byte:
		*u = Unit(v)
	default:
		return fmt.Errorf("cannot scan %T into Unit", value)
	}
	return nil
}
