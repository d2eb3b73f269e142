// Package units converts glucose values between the two unit systems
// Nightscout and Tidepool use: mg/dL and mmol/L.
package units

import (
	"fmt"
	"strings"
)

// MgdlPerMmoll is the molar mass conversion factor for glucose.
const MgdlPerMmoll = 18.01559

// Canonical unit labels as Nightscout spells them.
const (
	Mgdl  = "mg/dl"
	Mmoll = "mmol/l"
)

// UnsupportedConversionError is returned when either unit string is not a
// recognized glucose unit.
type UnsupportedConversionError struct {
	From string
	To   string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("unsupported glucose unit conversion from %q to %q", e.From, e.To)
}

// family normalizes a unit label to its unit family. "mmol" and "mmol/l"
// are synonyms; matching is case-insensitive.
func family(unit string) (string, bool) {
	switch strings.ToLower(unit) {
	case "mg/dl":
		return Mgdl, true
	case "mmol/l", "mmol":
		return Mmoll, true
	}
	return "", false
}

// Convert converts value from one glucose unit to another. Converting within
// the same unit family (including mmol ↔ mmol/l) is the identity.
func Convert(from, to string, value float64) (float64, error) {
	src, ok := family(from)
	if !ok {
		return 0, &UnsupportedConversionError{From: from, To: to}
	}
	dst, ok := family(to)
	if !ok {
		return 0, &UnsupportedConversionError{From: from, To: to}
	}

	switch {
	case src == dst:
		return value, nil
	case src == Mgdl:
		return value / MgdlPerMmoll, nil
	default:
		return value * MgdlPerMmoll, nil
	}
}
