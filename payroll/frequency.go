package payroll

import (
	"fmt"
	"strings"
)

// =============================================================================
// FREQUENCY - Closed set of recurrence rules
// =============================================================================

// Frequency is the recurrence rule of a payment type. The zero value is
// FrequencyNone: the payment occurs once, on its date.
type Frequency uint8

const (
	FrequencyNone Frequency = iota
	FrequencyMonthly
	FrequencyYearly
)

// Frequencies lists every recurring rule, in display order.
var Frequencies = []Frequency{FrequencyMonthly, FrequencyYearly}

// ParseFrequency reads the stored rule text. The empty string is
// FrequencyNone; matching is case-insensitive.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return FrequencyNone, nil
	case "MONTHLY":
		return FrequencyMonthly, nil
	case "YEARLY":
		return FrequencyYearly, nil
	default:
		return FrequencyNone, &FrequencyError{Rule: s}
	}
}

// String returns the stored form: "", "MONTHLY" or "YEARLY".
func (f Frequency) String() string {
	switch f {
	case FrequencyNone:
		return ""
	case FrequencyMonthly:
		return "MONTHLY"
	case FrequencyYearly:
		return "YEARLY"
	default:
		return fmt.Sprintf("Frequency(%d)", uint8(f))
	}
}

// Label is the human readable name used in payment type display names.
func (f Frequency) Label() string {
	switch f {
	case FrequencyMonthly:
		return "Monthly"
	case FrequencyYearly:
		return "Yearly"
	default:
		return ""
	}
}

// months is the step between two occurrences.
func (f Frequency) months() (int, error) {
	switch f {
	case FrequencyMonthly:
		return 1, nil
	case FrequencyYearly:
		return 12, nil
	default:
		return 0, &FrequencyError{Rule: f.String()}
	}
}

func (f Frequency) MarshalText() ([]byte, error) {
	if f > FrequencyYearly {
		return nil, &FrequencyError{Rule: f.String()}
	}
	return []byte(f.String()), nil
}

func (f *Frequency) UnmarshalText(b []byte) error {
	parsed, err := ParseFrequency(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
