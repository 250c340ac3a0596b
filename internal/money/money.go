// Package money converts between major currency units (dollars) and the
// minor integer units (cents) that every price is stored in.
package money

import (
	"fmt"
	"math"
)

// minorPerMajor is the number of minor units in one major unit.
const minorPerMajor = 100

// ToMinorUnits converts a major-unit amount to minor units, rounding half away
// from zero. 9.99 becomes 999 and 0.125 becomes 13.
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * minorPerMajor))
}

// ToMajorUnits converts minor units back to a major-unit amount.
func ToMajorUnits(minor int64) float64 {
	return float64(minor) / minorPerMajor
}

// Format renders minor units as a dollar string, e.g. 999 -> "$9.99".
func Format(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s$%d.%02d", sign, minor/minorPerMajor, minor%minorPerMajor)
}
