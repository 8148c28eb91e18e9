package codec

import (
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v2"
)

// DecimalToFloat converts an arbitrary-precision decimal to the nearest
// float64. Values outside the float64 range fail with ErrEncodingUnsupported.
func DecimalToFloat(d *apd.Decimal) (float64, error) {
	if d == nil {
		return 0, fmt.Errorf("%w: nil decimal", ErrEncodingUnsupported)
	}
	f, err := d.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: decimal %s: %v", ErrEncodingUnsupported, d.String(), err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: decimal %s is not a finite float", ErrEncodingUnsupported, d.String())
	}
	return f, nil
}

// ParseDecimal parses a JSON number literal into a decimal without rounding.
func ParseDecimal(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}
