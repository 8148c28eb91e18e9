package codec

import "time"

// FormatRFC3339 renders t in UTC using RFC3339Nano; Go trims trailing zeros
// of the fractional second.
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseRFC3339 accepts RFC3339Nano (trailing zeros optional) and plain
// RFC3339 strings.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
