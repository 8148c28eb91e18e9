package codec_test

import (
	"testing"
	"time"

	"github.com/reoring/restdoc/codec"
)

func TestRFC3339_Roundtrip(t *testing.T) {
	in := "2025-01-01T00:00:00Z"
	got, err := codec.ParseRFC3339(in)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}
	if out := codec.FormatRFC3339(got); out != in {
		t.Fatalf("roundtrip mismatch: %s != %s", out, in)
	}
}

func TestRFC3339_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("X", 9*3600)
	ts := time.Date(2025, 1, 1, 9, 0, 0, 500_000_000, loc)
	if got := codec.FormatRFC3339(ts); got != "2025-01-01T00:00:00.5Z" {
		t.Fatalf("want UTC with trimmed fraction, got %s", got)
	}
}

func TestRFC3339_Invalid(t *testing.T) {
	if _, err := codec.ParseRFC3339("2025-13-01"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDate_ParseAndString(t *testing.T) {
	d, err := codec.ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if d.Year != 2024 || d.Month != time.February || d.Day != 29 {
		t.Fatalf("unexpected date: %+v", d)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("unexpected string: %s", d)
	}
	if _, err := codec.ParseDate("2023-02-29"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
	if !(codec.Date{}).IsZero() {
		t.Fatalf("zero date should report IsZero")
	}
	if got := codec.DateOf(time.Date(2020, 5, 6, 23, 0, 0, 0, time.UTC)); got != (codec.Date{Year: 2020, Month: 5, Day: 6}) {
		t.Fatalf("DateOf mismatch: %+v", got)
	}
}
