package numerator

import (
	"testing"
	"time"
)

func TestDayPrefix(t *testing.T) {
	cfg := DefaultConfig("INV")

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "regular date",
			date: time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
			want: "INV/26/30",
		},
		{
			name: "single digit day is zero padded",
			date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			want: "INV/26/05",
		},
		{
			name: "year rollover",
			date: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "INV/27/01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.DayPrefix(tt.date); got != tt.want {
				t.Errorf("DayPrefix = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	cfg := DefaultConfig("INV")

	if got := cfg.Format("INV/26/30", 1); got != "INV/26/300001" {
		t.Errorf("Format(1) = %s", got)
	}
	if got := cfg.Format("INV/26/30", 42); got != "INV/26/300042" {
		t.Errorf("Format(42) = %s", got)
	}
	// Sequence wider than the pad grows instead of truncating.
	if got := cfg.Format("INV/26/30", 10001); got != "INV/26/3010001" {
		t.Errorf("Format(10001) = %s", got)
	}
}

func TestParseSeq(t *testing.T) {
	cfg := DefaultConfig("INV")
	prefix := "INV/26/30"

	tests := []struct {
		name   string
		number string
		want   int
		wantOK bool
	}{
		{name: "valid", number: "INV/26/300007", want: 7, wantOK: true},
		{name: "high sequence", number: "INV/26/309999", want: 9999, wantOK: true},
		{name: "suffix wider than pad", number: "INV/26/3010000", want: 10000, wantOK: true},
		{name: "non numeric suffix", number: "INV/26/3000AB", wantOK: false},
		{name: "wrong prefix", number: "EST/26/300007", wantOK: false},
		{name: "prefix only", number: "INV/26/30", wantOK: false},
		{name: "empty", number: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cfg.ParseSeq(prefix, tt.number)
			if ok != tt.wantOK {
				t.Fatalf("ParseSeq(%q) ok = %v, want %v", tt.number, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseSeq(%q) = %d, want %d", tt.number, got, tt.want)
			}
		})
	}
}

func TestNext(t *testing.T) {
	cfg := DefaultConfig("INV")
	prefix := "INV/26/30"

	tests := []struct {
		name string
		last string
		want string
	}{
		{name: "empty last starts at one", last: "", want: "INV/26/300001"},
		{name: "increments last", last: "INV/26/300001", want: "INV/26/300002"},
		{name: "unparseable last restarts at one", last: "INV/26/30-garbage", want: "INV/26/300001"},
		{name: "continues past pad width", last: "INV/26/309999", want: "INV/26/3010000"},
		{name: "keeps counting beyond five digits", last: "INV/26/3010000", want: "INV/26/3010001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Next(prefix, tt.last); got != tt.want {
				t.Errorf("Next(%q) = %s, want %s", tt.last, got, tt.want)
			}
		})
	}
}

func TestCustomPadWidth(t *testing.T) {
	cfg := Config{Prefix: "EST", PadWidth: 6}

	if got := cfg.Format("EST/26/01", 12); got != "EST/26/01000012" {
		t.Errorf("Format = %s", got)
	}
	if seq, ok := cfg.ParseSeq("EST/26/01", "EST/26/01000012"); !ok || seq != 12 {
		t.Errorf("ParseSeq = %d, %v", seq, ok)
	}
}
