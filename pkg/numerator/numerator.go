// Package numerator provides invoice auto-numbering.
//
// Numbers follow the scheme PREFIX/YY/DD#### — a fixed literal prefix, the
// 2-digit year, the 2-digit day of month, and a zero-padded sequence that
// restarts per distinct day prefix. Allocation is optimistic: the caller reads
// the latest stored number for today's prefix, computes the successor and
// relies on a unique index plus retry to resolve races.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPadWidth is the sequence width within a day prefix.
const DefaultPadWidth = 4

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "INV")
	Prefix string

	// PadWidth is the sequence number width (default 4)
	PadWidth int
}

// DefaultConfig returns the production numbering scheme.
func DefaultConfig(prefix string) Config {
	return Config{Prefix: prefix, PadWidth: DefaultPadWidth}
}

func (c Config) padWidth() int {
	if c.PadWidth <= 0 {
		return DefaultPadWidth
	}
	return c.PadWidth
}

// DayPrefix builds the per-day prefix, e.g. "INV/26/30" for 2026-08-30.
func (c Config) DayPrefix(t time.Time) string {
	return fmt.Sprintf("%s/%s/%s", c.Prefix, t.Format("06"), t.Format("02"))
}

// Format renders a full number from a day prefix and sequence value.
func (c Config) Format(dayPrefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", dayPrefix, c.padWidth(), seq)
}

// ParseSeq extracts the sequence from a number sharing dayPrefix. Returns 0
// and false when the number does not carry the prefix or the suffix is not
// numeric. Suffixes wider than the pad width parse at their full value, so a
// day that grows past the padded range keeps incrementing.
func (c Config) ParseSeq(dayPrefix, number string) (int, bool) {
	suffix, ok := strings.CutPrefix(number, dayPrefix)
	if !ok || suffix == "" {
		return 0, false
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// Next computes the successor number for a day prefix given the latest stored
// number sharing that prefix. An empty or unparseable last number starts the
// sequence at 1.
func (c Config) Next(dayPrefix, last string) string {
	seq := 1
	if last != "" {
		if n, ok := c.ParseSeq(dayPrefix, last); ok {
			seq = n + 1
		}
	}
	return c.Format(dayPrefix, seq)
}
