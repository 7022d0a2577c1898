// Package timeutil converts between stored Unix timestamps and the textual
// forms users read and type.
package timeutil

import (
	"fmt"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// Zone-less layouts accepted by ParseNewerThan, interpreted in local time.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// ISO8601 formats a Unix timestamp as RFC 3339 in the local time zone.
func ISO8601(ts int64) string {
	return time.Unix(ts, 0).Local().Format(time.RFC3339)
}

// ParseISO8601 parses an RFC 3339 string back to a Unix timestamp.
func ParseISO8601(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// ParseNewerThan turns a "newer than" expression into a cutoff timestamp.
// The input is either a duration before now ("4d3h", "90m", "2w") or an
// absolute time: RFC 3339, a bare date, or a date and time without a zone.
func ParseNewerThan(input string, now time.Time) (int64, error) {
	if d, err := str2duration.ParseDuration(input); err == nil {
		return now.Add(-d).Unix(), nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.Unix(), nil
	}

	for _, layout := range []string{DateLayout, DateTimeLayout} {
		if t, err := time.ParseInLocation(layout, input, time.Local); err == nil {
			return t.Unix(), nil
		}
	}

	return 0, fmt.Errorf("unable to parse %q as a duration or date/time", input)
}
