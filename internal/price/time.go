package price

import (
	"time"

	"github.com/juju/errors"
)

const queryTimeLayout = "2006-01-02T15:04:05Z07:00"

var startDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func StartOfHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

// Window covers today and tomorrow in location of `now`, shifted by daysOffset days.
func Window(now time.Time, daysOffset int) (from, to time.Time) {
	from = StartOfDay(now).AddDate(0, 0, daysOffset)
	to = from.AddDate(0, 0, 2).Add(-time.Second)
	return from, to
}

func FormatQueryTime(t time.Time) string { return t.Format(queryTimeLayout) }

// ParseStartDate reads timestamp without zone designator as wall clock at `source`.
// Explicit offset in input wins.
func ParseStartDate(s string, source *time.Location) (time.Time, error) {
	if source == nil {
		source = time.UTC
	}
	for _, layout := range startDateLayouts {
		if t, err := time.ParseInLocation(layout, s, source); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.NotValidf("startDate=%q", s)
}

// FixedZone for offset like "+02:00", "-0330", "Z" or empty (UTC).
func FixedZone(offset string) (*time.Location, error) {
	switch offset {
	case "", "Z", "UTC":
		return time.UTC, nil
	}
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		if t, err := time.Parse(layout, offset); err == nil {
			_, sec := t.Zone()
			return time.FixedZone(offset, sec), nil
		}
	}
	return nil, errors.NotValidf("source offset=%q", offset)
}
