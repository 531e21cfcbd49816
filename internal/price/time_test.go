package price

import (
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStartDate(t *testing.T) {
	t.Parallel()

	plus2 := time.FixedZone("", 2*3600)
	type Case struct {
		input  string
		source *time.Location
		expect string
	}
	cases := []Case{
		{"2024-02-25T10:00", nil, "2024-02-25T10:00:00Z"},
		{"2024-02-25T10:00:30", time.UTC, "2024-02-25T10:00:30Z"},
		{"2024-02-25T10:00", plus2, "2024-02-25T08:00:00Z"},
		{"2024-02-25T10:00:00+03:00", plus2, "2024-02-25T07:00:00Z"},
	}
	for _, c := range cases {
		tm, err := ParseStartDate(c.input, c.source)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.expect, tm.UTC().Format(time.RFC3339), c.input)
	}

	for _, bad := range []string{"", "2024-02-25", "10:00", "2024-02-25 10:00"} {
		_, err := ParseStartDate(bad, nil)
		assert.True(t, errors.IsNotValid(err), bad)
	}
}

func TestFixedZone(t *testing.T) {
	t.Parallel()

	for input, expect := range map[string]int{"": 0, "Z": 0, "+02:00": 7200, "-0330": -12600, "+03": 10800} {
		loc, err := FixedZone(input)
		require.NoError(t, err, input)
		_, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
		assert.Equal(t, expect, off, input)
	}
	_, err := FixedZone("Europe/Helsinki")
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	t.Parallel()

	// DST change in Helsinki 2024-03-31 03:00 -> 04:00
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skip("tzdata not available")
	}
	from, to := Window(time.Date(2024, 3, 30, 23, 59, 0, 0, loc), 0)
	assert.Equal(t, "2024-03-30T00:00:00+02:00", FormatQueryTime(from))
	assert.Equal(t, "2024-03-31T23:59:59+03:00", FormatQueryTime(to))
	assert.Equal(t, 47*time.Hour-time.Second, to.Sub(from))

	from, _ = Window(time.Date(2024, 3, 1, 0, 0, 0, 0, loc), 2)
	assert.Equal(t, "2024-03-03T00:00:00+02:00", FormatQueryTime(from))
}

func TestSeries(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Start: base.Add(2 * time.Hour), Value: 2},
		{Start: base, Value: 0},
		{Start: base.Add(time.Hour), Value: 1},
	}
	s.Sort()
	assert.Equal(t, 0.0, s[0].Value)
	assert.Equal(t, 2.0, s[2].Value)
	assert.Len(t, s.Since(base.Add(time.Hour)), 2)
	assert.Len(t, s.Since(base.Add(time.Minute)), 2)
	assert.Len(t, s.Since(base.Add(3*time.Hour)), 0)
	assert.Len(t, s.Limit(1), 1)
	assert.Len(t, s.Limit(-1), 3)
	assert.Nil(t, s.Get(3))
	assert.Equal(t, 1.0, s.Get(1).Value)
	assert.Equal(t, "2024-02-25T00:00:00Z=0.00c", Point{Start: base, Unit: "c"}.String())
}
