package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/temoto/spotlcd/internal/price"
)

func TestColorFor(t *testing.T) {
	t.Parallel()

	green, blue, red := Color{0, 8, 0}, Color{0, 0, 8}, Color{8, 0, 0}
	cases := []struct {
		value  float64
		expect Color
	}{
		{-3, green},
		{0, green},
		{4.99, green},
		{5, red},
		{5.01, blue},
		{7, blue},
		{9.99, blue},
		{10, red},
		{42, red},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, ColorFor(c.value), "value=%v", c.value)
	}
	assert.Equal(t, Color{0, 0, 0x20}, ColorWith(7, 0x20))
	assert.Equal(t, Color{16, 0, 0}, ErrorColor(DefaultBrightness))
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Placeholder, FormatPrice(nil))
	assert.Equal(t, "7.53 c", FormatPrice(&price.Point{Value: 7.531}))
	assert.Equal(t, "0.00 c", FormatPrice(&price.Point{}))
	assert.Equal(t, "-1.25 c", FormatPrice(&price.Point{Value: -1.249}))
	assert.Equal(t, "12.30 c", FormatPrice(&price.Point{Value: 12.3, Unit: "c/kWh"}))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize(price.Series{}))

	start := time.Date(2024, 2, 25, 8, 0, 0, 0, time.UTC)
	one := price.Series{{Start: start, Value: 4.5, Unit: "c/kWh"}}
	s := Summarize(one)
	if assert.NotNil(t, s) {
		assert.Equal(t, "4.50 c", s.Now)
		assert.Equal(t, Placeholder, s.Next)
		assert.Equal(t, 4.5, s.Value)
		assert.Equal(t, "c/kWh", s.Unit)
	}

	two := append(one, price.Point{Start: start.Add(time.Hour), Value: 11})
	s = Summarize(two)
	assert.Equal(t, "11.00 c", s.Next)
}

func TestSummaryText(t *testing.T) {
	t.Parallel()

	eet := time.FixedZone("EET", 2*3600)
	start := time.Date(2024, 2, 25, 8, 0, 0, 0, time.UTC)
	s := Summarize(price.Series{{Start: start, Value: 7.53}})
	assert.Equal(t, "10:00: 7.53 c\n11:00: ?.?? c", s.Text(eet))
	assert.Equal(t, "08:00: 7.53 c\n09:00: ?.?? c", s.Text(time.UTC))

	s.Start = time.Date(2024, 2, 25, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "23:00: 7.53 c\n00:00: ?.?? c", s.Text(time.UTC))
}
