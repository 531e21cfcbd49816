package ui

import (
	"fmt"
	"time"

	"github.com/temoto/spotlcd/internal/price"
)

const (
	DefaultBrightness = 0x08

	Placeholder = "?.?? c"
	TextError   = "ERROR!"
	timeLayout  = "15:04"
)

// Color is backlight PWM value per channel, not clamped.
type Color struct{ R, G, B int }

func (c Color) String() string { return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B) }

// ColorFor uses default brightness.
// <5 green, (5,10) blue, everything else including exactly 5 red.
func ColorFor(value float64) Color { return ColorWith(value, DefaultBrightness) }

func ColorWith(value float64, brightness int) Color {
	switch {
	case value < 5:
		return Color{0, brightness, 0}
	case value > 5 && value < 10:
		return Color{0, 0, brightness}
	default:
		return Color{brightness, 0, 0}
	}
}

func ErrorColor(brightness int) Color { return Color{brightness * 2, 0, 0} }

// FormatPrice renders nil as Placeholder.
func FormatPrice(p *price.Point) string {
	if p == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.2f c", p.Value)
}

type Summary struct {
	Now   string
	Next  string
	Start time.Time // first point
	Value float64   // first point
	Unit  string
}

// Summarize returns nil for empty series.
func Summarize(s price.Series) *Summary {
	first := s.Get(0)
	if first == nil {
		return nil
	}
	return &Summary{
		Now:   FormatPrice(first),
		Next:  FormatPrice(s.Get(1)),
		Start: first.Start,
		Value: first.Value,
		Unit:  first.Unit,
	}
}

// Text is two display lines, second is labeled one hour after first
// whatever start the second point has.
func (s *Summary) Text(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t := s.Start.In(loc)
	return fmt.Sprintf("%s: %s\n%s: %s",
		t.Format(timeLayout), s.Now,
		t.Add(time.Hour).Format(timeLayout), s.Next)
}
