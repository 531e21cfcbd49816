package price

import (
	"fmt"
	"sort"
	"time"
)

// Point is one hourly spot price quotation.
type Point struct {
	Start time.Time
	Value float64
	Unit  string
}

func (p Point) String() string {
	return fmt.Sprintf("%s=%.2f%s", p.Start.Format(time.RFC3339), p.Value, p.Unit)
}

// Series is ordered by Start ascending once returned from Client.Fetch.
type Series []Point

func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Start.Before(s[j].Start) })
}

// Since returns points starting at or after t. Series must be sorted.
func (s Series) Since(t time.Time) Series {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Start.Before(t) })
	return s[i:]
}

func (s Series) Limit(n int) Series {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// Get returns nil for out of range index.
func (s Series) Get(i int) *Point {
	if i < 0 || i >= len(s) {
		return nil
	}
	return &s[i]
}
