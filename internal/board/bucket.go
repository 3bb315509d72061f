package board

import (
	"errors"
	"fmt"
	"strings"
)

// Color is a dashboard severity bucket.
type Color string

const (
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
)

// Colors lists the buckets in display order.
var Colors = []Color{Red, Yellow, Green}

var (
	ErrUnknownColor  = errors.New("unknown status color")
	ErrUnknownMetric = errors.New("unknown metric")
)

// ParseColor accepts a bucket name in any case.
func ParseColor(value string) (Color, error) {
	switch c := Color(strings.ToLower(strings.TrimSpace(value))); c {
	case Red, Yellow, Green:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColor, value)
}

// Caption is the human label shown for a bucket.
func (c Color) Caption() string {
	switch c {
	case Red:
		return "Not started / Inactive"
	case Yellow:
		return "In progress"
	default:
		return "Completed"
	}
}

// Counts is the per-bucket tally of a card.
type Counts struct {
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
}

// Total sums the three buckets.
func (c Counts) Total() int {
	return c.Red + c.Yellow + c.Green
}

// Of returns the count for one bucket.
func (c Counts) Of(color Color) int {
	switch color {
	case Red:
		return c.Red
	case Yellow:
		return c.Yellow
	case Green:
		return c.Green
	}
	return 0
}

// Buckets holds counts and the original records behind each count.
type Buckets[T any] struct {
	Red        int `json:"red"`
	Yellow     int `json:"yellow"`
	Green      int `json:"green"`
	RedList    []T `json:"redList"`
	YellowList []T `json:"yellowList"`
	GreenList  []T `json:"greenList"`
}

func newBuckets[T any]() Buckets[T] {
	return Buckets[T]{RedList: []T{}, YellowList: []T{}, GreenList: []T{}}
}

func (b *Buckets[T]) put(c Color, item T) {
	switch c {
	case Red:
		b.Red++
		b.RedList = append(b.RedList, item)
	case Yellow:
		b.Yellow++
		b.YellowList = append(b.YellowList, item)
	case Green:
		b.Green++
		b.GreenList = append(b.GreenList, item)
	}
}

// List returns the drill-down records of one bucket.
func (b Buckets[T]) List(c Color) []T {
	switch c {
	case Red:
		return b.RedList
	case Yellow:
		return b.YellowList
	case Green:
		return b.GreenList
	}
	return nil
}

// Counts drops the lists.
func (b Buckets[T]) Counts() Counts {
	return Counts{Red: b.Red, Yellow: b.Yellow, Green: b.Green}
}
