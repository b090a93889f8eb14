package interactable

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}

	tests := map[string]struct {
		x, y float64
		exp  bool
	}{
		"interior point":         {x: 20, y: 15, exp: true},
		"just inside left edge":  {x: 10.01, y: 15, exp: true},
		"left edge":              {x: 10, y: 15, exp: false},
		"right edge":             {x: 30, y: 15, exp: false},
		"top edge":               {x: 20, y: 10, exp: false},
		"bottom edge":            {x: 20, y: 20, exp: false},
		"corner":                 {x: 10, y: 10, exp: false},
		"outside left":           {x: 5, y: 15, exp: false},
		"outside below":          {x: 20, y: 25, exp: false},
		"far away":               {x: 100, y: 100, exp: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "contains", r.Contains(tt.x, tt.y), tt.exp)
		})
	}
}

func TestRectOverlaps(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	tests := map[string]struct {
		other Rect
		exp   bool
	}{
		"identical":             {other: Rect{X: 0, Y: 0, Width: 10, Height: 10}, exp: true},
		"partial overlap":       {other: Rect{X: 5, Y: 5, Width: 10, Height: 10}, exp: true},
		"contained":             {other: Rect{X: 2, Y: 2, Width: 4, Height: 4}, exp: true},
		"shares right edge":     {other: Rect{X: 10, Y: 0, Width: 10, Height: 10}, exp: false},
		"shares bottom edge":    {other: Rect{X: 0, Y: 10, Width: 10, Height: 10}, exp: false},
		"shares corner":         {other: Rect{X: 10, Y: 10, Width: 5, Height: 5}, exp: false},
		"disjoint":              {other: Rect{X: 20, Y: 20, Width: 5, Height: 5}, exp: false},
		"overlaps by a sliver":  {other: Rect{X: 9.5, Y: 9.5, Width: 10, Height: 10}, exp: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "overlaps", r.Overlaps(tt.other), tt.exp)
			testutil.AssertEqual(t, "overlaps symmetric", tt.other.Overlaps(r), tt.exp)
		})
	}
}
