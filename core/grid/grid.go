// Package grid bounds-checks positions against the configured world size.
package grid

import "github.com/ridegrid/ridegrid/core/model"

// Grid is the bounded world. A position (x, y) is valid iff
// 0 <= x < Width and 0 <= y < Height.
type Grid struct {
	Width  int
	Height int
}

// Contains reports whether p lies inside the grid.
func (g Grid) Contains(p model.Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}
