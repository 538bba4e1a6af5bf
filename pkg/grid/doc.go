// Package grid provides the geometry model for tile boards.
//
// A [Grid] is a fixed cell space of Columns × MaxRows cells addressed by
// [Cell] values (column, row) with the origin at the top-left. Tiles occupy a
// [Rect]: an origin cell plus a [Footprint] measured in cells.
//
// # Geometry
//
// The package provides pure functions with no side effects:
//
//   - [Grid.Fits]: does a footprint at an origin stay inside the grid?
//   - [Overlaps]: do two rectangles intersect? Touching edges do not count.
//   - [Quantize]: map a continuous pointer position to a cell.
//   - [Grid.Clamp]: pull an origin back so a footprint stays in bounds.
//
// Quantize never clamps. Callers that need an in-bounds origin clamp the
// result explicitly.
//
// # Occupancy
//
// [Occupancy] is a derived per-cell owner table. It is rebuilt from tile
// rectangles whenever it is needed and is never persisted:
//
//	occ := grid.NewOccupancy(g)
//	if occ.Free(r) {
//	    occ.Reserve("fader-1", r)
//	}
//
// # Concurrency
//
// Grid, Cell, Footprint and Rect are immutable values. Occupancy is not safe
// for concurrent use.
package grid
