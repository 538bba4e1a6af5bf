// Package pkg provides the libraries behind tilegrid, a placement engine for
// fixed-size tiles on a columns x rows grid.
//
// # Overview
//
// Tiles occupy whole cells, never overlap and never leave the grid. The pkg
// directory is organized by concern:
//
//  1. [grid] and [tile] - Geometry: cells, footprints, rectangles, occupancy
//  2. [pack] and [repair] - Placement passes: first-fit auto-pack and bounds-repair
//  3. [displace] and [drag] - Interaction: displacement resolution and drag sessions
//  4. [engine] - The committed collection with its revision counter
//  5. [project], [store] - Documents and their persistence
//  6. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// A drag flows through the packages like this:
//
//	pointer sample (pixels)
//	         ↓
//	    [grid] quantize + clamp to a target cell
//	         ↓
//	    [displace] resolver (cached per target)
//	         ↓
//	    [drag] preview → end → commit
//	         ↓
//	    [engine] new revision
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/tilegrid/pkg/engine"
//	    "github.com/matzehuels/tilegrid/pkg/grid"
//	    "github.com/matzehuels/tilegrid/pkg/tile"
//	)
//
//	eng, _ := engine.New(grid.Default())
//	eng.Load([]tile.Tile{
//	    tile.New("play", grid.Footprint{Width: 2, Height: 1}),
//	    tile.New("vol", grid.Footprint{Width: 1, Height: 2}),
//	})
//
//	eng.BeginDrag("vol")
//	preview, _ := eng.MoveDrag(grid.Cell{Col: 0, Row: 0})
//	if preview.Valid {
//	    outcome, _ := eng.EndDrag()
//	    fmt.Println(outcome.Moved)
//	}
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/grid
// [tile]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/tile
// [pack]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/pack
// [repair]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/repair
// [displace]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/displace
// [drag]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/drag
// [engine]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/engine
// [project]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/project
// [store]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/store
// [errors]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/tilegrid/pkg/buildinfo
package pkg
