// Package engine owns an authoritative tile collection and exposes every
// placement operation on it.
//
// An [Engine] wraps the pure packages of this module:
//
//   - [pack.Place] for auto-packing tiles without an origin
//   - [repair.Repair] for moving tiles back into the grid after a load
//   - [drag.Controller] for speculative drag sessions
//
// Every operation leaves the collection in a state where each placed tile
// lies inside the grid and no two placed tiles overlap. [Engine.Check]
// verifies that at any time.
//
// # Revisions
//
// The engine counts committed changes. Every mutation that changes the
// collection (load, place, repair, add, remove, resize, drag commit) bumps
// the revision. A drag session remembers the revision it started at; if the
// collection changed underneath it, ending the session reports
// [drag.StatusStale] and nothing is written.
//
// # Routine Outcomes
//
// Running out of room, dropping a tile where displaced tiles cannot go and
// ending a stale session are normal results, not failures. They surface as
// a CAPACITY_EXCEEDED error from Add and Resize, an unplaced list from Place,
// and the status of a drag outcome.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Hosts that share one across
// goroutines must serialize access.
//
// # Example
//
//	e, _ := engine.New(grid.Default())
//	if _, err := e.Load(tiles); err != nil {
//	    return err
//	}
//	_ = e.BeginDrag("fader-1")
//	preview, _ := e.UpdateDrag(grid.Point{X: 150, Y: 80})
//	if preview.Valid {
//	    outcome, _ := e.EndDrag()
//	    fmt.Println(outcome.Status)
//	}
package engine
