package pack_test

import (
	"fmt"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/pack"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

func ExamplePlace() {
	tiles := []tile.Tile{
		tile.New("play", grid.Footprint{Width: 2, Height: 1}),
		tile.New("volume", grid.Footprint{Width: 1, Height: 2}),
		tile.New("mute", grid.Footprint{Width: 1, Height: 1}).At(grid.Cell{Col: 0, Row: 0}),
	}

	res := pack.Place(grid.Default(), tiles)
	for _, t := range res.Tiles {
		fmt.Println(t)
	}
	// Output:
	// play 2x1@(1,0)
	// volume 1x2@(3,0)
	// mute 1x1@(0,0)
}
