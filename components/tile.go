package components

import (
	"github.com/yohamta/donburi"
)

type TileData struct {
	Layer        string
	Destructible bool
	Col, Row     int // tile cell in the layer
	MiniCol      int // mini tile inside the cell
	MiniRow      int
}

var Tile = donburi.NewComponentType[TileData]()
