package level

import "fmt"

// State is the loader's progress through a load.
type State int

const (
	Idle State = iota
	WorldRecreated
	TilesetResolved
	LayersParsed
	BoundsFinalized
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WorldRecreated:
		return "world-recreated"
	case TilesetResolved:
		return "tileset-resolved"
	case LayersParsed:
		return "layers-parsed"
	case BoundsFinalized:
		return "bounds-finalized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
