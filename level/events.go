package level

import (
	"github.com/yohamta/donburi/features/events"

	"github.com/automoto/tileworld/assets"
	"github.com/automoto/tileworld/shared/gamemath"
)

// LevelLoaded is published once a map has been turned into entities.
type LevelLoaded struct {
	Name       string
	MapPath    string
	Tiles      int
	Invisible  int
	Bounds     gamemath.Bounds // physics space, padded
	Background assets.Texture  // nil when the level has none
}

// LevelLoadedEvent delivers LevelLoaded to subscribers when the world's
// events are processed.
var LevelLoadedEvent = events.NewEventType[LevelLoaded]()
