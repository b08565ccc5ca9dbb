package components

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/tileworld/shared/gamemath"
)

type LevelData struct {
	Name    string
	MapPath string
	Bounds  gamemath.Bounds // physics space, padded by the buffer zone
}

var Level = donburi.NewComponentType[LevelData]()
