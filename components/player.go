package components

import (
	"github.com/yohamta/donburi"
)

type PlayerData struct {
	Name string
}

var Player = donburi.NewComponentType[PlayerData]()

// SpawnPointData is carried by portals and turrets placed in object layers.
type SpawnPointData struct {
	Kind string
	Name string
}

var SpawnPoint = donburi.NewComponentType[SpawnPointData]()
