package tags

import "github.com/yohamta/donburi"

var (
	Tile   = donburi.NewTag().SetName("Tile")
	Player = donburi.NewTag().SetName("Player")
	Portal = donburi.NewTag().SetName("Portal")
	Turret = donburi.NewTag().SetName("Turret")
)

// Object types recognised in Tiled object layers
const (
	ObjectPlayer         = "Player"
	ObjectPlayerPosition = "PlayerPosition"
	ObjectPortal         = "Portal"
	ObjectTurret         = "Turret"
)

// Collision categories
const (
	CategoryTerrain uint = 1 << iota
	CategoryPlayer
	CategoryPortal
	CategoryTurret
)
