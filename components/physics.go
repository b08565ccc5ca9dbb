package components

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/tileworld/physics"
)

// PhysicsData attaches a body to an entity. Options is the snapshot last
// applied to Object.
type PhysicsData struct {
	Object  *physics.Object
	Options physics.BodyOptions
}

var Physics = donburi.NewComponentType[PhysicsData]()
