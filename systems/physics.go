package systems

import (
	stdmath "math"

	"github.com/yohamta/donburi"

	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/physics"
	"github.com/automoto/tileworld/registry"
	"github.com/automoto/tileworld/shared/gamemath"
)

// UpdatePhysics steps the physics world by dt seconds, then turns bodies that
// follow their velocity and despawns bodies that left bounds. It returns the
// number of despawned entities.
func UpdatePhysics(reg *registry.Registry, pw *physics.World, bounds gamemath.Bounds, dt float64) int {
	pw.Step(dt)
	UpdateAnglePolicies(reg.World())
	return RemoveDistantObjects(reg, bounds)
}

// UpdateAnglePolicies points every AngleFollowVelocity body along its
// velocity. Bodies at rest keep their angle.
func UpdateAnglePolicies(w donburi.World) {
	components.Physics.Each(w, func(e *donburi.Entry) {
		data := components.Physics.Get(e)
		if data.Object == nil || !data.Object.Alive() || data.Options.Angle != physics.AngleFollowVelocity {
			return
		}
		v := data.Object.Velocity()
		if v.X == 0 && v.Y == 0 {
			return
		}
		data.Object.SetAngle(stdmath.Atan2(v.Y, v.X))
	})
}

// RemoveDistantObjects destroys entities whose body is outside bounds.
// Nothing is removed while bounds are empty.
func RemoveDistantObjects(reg *registry.Registry, bounds gamemath.Bounds) int {
	if !bounds.Valid {
		return 0
	}

	var distant []donburi.Entity
	components.Physics.Each(reg.World(), func(e *donburi.Entry) {
		obj := components.Physics.Get(e).Object
		if obj == nil || !obj.Alive() {
			return
		}
		if !bounds.Contains(obj.Position()) {
			distant = append(distant, e.Entity())
		}
	})
	for _, e := range distant {
		reg.Destroy(e)
	}
	return len(distant)
}
