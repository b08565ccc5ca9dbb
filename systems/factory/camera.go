package factory

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"

	"github.com/automoto/tileworld/archetypes"
	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/registry"
)

// CreateCamera adds the viewer camera, looking at pos in world pixels.
func CreateCamera(reg *registry.Registry, pos math.Vec2) *donburi.Entry {
	camera := archetypes.Camera.Spawn(reg, "camera")
	components.Camera.SetValue(camera, components.CameraData{
		Position: pos,
		Zoom:     config.Camera.Zoom,
	})
	return camera
}
