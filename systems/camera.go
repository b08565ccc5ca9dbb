package systems

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"

	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/shared/gamemath"
)

// UpdateCamera moves the camera by pan, scaled by the configured scroll
// speed, and keeps its centre inside the level (world pixels).
func UpdateCamera(w donburi.World, pan math.Vec2, tf gamemath.Transformer) {
	cameraEntry, ok := components.Camera.First(w)
	if !ok {
		return
	}
	camera := components.Camera.Get(cameraEntry)

	camera.Position.X += pan.X * config.Camera.ScrollSpeed
	camera.Position.Y += pan.Y * config.Camera.ScrollSpeed

	levelEntry, ok := components.Level.First(w)
	if !ok {
		return
	}
	bounds := components.Level.Get(levelEntry).Bounds
	if !bounds.Valid {
		return
	}

	minPos := tf.PhysicsToWorld(bounds.Min)
	maxPos := tf.PhysicsToWorld(bounds.Max)
	camera.Position.X = max(minPos.X, min(maxPos.X, camera.Position.X))
	camera.Position.Y = max(minPos.Y, min(maxPos.Y, camera.Position.Y))
}

// CameraView returns the camera as a screen transform for a viewport of the
// given size.
func CameraView(w donburi.World, viewport math.Vec2) gamemath.Camera {
	cam := gamemath.Camera{Zoom: 1, Viewport: viewport}
	if entry, ok := components.Camera.First(w); ok {
		data := components.Camera.Get(entry)
		cam.Position = data.Position
		cam.Zoom = data.Zoom
	}
	return cam
}
