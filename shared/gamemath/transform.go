// Package gamemath holds the coordinate conversions shared by the loader, the
// physics layer and the viewer. It has no dependencies on ebitengine or cp.
//
// Three spaces are in play:
//   - world: level-design pixels, as authored in Tiled, +Y down
//   - physics: world divided by the scale, fed to the rigid-body engine
//   - screen: world after the camera offset and zoom, centered on the viewport
package gamemath

import "github.com/yohamta/donburi/features/math"

// Transformer converts between world and physics space. Scale is the number
// of world pixels in one physics unit.
type Transformer struct {
	Scale float64
}

// NewTransformer returns a Transformer with the given scale. A non-positive
// scale falls back to 1.
func NewTransformer(scale float64) Transformer {
	if scale <= 0 {
		scale = 1
	}
	return Transformer{Scale: scale}
}

func (t Transformer) scale() float64 {
	if t.Scale <= 0 {
		return 1
	}
	return t.Scale
}

// WorldToPhysics converts a world position to physics space.
func (t Transformer) WorldToPhysics(p math.Vec2) math.Vec2 {
	s := t.scale()
	return math.Vec2{X: p.X / s, Y: p.Y / s}
}

// PhysicsToWorld converts a physics position to world space.
func (t Transformer) PhysicsToWorld(p math.Vec2) math.Vec2 {
	s := t.scale()
	return math.Vec2{X: p.X * s, Y: p.Y * s}
}

// LengthToPhysics converts a world length (size, radius) to physics units.
func (t Transformer) LengthToPhysics(v float64) float64 {
	return v / t.scale()
}

// LengthToWorld converts a physics length to world pixels.
func (t Transformer) LengthToWorld(v float64) float64 {
	return v * t.scale()
}

// Camera describes the view used for screen conversions. Position is the
// world point drawn at the viewport center.
type Camera struct {
	Position math.Vec2
	Zoom     float64
	Viewport math.Vec2
}

func (c Camera) zoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

// WorldToScreen applies the camera transform: translate by -Position, scale
// by Zoom, then translate to the viewport center.
func WorldToScreen(p math.Vec2, cam Camera) math.Vec2 {
	z := cam.zoom()
	return math.Vec2{
		X: (p.X-cam.Position.X)*z + cam.Viewport.X/2,
		Y: (p.Y-cam.Position.Y)*z + cam.Viewport.Y/2,
	}
}

// ScreenToWorld is the inverse of WorldToScreen.
func ScreenToWorld(p math.Vec2, cam Camera) math.Vec2 {
	z := cam.zoom()
	return math.Vec2{
		X: (p.X-cam.Viewport.X/2)/z + cam.Position.X,
		Y: (p.Y-cam.Viewport.Y/2)/z + cam.Position.Y,
	}
}

// PhysicsToScreen converts a physics position straight to the screen.
func (t Transformer) PhysicsToScreen(p math.Vec2, cam Camera) math.Vec2 {
	return WorldToScreen(t.PhysicsToWorld(p), cam)
}

// ScreenToPhysics converts a screen position straight to physics space.
func (t Transformer) ScreenToPhysics(p math.Vec2, cam Camera) math.Vec2 {
	return t.WorldToPhysics(ScreenToWorld(p, cam))
}
