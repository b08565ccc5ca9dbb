package components

import (
	"image"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"

	"github.com/automoto/tileworld/assets"
)

// RenderData describes how a tile is drawn: Src inside Texture, scaled to
// Size world pixels and centered on the body.
type RenderData struct {
	Texture assets.Texture
	Src     image.Rectangle
	Size    math.Vec2
	ZOrder  int
}

var Render = donburi.NewComponentType[RenderData]()
