// Package render draws the loaded level with ebitengine.
package render

import (
	"cmp"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/math"

	"github.com/automoto/tileworld/assets"
	"github.com/automoto/tileworld/components"
	"github.com/automoto/tileworld/config"
	"github.com/automoto/tileworld/shared/gamemath"
	"github.com/automoto/tileworld/systems"
)

var (
	drawOp = &ebiten.DrawImageOptions{}

	solidColor  = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	sensorColor = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	boundsColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

type drawItem struct {
	entry  *donburi.Entry
	render *components.RenderData
}

// Renderer draws the background, the tiles and optionally the bodies of the
// world it is bound to.
type Renderer struct {
	Transformer gamemath.Transformer
	Background  func() assets.Texture

	items []drawItem
}

// View returns the camera for a screen.
func (r *Renderer) View(e *ecs.ECS, screen *ebiten.Image) gamemath.Camera {
	b := screen.Bounds()
	return systems.CameraView(e.World, math.Vec2{X: float64(b.Dx()), Y: float64(b.Dy())})
}

// DrawBackground draws the level background with its top-left corner at the
// world origin.
func (r *Renderer) DrawBackground(e *ecs.ECS, screen *ebiten.Image) {
	screen.Fill(config.Background)
	if r.Background == nil {
		return
	}
	img, ok := r.Background().(*ebiten.Image)
	if !ok || img == nil {
		return
	}
	cam := r.View(e, screen)
	origin := gamemath.WorldToScreen(math.Vec2{}, cam)

	drawOp.GeoM.Reset()
	drawOp.GeoM.Scale(zoom(cam), zoom(cam))
	drawOp.GeoM.Translate(origin.X, origin.Y)
	screen.DrawImage(img, drawOp)
}

// DrawTiles draws every entity with a render component, lowest ZOrder first.
// Each image is centered on its body and culled against the viewport.
func (r *Renderer) DrawTiles(e *ecs.ECS, screen *ebiten.Image) {
	cam := r.View(e, screen)
	z := zoom(cam)
	width, height := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	r.items = r.items[:0]
	components.Render.Each(e.World, func(entry *donburi.Entry) {
		r.items = append(r.items, drawItem{entry: entry, render: components.Render.Get(entry)})
	})
	slices.SortStableFunc(r.items, func(a, b drawItem) int {
		return cmp.Compare(a.render.ZOrder, b.render.ZOrder)
	})

	for _, it := range r.items {
		img, ok := it.render.Texture.(*ebiten.Image)
		if !ok || !it.entry.HasComponent(components.Physics) {
			continue
		}
		obj := components.Physics.Get(it.entry).Object
		if obj == nil || !obj.Alive() {
			continue
		}

		center := r.Transformer.PhysicsToScreen(obj.Position(), cam)
		halfW, halfH := it.render.Size.X*z/2, it.render.Size.Y*z/2
		if center.X+halfW < 0 || center.X-halfW > width || center.Y+halfH < 0 || center.Y-halfH > height {
			continue
		}

		src := img.SubImage(it.render.Src).(*ebiten.Image)
		sw, sh := float64(it.render.Src.Dx()), float64(it.render.Src.Dy())

		drawOp.GeoM.Reset()
		drawOp.GeoM.Translate(-sw/2, -sh/2)
		drawOp.GeoM.Scale(it.render.Size.X/sw, it.render.Size.Y/sh)
		drawOp.GeoM.Rotate(obj.Angle())
		drawOp.GeoM.Scale(z, z)
		drawOp.GeoM.Translate(center.X, center.Y)
		screen.DrawImage(src, drawOp)
	}
}

// DrawBodies outlines every shape's bounding box and the level bounds when
// body drawing is enabled.
func (r *Renderer) DrawBodies(e *ecs.ECS, screen *ebiten.Image) {
	if !config.Debug.DrawBodies {
		return
	}
	cam := r.View(e, screen)

	components.Physics.Each(e.World, func(entry *donburi.Entry) {
		obj := components.Physics.Get(entry).Object
		if obj == nil || !obj.Alive() {
			return
		}
		for _, s := range obj.Solids() {
			r.strokeBB(screen, s.BB(), cam, solidColor)
		}
		for _, s := range obj.Sensors() {
			r.strokeBB(screen, s.BB(), cam, sensorColor)
		}
	})

	if entry, ok := components.Level.First(e.World); ok {
		b := components.Level.Get(entry).Bounds
		if b.Valid {
			r.strokeBB(screen, cp.BB{L: b.Min.X, T: b.Min.Y, R: b.Max.X, B: b.Max.Y}, cam, boundsColor)
		}
	}
}

func (r *Renderer) strokeBB(screen *ebiten.Image, bb cp.BB, cam gamemath.Camera, c color.Color) {
	// +Y is down, so cp's "bottom" is the smaller Y.
	minY, maxY := min(bb.B, bb.T), max(bb.B, bb.T)
	tl := r.Transformer.PhysicsToScreen(math.Vec2{X: bb.L, Y: minY}, cam)
	br := r.Transformer.PhysicsToScreen(math.Vec2{X: bb.R, Y: maxY}, cam)
	vector.StrokeRect(screen, float32(tl.X), float32(tl.Y), float32(br.X-tl.X), float32(br.Y-tl.Y), 1, c, false)
}

func zoom(cam gamemath.Camera) float64 {
	if cam.Zoom <= 0 {
		return 1
	}
	return cam.Zoom
}
