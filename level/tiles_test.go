package level

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiniRect(t *testing.T) {
	src := image.Rect(32, 64, 64, 96)
	assert.Equal(t, image.Rect(32, 64, 40, 72), miniRect(src, 0, 0, 8, 8))
	assert.Equal(t, image.Rect(56, 88, 64, 96), miniRect(src, 3, 3, 8, 8))
	assert.Equal(t, image.Rect(40, 80, 48, 88), miniRect(src, 1, 2, 8, 8))
}

func TestInvisible(t *testing.T) {
	nrgba := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	nrgba.SetNRGBA(5, 6, color.NRGBA{A: 1})
	rgba := image.NewRGBA(image.Rect(0, 0, 8, 8))
	rgba.SetRGBA(5, 6, color.RGBA{A: 1})

	for name, img := range map[string]image.Image{"nrgba": nrgba, "generic": rgba} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, invisible(img, image.Rect(0, 0, 4, 4)))
			assert.False(t, invisible(img, image.Rect(4, 4, 8, 8)))
			assert.False(t, invisible(img, image.Rect(5, 6, 6, 7)))
			assert.True(t, invisible(img, image.Rect(16, 16, 24, 24)), "outside the image")
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "bounds-finalized", BoundsFinalized.String())
	assert.Equal(t, "State(42)", State(42).String())
}
