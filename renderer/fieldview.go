// Package renderer streams rasterized field images into raylib textures.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/phasor/raster"
)

// FieldView owns the texture the evaluated field is displayed through.
// Field values in [-1, 1] map to grayscale.
type FieldView struct {
	tex         rl.Texture2D
	texW, texH  int
	pixels      []color.RGBA
	initialized bool
}

// NewFieldView creates an uninitialized view; the texture is created on the
// first Update (raylib requires an open window).
func NewFieldView() *FieldView {
	return &FieldView{}
}

// Init creates the backing texture.
func (v *FieldView) Init(w, h int) {
	if v.initialized {
		return
	}
	v.texW = w
	v.texH = h

	img := rl.GenImageColor(w, h, rl.Black)
	v.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	rl.SetTextureFilter(v.tex, rl.FilterBilinear)
	v.pixels = make([]color.RGBA, w*h)
	v.initialized = true
}

// Update uploads a rasterized field image into the texture.
func (v *FieldView) Update(img *raster.Image) {
	if !v.initialized {
		v.Init(img.W, img.H)
	}

	for i, val := range img.Pix {
		if val < -1 {
			val = -1
		}
		if val > 1 {
			val = 1
		}
		gray := uint8((val + 1) * 0.5 * 255)
		v.pixels[i] = color.RGBA{R: gray, G: gray, B: gray, A: 255}
	}
	rl.UpdateTexture(v.tex, v.pixels)
}

// Draw renders the field texture into the destination rectangle.
func (v *FieldView) Draw(dst rl.Rectangle) {
	if !v.initialized {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(v.texW), Height: float32(v.texH)}
	rl.DrawTexturePro(v.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees the texture.
func (v *FieldView) Unload() {
	if v.initialized {
		rl.UnloadTexture(v.tex)
		v.initialized = false
	}
}
