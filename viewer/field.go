package viewer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var obstacleColor = color.RGBA{R: 90, G: 40, B: 40, A: 255}

// fieldLayer holds the scalar field as a one-pixel-per-cell texture. The
// field is immutable once sealed, so the pixels are uploaded once.
type fieldLayer struct {
	tex        rl.Texture2D
	rows, cols int
}

func newFieldLayer(rows, cols int, cells []float32) *fieldLayer {
	img := rl.GenImageColor(cols, rows, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterPoint)

	rl.UpdateTexture(tex, fieldPixels(cells))
	return &fieldLayer{tex: tex, rows: rows, cols: cols}
}

// fieldPixels maps cell values to a blue-to-yellow ramp scaled by the
// largest value. Negative values are obstacles.
func fieldPixels(cells []float32) []color.RGBA {
	var peak float32
	for _, v := range cells {
		peak = max(peak, v)
	}
	pixels := make([]color.RGBA, len(cells))
	for i, v := range cells {
		if v < 0 {
			pixels[i] = obstacleColor
			continue
		}
		t := float32(0)
		if peak > 0 {
			t = v / peak
		}
		pixels[i] = color.RGBA{
			R: uint8(20 + 220*t),
			G: uint8(30 + 190*t),
			B: uint8(70 - 50*t),
			A: 255,
		}
	}
	return pixels
}

func (l *fieldLayer) draw(v *Viewer) {
	x0, y0 := v.cam.WorldToScreen(0, 0)
	x1, y1 := v.cam.WorldToScreen(float32(l.cols), float32(l.rows))
	rl.DrawTexturePro(
		l.tex,
		rl.Rectangle{X: 0, Y: 0, Width: float32(l.cols), Height: float32(l.rows)},
		rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0},
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), rl.DarkGray)
}

func (l *fieldLayer) unload() {
	rl.UnloadTexture(l.tex)
}
