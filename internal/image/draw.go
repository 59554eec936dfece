package imagepkg

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// scaled resizes img to w x h pixels, rounding and keeping at least 1px.
func scaled(img image.Image, w, h float64) image.Image {
	iw := int(math.Max(1, math.Round(w)))
	ih := int(math.Max(1, math.Round(h)))
	b := img.Bounds()
	if b.Dx() == iw && b.Dy() == ih {
		return img
	}
	return imaging.Resize(img, iw, ih, imaging.Lanczos)
}

type border struct {
	color color.NRGBA
	alpha float64
	width float64
}

// roundedImage draws img clipped to a rounded rectangle, then strokes it.
func roundedImage(dc *gg.Context, img image.Image, x, y, w, h, radius float64, b border) {
	if w < 1 || h < 1 {
		return
	}
	x, y = math.Round(x), math.Round(y)
	dc.Push()
	dc.DrawRoundedRectangle(x, y, w, h, radius)
	dc.Clip()
	dc.DrawImage(scaled(img, w, h), int(x), int(y))
	dc.Pop()

	dc.DrawRoundedRectangle(x, y, w, h, radius)
	setColor(dc, b.color, b.alpha)
	dc.SetLineWidth(b.width)
	dc.Stroke()
}

// drawRow lays a fitted row out left to right from x at top y.
func drawRow(dc *gg.Context, row []placed, x, y, gap, radius float64, b border) {
	for _, p := range row {
		roundedImage(dc, p.img, x, y, p.w, p.h, radius, b)
		x += p.w + gap
	}
}
