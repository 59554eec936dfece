package imagepkg

import (
	"image"
	"math"
)

// placed is an image with its draw size.
type placed struct {
	img  image.Image
	w, h float64
}

// fitRow scales every image uniformly so it fits both an equal share of
// maxWidth (minus gaps) and maxHeight, and returns the sizes together with
// the total row width including gaps.
func fitRow(imgs []image.Image, maxWidth, maxHeight, gap float64) ([]placed, float64) {
	n := len(imgs)
	if n == 0 {
		return nil, 0
	}
	cellW := (maxWidth - gap*float64(n-1)) / float64(n)
	out := make([]placed, 0, n)
	total := gap * float64(n-1)
	for _, img := range imgs {
		b := img.Bounds()
		iw, ih := float64(b.Dx()), float64(b.Dy())
		if iw <= 0 || ih <= 0 {
			continue
		}
		scale := math.Max(0, math.Min(cellW/iw, maxHeight/ih))
		p := placed{img: img, w: iw * scale, h: ih * scale}
		out = append(out, p)
		total += p.w
	}
	return out, total
}

func rowHeight(row []placed) float64 {
	h := 0.0
	for _, p := range row {
		h = math.Max(h, p.h)
	}
	return h
}

// contentSplit returns the image and text band heights for a content slide.
func contentSplit(available float64, hasImages, hasText bool) (imageH, textH float64) {
	available = math.Max(0, available)
	switch {
	case hasImages && hasText:
		return available * 0.45, available * 0.50
	case hasImages:
		return available * 0.9, 0
	case hasText:
		return 0, available * 0.95
	}
	return 0, 0
}

// introStart returns the top of the vertically centred intro stack, never
// above the outer padding.
func introStart(canvasH, titleH, imageH, contentH, gap, padding float64) float64 {
	total := titleH
	if imageH > 0 {
		total += gap + imageH
	}
	if contentH > 0 {
		total += gap + contentH
	}
	return math.Max(padding, (canvasH-total)/2)
}
