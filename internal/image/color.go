package imagepkg

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
)

var (
	colorInk      = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	colorBody     = color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	colorBullet   = color.NRGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff}
	colorFallback = color.NRGBA{R: 0xfd, G: 0xfb, B: 0xf7, A: 0xff}
	colorTitleBox = color.NRGBA{R: 0xff, G: 0xf7, B: 0xed, A: 0xff}
	colorWhite    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorBlack    = color.NRGBA{A: 0xff}
)

// parseHexColor accepts #rgb and #rrggbb, with or without the leading #.
func parseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// setColor sets c on dc with alpha in 0..1 replacing c's own alpha.
func setColor(dc *gg.Context, c color.NRGBA, alpha float64) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, alpha)
}
