package imagepkg

import (
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/youruser/carouselapp/internal/fonts"
)

type measureFunc func(string) float64

// wrapLines breaks text greedily on single spaces. A candidate line is
// measured with its trailing space, so a word moves to the next line as soon
// as "line word " would exceed maxWidth; the first word of a paragraph never
// wraps. Newlines force breaks. The result has at least one line.
func wrapLines(measure measureFunc, text string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Split(para, " ")
		line := ""
		for n, w := range words {
			test := line + w + " "
			if measure(test) > maxWidth && n > 0 {
				lines = append(lines, strings.TrimSuffix(line, " "))
				line = w + " "
			} else {
				line = test
			}
		}
		lines = append(lines, strings.TrimSuffix(line, " "))
	}
	return lines
}

func wrappedHeight(measure measureFunc, text string, maxWidth, lineHeight float64) float64 {
	return float64(len(wrapLines(measure, text, maxWidth))) * lineHeight
}

// fitFontSize steps size down from start until fits reports true or floor is
// reached. The result is never below floor.
func fitFontSize(start, floor, step float64, fits func(size float64) bool) float64 {
	size := start
	for size > floor && !fits(size) {
		size -= step
	}
	if size < floor {
		size = floor
	}
	return size
}

type align int

const (
	alignLeft align = iota
	alignCenter
)

// pen draws text with one face at a time so measuring and drawing always
// agree.
type pen struct {
	dc   *gg.Context
	face font.Face
}

func (p *pen) use(face font.Face) measureFunc {
	p.face = face
	p.dc.SetFontFace(face)
	return p.measure
}

func (p *pen) measure(s string) float64 {
	w, _ := p.dc.MeasureString(s)
	return w
}

// line draws s with its em-box top at y. For alignCenter, x is the centre.
func (p *pen) line(s string, x, y float64, a align) {
	if a == alignCenter {
		x -= p.measure(s) / 2
	}
	p.dc.DrawString(s, x, y+fonts.Ascent(p.face))
}

// wrap draws text wrapped to maxWidth starting at top y and returns the y
// just below the last line.
func (p *pen) wrap(text string, x, y, maxWidth, lineHeight float64, a align) float64 {
	for _, l := range wrapLines(p.measure, text, maxWidth) {
		p.line(l, x, y, a)
		y += lineHeight
	}
	return y
}
