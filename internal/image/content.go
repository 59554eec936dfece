package imagepkg

import (
	"github.com/youruser/carouselapp/internal/deck"
	"github.com/youruser/carouselapp/internal/fonts"
)

// Content layout constants, in canvas pixels unless noted.
const (
	titleSize       = 50.0
	titleLeading    = 1.3
	titleBoxPadding = 30.0
	titleBoxRadius  = 20.0
	titleBoxStroke  = 3.0
	titleBoxAlpha   = 0.95
	sectionGap      = 40.0
	footerBand      = 60.0

	contentImageGap    = 20.0
	contentImageRadius = 12.0

	bodyStart     = 42.0
	bodyFloor     = 24.0
	bodyStep      = 2.0
	bodyLeading   = 1.5
	bodySpacing   = 0.5
	bulletIndent  = 50.0
	bulletOffsetX = 15.0
	bulletRadius  = 0.2
)

var contentImageBorder = border{color: colorBlack, alpha: 0.1, width: 2}

// bodyTextHeight is the height the bullet list needs at a given size.
func bodyTextHeight(measure measureFunc, lines []string, size float64) float64 {
	h := 0.0
	for _, l := range lines {
		h += wrappedHeight(measure, l, contentWidth-bulletIndent, size*bodyLeading)
		h += size * bodySpacing
	}
	return h
}

// bodyFontSize auto-fits the bullet list into bandH.
func bodyFontSize(measureAt func(size float64) measureFunc, lines []string, bandH float64) float64 {
	return fitFontSize(bodyStart, bodyFloor, bodyStep, func(s float64) bool {
		return bodyTextHeight(measureAt(s), lines, s) <= bandH
	})
}

// content draws the strict top-down layout: title box, image row, bullets.
func (cv *canvas) content(s deck.Slide) {
	dc := cv.dc
	y := float64(Padding)

	cv.titleFace(titleSize, fonts.Bold)
	lineHeight := titleSize * titleLeading
	innerW := contentWidth - 2*titleBoxPadding
	boxH := wrappedHeight(cv.pen.measure, s.Title, innerW, lineHeight) + 2*titleBoxPadding

	dc.DrawRoundedRectangle(Padding, y, contentWidth, boxH, titleBoxRadius)
	setColor(dc, colorTitleBox, titleBoxAlpha)
	dc.FillPreserve()
	setColor(dc, colorInk, 1)
	dc.SetLineWidth(titleBoxStroke)
	dc.Stroke()

	setColor(dc, colorInk, 1)
	cv.pen.wrap(s.Title, Padding+titleBoxPadding, y+titleBoxPadding, innerW, lineHeight, alignLeft)
	y += boxH + sectionGap

	imgs := cv.loadAll(s.Images)
	available := CanvasHeight - y - footerBand - Padding
	imageH, textH := contentSplit(available, len(imgs) > 0, len(s.Content) > 0)

	if len(imgs) > 0 && imageH > 0 {
		row, total := fitRow(imgs, contentWidth, imageH, contentImageGap)
		drawRow(dc, row, Padding+(contentWidth-total)/2, y, contentImageGap, contentImageRadius, contentImageBorder)
		y += rowHeight(row) + sectionGap
	}

	if len(s.Content) == 0 {
		return
	}
	bodyFace := func(sz float64) measureFunc {
		return cv.pen.use(cv.faces.Face(cv.style.BodyFont, sz, fonts.Regular))
	}
	size := bodyFontSize(bodyFace, s.Content, textH)
	bodyFace(size)
	lh := size * bodyLeading
	for _, l := range s.Content {
		setColor(dc, colorBullet, 1)
		dc.DrawCircle(Padding+bulletOffsetX, y+lh/2-size/4, size*bulletRadius)
		dc.Fill()

		setColor(dc, colorBody, 1)
		y = cv.pen.wrap(l, Padding+bulletIndent, y, contentWidth-bulletIndent, lh, alignLeft)
		y += size * bodySpacing
	}
}
