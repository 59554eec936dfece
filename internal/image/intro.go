package imagepkg

import (
	"github.com/youruser/carouselapp/internal/deck"
	"github.com/youruser/carouselapp/internal/fonts"
)

// Intro layout constants, in canvas pixels unless noted.
const (
	introTitleStart    = 85.0
	introTitleFloor    = 40.0
	introTitleStep     = 5.0
	introTitleLeading  = 1.25
	introTitleMaxShare = 0.4
	introImageShare    = 0.4
	introContentShare  = 0.2
	introGap           = 40.0
	introImageGap      = 20.0
	introImageRadius   = 16.0
	introSubSize       = 36.0
	introSubLineHeight = 50.0
)

var introImageBorder = border{color: colorWhite, alpha: 0.5, width: 3}

// introTitleSize auto-fits the intro title and returns its size, line height
// and wrapped height.
func introTitleSize(measureAt func(size float64) measureFunc, title string) (size, lineHeight, height float64) {
	maxH := CanvasHeight * introTitleMaxShare
	size = fitFontSize(introTitleStart, introTitleFloor, introTitleStep, func(s float64) bool {
		return wrappedHeight(measureAt(s), title, contentWidth, s*introTitleLeading) <= maxH
	})
	lineHeight = size * introTitleLeading
	height = wrappedHeight(measureAt(size), title, contentWidth, lineHeight)
	return size, lineHeight, height
}

func (cv *canvas) titleFace(size float64, weight int) measureFunc {
	return cv.pen.use(cv.faces.Face(cv.style.TitleFont, size, weight))
}

// intro draws a centred cover slide: title, optional image row and
// optional sub-headline, stacked and vertically centred.
func (cv *canvas) intro(s deck.Slide) {
	dc := cv.dc
	centerX := float64(CanvasWidth) / 2

	size, lineHeight, titleH := introTitleSize(func(sz float64) measureFunc {
		return cv.titleFace(sz, fonts.ExtraBold)
	}, s.Title)

	imgs := cv.loadAll(s.Images)
	imageH := 0.0
	if len(imgs) > 0 {
		imageH = CanvasHeight * introImageShare
	}
	contentH := 0.0
	if len(s.Content) > 0 {
		contentH = CanvasHeight * introContentShare
	}
	y := introStart(CanvasHeight, titleH, imageH, contentH, introGap, Padding)

	cv.titleFace(size, fonts.ExtraBold)
	setColor(dc, colorInk, 1)
	y = cv.pen.wrap(s.Title, centerX, y, contentWidth, lineHeight, alignCenter)
	y += introGap

	if len(imgs) > 0 {
		row, total := fitRow(imgs, contentWidth, imageH, introImageGap)
		drawRow(dc, row, (CanvasWidth-total)/2, y, introImageGap, introImageRadius, introImageBorder)
		y += rowHeight(row) + introGap
	}

	if len(s.Content) > 0 {
		cv.pen.use(cv.faces.Face(cv.style.BodyFont, introSubSize, fonts.Medium))
		setColor(dc, colorInk, 1)
		for _, l := range s.Content {
			y = cv.pen.wrap(l, centerX, y, contentWidth, introSubLineHeight, alignCenter)
		}
	}
}
