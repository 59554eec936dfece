// Package imagepkg loads slide images and composites slides into square
// bitmaps.
package imagepkg

import (
	"bytes"
	"context"
	"image"
	"log"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/text/unicode/norm"

	"github.com/youruser/carouselapp/internal/deck"
	"github.com/youruser/carouselapp/internal/fonts"
)

// Canvas geometry shared by every slide.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1080
	Padding      = 80

	contentWidth = CanvasWidth - 2*Padding
)

// Source resolves an image reference to a decoded image.
type Source interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Compositor renders slides. It holds no per-render state and is safe for
// concurrent use.
type Compositor struct {
	Fonts  *fonts.Registry
	Images Source
}

func NewCompositor(reg *fonts.Registry, src Source) *Compositor {
	return &Compositor{Fonts: reg, Images: src}
}

// canvas is the state of one render.
type canvas struct {
	ctx   context.Context
	src   Source
	dc    *gg.Context
	faces *fonts.Faces
	pen   *pen
	style deck.Style
}

// Render draws slide into a CanvasWidth x CanvasHeight image. Images that
// fail to load are logged and left out, so a bitmap is always returned.
func (c *Compositor) Render(ctx context.Context, slide deck.Slide, author string, style deck.Style) image.Image {
	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	cv := &canvas{
		ctx:   ctx,
		src:   c.Images,
		dc:    dc,
		faces: c.Fonts.NewFaces(),
		pen:   &pen{dc: dc},
		style: style.Normalize(),
	}
	slide = normalizeText(slide)

	cv.background()
	if slide.Kind == deck.KindIntro {
		cv.intro(slide)
	} else {
		cv.content(slide)
	}
	if slide.StickerLeft != nil {
		cv.sticker(*slide.StickerLeft, deck.SideLeft)
	}
	if slide.StickerRight != nil {
		cv.sticker(*slide.StickerRight, deck.SideRight)
	}
	cv.footer(norm.NFC.String(author))
	return dc.Image()
}

// RenderPNG renders and PNG-encodes a slide.
func (c *Compositor) RenderPNG(ctx context.Context, slide deck.Slide, author string, style deck.Style) ([]byte, error) {
	img := c.Render(ctx, slide, author, style)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderDataURI renders a slide as a PNG data: URI.
func (c *Compositor) RenderDataURI(ctx context.Context, slide deck.Slide, author string, style deck.Style) (string, error) {
	b, err := c.RenderPNG(ctx, slide, author, style)
	if err != nil {
		return "", err
	}
	return EncodeDataURI("image/png", b), nil
}

func normalizeText(s deck.Slide) deck.Slide {
	s = s.Clone()
	s.Title = norm.NFC.String(s.Title)
	for i, l := range s.Content {
		s.Content[i] = norm.NFC.String(l)
	}
	for _, st := range []*deck.Sticker{s.StickerLeft, s.StickerRight} {
		if st != nil {
			st.Label = norm.NFC.String(st.Label)
		}
	}
	return s
}

func (cv *canvas) load(ref, what string) image.Image {
	img, err := cv.src.Load(cv.ctx, ref)
	if err != nil {
		log.Printf("compose: skip %s: %v", what, err)
		return nil
	}
	return img
}

// loadAll loads refs in order, dropping the ones that fail.
func (cv *canvas) loadAll(refs []string) []image.Image {
	var out []image.Image
	for _, r := range refs {
		if img := cv.load(r, "inline image"); img != nil {
			out = append(out, img)
		}
	}
	return out
}

// background draws the cover-fit background and the flat overlay.
func (cv *canvas) background() {
	dc := cv.dc
	var bg image.Image
	if ref := cv.style.BackgroundSource(); ref != "" {
		img, err := cv.src.Load(cv.ctx, ref)
		if err != nil {
			log.Printf("compose: failed to load background: %v", err)
		} else {
			bg = img
		}
	}
	if bg != nil {
		dc.DrawImage(imaging.Fill(bg, CanvasWidth, CanvasHeight, imaging.Center, imaging.Lanczos), 0, 0)
	} else {
		setColor(dc, colorFallback, 1)
		dc.DrawRectangle(0, 0, CanvasWidth, CanvasHeight)
		dc.Fill()
	}

	if cv.style.OverlayOpacity <= 0 || cv.style.OverlayColor == "" {
		return
	}
	c, ok := parseHexColor(cv.style.OverlayColor)
	if !ok {
		log.Printf("compose: ignoring overlay color %q", cv.style.OverlayColor)
		return
	}
	setColor(dc, c, float64(cv.style.OverlayOpacity)/100)
	dc.DrawRectangle(0, 0, CanvasWidth, CanvasHeight)
	dc.Fill()
}

// Sticker geometry.
const (
	stickerBase      = 120.0
	stickerLabelSize = 24.0
	stickerFooter    = 80.0
	stickerLabelGap  = 10.0
)

func (cv *canvas) sticker(st deck.Sticker, side deck.Side) {
	if st.URL == "" {
		return
	}
	img := cv.load(st.URL, string(side)+" sticker")
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	scale := deck.ClampScale(st.Scale)
	w := stickerBase * scale
	h := float64(b.Dy()) / float64(b.Dx()) * w

	x := float64(Padding)
	if side == deck.SideRight {
		x = CanvasWidth - Padding - w
	}
	y := CanvasHeight - Padding - stickerFooter - h
	cv.dc.DrawImage(scaled(img, w, h), int(x+0.5), int(y+0.5))

	if st.Label == "" {
		return
	}
	cv.pen.use(cv.faces.Face(cv.style.TitleFont, stickerLabelSize*scale, fonts.Bold))
	setColor(cv.dc, colorInk, 1)
	cv.pen.line(st.Label, x+w/2, y+h+stickerLabelGap, alignCenter)
}

const (
	footerSize   = 24.0
	footerOffset = 50.0
	footerAlpha  = 0.6
)

func (cv *canvas) footer(author string) {
	if author == "" {
		return
	}
	cv.pen.use(cv.faces.Face(cv.style.TitleFont, footerSize, fonts.SemiBold))
	setColor(cv.dc, colorInk, footerAlpha)
	cv.pen.line(author, CanvasWidth/2, CanvasHeight-footerOffset, alignCenter)
}
