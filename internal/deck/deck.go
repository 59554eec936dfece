// Package deck holds the editable carousel plan: a caption and its slides.
package deck

// Kind selects the slide layout.
type Kind string

const (
	KindIntro   Kind = "intro"
	KindContent Kind = "content"
)

// ParseKind maps unknown values to KindContent.
func ParseKind(s string) Kind {
	if Kind(s) == KindIntro {
		return KindIntro
	}
	return KindContent
}

// Side names the corner a sticker is anchored to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Sticker scale bounds.
const (
	MinStickerScale = 0.5
	MaxStickerScale = 2.0
)

// Sticker is a small decoration drawn above the footer.
type Sticker struct {
	URL   string  `json:"url"`
	Label string  `json:"label"`
	Scale float64 `json:"scale"`
}

// Slide is one unit of the carousel. Images and sticker URLs are
// image references understood by the image loader (data URIs, URLs, qr:).
type Slide struct {
	ID           string   `json:"id"`
	Kind         Kind     `json:"type"`
	Title        string   `json:"title"`
	Content      []string `json:"content"`
	Images       []string `json:"images"`
	StickerLeft  *Sticker `json:"sticker_left,omitempty"`
	StickerRight *Sticker `json:"sticker_right,omitempty"`
}

// Deck is a planned carousel.
type Deck struct {
	ID      string  `json:"id"`
	Topic   string  `json:"topic,omitempty"`
	Caption string  `json:"caption"`
	Slides  []Slide `json:"slides"`
}

// Clone returns a deep copy.
func (d *Deck) Clone() *Deck {
	out := *d
	out.Slides = make([]Slide, len(d.Slides))
	for i, s := range d.Slides {
		out.Slides[i] = s.Clone()
	}
	return &out
}

// Clone returns a deep copy.
func (s Slide) Clone() Slide {
	out := s
	out.Content = cloneStrings(s.Content)
	out.Images = cloneStrings(s.Images)
	if s.StickerLeft != nil {
		st := *s.StickerLeft
		out.StickerLeft = &st
	}
	if s.StickerRight != nil {
		st := *s.StickerRight
		out.StickerRight = &st
	}
	return out
}

// cloneStrings copies ss and never returns nil, so empty lists encode as [].
func cloneStrings(ss []string) []string {
	return append(make([]string, 0, len(ss)), ss...)
}

// Sticker returns the sticker on the given side, or nil.
func (s *Slide) Sticker(side Side) *Sticker {
	if side == SideLeft {
		return s.StickerLeft
	}
	return s.StickerRight
}

// ClampScale maps a requested sticker scale into the allowed range.
// Zero means the default scale of 1.
func ClampScale(v float64) float64 {
	switch {
	case v == 0:
		return 1
	case v < MinStickerScale:
		return MinStickerScale
	case v > MaxStickerScale:
		return MaxStickerScale
	}
	return v
}
