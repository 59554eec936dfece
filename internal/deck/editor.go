package deck

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrSlideNotFound = errors.New("slide not found")
	ErrLastSlide     = errors.New("cannot remove the last slide")
	ErrImageIndex    = errors.New("image index out of range")
	ErrInvalidSide   = errors.New("sticker side must be left or right")
)

// Placeholder text for slides added by hand.
const (
	NewSlideTitle   = "Tiêu đề bước mới"
	NewSlideContent = "Nội dung chi tiết..."
)

// NewSlideID returns a fresh slide identifier.
func NewSlideID() string {
	return "slide-" + uuid.NewString()
}

// SlidePatch carries the editable text fields; nil fields are left alone.
type SlidePatch struct {
	Kind    *Kind     `json:"type,omitempty"`
	Title   *string   `json:"title,omitempty"`
	Content *[]string `json:"content,omitempty"`
}

func (d *Deck) index(id string) (int, error) {
	for i := range d.Slides {
		if d.Slides[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrSlideNotFound
}

// Slide returns a pointer into the deck for the given ID.
func (d *Deck) Slide(id string) (*Slide, error) {
	i, err := d.index(id)
	if err != nil {
		return nil, err
	}
	return &d.Slides[i], nil
}

// AddSlide appends a placeholder content slide.
func (d *Deck) AddSlide() Slide {
	s := Slide{
		ID:      NewSlideID(),
		Kind:    KindContent,
		Title:   NewSlideTitle,
		Content: []string{NewSlideContent},
		Images:  []string{},
	}
	d.Slides = append(d.Slides, s)
	return s
}

// RemoveSlide deletes a slide. A deck always keeps at least one slide.
func (d *Deck) RemoveSlide(id string) error {
	i, err := d.index(id)
	if err != nil {
		return err
	}
	if len(d.Slides) <= 1 {
		return ErrLastSlide
	}
	d.Slides = append(d.Slides[:i], d.Slides[i+1:]...)
	return nil
}

// UpdateSlide applies a patch and returns the new slide.
func (d *Deck) UpdateSlide(id string, p SlidePatch) (Slide, error) {
	s, err := d.Slide(id)
	if err != nil {
		return Slide{}, err
	}
	if p.Kind != nil {
		s.Kind = ParseKind(string(*p.Kind))
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Content != nil {
		s.Content = append([]string{}, (*p.Content)...)
	}
	return s.Clone(), nil
}

// AddImages appends inline image references to a slide.
func (d *Deck) AddImages(id string, refs ...string) error {
	s, err := d.Slide(id)
	if err != nil {
		return err
	}
	for _, r := range refs {
		if r != "" {
			s.Images = append(s.Images, r)
		}
	}
	return nil
}

// RemoveImage drops the image at index.
func (d *Deck) RemoveImage(id string, index int) error {
	s, err := d.Slide(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(s.Images) {
		return ErrImageIndex
	}
	s.Images = append(s.Images[:index], s.Images[index+1:]...)
	return nil
}

// MoveImage takes the image at from and reinserts it at to.
func (d *Deck) MoveImage(id string, from, to int) error {
	s, err := d.Slide(id)
	if err != nil {
		return err
	}
	n := len(s.Images)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrImageIndex
	}
	img := s.Images[from]
	s.Images = append(s.Images[:from], s.Images[from+1:]...)
	s.Images = append(s.Images[:to], append([]string{img}, s.Images[to:]...)...)
	return nil
}

// SetSticker attaches or edits the sticker on one side. An empty URL or a
// zero scale keeps the value of the existing sticker.
func (d *Deck) SetSticker(id string, side Side, st Sticker) (Sticker, error) {
	if side != SideLeft && side != SideRight {
		return Sticker{}, ErrInvalidSide
	}
	s, err := d.Slide(id)
	if err != nil {
		return Sticker{}, err
	}
	if cur := s.Sticker(side); cur != nil {
		if st.URL == "" {
			st.URL = cur.URL
		}
		if st.Scale == 0 {
			st.Scale = cur.Scale
		}
	}
	st.Scale = ClampScale(st.Scale)
	if side == SideLeft {
		s.StickerLeft = &st
	} else {
		s.StickerRight = &st
	}
	return st, nil
}

// ClearSticker removes the sticker on one side.
func (d *Deck) ClearSticker(id string, side Side) error {
	if side != SideLeft && side != SideRight {
		return ErrInvalidSide
	}
	s, err := d.Slide(id)
	if err != nil {
		return err
	}
	if side == SideLeft {
		s.StickerLeft = nil
	} else {
		s.StickerRight = nil
	}
	return nil
}

// SetCaption replaces the post caption.
func (d *Deck) SetCaption(text string) {
	d.Caption = text
}
