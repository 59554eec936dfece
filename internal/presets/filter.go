package presets

import (
	"strings"

	"github.com/youruser/carouselapp/internal/deck"
)

type FilterOptions struct {
	Kind      Kind   `json:"kind" form:"kind"`
	Side      string `json:"side" form:"side"`
	FreeWords string `json:"free_words" form:"q"`
}

// Filter keeps presets matching every non-empty option. FreeWords must all
// appear in the ID or name, case-insensitively.
func Filter(ps []Preset, opt FilterOptions) []Preset {
	out := []Preset{}
	kw := strings.Fields(strings.ToLower(opt.FreeWords))
	for _, p := range ps {
		if opt.Kind != "" && p.Kind != opt.Kind {
			continue
		}
		if opt.Side != "" && p.Side != opt.Side {
			continue
		}
		ok := true
		for _, k := range kw {
			if !strings.Contains(strings.ToLower(p.ID), k) && !strings.Contains(strings.ToLower(p.Name), k) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Find looks a preset up by ID.
func (c Catalog) Find(id string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// FirstSticker returns the default sticker URL for a side.
func (c Catalog) FirstSticker(side deck.Side) string {
	for _, p := range c.Presets {
		if p.Kind == KindSticker && p.Side == string(side) {
			return p.URL
		}
	}
	return ""
}

// DefaultStyle is the style used when a request carries none.
func (c Catalog) DefaultStyle() deck.Style {
	s := deck.Style{
		BackgroundID: "preset-0",
		TitleFont:    deck.DefaultTitleFont,
		BodyFont:     deck.DefaultBodyFont,
		OverlayColor: "#000000",
	}
	return c.ResolveBackground(s)
}

// ResolveBackground normalizes s and fills BackgroundURL from the preset
// named by BackgroundID when the caller did not supply one.
func (c Catalog) ResolveBackground(s deck.Style) deck.Style {
	s = s.Normalize()
	if s.BackgroundID == "" && s.BackgroundURL == "" && s.CustomBackground == "" {
		s.BackgroundID = "preset-0"
	}
	if s.BackgroundURL != "" || s.BackgroundID == deck.CustomBackgroundID {
		return s
	}
	if p, ok := c.Find(s.BackgroundID); ok && p.Kind == KindBackground {
		s.BackgroundURL = p.URL
	}
	return s
}
