package deck

import "strings"

// CustomBackgroundID selects Style.CustomBackground over the preset URL.
const CustomBackgroundID = "custom"

// Default font families.
const (
	DefaultTitleFont = "Montserrat"
	DefaultBodyFont  = "Merriweather"
)

// Style is the look shared by every slide of one render.
type Style struct {
	BackgroundID     string `json:"background_id"`
	BackgroundURL    string `json:"background_image_url,omitempty"`
	CustomBackground string `json:"custom_background,omitempty"`
	TitleFont        string `json:"title_font"`
	BodyFont         string `json:"body_font"`
	OverlayColor     string `json:"overlay_color,omitempty"`
	// OverlayOpacity is a percentage, 0..100.
	OverlayOpacity int `json:"overlay_opacity"`
}

// Normalize fills empty fonts and clamps the overlay opacity.
func (s Style) Normalize() Style {
	s.TitleFont = strings.TrimSpace(s.TitleFont)
	s.BodyFont = strings.TrimSpace(s.BodyFont)
	if s.TitleFont == "" {
		s.TitleFont = DefaultTitleFont
	}
	if s.BodyFont == "" {
		s.BodyFont = DefaultBodyFont
	}
	if s.OverlayOpacity < 0 {
		s.OverlayOpacity = 0
	}
	if s.OverlayOpacity > 100 {
		s.OverlayOpacity = 100
	}
	return s
}

// BackgroundSource returns the image reference to draw full-bleed, or "".
func (s Style) BackgroundSource() string {
	if s.BackgroundID == CustomBackgroundID && s.CustomBackground != "" {
		return s.CustomBackground
	}
	return s.BackgroundURL
}
