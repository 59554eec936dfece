// Package presets is the catalog of selectable backgrounds, stickers,
// fonts and overlay colours.
package presets

// Kind of a catalog entry.
type Kind string

const (
	KindBackground Kind = "background"
	KindSticker    Kind = "sticker"
)

type Preset struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	// Side is "left" or "right" for stickers, empty for backgrounds.
	Side string `json:"side,omitempty"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type FontOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ColorOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Catalog is the full set of presets offered to editors.
type Catalog struct {
	Presets  []Preset      `json:"presets"`
	Fonts    []FontOption  `json:"fonts"`
	Overlays []ColorOption `json:"overlays"`
}
