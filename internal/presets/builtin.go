package presets

import (
	"encoding/base64"
	"fmt"
)

var builtinBackgrounds = []string{
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/6929846a2940a7d10b32c59a.png",
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/692984732940a7a59032c6b3.png",
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/692984737f38c94282e1c00b.png",
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/69298473572134d7f498f15a.png",
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/692984736a32b27dfe94cd8c.png",
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/692984736a32b23dff94cd8b.png",
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/692984736a32b2145494cd98.png",
	"https://storage.googleapis.com/msgsndr/76jwxJS0DcAVoeVK00Z6/media/692984736a32b2363194cd97.png",
}

const svgHead = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24">`

type stickerSVG struct {
	name        string
	left, right string
}

var builtinStickers = []stickerSVG{
	{
		name:  "arrow",
		left:  `<path fill="#EF4444" d="M7.828 11L13.192 5.636L11.778 4.222L4 12L11.778 19.778L13.192 18.364L7.828 13H20V11H7.828Z"/>`,
		right: `<path fill="#EF4444" d="M16.172 11L10.808 5.636L12.222 4.222L20 12L12.222 19.778L10.808 18.364L16.172 13H4V11H16.172Z"/>`,
	},
	{
		name:  "swipe",
		left:  `<polyline points="18 18 12 12 18 6" fill="none" stroke="#F3A61C" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/><polyline points="12 18 6 12 12 6" fill="none" stroke="#F3A61C" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/>`,
		right: `<polyline points="6 18 12 12 6 6" fill="none" stroke="#F3A61C" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/><polyline points="12 18 18 12 12 6" fill="none" stroke="#F3A61C" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/>`,
	},
	{
		name:  "circle",
		left:  `<circle cx="12" cy="12" r="10" fill="none" stroke="#111827" stroke-width="2"/><path fill="#111827" d="M14 8L10 12L14 16Z"/>`,
		right: `<circle cx="12" cy="12" r="10" fill="none" stroke="#111827" stroke-width="2"/><path fill="#111827" d="M10 8L14 12L10 16Z"/>`,
	},
	{
		name:  "chevron",
		left:  `<polyline points="15 18 9 12 15 6" fill="none" stroke="#0b4a6e" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/>`,
		right: `<polyline points="9 18 15 12 9 6" fill="none" stroke="#0b4a6e" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/>`,
	},
}

var builtinFonts = []FontOption{
	{ID: "Montserrat", Name: "Montserrat (Hiện đại)"},
	{ID: "Merriweather", Name: "Merriweather (Cổ điển)"},
	{ID: "Playfair Display", Name: "Playfair (Sang trọng)"},
	{ID: "Roboto", Name: "Roboto (Trung tính)"},
	{ID: "Open Sans", Name: "Open Sans (Dễ đọc)"},
}

var builtinOverlays = []ColorOption{
	{Name: "Đen", Value: "#000000"},
	{Name: "Trắng", Value: "#FFFFFF"},
	{Name: "Xanh Navy", Value: "#0c4a6e"},
	{Name: "Vàng", Value: "#f59e0b"},
}

func svgDataURI(body string) string {
	doc := svgHead + body + `</svg>`
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(doc))
}

// Builtin returns the catalog compiled into the binary.
func Builtin() Catalog {
	var ps []Preset
	for i, u := range builtinBackgrounds {
		ps = append(ps, Preset{
			ID:   fmt.Sprintf("preset-%d", i),
			Kind: KindBackground,
			Name: fmt.Sprintf("Background %d", i+1),
			URL:  u,
		})
	}
	for _, side := range []string{"left", "right"} {
		for i, s := range builtinStickers {
			body := s.right
			if side == "left" {
				body = s.left
			}
			ps = append(ps, Preset{
				ID:   fmt.Sprintf("sticker-%s-%d", side, i),
				Kind: KindSticker,
				Side: side,
				Name: s.name,
				URL:  svgDataURI(body),
			})
		}
	}
	return Catalog{
		Presets:  ps,
		Fonts:    append([]FontOption(nil), builtinFonts...),
		Overlays: append([]ColorOption(nil), builtinOverlays...),
	}
}
