package deck

import (
	"strconv"
	"strings"
)

// ExportText renders the caption followed by a numbered outline of the slides.
func ExportText(d *Deck) string {
	lines := []string{}
	if d.Caption != "" {
		lines = append(lines, strings.TrimSpace(d.Caption), "")
	}
	for i, s := range d.Slides {
		lines = append(lines, strconv.Itoa(i+1)+". "+strings.TrimSpace(s.Title))
		for _, c := range s.Content {
			lines = append(lines, "   - "+strings.TrimSpace(c))
		}
	}
	return strings.Join(lines, "\n")
}
