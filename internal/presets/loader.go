package presets

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadCatalog returns the builtin catalog extended with the optional CSV
// catalogs found in dataDir (backgrounds.csv, stickers.csv). Missing files
// are skipped. Rows reuse the builtin IDs to replace builtin entries.
func LoadCatalog(dataDir string) (Catalog, error) {
	cat := Builtin()
	files := []struct {
		name string
		kind Kind
	}{
		{"backgrounds.csv", KindBackground},
		{"stickers.csv", KindSticker},
	}
	for _, f := range files {
		path := filepath.Join(dataDir, f.name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ps, err := loadSingleCSV(path, f.kind)
		if err != nil {
			return Catalog{}, fmt.Errorf("loading %s: %w", path, err)
		}
		cat.Presets = merge(cat.Presets, ps)
	}
	return cat, nil
}

func merge(base, extra []Preset) []Preset {
	idx := map[string]int{}
	for i, p := range base {
		idx[p.ID] = i
	}
	for _, p := range extra {
		if i, ok := idx[p.ID]; ok {
			base[i] = p
			continue
		}
		idx[p.ID] = len(base)
		base = append(base, p)
	}
	return base
}

// loadSingleCSV reads rows with the header id,name,url[,side].
func loadSingleCSV(path string, kind Kind) ([]Preset, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "url"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv %s is missing column %q", path, required)
		}
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Preset{}
	for n, row := range rows[1:] {
		p := Preset{
			ID:   get(row, "id"),
			Kind: kind,
			Name: get(row, "name"),
			URL:  get(row, "url"),
		}
		if p.ID == "" || p.URL == "" {
			continue
		}
		if kind == KindSticker {
			p.Side = strings.ToLower(get(row, "side"))
			if p.Side != "left" && p.Side != "right" {
				return nil, fmt.Errorf("csv %s row %d: side must be left or right", path, n+2)
			}
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		out = append(out, p)
	}
	return out, nil
}
