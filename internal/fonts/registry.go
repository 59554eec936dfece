// Package fonts resolves font families to faces sized in canvas pixels.
package fonts

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// CSS-style weights used by the compositor.
const (
	Regular   = 400
	Medium    = 500
	SemiBold  = 600
	Bold      = 700
	ExtraBold = 800
)

type faceKey struct {
	name   string
	size   float64
	weight int
}

// Registry holds parsed fonts. It is safe for concurrent use. Faces are
// handed out through Faces, which is not.
type Registry struct {
	mu      sync.RWMutex
	dirs    []string
	fonts   map[string]*opentype.Font
	scanned bool

	fallback map[int]*opentype.Font
}

// New creates a Registry that searches dirs for font files.
func New(dirs ...string) *Registry {
	r := &Registry{
		dirs:     dirs,
		fonts:    map[string]*opentype.Font{},
		fallback: map[int]*opentype.Font{},
	}
	for w, data := range map[int][]byte{Regular: goregular.TTF, Medium: gomedium.TTF, Bold: gobold.TTF} {
		f, err := opentype.Parse(data)
		if err != nil {
			panic(fmt.Sprintf("fonts: embedded Go font: %v", err))
		}
		r.fallback[w] = f
	}
	return r
}

// NewWithSystem is New plus the OS font directories.
func NewWithSystem(dirs ...string) *Registry {
	return New(append(systemFontDirs(), dirs...)...)
}

// Faces is a per-render face cache. font.Face values keep scratch buffers,
// so a Faces must not be shared between goroutines.
type Faces struct {
	r     *Registry
	faces map[faceKey]font.Face
}

// NewFaces returns an empty face cache bound to r.
func (r *Registry) NewFaces() *Faces {
	return &Faces{r: r, faces: map[faceKey]font.Face{}}
}

// Face returns a face for family at size pixels (72 DPI) and weight. It
// never returns nil: unknown families fall back to the embedded Go fonts.
func (fs *Faces) Face(family string, size float64, weight int) font.Face {
	if size <= 0 {
		size = 1
	}
	key := faceKey{name: strings.ToLower(strings.TrimSpace(family)), size: size, weight: weight}
	if face, ok := fs.faces[key]; ok {
		return face
	}

	r := fs.r
	r.ensureScanned()
	f := r.find(key.name, weight)
	if f == nil {
		f = r.fallbackFont(weight)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Printf("font face %q %.0fpx: %v", family, size, err)
		face, _ = opentype.NewFace(r.fallbackFont(weight), &opentype.FaceOptions{Size: size, DPI: 72})
	}
	fs.faces[key] = face
	return face
}

// Has reports whether family resolves to a loaded font rather than the
// embedded fallback.
func (r *Registry) Has(family string) bool {
	r.ensureScanned()
	return r.find(strings.ToLower(strings.TrimSpace(family)), Regular) != nil
}

// Families lists the registered font names, sorted.
func (r *Registry) Families() []string {
	r.ensureScanned()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.fonts))
	for name := range r.fonts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) fallbackFont(weight int) *opentype.Font {
	switch {
	case weight >= SemiBold:
		return r.fallback[Bold]
	case weight >= Medium:
		return r.fallback[Medium]
	}
	return r.fallback[Regular]
}

// weightSuffixes lists the name variants tried for a weight, heaviest first.
func weightSuffixes(weight int) []string {
	switch {
	case weight >= 900:
		return []string{" black", "-black", " heavy", " extrabold", "-extrabold", " bold", "-bold", "bd"}
	case weight >= ExtraBold:
		return []string{" extrabold", "-extrabold", " extra bold", " black", "-black", " bold", "-bold", "bd"}
	case weight >= Bold:
		return []string{" bold", "-bold", "bd", "b", " semibold", "-semibold"}
	case weight >= SemiBold:
		return []string{" semibold", "-semibold", " semi bold", " demibold", " bold", "-bold", "bd"}
	case weight >= Medium:
		return []string{" medium", "-medium", " regular", "-regular"}
	}
	return []string{" regular", "-regular"}
}

func (r *Registry) find(lower string, weight int) *opentype.Font {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, suffix := range weightSuffixes(weight) {
		if f, ok := r.fonts[lower+suffix]; ok {
			return f
		}
	}
	if f, ok := r.fonts[lower]; ok {
		return f
	}
	// Google Fonts ship e.g. "Montserrat-VariableFont_wght.ttf".
	if f, ok := r.fonts[strings.ReplaceAll(lower, " ", "")+"-variablefont_wght"]; ok {
		return f
	}
	return nil
}

// LoadFontData registers a TrueType/OpenType font from raw bytes.
func (r *Registry) LoadFontData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", name, err)
	}
	r.mu.Lock()
	r.fonts[strings.ToLower(name)] = f
	r.registerByName(f)
	r.mu.Unlock()
	return nil
}

func (r *Registry) ensureScanned() {
	r.mu.RLock()
	scanned := r.scanned
	r.mu.RUnlock()
	if scanned {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scanned {
		return
	}
	r.scanned = true
	for _, dir := range r.dirs {
		r.scanDir(dir, 0)
	}
}

const (
	maxFontScanDepth = 3
	maxFontFileSize  = 20 << 20
)

func (r *Registry) scanDir(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			r.scanDir(filepath.Join(dir, entry.Name()), depth+1)
			continue
		}
		lower := strings.ToLower(entry.Name())
		isTTC := strings.HasSuffix(lower, ".ttc") || strings.HasSuffix(lower, ".otc")
		isSingle := strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf")
		if !isTTC && !isSingle {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(lower, filepath.Ext(lower))
		if isTTC {
			r.loadCollection(data, base)
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		r.fonts[base] = f
		r.registerByName(f)
	}
}

func (r *Registry) loadCollection(data []byte, base string) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		if i == 0 {
			r.fonts[base] = f
		}
		r.registerByName(f)
	}
}

// registerByName indexes f by family, "family subfamily" and full name.
// Callers hold the write lock.
func (r *Registry) registerByName(f *opentype.Font) {
	family, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil || family == "" {
		return
	}
	family = strings.ToLower(family)
	sub, _ := f.Name(nil, sfnt.NameIDSubfamily)
	sub = strings.ToLower(sub)
	if sub == "" || sub == "regular" {
		r.fonts[family] = f
	} else if _, ok := r.fonts[family]; !ok {
		r.fonts[family] = f
	}
	if sub != "" {
		r.fonts[family+" "+sub] = f
	}
	if full, err := f.Name(nil, sfnt.NameIDFull); err == nil && full != "" {
		r.fonts[strings.ToLower(full)] = f
	}
}

// Ascent returns the distance from the top of the em box to the baseline.
func Ascent(face font.Face) float64 {
	return math.Ceil(float64(face.Metrics().Ascent) / 64)
}

func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
