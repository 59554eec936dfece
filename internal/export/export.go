// Package export renders whole decks and packages the results.
package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/youruser/carouselapp/internal/deck"
	imagepkg "github.com/youruser/carouselapp/internal/image"
)

// CaptionFile is the archive entry holding the post caption.
const CaptionFile = "caption.txt"

// Renderer renders one slide to PNG bytes.
type Renderer interface {
	RenderPNG(ctx context.Context, slide deck.Slide, author string, style deck.Style) ([]byte, error)
}

// Rendered is one slide of a batch.
type Rendered struct {
	Index   int
	SlideID string
	PNG     []byte
}

// FileName is the download name of the i-th slide, counting from zero.
func FileName(i int) string {
	return fmt.Sprintf("viral-slide-%d.png", i+1)
}

// RenderDeck renders every slide of d with at most workers renders in
// flight. The result is in slide order.
func RenderDeck(ctx context.Context, r Renderer, d *deck.Deck, author string, style deck.Style, workers int) ([]Rendered, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]Rendered, len(d.Slides))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range d.Slides {
		i, s := i, s
		g.Go(func() error {
			b, err := r.RenderPNG(ctx, s, author, style)
			if err != nil {
				return fmt.Errorf("render slide %d: %w", i+1, err)
			}
			out[i] = Rendered{Index: i, SlideID: s.ID, PNG: b}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteZip writes every slide plus the caption as a zip archive.
func WriteZip(w io.Writer, rendered []Rendered, caption string) error {
	zw := zip.NewWriter(w)
	now := time.Now()
	for _, r := range rendered {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: FileName(r.Index), Method: zip.Store, Modified: now})
		if err != nil {
			return err
		}
		if _, err := f.Write(r.PNG); err != nil {
			return err
		}
	}
	f, err := zw.CreateHeader(&zip.FileHeader{Name: CaptionFile, Method: zip.Deflate, Modified: now})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, caption); err != nil {
		return err
	}
	return zw.Close()
}

// DataURI returns png as an inline download link.
func DataURI(png []byte) string {
	return imagepkg.EncodeDataURI("image/png", png)
}
