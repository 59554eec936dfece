// Command carousel plans a carousel for a topic and renders its slides to
// PNG files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/youruser/carouselapp/internal/app"
	"github.com/youruser/carouselapp/internal/config"
	"github.com/youruser/carouselapp/internal/deck"
	"github.com/youruser/carouselapp/internal/export"
	imagepkg "github.com/youruser/carouselapp/internal/image"
	"github.com/youruser/carouselapp/internal/presets"
	"github.com/youruser/carouselapp/internal/util"
)

type refList []string

func (r *refList) String() string { return strings.Join(*r, ",") }

func (r *refList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

type options struct {
	topic      string
	refs       refList
	planPath   string
	outDir     string
	author     string
	background string
	titleFont  string
	bodyFont   string
	overlay    string
	opacity    int
}

func main() {
	var opt options
	fs := flag.NewFlagSet("carousel", flag.ExitOnError)
	fs.StringVar(&opt.topic, "topic", "", "topic to plan a carousel for")
	fs.Var(&opt.refs, "ref", "reference image file or data URI (repeatable)")
	fs.StringVar(&opt.planPath, "plan", "", "render an existing deck.json instead of planning")
	fs.StringVar(&opt.outDir, "out", "out", "output directory")
	fs.StringVar(&opt.author, "author", "", "author label drawn in the footer")
	fs.StringVar(&opt.background, "background", "preset-0", "background preset ID, image URL or file")
	fs.StringVar(&opt.titleFont, "title-font", deck.DefaultTitleFont, "title font family")
	fs.StringVar(&opt.bodyFont, "body-font", deck.DefaultBodyFont, "body font family")
	fs.StringVar(&opt.overlay, "overlay", "#000000", "overlay colour")
	fs.IntVar(&opt.opacity, "overlay-opacity", 0, "overlay opacity, 0..100")

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}
	log.SetPrefix("[CAROUSEL] ")
	log.SetFlags(0)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opt); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, opt options) error {
	d, err := loadDeck(ctx, cfg, opt)
	if err != nil {
		return err
	}
	catalog, err := presets.LoadCatalog(cfg.DataDir)
	if err != nil {
		return err
	}
	style, err := buildStyle(catalog, opt)
	if err != nil {
		return err
	}

	comp := app.Compositor(cfg, app.Fonts(cfg))
	rendered, err := export.RenderDeck(ctx, comp, d, opt.author, style, cfg.RenderWorkers)
	if err != nil {
		return err
	}
	for _, r := range rendered {
		path, err := util.WriteFile(opt.outDir, export.FileName(r.Index), r.PNG)
		if err != nil {
			return err
		}
		log.Println("wrote", path)
	}
	if _, err := util.WriteFile(opt.outDir, export.CaptionFile, []byte(d.Caption)); err != nil {
		return err
	}
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	_, err = util.WriteFile(opt.outDir, "deck.json", b)
	return err
}

func loadDeck(ctx context.Context, cfg config.Config, opt options) (*deck.Deck, error) {
	if opt.planPath != "" {
		b, err := os.ReadFile(opt.planPath)
		if err != nil {
			return nil, err
		}
		var d deck.Deck
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", opt.planPath, err)
		}
		if len(d.Slides) == 0 {
			return nil, fmt.Errorf("%s has no slides", opt.planPath)
		}
		return &d, nil
	}

	p, err := app.Planner(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("API_KEY is required to plan a carousel")
	}
	refs := make([]string, 0, len(opt.refs))
	for _, r := range opt.refs {
		uri, err := fileDataURI(r)
		if err != nil {
			return nil, err
		}
		refs = append(refs, uri)
	}
	log.Printf("planning %q with %s", opt.topic, cfg.Model)
	return p.Generate(ctx, opt.topic, refs)
}

// fileDataURI reads a local image into a data: URI. Data URIs pass through.
func fileDataURI(ref string) (string, error) {
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	b, err := os.ReadFile(ref)
	if err != nil {
		return "", err
	}
	return imagepkg.EncodeDataURI(http.DetectContentType(b), b), nil
}

func buildStyle(catalog presets.Catalog, opt options) (deck.Style, error) {
	s := deck.Style{
		BackgroundID:   opt.background,
		TitleFont:      opt.titleFont,
		BodyFont:       opt.bodyFont,
		OverlayColor:   opt.overlay,
		OverlayOpacity: opt.opacity,
	}
	if _, ok := catalog.Find(opt.background); !ok {
		bg := opt.background
		if !strings.Contains(bg, ":") {
			uri, err := fileDataURI(bg)
			if err != nil {
				return deck.Style{}, fmt.Errorf("background: %w", err)
			}
			bg = uri
		}
		s.BackgroundID = deck.CustomBackgroundID
		s.CustomBackground = bg
	}
	return catalog.ResolveBackground(s), nil
}
