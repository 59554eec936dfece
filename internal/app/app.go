// Package app wires configuration into the compositor, planner and HTTP
// server shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youruser/carouselapp/internal/api"
	"github.com/youruser/carouselapp/internal/config"
	"github.com/youruser/carouselapp/internal/deck"
	"github.com/youruser/carouselapp/internal/fonts"
	imagepkg "github.com/youruser/carouselapp/internal/image"
	"github.com/youruser/carouselapp/internal/planner"
	"github.com/youruser/carouselapp/internal/presets"
)

const shutdownTimeout = 10 * time.Second

// Fonts builds the font registry for cfg.
func Fonts(cfg config.Config) *fonts.Registry {
	if cfg.SystemFonts {
		return fonts.NewWithSystem(cfg.FontDirs...)
	}
	return fonts.New(cfg.FontDirs...)
}

// Compositor builds a compositor that loads images with the configured
// fetch limits.
func Compositor(cfg config.Config, reg *fonts.Registry) *imagepkg.Compositor {
	loader := imagepkg.NewLoader(cfg.FetchTimeout, cfg.MaxImageBytes)
	loader.AllowedHosts = cfg.AllowedHosts
	return imagepkg.NewCompositor(reg, loader)
}

// Planner returns nil, without error, when no API key is configured.
func Planner(ctx context.Context, cfg config.Config) (*planner.Planner, error) {
	p, err := planner.FromConfig(ctx, cfg)
	if errors.Is(err, planner.ErrNoAPIKey) {
		return nil, nil
	}
	return p, err
}

// Run serves the HTTP API until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	catalog, err := presets.LoadCatalog(cfg.DataDir)
	if err != nil {
		log.Printf("Warning: failed to load catalogs from %s: %v", cfg.DataDir, err)
		catalog = presets.Builtin()
	}
	reg := Fonts(cfg)

	h := &api.Handler{
		Store:    deck.NewStore(),
		Renderer: Compositor(cfg, reg),
		Catalog:  catalog,
		Fonts:    reg,
		Workers:  cfg.RenderWorkers,
	}
	p, err := Planner(ctx, cfg)
	if err != nil {
		return err
	}
	if p != nil {
		h.Planner = p
		log.Printf("planner: %s model %s", cfg.Provider, cfg.Model)
	} else {
		log.Println("Warning: API_KEY not set, plan generation disabled")
	}

	r := gin.Default()
	api.RegisterRoutes(r, h)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Println("starting server on http://localhost:" + cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
