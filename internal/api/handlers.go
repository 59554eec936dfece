package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/carouselapp/internal/deck"
	"github.com/youruser/carouselapp/internal/export"
	imagepkg "github.com/youruser/carouselapp/internal/image"
	"github.com/youruser/carouselapp/internal/planner"
	"github.com/youruser/carouselapp/internal/presets"
)

// Planner produces a deck from a topic and optional reference images.
type Planner interface {
	Generate(ctx context.Context, topic string, refs []string) (*deck.Deck, error)
}

// FontLister reports the font families installed on the server.
type FontLister interface {
	Families() []string
	Has(family string) bool
}

var errNoPlanner = errors.New("no planner configured, set API_KEY")

// QR code size bounds for /qr.
const (
	qrDefaultSize = 400
	qrMinSize     = 64
	qrMaxSize     = 2048
)

// Handler carries the dependencies of every route.
type Handler struct {
	Store    *deck.Store
	Planner  Planner // nil disables plan generation
	Renderer export.Renderer
	Catalog  presets.Catalog
	Fonts    FontLister
	Workers  int
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, deck.ErrDeckNotFound), errors.Is(err, deck.ErrSlideNotFound):
		return http.StatusNotFound
	case errors.Is(err, deck.ErrLastSlide):
		return http.StatusConflict
	case errors.Is(err, deck.ErrImageIndex), errors.Is(err, deck.ErrInvalidSide), errors.Is(err, planner.ErrEmptyTopic):
		return http.StatusBadRequest
	case errors.Is(err, errNoPlanner):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// health
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "plans": h.Store.Len()})
}

// presetsHandler lists catalog entries filtered by kind, side and q.
func (h *Handler) presetsHandler(c *gin.Context) {
	var opt presets.FilterOptions
	if err := c.ShouldBindQuery(&opt); err != nil {
		badRequest(c, err)
		return
	}
	h.writePresets(c, opt)
}

// filterHandler takes the same filter as a JSON body.
func (h *Handler) filterHandler(c *gin.Context) {
	var opt presets.FilterOptions
	if err := c.ShouldBindJSON(&opt); err != nil {
		badRequest(c, err)
		return
	}
	h.writePresets(c, opt)
}

func (h *Handler) writePresets(c *gin.Context, opt presets.FilterOptions) {
	out := presets.Filter(h.Catalog.Presets, opt)
	c.JSON(http.StatusOK, gin.H{
		"count":    len(out),
		"presets":  out,
		"overlays": h.Catalog.Overlays,
		"default":  h.Catalog.DefaultStyle(),
	})
}

type fontStatus struct {
	presets.FontOption
	// Installed is false when renders fall back to the embedded Go fonts.
	Installed bool `json:"installed"`
}

func (h *Handler) fontsHandler(c *gin.Context) {
	families := []string{}
	opts := make([]fontStatus, 0, len(h.Catalog.Fonts))
	for _, f := range h.Catalog.Fonts {
		opts = append(opts, fontStatus{FontOption: f, Installed: h.Fonts != nil && h.Fonts.Has(f.ID)})
	}
	if h.Fonts != nil {
		families = h.Fonts.Families()
	}
	c.JSON(http.StatusOK, gin.H{"fonts": opts, "installed": families})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		badRequest(c, errors.New("text is required"))
		return
	}
	size := qrDefaultSize
	if sizeStr := c.Query("size"); sizeStr != "" {
		v, err := strconv.Atoi(sizeStr)
		if err != nil || v < qrMinSize || v > qrMaxSize {
			badRequest(c, errors.New("size must be an integer between 64 and 2048"))
			return
		}
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (h *Handler) createPlan(c *gin.Context) {
	var req struct {
		Topic           string   `json:"topic"`
		ReferenceImages []string `json:"reference_images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if h.Planner == nil {
		abort(c, errNoPlanner)
		return
	}
	d, err := h.Planner.Generate(c.Request.Context(), req.Topic, req.ReferenceImages)
	if err != nil {
		if errors.Is(err, planner.ErrEmptyTopic) {
			abort(c, err)
			return
		}
		log.Printf("api: plan %q failed: %v", req.Topic, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.Store.Create(d))
}

func (h *Handler) getPlan(c *gin.Context) {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) deletePlan(c *gin.Context) {
	if err := h.Store.Delete(c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// update applies fn to the plan named in the path and writes the result.
func (h *Handler) update(c *gin.Context, fn func(*deck.Deck) error) {
	d, err := h.Store.Update(c.Param("id"), fn)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) getCaption(c *gin.Context) {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.String(http.StatusOK, "%s", d.Caption)
}

func (h *Handler) setCaption(c *gin.Context) {
	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, func(d *deck.Deck) error {
		d.SetCaption(req.Caption)
		return nil
	})
}

func (h *Handler) exportText(c *gin.Context) {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="carousel.txt"`)
	c.String(http.StatusOK, "%s", deck.ExportText(d))
}

func (h *Handler) addSlide(c *gin.Context) {
	var added deck.Slide
	d, err := h.Store.Update(c.Param("id"), func(d *deck.Deck) error {
		added = d.AddSlide()
		return nil
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slide": added, "plan": d})
}

func (h *Handler) patchSlide(c *gin.Context) {
	var p deck.SlidePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, func(d *deck.Deck) error {
		_, err := d.UpdateSlide(c.Param("slideID"), p)
		return err
	})
}

func (h *Handler) deleteSlide(c *gin.Context) {
	h.update(c, func(d *deck.Deck) error {
		return d.RemoveSlide(c.Param("slideID"))
	})
}

func (h *Handler) addImages(c *gin.Context) {
	var req struct {
		Images []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, func(d *deck.Deck) error {
		return d.AddImages(c.Param("slideID"), req.Images...)
	})
}

func (h *Handler) deleteImage(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abort(c, deck.ErrImageIndex)
		return
	}
	h.update(c, func(d *deck.Deck) error {
		return d.RemoveImage(c.Param("slideID"), i)
	})
}

func (h *Handler) moveImage(c *gin.Context) {
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.From == nil || req.To == nil {
		badRequest(c, errors.New("from and to are required"))
		return
	}
	h.update(c, func(d *deck.Deck) error {
		return d.MoveImage(c.Param("slideID"), *req.From, *req.To)
	})
}

// setSticker attaches a sticker. Without a URL the current sticker is kept,
// or the first preset for the side is used.
func (h *Handler) setSticker(c *gin.Context) {
	var st deck.Sticker
	if err := c.ShouldBindJSON(&st); err != nil {
		badRequest(c, err)
		return
	}
	side := deck.Side(c.Param("side"))
	h.update(c, func(d *deck.Deck) error {
		s, err := d.Slide(c.Param("slideID"))
		if err != nil {
			return err
		}
		if st.URL == "" && s.Sticker(side) == nil {
			st.URL = h.Catalog.FirstSticker(side)
		}
		_, err = d.SetSticker(s.ID, side, st)
		return err
	})
}

func (h *Handler) clearSticker(c *gin.Context) {
	h.update(c, func(d *deck.Deck) error {
		return d.ClearSticker(c.Param("slideID"), deck.Side(c.Param("side")))
	})
}

type renderRequest struct {
	Author string      `json:"author"`
	Style  *deck.Style `json:"style"`
}

// bindRender reads an optional render body. An empty body means no author
// and the default style.
func (h *Handler) bindRender(c *gin.Context) (renderRequest, bool) {
	var req renderRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	// chunked bodies report no length until read
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return req, false
	}
	return req, true
}

func (h *Handler) style(s *deck.Style) deck.Style {
	if s == nil {
		return h.Catalog.DefaultStyle()
	}
	return h.Catalog.ResolveBackground(*s)
}

func wantsDataURI(c *gin.Context) bool {
	return c.Query("format") == "datauri"
}

func (h *Handler) renderSlide(c *gin.Context) {
	req, ok := h.bindRender(c)
	if !ok {
		return
	}
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	index := -1
	for i, s := range d.Slides {
		if s.ID == c.Param("slideID") {
			index = i
		}
	}
	if index < 0 {
		abort(c, deck.ErrSlideNotFound)
		return
	}
	b, err := h.Renderer.RenderPNG(c.Request.Context(), d.Slides[index], req.Author, h.style(req.Style))
	if err != nil {
		abort(c, err)
		return
	}
	writePNG(c, b, export.FileName(index))
}

func writePNG(c *gin.Context, b []byte, name string) {
	if wantsDataURI(c) {
		c.JSON(http.StatusOK, gin.H{"file_name": name, "data_uri": export.DataURI(b)})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "image/png", b)
}

func (h *Handler) renderPlan(c *gin.Context) {
	req, ok := h.bindRender(c)
	if !ok {
		return
	}
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	rendered, err := export.RenderDeck(c.Request.Context(), h.Renderer, d, req.Author, h.style(req.Style), h.Workers)
	if err != nil {
		log.Printf("api: render plan %s: %v", d.ID, err)
		abort(c, err)
		return
	}

	if wantsDataURI(c) {
		slides := make([]gin.H, 0, len(rendered))
		for _, r := range rendered {
			slides = append(slides, gin.H{
				"index":     r.Index,
				"slide_id":  r.SlideID,
				"file_name": export.FileName(r.Index),
				"data_uri":  export.DataURI(r.PNG),
			})
		}
		c.JSON(http.StatusOK, gin.H{"caption": d.Caption, "slides": slides})
		return
	}

	buf := new(bytes.Buffer)
	if err := export.WriteZip(buf, rendered, d.Caption); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="carousel.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// renderStateless renders a slide sent in the request body.
func (h *Handler) renderStateless(c *gin.Context) {
	var req struct {
		Slide  deck.Slide  `json:"slide"`
		Author string      `json:"author"`
		Style  *deck.Style `json:"style"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	slide := req.Slide
	slide.Kind = deck.ParseKind(string(slide.Kind))
	b, err := h.Renderer.RenderPNG(c.Request.Context(), slide, req.Author, h.style(req.Style))
	if err != nil {
		abort(c, err)
		return
	}
	writePNG(c, b, export.FileName(0))
}
