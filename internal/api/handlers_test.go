package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/youruser/carouselapp/internal/deck"
	"github.com/youruser/carouselapp/internal/fonts"
	imagepkg "github.com/youruser/carouselapp/internal/image"
	"github.com/youruser/carouselapp/internal/planner"
	"github.com/youruser/carouselapp/internal/presets"
)

type fakePlanner struct {
	err    error
	topics []string
}

func (f *fakePlanner) Generate(ctx context.Context, topic string, refs []string) (*deck.Deck, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, planner.ErrEmptyTopic
	}
	f.topics = append(f.topics, topic)
	if f.err != nil {
		return nil, f.err
	}
	return &deck.Deck{
		Topic:   topic,
		Caption: "Hook line",
		Slides: []deck.Slide{
			{ID: "s1", Kind: deck.KindIntro, Title: "Cover", Images: []string{}},
			{ID: "s2", Kind: deck.KindContent, Title: "Step", Content: []string{"do it"}, Images: []string{}},
		},
	}, nil
}

type fakeRenderer struct {
	mu     sync.Mutex
	styles []deck.Style
}

func (f *fakeRenderer) RenderPNG(ctx context.Context, s deck.Slide, author string, style deck.Style) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.styles = append(f.styles, style)
	return []byte("png:" + s.ID + ":" + author), nil
}

type testEnv struct {
	router   *gin.Engine
	store    *deck.Store
	planner  *fakePlanner
	renderer *fakeRenderer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		store:    deck.NewStore(),
		planner:  &fakePlanner{},
		renderer: &fakeRenderer{},
	}
	r := gin.New()
	RegisterRoutes(r, &Handler{
		Store:    env.store,
		Planner:  env.planner,
		Renderer: env.renderer,
		Catalog:  presets.Builtin(),
		Fonts:    fonts.New(),
		Workers:  2,
	})
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createPlan(t *testing.T) *deck.Deck {
	t.Helper()
	w := e.do(http.MethodPost, "/api/plans", gin.H{"topic": "reading habits"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: %d %s", w.Code, w.Body.String())
	}
	return decodeDeck(t, w)
}

func decodeDeck(t *testing.T, w *httptest.ResponseRecorder) *deck.Deck {
	t.Helper()
	var d deck.Deck
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode deck: %v: %s", err, w.Body.String())
	}
	return &d
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("expected error body, got %s", w.Body.String())
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	var out struct {
		Status string `json:"status"`
		Plans  int    `json:"plans"`
	}
	w := env.do(http.MethodGet, "/api/health", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || w.Code != http.StatusOK || out.Status != "ok" || out.Plans != 0 {
		t.Fatalf("unexpected %d %s", w.Code, w.Body.String())
	}
	env.createPlan(t)
	w = env.do(http.MethodGet, "/api/health", nil)
	json.Unmarshal(w.Body.Bytes(), &out)
	if out.Plans != 1 {
		t.Fatalf("expected 1 stored plan, got %s", w.Body.String())
	}
}

func TestCreatePlanKeepsEmptyLists(t *testing.T) {
	env := newEnv(t)
	w := env.do(http.MethodPost, "/api/plans", gin.H{"topic": "reading habits"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: %d %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if strings.Contains(body, "null") {
		t.Fatalf("empty lists encoded as null: %s", body)
	}
	if !strings.Contains(body, `"images":[]`) {
		t.Fatalf("expected empty images array: %s", body)
	}

	var raw struct {
		Slides []map[string]json.RawMessage `json:"slides"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if got := string(raw.Slides[0]["content"]); got != "[]" {
		t.Fatalf("intro content = %s, want []", got)
	}
}

func TestCreateAndGetPlan(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)
	if d.ID == "" || len(d.Slides) != 2 || d.Caption != "Hook line" {
		t.Fatalf("unexpected deck %+v", d)
	}
	w := env.do(http.MethodGet, "/api/plans/"+d.ID, nil)
	if w.Code != http.StatusOK || decodeDeck(t, w).ID != d.ID {
		t.Fatalf("get plan: %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/api/plans/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := env.do(http.MethodDelete, "/api/plans/"+d.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if env.store.Len() != 0 {
		t.Fatal("plan not deleted")
	}
}

func TestCreatePlanErrors(t *testing.T) {
	env := newEnv(t)
	if w := env.do(http.MethodPost, "/api/plans", gin.H{"topic": "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty topic: expected 400, got %d", w.Code)
	}
	env.planner.err = errors.New("upstream down")
	w := env.do(http.MethodPost, "/api/plans", gin.H{"topic": "x"})
	if w.Code != http.StatusBadGateway || !strings.Contains(errorOf(t, w), "upstream down") {
		t.Fatalf("planner failure: expected 502, got %d", w.Code)
	}
	if env.store.Len() != 0 {
		t.Fatal("failed plans must not be stored")
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, &Handler{Store: deck.NewStore(), Renderer: &fakeRenderer{}, Catalog: presets.Builtin()})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", strings.NewReader(`{"topic":"x"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("no planner: expected 503, got %d", rec.Code)
	}
}

func TestCaptionAndExport(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)
	w := env.do(http.MethodPut, "/api/plans/"+d.ID+"/caption", gin.H{"caption": "New caption ✨"})
	if w.Code != http.StatusOK || decodeDeck(t, w).Caption != "New caption ✨" {
		t.Fatalf("set caption: %d %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodGet, "/api/plans/"+d.ID+"/caption", nil)
	if w.Body.String() != "New caption ✨" || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("get caption: %q", w.Body.String())
	}
	w = env.do(http.MethodGet, "/api/plans/"+d.ID+"/export.txt", nil)
	want := "New caption ✨\n\n1. Cover\n2. Step\n   - do it"
	if w.Body.String() != want {
		t.Fatalf("export text: %q", w.Body.String())
	}
}

func TestSlideEditing(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)
	base := "/api/plans/" + d.ID + "/slides"

	w := env.do(http.MethodPost, base, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("add slide: %d %s", w.Code, w.Body.String())
	}
	var added struct {
		Slide deck.Slide `json:"slide"`
		Plan  deck.Deck  `json:"plan"`
	}
	json.Unmarshal(w.Body.Bytes(), &added)
	if added.Slide.Title != deck.NewSlideTitle || len(added.Plan.Slides) != 3 {
		t.Fatalf("unexpected added slide %+v", added)
	}

	w = env.do(http.MethodPatch, base+"/s2", gin.H{"title": "Renamed", "content": []string{"a", "b"}})
	got := decodeDeck(t, w)
	if w.Code != http.StatusOK || got.Slides[1].Title != "Renamed" || len(got.Slides[1].Content) != 2 {
		t.Fatalf("patch slide: %d %s", w.Code, w.Body.String())
	}
	if w := env.do(http.MethodPatch, base+"/missing", gin.H{"title": "x"}); w.Code != http.StatusNotFound {
		t.Fatalf("patch missing: expected 404, got %d", w.Code)
	}

	for _, id := range []string{"s1", added.Slide.ID} {
		if w := env.do(http.MethodDelete, base+"/"+id, nil); w.Code != http.StatusOK {
			t.Fatalf("delete %s: %d", id, w.Code)
		}
	}
	w = env.do(http.MethodDelete, base+"/s2", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("deleting the last slide: expected 409, got %d", w.Code)
	}
	errorOf(t, w)
}

func TestImageEditing(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)
	base := "/api/plans/" + d.ID + "/slides/s2/images"

	w := env.do(http.MethodPost, base, gin.H{"images": []string{"a", "b", "c"}})
	if got := decodeDeck(t, w).Slides[1].Images; len(got) != 3 {
		t.Fatalf("add images: %v", got)
	}
	w = env.do(http.MethodPost, base+"/move", gin.H{"from": 0, "to": 2})
	if got := decodeDeck(t, w).Slides[1].Images; strings.Join(got, "") != "bca" {
		t.Fatalf("move: %v", got)
	}
	w = env.do(http.MethodDelete, base+"/1", nil)
	if got := decodeDeck(t, w).Slides[1].Images; strings.Join(got, "") != "ba" {
		t.Fatalf("delete image: %v", got)
	}
	if w := env.do(http.MethodDelete, base+"/9", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad index: expected 400, got %d", w.Code)
	}
	if w := env.do(http.MethodDelete, base+"/x", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric index: expected 400, got %d", w.Code)
	}
	if w := env.do(http.MethodPost, base+"/move", gin.H{"from": 0}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing to: expected 400, got %d", w.Code)
	}
}

func TestStickers(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)
	base := "/api/plans/" + d.ID + "/slides/s1/stickers/"
	cat := presets.Builtin()

	w := env.do(http.MethodPut, base+"right", gin.H{"label": "Swipe", "scale": 5})
	st := decodeDeck(t, w).Slides[0].StickerRight
	if st == nil || st.URL != cat.FirstSticker(deck.SideRight) || st.Scale != deck.MaxStickerScale || st.Label != "Swipe" {
		t.Fatalf("unexpected sticker %+v", st)
	}
	w = env.do(http.MethodPut, base+"right", gin.H{"url": "qr:https://example.com", "scale": 0.1})
	st = decodeDeck(t, w).Slides[0].StickerRight
	if st.URL != "qr:https://example.com" || st.Scale != deck.MinStickerScale {
		t.Fatalf("unexpected sticker %+v", st)
	}
	if w := env.do(http.MethodPut, base+"top", gin.H{"url": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad side: expected 400, got %d", w.Code)
	}
	w = env.do(http.MethodDelete, base+"right", nil)
	if decodeDeck(t, w).Slides[0].StickerRight != nil {
		t.Fatal("sticker not cleared")
	}
}

func TestRenderSlide(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)
	path := "/api/plans/" + d.ID + "/slides/s2/render"

	w := env.do(http.MethodPost, path, gin.H{"author": "@me", "style": gin.H{"background_id": "preset-2", "overlay_opacity": 150}})
	if w.Code != http.StatusOK || w.Body.String() != "png:s2:@me" {
		t.Fatalf("render: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "viral-slide-2.png") {
		t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}
	style := env.renderer.styles[0]
	if style.BackgroundURL != presets.Builtin().Presets[2].URL || style.OverlayOpacity != 100 || style.TitleFont != deck.DefaultTitleFont {
		t.Fatalf("style not resolved: %+v", style)
	}

	w = env.do(http.MethodPost, path+"?format=datauri", nil)
	var out struct {
		FileName string `json:"file_name"`
		DataURI  string `json:"data_uri"`
	}
	json.Unmarshal(w.Body.Bytes(), &out)
	if out.FileName != "viral-slide-2.png" || !strings.HasPrefix(out.DataURI, "data:image/png;base64,") {
		t.Fatalf("unexpected datauri response %s", w.Body.String())
	}
	if env.renderer.styles[1].BackgroundID != "preset-0" {
		t.Fatalf("empty body should use the default style: %+v", env.renderer.styles[1])
	}
	if w := env.do(http.MethodPost, "/api/plans/"+d.ID+"/slides/zzz/render", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRenderPlanZip(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)
	w := env.do(http.MethodPost, "/api/plans/"+d.ID+"/render", gin.H{"author": "@me"})
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/zip" {
		t.Fatalf("render plan: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "viral-slide-1.png,viral-slide-2.png,caption.txt" {
		t.Fatalf("unexpected entries %v", names)
	}

	w = env.do(http.MethodPost, "/api/plans/"+d.ID+"/render?format=datauri", nil)
	var out struct {
		Caption string `json:"caption"`
		Slides  []struct {
			Index    int    `json:"index"`
			SlideID  string `json:"slide_id"`
			FileName string `json:"file_name"`
		} `json:"slides"`
	}
	json.Unmarshal(w.Body.Bytes(), &out)
	if out.Caption != "Hook line" || len(out.Slides) != 2 || out.Slides[1].SlideID != "s2" || out.Slides[1].FileName != "viral-slide-2.png" {
		t.Fatalf("unexpected datauri batch %s", w.Body.String())
	}
}

func TestPresetsAndFonts(t *testing.T) {
	env := newEnv(t)
	w := env.do(http.MethodGet, "/api/presets?kind=sticker&side=left", nil)
	var out struct {
		Count   int              `json:"count"`
		Presets []presets.Preset `json:"presets"`
	}
	json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 4 {
		t.Fatalf("expected 4 left stickers, got %d", out.Count)
	}
	for _, p := range out.Presets {
		if p.Side != "left" || p.Kind != presets.KindSticker {
			t.Fatalf("filter leaked %+v", p)
		}
	}
	w = env.do(http.MethodPost, "/api/presets/filter", gin.H{"kind": "background"})
	json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 8 {
		t.Fatalf("expected 8 backgrounds, got %d", out.Count)
	}

	w = env.do(http.MethodGet, "/api/fonts", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Montserrat") {
		t.Fatalf("fonts: %d %s", w.Code, w.Body.String())
	}
}

func TestFontsReportInstalled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := fonts.New()
	if err := reg.LoadFontData("Montserrat", goregular.TTF); err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	RegisterRoutes(r, &Handler{Store: deck.NewStore(), Catalog: presets.Builtin(), Fonts: reg})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/fonts", nil))
	var out struct {
		Fonts []struct {
			ID        string `json:"id"`
			Installed bool   `json:"installed"`
		} `json:"fonts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || len(out.Fonts) != len(presets.Builtin().Fonts) {
		t.Fatalf("fonts: %d %s", w.Code, w.Body.String())
	}
	for _, f := range out.Fonts {
		if want := f.ID == "Montserrat"; f.Installed != want {
			t.Fatalf("%s installed = %v, want %v", f.ID, f.Installed, want)
		}
	}
}

func TestRenderSlideChunkedEmptyBody(t *testing.T) {
	env := newEnv(t)
	d := env.createPlan(t)

	req := httptest.NewRequest(http.MethodPost, "/api/plans/"+d.ID+"/slides/s1/render", strings.NewReader(""))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "png:s1:" {
		t.Fatalf("render: %d %s", w.Code, w.Body.String())
	}
	if got := env.renderer.styles[0].BackgroundID; got != "preset-0" {
		t.Fatalf("expected default style, got %q", got)
	}
}

func TestQR(t *testing.T) {
	env := newEnv(t)
	w := env.do(http.MethodGet, "/api/qr?text=hello&size=128", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("qr: %d", w.Code)
	}
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil || img.Bounds().Dx() != 128 {
		t.Fatalf("qr image: %v", err)
	}
	for _, q := range []string{"", "?text=x&size=abc", "?text=x&size=10"} {
		if w := env.do(http.MethodGet, "/api/qr"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, w.Code)
		}
	}
}

func TestRenderStatelessWithCompositor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, &Handler{
		Store:    deck.NewStore(),
		Renderer: imagepkg.NewCompositor(fonts.New(), imagepkg.NewLoader(time.Second, 0)),
		Catalog:  presets.Builtin(),
	})
	body := fmt.Sprintf(`{"slide":{"type":"weird","title":"Hello","content":["one"]},"author":"@me","style":{"background_id":"custom","custom_background":%q}}`,
		"data:image/svg+xml;utf8,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 4 4'%3E%3Crect width='4' height='4' fill='%2300ff00'/%3E%3C/svg%3E")
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("render: %d %s", w.Code, w.Body.String())
	}
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != imagepkg.CanvasWidth || img.Bounds().Dy() != imagepkg.CanvasHeight {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if _, g, _, _ := img.At(5, 5).RGBA(); g>>8 < 250 {
		t.Fatalf("custom background not drawn")
	}
}
