package planner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/youruser/carouselapp/internal/config"
)

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	return string(b)
}

func TestGeminiGenerate(t *testing.T) {
	var gotBody map[string]any
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, geminiReply(samplePlan))
	}))
	defer srv.Close()

	cfg := config.Config{
		APIKey:      "secret",
		Provider:    config.ProviderGemini,
		Model:       "gemini-2.5-flash",
		BaseURL:     srv.URL + "/",
		Temperature: 0.5,
	}
	p, err := FromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	d, err := p.Generate(context.Background(), "sleep better", []string{"data:image/jpeg;base64,/9j/AA=="})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(d.Slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(d.Slides))
	}

	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("api key header not sent")
	}
	gen := gotBody["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" || gen["responseSchema"] == nil {
		t.Errorf("json mode not requested: %v", gen)
	}
	if gen["temperature"].(float64) != 0.5 {
		t.Errorf("unexpected temperature %v", gen["temperature"])
	}
	parts := gotBody["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	if inline["mimeType"] != "image/jpeg" || inline["data"] != "/9j/AA==" {
		t.Errorf("unexpected inline data %v", inline)
	}
	if !strings.Contains(parts[1].(map[string]any)["text"].(string), "sleep better") {
		t.Errorf("prompt part missing topic")
	}
}

func TestGeminiAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"code":429,"message":"quota"}}`)
	}))
	defer srv.Close()

	m, err := NewGeminiChatModel(context.Background(), &GeminiConfig{APIKey: "k", Model: "m", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, err = New(m, 0.7, "").Generate(context.Background(), "x", nil)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestParseGeminiResponse(t *testing.T) {
	msg, err := parseGeminiResponse([]byte(`{"candidates":[{"content":{"parts":[{"text":"plan","thought":true},{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Content != `{"a":1}` {
		t.Fatalf("unexpected content %q", msg.Content)
	}
	if _, err := parseGeminiResponse([]byte(`{"candidates":[]}`)); err != ErrEmptyResponse {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := parseGeminiResponse([]byte(`{"error":{"code":400,"message":"bad"}}`)); err == nil {
		t.Fatal("expected api error")
	}
}

func TestInlineData(t *testing.T) {
	mime, data, err := inlineData("data:image/webp;base64,UklG")
	if err != nil || mime != "image/webp" || data != "UklG" {
		t.Fatalf("unexpected %q %q %v", mime, data, err)
	}
	mime, data, err = inlineData("iVBORw0")
	if err != nil || mime != "image/png" || data != "iVBORw0" {
		t.Fatalf("bare base64: %q %q %v", mime, data, err)
	}
	if _, _, err := inlineData("data:image/svg+xml,%3Csvg%3E"); err == nil {
		t.Fatal("expected error for non-base64 data uri")
	}
}

func TestFromConfig(t *testing.T) {
	if _, err := FromConfig(context.Background(), config.Config{Provider: config.ProviderGemini}); err != ErrNoAPIKey {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	p, err := FromConfig(context.Background(), config.Config{
		APIKey:   "k",
		Provider: config.ProviderOpenAI,
		Model:    "gpt-4o-mini",
		Language: "English",
	})
	if err != nil {
		t.Fatalf("openai planner: %v", err)
	}
	if p.Language != "English" || p.Model == nil {
		t.Fatalf("unexpected planner %+v", p)
	}
}
