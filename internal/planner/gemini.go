package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiConfig holds configuration for the Gemini generateContent API.
type GeminiConfig struct {
	APIKey    string
	BaseURL   string // Optional custom base URL
	Model     string // e.g. "gemini-2.5-flash"
	MaxTokens int
	Timeout   time.Duration
	// ResponseSchema, when set, switches the model to JSON output
	// constrained by the schema.
	ResponseSchema map[string]any
}

// GeminiChatModel implements the eino BaseChatModel interface over the
// Gemini REST API.
type GeminiChatModel struct {
	config *GeminiConfig
	client *http.Client
}

func NewGeminiChatModel(ctx context.Context, config *GeminiConfig) (*GeminiChatModel, error) {
	if config == nil {
		return nil, fmt.Errorf("gemini config is nil")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("gemini model name is empty")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &GeminiChatModel{
		config: config,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Generate sends a request to Gemini API and returns the response
func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{}, opts...)

	reqBody, err := m.buildRequestBody(input, options)
	if err != nil {
		return nil, err
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	baseURL := m.config.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	modelName := m.config.Model
	if options.Model != nil && *options.Model != "" {
		modelName = *options.Model
	}
	fullURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, modelName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", m.config.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return parseGeminiResponse(respBody)
}

// buildRequestBody constructs the Gemini API request body
func (m *GeminiChatModel) buildRequestBody(input []*schema.Message, options *model.Options) (map[string]interface{}, error) {
	reqBody := map[string]interface{}{}

	var contents []map[string]interface{}
	var systemInstruction string

	for _, msg := range input {
		if msg.Role == schema.System {
			systemInstruction += msg.Content + "\n"
			continue
		}
		role := "user"
		if msg.Role == schema.Assistant {
			role = "model"
		}

		var parts []interface{}
		for _, p := range msg.MultiContent {
			switch p.Type {
			case schema.ChatMessagePartTypeText:
				if p.Text != "" {
					parts = append(parts, map[string]interface{}{"text": p.Text})
				}
			case schema.ChatMessagePartTypeImageURL:
				if p.ImageURL == nil {
					continue
				}
				mimeType, data, err := inlineData(p.ImageURL.URL)
				if err != nil {
					return nil, err
				}
				parts = append(parts, map[string]interface{}{
					"inlineData": map[string]interface{}{
						"mimeType": mimeType,
						"data":     data,
					},
				})
			}
		}
		if msg.Content != "" {
			parts = append(parts, map[string]interface{}{"text": msg.Content})
		}

		if len(parts) > 0 {
			contents = append(contents, map[string]interface{}{
				"role":  role,
				"parts": parts,
			})
		}
	}
	reqBody["contents"] = contents

	if systemInstruction != "" {
		reqBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": strings.TrimSpace(systemInstruction)},
			},
		}
	}

	generationConfig := map[string]interface{}{}
	switch {
	case options.MaxTokens != nil:
		generationConfig["maxOutputTokens"] = *options.MaxTokens
	case m.config.MaxTokens > 0:
		generationConfig["maxOutputTokens"] = m.config.MaxTokens
	default:
		generationConfig["maxOutputTokens"] = 8192
	}
	if options.Temperature != nil {
		generationConfig["temperature"] = *options.Temperature
	}
	if m.config.ResponseSchema != nil {
		generationConfig["responseMimeType"] = "application/json"
		generationConfig["responseSchema"] = m.config.ResponseSchema
	}
	reqBody["generationConfig"] = generationConfig

	return reqBody, nil
}

// inlineData splits a data: URI into the mime type and the base64 payload
// Gemini expects. Anything without a data: prefix is taken as bare
// base64 PNG.
func inlineData(ref string) (string, string, error) {
	if !strings.HasPrefix(ref, "data:") {
		return "image/png", ref, nil
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", "", fmt.Errorf("reference image must be a base64 data uri")
	}
	mimeType := strings.TrimSuffix(meta, ";base64")
	if mimeType == "" {
		mimeType = "image/png"
	}
	return mimeType, payload, nil
}

// parseGeminiResponse parses the Gemini API response
func parseGeminiResponse(respBody []byte) (*schema.Message, error) {
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text    string `json:"text,omitempty"`
					Thought bool   `json:"thought,omitempty"`
				} `json:"parts"`
				Role string `json:"role"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("gemini API error: %s (code: %d)", result.Error.Message, result.Error.Code)
	}
	if len(result.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	responseMsg := &schema.Message{Role: schema.Assistant}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		responseMsg.Content += part.Text
	}
	return responseMsg, nil
}

// Stream implements streaming response (not supported)
func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not supported for gemini")
}

// planSchema constrains Gemini output to the plan shape.
var planSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"caption": map[string]any{
			"type":        "STRING",
			"description": "Post caption, 5-6 engaging lines.",
		},
		"slides": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"title": map[string]any{"type": "STRING", "description": "Slide title"},
					"content": map[string]any{
						"type":        "ARRAY",
						"items":       map[string]any{"type": "STRING"},
						"description": "Bullet points of the slide",
					},
					"type": map[string]any{
						"type":        "STRING",
						"enum":        []string{"intro", "content"},
						"description": "intro for the cover, content for the rest",
					},
				},
				"required": []string{"title", "content", "type"},
			},
		},
	},
	"required": []string{"caption", "slides"},
}
