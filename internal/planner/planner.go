// Package planner asks a chat model for a carousel plan: a caption and an
// ordered list of slides.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/youruser/carouselapp/internal/deck"
)

var (
	ErrEmptyTopic    = errors.New("topic is empty")
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrNoSlides      = errors.New("plan has no slides")
)

// DefaultLanguage is the language slides are written in when none is set.
const DefaultLanguage = "Vietnamese"

// Planner turns a topic into a deck.
type Planner struct {
	Model       model.BaseChatModel
	Temperature float32
	Language    string
}

func New(m model.BaseChatModel, temperature float32, language string) *Planner {
	return &Planner{Model: m, Temperature: temperature, Language: language}
}

// Generate asks the model for a plan. refs are reference images as data:
// URIs; they are sent ahead of the text prompt.
func (p *Planner) Generate(ctx context.Context, topic string, refs []string) (*deck.Deck, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	var images []string
	for _, r := range refs {
		if r = strings.TrimSpace(r); r != "" {
			images = append(images, r)
		}
	}

	msg := userMessage(buildPrompt(topic, p.language(), len(images) > 0), images)
	resp, err := p.Model.Generate(ctx, []*schema.Message{msg}, model.WithTemperature(p.Temperature))
	if err != nil {
		log.Printf("planner: generate failed: %v", err)
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}
	d, err := ParsePlan(resp.Content)
	if err != nil {
		return nil, err
	}
	d.Topic = topic
	return d, nil
}

func (p *Planner) language() string {
	if l := strings.TrimSpace(p.Language); l != "" {
		return l
	}
	return DefaultLanguage
}

func userMessage(prompt string, images []string) *schema.Message {
	if len(images) == 0 {
		return schema.UserMessage(prompt)
	}
	parts := make([]schema.ChatMessagePart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{URL: img},
		})
	}
	parts = append(parts, schema.ChatMessagePart{Type: schema.ChatMessagePartTypeText, Text: prompt})
	return &schema.Message{Role: schema.User, MultiContent: parts}
}

func buildPrompt(topic, language string, withImages bool) string {
	var b strings.Builder
	b.WriteString("You are an expert creator of viral social media content (Facebook, Instagram, LinkedIn).\n")
	fmt.Fprintf(&b, "Task: create content for the topic: %q.\n", topic)
	fmt.Fprintf(&b, "Write every caption, title and bullet in %s.\n\n", language)
	if withImages {
		b.WriteString("Reference images are attached. Analyse their style, tone and mood, and any visible text, " +
			"and write content that matches that style.\n\n")
	}
	b.WriteString(`Output JSON with:
1. caption: a short Facebook caption (about 5-6 lines) with a strong hook that sparks curiosity, uses fitting emoji, reads naturally and invites likes, shares and comments.
2. slides: the slides of a carousel post.
   - The first slide MUST be the title slide (type "intro"). Its title is short, punchy, or promises big value.
   - The following slides (type "content") are detailed steps or tips, each with a title and short bullet points in "content".
   - Keep every slide concise so it looks good on a square image.
   - Use 4 to 8 slides in total.
Respond with the JSON object only.`)
	return b.String()
}

type rawPlan struct {
	Caption string     `json:"caption"`
	Slides  []rawSlide `json:"slides"`
}

type rawSlide struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
	Type    string   `json:"type"`
}

// ParsePlan decodes a model reply into a deck. Markdown code fences around
// the JSON are tolerated. Every slide gets a fresh ID and no images.
func ParsePlan(text string) (*deck.Deck, error) {
	text = stripFences(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	var raw rawPlan
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(raw.Slides) == 0 {
		return nil, ErrNoSlides
	}
	d := &deck.Deck{Caption: strings.TrimSpace(raw.Caption)}
	for _, s := range raw.Slides {
		content := make([]string, 0, len(s.Content))
		for _, l := range s.Content {
			if l = strings.TrimSpace(l); l != "" {
				content = append(content, l)
			}
		}
		d.Slides = append(d.Slides, deck.Slide{
			ID:      deck.NewSlideID(),
			Kind:    deck.ParseKind(strings.ToLower(strings.TrimSpace(s.Type))),
			Title:   strings.TrimSpace(s.Title),
			Content: content,
			Images:  []string{},
		})
	}
	return d, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// language tag, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
