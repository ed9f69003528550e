package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/neexbeast/citywalk/internal/audio"
	"github.com/neexbeast/citywalk/internal/tour"
)

const (
	DefaultTextModel   = "gemini-2.5-flash"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice       = "Kore"
)

var errEmptyResponse = errors.New("gemini returned an empty response")

// modelAPI is the subset of *genai.Models used here.
type modelAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config selects the models and voice used by Client.
type Config struct {
	APIKey      string
	TextModel   string
	SpeechModel string
	Voice       string
}

// Client generates tour JSON and narration audio with the Gemini API.
// It implements tour.Generator and audio.Synthesizer.
type Client struct {
	models      modelAPI
	textModel   string
	speechModel string
	voice       string
}

// New creates a Client. An empty API key yields a Client whose calls fail
// with the package's unavailable errors.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return newClient(nil, cfg), nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newClient(client.Models, cfg), nil
}

func newClient(models modelAPI, cfg Config) *Client {
	c := &Client{
		models:      models,
		textModel:   cfg.TextModel,
		speechModel: cfg.SpeechModel,
		voice:       cfg.Voice,
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	if c.speechModel == "" {
		c.speechModel = DefaultSpeechModel
	}
	if c.voice == "" {
		c.voice = DefaultVoice
	}
	return c
}

// Available reports whether the client can reach the API.
func (c *Client) Available() bool {
	return c.models != nil
}

// GenerateTours asks the text model for tours of city written in lang and
// returns the raw JSON text.
func (c *Client) GenerateTours(ctx context.Context, city, lang string) (string, error) {
	if c.models == nil {
		return "", tour.ErrGeneratorUnavailable
	}

	resp, err := c.models.GenerateContent(ctx, c.textModel, genai.Text(TourPrompt(city, lang)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", fmt.Errorf("generating tours for %s: %w", city, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// Synthesize speaks text in lang and returns raw 24 kHz mono PCM16.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	if c.models == nil {
		return nil, audio.ErrSynthesisUnavailable
	}

	resp, err := c.models.GenerateContent(ctx, c.speechModel, genai.Text(NarrationPrompt(text, lang)), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesizing speech: %w", err)
	}

	pcm := inlineAudio(resp)
	if len(pcm) == 0 {
		return nil, errEmptyResponse
	}
	return pcm, nil
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return nil
	}
	for _, part := range content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
