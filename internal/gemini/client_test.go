package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/neexbeast/citywalk/internal/audio"
	"github.com/neexbeast/citywalk/internal/tour"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
	}}}
}

func TestNew_WithoutKeyIsUnavailable(t *testing.T) {
	c, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, c.Available())

	_, err = c.GenerateTours(context.Background(), "Madrid", "es")
	assert.ErrorIs(t, err, tour.ErrGeneratorUnavailable)

	_, err = c.Synthesize(context.Background(), "hola", "es")
	assert.ErrorIs(t, err, audio.ErrSynthesisUnavailable)
}

func TestGenerateTours(t *testing.T) {
	fake := &fakeModels{resp: textResponse("  [{\"title\":\"x\"}]\n")}
	c := newClient(fake, Config{})

	raw, err := c.GenerateTours(context.Background(), "Logroño", "es")
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"x"}]`, raw)
	assert.Equal(t, DefaultTextModel, fake.model)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Contains(t, fake.prompt, "Logroño")
	assert.Contains(t, fake.prompt, "Spanish")
}

func TestGenerateTours_Errors(t *testing.T) {
	c := newClient(&fakeModels{err: errors.New("quota")}, Config{})
	_, err := c.GenerateTours(context.Background(), "Madrid", "es")
	require.Error(t, err)
	assert.NotErrorIs(t, err, tour.ErrGeneratorUnavailable)

	c = newClient(&fakeModels{resp: textResponse("   ")}, Config{})
	_, err = c.GenerateTours(context.Background(), "Madrid", "es")
	assert.ErrorIs(t, err, errEmptyResponse)
}

func TestSynthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	fake := &fakeModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "ignored"},
			{InlineData: &genai.Blob{MIMEType: "audio/L16;rate=24000", Data: pcm}},
		}},
	}}}}
	c := newClient(fake, Config{Voice: "Puck"})

	got, err := c.Synthesize(context.Background(), "Bienvenidos", "es")
	require.NoError(t, err)
	assert.Equal(t, pcm, got)
	assert.Equal(t, DefaultSpeechModel, fake.model)
	assert.Equal(t, []string{"AUDIO"}, fake.config.ResponseModalities)
	assert.Equal(t, "Puck", fake.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	assert.Contains(t, fake.prompt, "Bienvenidos")
}

func TestSynthesize_NoAudio(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"nil content":   {Candidates: []*genai.Candidate{{}}},
		"text only":     textResponse("hello"),
	} {
		t.Run(name, func(t *testing.T) {
			c := newClient(&fakeModels{resp: resp}, Config{})
			_, err := c.Synthesize(context.Background(), "hi", "en")
			assert.ErrorIs(t, err, errEmptyResponse)
		})
	}
}

func TestLanguageName(t *testing.T) {
	tests := map[string]string{
		"es":    "Spanish",
		"pt-BR": "Portuguese",
		"FR":    "French",
		"":      "English",
		"eu":    "eu",
	}
	for code, want := range tests {
		assert.Equal(t, want, LanguageName(code), code)
	}
}

func TestTourPrompt_ListsCategories(t *testing.T) {
	p := TourPrompt("Sevilla", "en")
	for _, c := range tour.Categories {
		assert.Contains(t, p, string(c))
	}
	assert.Contains(t, p, "English")
}
