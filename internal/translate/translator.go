// ABOUTME: Kid-friendly translation, speech and word suggestions via Gemini
// ABOUTME: Builds prompts and schemas and maps responses onto WordBuddy types
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/harperreed/wordbuddy/pkg/gemini"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultTTSModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice    = "Puck"

	// Suggestion fallbacks
	EmptySuggestion    = "Puppy"
	FallbackSuggestion = "Butterfly"
)

var (
	// ErrNoResponse is returned when the model answers with nothing usable
	ErrNoResponse = errors.New("no response from AI")

	// ErrNoAudio is returned when a speech response carries no audio
	ErrNoAudio = errors.New("no audio data received")

	inputPattern = regexp.MustCompile(`^[A-Za-z\s]*$`)
)

// Result is a translated word with learning aids
type Result struct {
	Original          string `json:"original"`
	TranslatedText    string `json:"translatedText"`
	Phonetic          string `json:"phonetic"`
	PronunciationNote string `json:"pronunciationNote"`
	Emoji             string `json:"emoji"`
	FunFact           string `json:"funFact"`
}

// Generator is the part of the Gemini client the translator needs
type Generator interface {
	GenerateContent(ctx context.Context, model string, req *gemini.Request) (*gemini.Response, error)
}

// Config selects models and voice
type Config struct {
	Model    string
	TTSModel string
	Voice    string
}

// Translator talks to Gemini on behalf of the app
type Translator struct {
	gen    Generator
	config Config
}

// New creates a translator
func New(gen Generator, config Config) *Translator {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.TTSModel == "" {
		config.TTSModel = DefaultTTSModel
	}
	if config.Voice == "" {
		config.Voice = DefaultVoice
	}
	return &Translator{gen: gen, config: config}
}

var resultSchema = &gemini.Schema{
	Type: "OBJECT",
	Properties: map[string]*gemini.Schema{
		"translatedText": {Type: "STRING", Description: "The translated word or phrase."},
		"phonetic": {Type: "STRING",
			Description: "A simplified phonetic pronunciation guide for a child (e.g., 'Oh-lah' for Hola)."},
		"pronunciationNote": {Type: "STRING",
			Description: "A helpful pronunciation tip for a child using comparisons, rhymes, or sound-alikes."},
		"emoji": {Type: "STRING", Description: "A single relevant emoji representing the word."},
		"funFact": {Type: "STRING",
			Description: "A very short, fun example sentence or fact about this word in English (max 10 words)."},
	},
	Required: []string{"translatedText", "phonetic", "pronunciationNote", "emoji", "funFact"},
}

// Translate translates text into lang for a young learner
func (t *Translator) Translate(ctx context.Context, text string, lang Language) (Result, error) {
	prompt := fmt.Sprintf("Translate the following English word or phrase: %q into %s.\n"+
		"Target audience: A young child (5-10 years old).\nReturn a JSON object.", text, lang.Name)

	resp, err := t.gen.GenerateContent(ctx, t.config.Model, &gemini.Request{
		Contents: gemini.UserText(prompt),
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   resultSchema,
		},
	})
	if err != nil {
		log.Printf("Translation error: %v", err)
		return Result{}, fmt.Errorf("translate %q: %w", text, err)
	}

	body := strings.TrimSpace(resp.Text())
	if body == "" {
		return Result{}, ErrNoResponse
	}

	var result Result
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return Result{}, fmt.Errorf("failed to parse translation: %w", err)
	}
	result.Original = text
	return result, nil
}

// Speak returns base64 16-bit 24kHz mono PCM of text spoken in lang
func (t *Translator) Speak(ctx context.Context, text string, lang Language) (string, error) {
	prompt := fmt.Sprintf("Say the following text clearly in %s: %q", lang.Name, text)

	resp, err := t.gen.GenerateContent(ctx, t.config.TTSModel, &gemini.Request{
		Contents: gemini.UserText(prompt),
		GenerationConfig: &gemini.GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &gemini.SpeechConfig{
				VoiceConfig: gemini.VoiceConfig{
					PrebuiltVoiceConfig: gemini.PrebuiltVoiceConfig{VoiceName: t.config.Voice},
				},
			},
		},
	})
	if err != nil {
		log.Printf("TTS error: %v", err)
		return "", fmt.Errorf("speak %q: %w", text, err)
	}

	inline := resp.InlineData()
	if inline == nil {
		return "", ErrNoAudio
	}
	return inline.Data, nil
}

// SuggestWord asks for a simple word to practice. It never fails.
func (t *Translator) SuggestWord(ctx context.Context) string {
	resp, err := t.gen.GenerateContent(ctx, t.config.Model, &gemini.Request{
		Contents: gemini.UserText("Give me one random, simple, fun English word for a child to learn " +
			"to translate (e.g., animals, food, colors, adventure objects). Just return the word."),
	})
	if err != nil {
		log.Printf("Suggestion failed: %v", err)
		return FallbackSuggestion
	}

	word := strings.TrimSpace(resp.Text())
	if word == "" {
		return EmptySuggestion
	}
	return word
}

// FilterInput reports whether s contains only letters and whitespace
func FilterInput(s string) (string, bool) {
	if !inputPattern.MatchString(s) {
		return "", false
	}
	return s, true
}
