// ABOUTME: WordBuddy application orchestration
// ABOUTME: Coordinates translation, speech synthesis, the speech cache and playback
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/harperreed/wordbuddy/internal/translate"
)

// Messages shown to the learner
const (
	MsgTranslateFailed = "Oops! Something went wrong. Try again!"
	MsgSpeakFailed     = "Could not play audio. Check your volume!"
)

// ErrBusy is returned when the same kind of request is already running
var ErrBusy = errors.New("busy")

// UserError pairs a friendly message with the underlying cause
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s (%v)", e.Message, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// Translator produces translations and speech
type Translator interface {
	Translate(ctx context.Context, text string, lang translate.Language) (translate.Result, error)
	Speak(ctx context.Context, text string, lang translate.Language) (string, error)
	SuggestWord(ctx context.Context) string
}

// Player plays base64 speech payloads
type Player interface {
	Play(ctx context.Context, encoded string) error
}

// Cache stores speech payloads between runs
type Cache interface {
	Get(language, text string) (string, bool)
	Put(language, text, payload string) error
}

// App is the WordBuddy application core shared by the TUI and CLI
type App struct {
	translator Translator
	player     Player
	cache      Cache

	translating atomic.Bool
	speaking    atomic.Bool
}

// New creates the app. cache may be nil.
func New(translator Translator, player Player, cache Cache) *App {
	return &App{
		translator: translator,
		player:     player,
		cache:      cache,
	}
}

// Translating reports whether a translation is in flight
func (a *App) Translating() bool {
	return a.translating.Load()
}

// Speaking reports whether speech is being fetched or played
func (a *App) Speaking() bool {
	return a.speaking.Load()
}

// Translate translates text for a learner. Blank text is a no-op that
// returns a zero Result and no error.
func (a *App) Translate(ctx context.Context, text string, lang translate.Language) (translate.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return translate.Result{}, nil
	}

	if !a.translating.CompareAndSwap(false, true) {
		return translate.Result{}, ErrBusy
	}
	defer a.translating.Store(false)

	log.Printf("Translating %q into %s", text, lang.Name)

	result, err := a.translator.Translate(ctx, text, lang)
	if err != nil {
		return translate.Result{}, &UserError{Message: MsgTranslateFailed, Err: err}
	}
	return result, nil
}

// Speak says text in lang, using the cache when possible. Blank text is a no-op.
func (a *App) Speak(ctx context.Context, text string, lang translate.Language) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if !a.speaking.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer a.speaking.Store(false)

	payload, err := a.speech(ctx, text, lang)
	if err != nil {
		return &UserError{Message: MsgSpeakFailed, Err: err}
	}

	if err := a.player.Play(ctx, payload); err != nil {
		log.Printf("Playback of %q failed: %v", text, err)
		return &UserError{Message: MsgSpeakFailed, Err: err}
	}
	return nil
}

// speech returns the payload for text from the cache or the API
func (a *App) speech(ctx context.Context, text string, lang translate.Language) (string, error) {
	if a.cache != nil {
		if payload, ok := a.cache.Get(lang.Name, text); ok {
			return payload, nil
		}
	}

	payload, err := a.translator.Speak(ctx, text, lang)
	if err != nil {
		return "", err
	}

	if a.cache != nil {
		if err := a.cache.Put(lang.Name, text, payload); err != nil {
			log.Printf("Failed to cache speech: %v", err)
		}
	}
	return payload, nil
}

// Suggest returns a word to practice
func (a *App) Suggest(ctx context.Context) string {
	return a.translator.SuggestWord(ctx)
}
