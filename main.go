// ABOUTME: Entry point for WordBuddy
// ABOUTME: Parses CLI flags, wires translation, speech and playback, and runs the TUI or one-shot CLI
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harperreed/wordbuddy/internal/app"
	"github.com/harperreed/wordbuddy/internal/config"
	"github.com/harperreed/wordbuddy/internal/speechcache"
	"github.com/harperreed/wordbuddy/internal/translate"
	"github.com/harperreed/wordbuddy/internal/ui"
	"github.com/harperreed/wordbuddy/internal/version"
	"github.com/harperreed/wordbuddy/pkg/gemini"
	"github.com/harperreed/wordbuddy/pkg/playback"
)

var (
	word        = flag.String("word", "", "English word or phrase to translate")
	lang        = flag.String("lang", "Spanish", "Target language")
	speak       = flag.Bool("speak", false, "Speak the translation (with -no-tui)")
	backend     = flag.String("output", "", "Audio backend: malgo, oto, portaudio or remote")
	speakerAddr = flag.String("speaker", "", "Remote speaker address host:port, or \"auto\" to discover one")
	speakerBits = flag.Int("speaker-bits", 16, "PCM bit depth sent to a remote speaker (16 or 24)")
	logFile     = flag.String("log-file", "wordbuddy.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Translate -word once and print the result")
	model       = flag.String("model", translate.DefaultModel, "Gemini model for text")
	ttsModel    = flag.String("tts-model", translate.DefaultTTSModel, "Gemini model for speech")
	voice       = flag.String("voice", translate.DefaultVoice, "Prebuilt voice name")
	cacheDir    = flag.String("cache-dir", "", "Speech cache directory (default: temp dir)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *backend != "" {
		cfg.Output = *backend
	}
	if *speakerAddr != "" {
		cfg.Speaker = *speakerAddr
		cfg.Output = "remote"
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	language, ok := translate.LanguageByName(*lang)
	if !ok {
		log.Fatalf("Unknown language %q", *lang)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wordBuddy, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	log.Printf("Starting %s %s (output: %s)", version.Product, version.Version, cfg.Output)

	if useTUI {
		prog := ui.Run(ctx, wordBuddy, *word, languageIndex(language))
		if _, err := prog.Run(); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("TUI error: %v", err)
		}
		log.Printf("%s stopped", version.Product)
		return
	}

	if err := runOnce(ctx, wordBuddy, language); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp wires the translator, speech cache and player
func newApp(cfg *config.Config) (*app.App, error) {
	device, err := app.NewDevice(cfg.Output, cfg.Speaker, *speakerBits)
	if err != nil {
		return nil, err
	}

	player, err := playback.New(device)
	if err != nil {
		return nil, err
	}

	cache, err := speechcache.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	translator := translate.New(gemini.NewClient(cfg.APIKey), translate.Config{
		Model:    *model,
		TTSModel: *ttsModel,
		Voice:    *voice,
	})

	return app.New(translator, player, cache), nil
}

// runOnce translates -word (or a suggestion), prints the card and optionally speaks
func runOnce(ctx context.Context, a *app.App, language translate.Language) error {
	text := strings.TrimSpace(*word)
	if text == "" {
		text = a.Suggest(ctx)
		log.Printf("No -word given, using suggestion %q", text)
	}

	result, err := a.Translate(ctx, text, language)
	if err != nil {
		return userFacing(err)
	}

	fmt.Printf("%s  %s %s\n", result.Emoji, language.Flag, result.TranslatedText)
	fmt.Printf("   %s\n", result.Original)
	fmt.Printf("   Say it: %s\n", result.Phonetic)
	fmt.Printf("   %s\n", result.PronunciationNote)
	fmt.Printf("   %s\n", result.FunFact)

	if *speak {
		if err := a.Speak(ctx, result.TranslatedText, language); err != nil {
			return userFacing(err)
		}
	}
	return nil
}

// userFacing returns the learner-friendly message for err
func userFacing(err error) error {
	var userErr *app.UserError
	if errors.As(err, &userErr) {
		log.Printf("Error: %v", userErr.Err)
		return errors.New(userErr.Message)
	}
	return err
}

func languageIndex(language translate.Language) int {
	for i, l := range translate.Languages {
		if l.Name == language.Name {
			return i
		}
	}
	return 0
}
