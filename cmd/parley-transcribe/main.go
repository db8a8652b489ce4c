// parley-transcribe replays recorded audio files through the configured
// recognizer, no microphone involved. Handy for checking captures from
// PARLEY_CAPTURE_DIR against a new model or locale.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"parley/internal/config"
	"parley/pkg/audioconv"
	"parley/pkg/stt"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	limit := cli.IntP("limit", "n", 0, "Max seconds of audio per file, 0 for all")
	cli.Parse()

	files := cli.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: parley-transcribe [flags] FILE...")
		os.Exit(2)
	}

	godotenv.Load(*envFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}

	ctx := context.Background()

	engine, err := newRecognizer(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "recognizer:", err)
		os.Exit(1)
	}
	defer engine.Close()

	failed := false
	for _, path := range files {
		pcm, err := audioconv.LoadPCM16k(path, *limit*16000)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}

		res, err := engine.Recognize(ctx, pcm, cfg.Locale)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}

		fmt.Printf("%s: %s\n", path, res.Text)
	}

	if failed {
		os.Exit(1)
	}
}

func newRecognizer(ctx context.Context, cfg *config.Config) (stt.Recognizer, error) {
	switch cfg.Engine {
	case config.EngineWhisper:
		return stt.NewWhisperRecognizer(cfg.WhisperModel)
	default:
		return stt.NewGoogleRecognizer(ctx)
	}
}
