// parley-check validates the resolved configuration and probes the default
// audio devices without starting a session.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gordonklaus/portaudio"
	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"parley/internal/config"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	cli.Parse()

	godotenv.Load(*envFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}

	fmt.Println("configuration ok")
	fmt.Printf("  model:         %s\n", cfg.Model)
	fmt.Printf("  max tokens:    %d\n", cfg.MaxTokens)
	fmt.Printf("  temperature:   %g\n", cfg.Temperature)
	fmt.Printf("  stt engine:    %s\n", cfg.Engine)
	fmt.Printf("  locale:        %s\n", cfg.Locale)
	fmt.Printf("  exit phrases:  %s\n", strings.Join(cfg.ExitPhrases, ", "))
	fmt.Printf("  reset phrases: %s\n", strings.Join(cfg.ResetPhrases, ", "))
	fmt.Printf("  log file:      %s\n", cfg.LogFile)

	if cfg.Engine == config.EngineGoogle && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		fmt.Println("note: GOOGLE_APPLICATION_CREDENTIALS not set, relying on ambient ADC")
	}

	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintln(os.Stderr, "portaudio:", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	in, err := portaudio.DefaultInputDevice()
	if err != nil {
		fmt.Fprintln(os.Stderr, "default input device:", err)
		os.Exit(1)
	}
	fmt.Printf("input device ok: %s (%.0f Hz, %d ch)\n", in.Name, in.DefaultSampleRate, in.MaxInputChannels)

	out, err := portaudio.DefaultOutputDevice()
	if err != nil {
		fmt.Fprintln(os.Stderr, "default output device:", err)
		os.Exit(1)
	}
	fmt.Printf("output device ok: %s\n", out.Name)
}
