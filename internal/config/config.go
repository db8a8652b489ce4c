// Package config resolves the runtime configuration from the process
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Recognition engines.
const (
	EngineGoogle  = "google"
	EngineWhisper = "whisper"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
	defaultMaxTurns    = 20

	defaultSystem = "You are a helpful and friendly voice assistant. " +
		"Provide short and clear responses. Speak in English. " +
		"Engage in natural conversation with the user. " +
		"Keep your responses concise and to the point."
	defaultGreeting = "Hello! Welcome to your voice assistant bot. I'm ready to talk with you."
	defaultApology  = "Sorry, an error occurred. Please try again."
	defaultResetAck = "Okay, starting a new conversation."
)

// Config is the resolved runtime configuration, loaded once at startup and
// immutable afterwards.
type Config struct {
	APIKey string

	Model       string
	MaxTokens   int
	Temperature float64
	System      string
	ChatTimeout time.Duration

	Greeting     string
	Apology      string
	ResetAck     string
	ExitPhrases  []string
	ResetPhrases []string
	MaxTurns     int

	Engine           string
	Locale           string
	ListenTimeout    time.Duration
	MaxUtterance     time.Duration
	RecognizeTimeout time.Duration
	WhisperModel     string
	CaptureDir       string

	Voice  string
	Rate   int
	Volume int

	CueSound   string
	Ducking    bool
	DuckVolume int

	SocksProxy string
	LogFile    string
}

// Load reads the environment, applies defaults and validates ranges. The
// only required variable is OPENAI_API_KEY.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey: os.Getenv("OPENAI_API_KEY"),

		Model:       envOrDefault("PARLEY_MODEL", defaultModel),
		MaxTokens:   envIntOrDefault("PARLEY_MAX_TOKENS", defaultMaxTokens),
		Temperature: envFloatOrDefault("PARLEY_TEMPERATURE", defaultTemperature),
		System:      envOrDefault("PARLEY_SYSTEM_PROMPT", defaultSystem),
		ChatTimeout: envDurationOrDefault("PARLEY_CHAT_TIMEOUT", 60*time.Second),

		Greeting:     envOrDefault("PARLEY_GREETING", defaultGreeting),
		Apology:      envOrDefault("PARLEY_APOLOGY", defaultApology),
		ResetAck:     envOrDefault("PARLEY_RESET_ACK", defaultResetAck),
		ExitPhrases:  envListOrDefault("PARLEY_EXIT_PHRASES", []string{"exit", "close", "finish", "stop", "quit", "bye"}),
		ResetPhrases: envListOrDefault("PARLEY_RESET_PHRASES", []string{"new conversation", "start over"}),
		MaxTurns:     envIntOrDefault("PARLEY_MAX_TURNS", defaultMaxTurns),

		Engine:           envOrDefault("PARLEY_STT_ENGINE", EngineGoogle),
		Locale:           envOrDefault("PARLEY_LANGUAGE", "en-US"),
		ListenTimeout:    envDurationOrDefault("PARLEY_LISTEN_TIMEOUT", 5*time.Second),
		MaxUtterance:     envDurationOrDefault("PARLEY_MAX_UTTERANCE", 10*time.Second),
		RecognizeTimeout: envDurationOrDefault("PARLEY_STT_TIMEOUT", 30*time.Second),
		WhisperModel:     os.Getenv("PARLEY_WHISPER_MODEL"),
		CaptureDir:       os.Getenv("PARLEY_CAPTURE_DIR"),

		Voice:  envOrDefault("PARLEY_VOICE", "en"),
		Rate:   envIntOrDefault("PARLEY_SPEECH_RATE", 160),
		Volume: envIntOrDefault("PARLEY_SPEECH_VOLUME", 100),

		CueSound:   os.Getenv("PARLEY_CUE_SOUND"),
		Ducking:    envBoolOrDefault("PARLEY_DUCKING", false),
		DuckVolume: envIntOrDefault("PARLEY_DUCK_VOLUME", 20),

		SocksProxy: os.Getenv("PARLEY_SOCKS_PROXY"),
		LogFile:    envOrDefault("PARLEY_LOG_FILE", "parley.log"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY not set")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("PARLEY_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("PARLEY_TEMPERATURE must be in [0, 2], got %g", c.Temperature)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("PARLEY_MAX_TURNS must be positive, got %d", c.MaxTurns)
	}
	if len(c.ExitPhrases) == 0 {
		return errors.New("PARLEY_EXIT_PHRASES must name at least one phrase")
	}
	if c.Engine != EngineGoogle && c.Engine != EngineWhisper {
		return fmt.Errorf("PARLEY_STT_ENGINE must be %q or %q, got %q", EngineGoogle, EngineWhisper, c.Engine)
	}
	if c.Engine == EngineWhisper && c.WhisperModel == "" {
		return errors.New("PARLEY_WHISPER_MODEL required when PARLEY_STT_ENGINE=whisper")
	}
	for name, d := range map[string]time.Duration{
		"PARLEY_LISTEN_TIMEOUT": c.ListenTimeout,
		"PARLEY_MAX_UTTERANCE":  c.MaxUtterance,
		"PARLEY_STT_TIMEOUT":    c.RecognizeTimeout,
		"PARLEY_CHAT_TIMEOUT":   c.ChatTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.Rate < 80 || c.Rate > 450 {
		return fmt.Errorf("PARLEY_SPEECH_RATE must be in [80, 450], got %d", c.Rate)
	}
	if c.Volume < 0 || c.Volume > 200 {
		return fmt.Errorf("PARLEY_SPEECH_VOLUME must be in [0, 200], got %d", c.Volume)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloatOrDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envBoolOrDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// envListOrDefault splits a comma separated value, trimming whitespace and
// dropping empty items.
func envListOrDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
