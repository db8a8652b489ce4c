package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"parley/internal/assistant"
	"parley/internal/audio"
	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/convo"
	"parley/internal/listen"
	"parley/internal/logging"
	"parley/internal/notify"
	"parley/internal/proxy"
	"parley/internal/tts"
	"parley/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	level, ok := logLevelMap[*logLevel]
	if !ok {
		level = log.LevelInfo
	}

	// Console only until the log file path is known.
	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: level,
	})))

	log.Info("booting up")

	godotenv.Load(*envFile)

	cfg, err := config.Load()
	if err != nil {
		log.Error("bad configuration", "err", err)
		os.Exit(1)
	}

	closeLog, err := logging.Setup(level, cfg.LogFile)
	if err != nil {
		log.Error("failed to open log file", "path", cfg.LogFile, "err", err)
		os.Exit(1)
	}
	defer closeLog()

	log.Debug("loaded configuration", "model", cfg.Model, "engine", cfg.Engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.SocksProxy != "" {
		httpClient, err := proxy.NewSocksClient(cfg.SocksProxy)
		if err != nil {
			log.Error("failed to dial socks proxy", "proxy", cfg.SocksProxy, "err", err)
			os.Exit(1)
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
		log.Debug("loaded proxy", "proxy", cfg.SocksProxy)
	}
	client := openai.NewClient(opts...)

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("loaded recorder")

	engine, err := newRecognizer(ctx, cfg)
	if err != nil {
		log.Error("failed to init recognizer", "engine", cfg.Engine, "err", err)
		os.Exit(1)
	}
	defer engine.Close()

	log.Debug("loaded recognizer", "engine", cfg.Engine)

	var cue *notify.Cue
	if cfg.CueSound != "" {
		cue, err = notify.LoadCue(cfg.CueSound)
		if err != nil {
			log.Warn("cue sound unavailable", "path", cfg.CueSound, "err", err)
		}
	}

	var ducker listen.Ducker
	if cfg.Ducking {
		ducker = audio.NewDucker([]string{"parley"}, cfg.DuckVolume)
	}

	if cfg.CaptureDir != "" {
		if err := os.MkdirAll(cfg.CaptureDir, 0o755); err != nil {
			log.Warn("capture dir unavailable", "dir", cfg.CaptureDir, "err", err)
			cfg.CaptureDir = ""
		}
	}

	listener := listen.New(rec, engine, cue, ducker, listen.Options{
		Locale:           cfg.Locale,
		OnsetTimeout:     cfg.ListenTimeout,
		MaxUtterance:     cfg.MaxUtterance,
		RecognizeTimeout: cfg.RecognizeTimeout,
		CaptureDir:       cfg.CaptureDir,
	})

	responder := chat.NewResponder(client, chat.Options{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		System:      cfg.System,
		Timeout:     cfg.ChatTimeout,
	})

	speaker := tts.NewEngine(cfg.Voice, cfg.Rate, cfg.Volume)

	bot := assistant.NewBot(listener, responder, speaker, convo.NewTranscript(cfg.MaxTurns), assistant.Options{
		Greeting:     cfg.Greeting,
		Apology:      cfg.Apology,
		ResetAck:     cfg.ResetAck,
		ExitPhrases:  cfg.ExitPhrases,
		ResetPhrases: cfg.ResetPhrases,
	})

	log.Info("boot up - successful")

	if err := bot.Run(ctx); err != nil {
		log.Error("session failed", "err", err)
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
