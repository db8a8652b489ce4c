package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperRecognizer runs a local whisper.cpp model. Captures never leave
// the machine, at the cost of loading the model into memory at startup.
type WhisperRecognizer struct {
	model whisper.Model
}

func NewWhisperRecognizer(modelPath string) (*WhisperRecognizer, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &WhisperRecognizer{model: m}, nil
}

func (w *WhisperRecognizer) Close() error {
	if w.model == nil {
		return nil
	}
	return w.model.Close()
}

func (w *WhisperRecognizer) Recognize(ctx context.Context, pcm []float32, locale string) (Result, error) {
	if w.model == nil {
		return Result{}, errors.New("nil model")
	}
	if len(pcm) == 0 {
		return Result{}, ErrNoTranscript
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("new context: %w", err)
	}

	if err := wctx.SetLanguage(whisperLanguage(locale)); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("next segment: %w", err)
		}
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}

	if len(parts) == 0 {
		return Result{}, ErrNoTranscript
	}

	return Result{Text: strings.Join(parts, " ")}, nil
}

// whisperLanguage maps a BCP 47 tag to the two letter code whisper expects,
// "en-US" becomes "en". An empty tag means autodetect.
func whisperLanguage(locale string) string {
	if locale == "" {
		return "auto"
	}
	if i := strings.IndexByte(locale, '-'); i > 0 {
		return strings.ToLower(locale[:i])
	}
	return strings.ToLower(locale)
}
