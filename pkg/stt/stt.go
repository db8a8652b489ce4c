// Package stt turns microphone captures into text. Two engines are
// available: the Cloud Speech-to-Text API and a local whisper.cpp model.
package stt

import (
	"context"
	"errors"
)

// Result is one recognition outcome. Confidence is zero when the engine
// does not report one.
type Result struct {
	Text       string
	Confidence float32
}

// ErrNoTranscript is returned when the engine processed the capture but
// produced no usable text.
var ErrNoTranscript = errors.New("no transcript")

// Recognizer converts a mono 16 kHz float32 capture into text.
type Recognizer interface {
	Recognize(ctx context.Context, pcm []float32, locale string) (Result, error)
	Close() error
}
