// Package listen captures one utterance per call and turns it into text.
package listen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	log "log/slog"

	"parley/internal/assistant"
	"parley/internal/audio"
	"parley/internal/notify"
	"parley/pkg/audioconv"
	"parley/pkg/stt"
)

type Options struct {
	Locale           string
	OnsetTimeout     time.Duration
	MaxUtterance     time.Duration
	RecognizeTimeout time.Duration
	CaptureDir       string // dump captures as WAV files when set
}

// Recorder captures one utterance from the default input device.
type Recorder interface {
	Record(ctx context.Context, opt audio.CaptureOptions) ([]float32, error)
}

// Ducker lowers other applications' audio for the capture window and puts
// it back afterwards.
type Ducker interface {
	Duck(ctx context.Context) error
	Restore(ctx context.Context) error
}

// Listener runs the capture pipeline: cue, duck, record, recognize. Cue and
// ducker are optional; their failures never abort a turn.
type Listener struct {
	rec    Recorder
	engine stt.Recognizer
	cue    *notify.Cue
	ducker Ducker
	opts   Options

	captures int
}

func New(rec Recorder, engine stt.Recognizer, cue *notify.Cue, ducker Ducker, opts Options) *Listener {
	return &Listener{rec: rec, engine: engine, cue: cue, ducker: ducker, opts: opts}
}

func (l *Listener) Listen(ctx context.Context) (string, error) {
	if l.cue != nil {
		l.cue.Play()
	}

	if l.ducker != nil {
		if err := l.ducker.Duck(ctx); err != nil {
			log.Warn("duck failed", "err", err)
		} else {
			defer func() {
				// The run context may already be cancelled by shutdown;
				// other applications still get their volume back.
				rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := l.ducker.Restore(rctx); err != nil {
					log.Warn("unduck failed", "err", err)
				}
			}()
		}
	}

	log.Info("listening")

	pcm, err := l.rec.Record(ctx, audio.CaptureOptions{
		OnsetTimeout: l.opts.OnsetTimeout,
		MaxUtterance: l.opts.MaxUtterance,
	})
	if err != nil {
		switch {
		case errors.Is(err, audio.ErrNoSpeech):
			return "", assistant.NewError(assistant.KindNoSpeech, "onset timeout", err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return "", err
		case errors.Is(err, audio.ErrDeviceFailed):
			return "", assistant.NewError(assistant.KindDeviceUnavailable, "audio capture", err)
		default:
			// A read hiccup mid-capture is worth a retry, not a shutdown.
			return "", fmt.Errorf("audio capture: %w", err)
		}
	}

	log.Debug("recorded", "samples", len(pcm))

	l.dump(pcm)

	rctx := ctx
	if l.opts.RecognizeTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, l.opts.RecognizeTimeout)
		defer cancel()
	}

	res, err := l.engine.Recognize(rctx, pcm, l.opts.Locale)
	if err != nil {
		if errors.Is(err, stt.ErrNoTranscript) {
			return "", assistant.NewError(assistant.KindUnintelligible, "no transcript for capture", err)
		}
		return "", assistant.NewError(assistant.KindServiceUnavailable, "speech recognition", err)
	}

	log.Debug("recognized", "text", res.Text, "confidence", res.Confidence)

	return res.Text, nil
}

// dump writes the capture to the configured directory for debugging.
func (l *Listener) dump(pcm []float32) {
	if l.opts.CaptureDir == "" || len(pcm) == 0 {
		return
	}
	l.captures++
	path := filepath.Join(l.opts.CaptureDir, fmt.Sprintf("capture-%03d.wav", l.captures))
	if err := audioconv.SaveWAV(path, pcm, audio.SampleRate); err != nil {
		log.Warn("capture dump failed", "path", path, "err", err)
	}
}
