package audio

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"
)

// SampleRate is the capture rate in Hz. Both recognition engines expect
// mono 16 kHz input.
const SampleRate = 16000

// ErrNoSpeech is returned when no speech onset arrives within the
// configured window.
var ErrNoSpeech = errors.New("no speech detected")

// ErrDeviceFailed marks failures opening or starting the input stream.
// Read errors after a successful start are transient and not wrapped.
var ErrDeviceFailed = errors.New("audio input unavailable")

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record opens the default input and captures one utterance: wait for
// speech onset, keep frames until the speaker stays quiet for the hangover
// window or the utterance cap is hit. The stream is closed before returning
// on every path.
func (r *Recorder) Record(ctx context.Context, opt CaptureOptions) ([]float32, error) {
	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("%w: open stream: %v", ErrDeviceFailed, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("%w: start stream: %v", ErrDeviceFailed, err)
	}
	defer stream.Stop()

	seg := newSegmenter(opt)
	out := make([]float32, 0, SampleRate*3)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			// Overflow means frames were dropped, not that the device
			// died. The stream keeps running.
			if errors.Is(err, portaudio.InputOverflowed) {
				continue
			}
			return nil, err
		}

		keep, st := seg.feed(frameRMS(buf))
		if keep {
			out = append(out, buf...)
		}

		switch st {
		case segmentDone:
			return out, nil
		case segmentNoSpeech:
			return nil, ErrNoSpeech
		}
	}
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
