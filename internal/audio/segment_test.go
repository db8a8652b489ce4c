package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	loud  = 0.1
	quiet = 0.001
)

// drive feeds a sequence of frame levels and returns how many frames were
// kept plus the final state.
func drive(t *testing.T, seg *segmenter, levels []float64) (int, segmentState) {
	t.Helper()

	kept := 0
	for _, lv := range levels {
		keep, st := seg.feed(lv)
		if keep {
			kept++
		}
		if st != segmentListening {
			return kept, st
		}
	}
	return kept, segmentListening
}

func repeat(level float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = level
	}
	return out
}

func TestSegmenterNoSpeechTimesOut(t *testing.T) {
	seg := newSegmenter(CaptureOptions{OnsetTimeout: 100 * time.Millisecond})

	kept, st := drive(t, seg, repeat(quiet, 10))

	require.Equal(t, segmentNoSpeech, st)
	require.Zero(t, kept)
}

func TestSegmenterStopsAfterHangover(t *testing.T) {
	seg := newSegmenter(CaptureOptions{})

	levels := append(repeat(loud, 20), repeat(quiet, 40)...)
	kept, st := drive(t, seg, levels)

	require.Equal(t, segmentDone, st)
	// 20 speech frames plus the hangover minus the terminating frame.
	require.Equal(t, 20+29, kept)
}

func TestSegmenterOnsetAfterSilence(t *testing.T) {
	seg := newSegmenter(CaptureOptions{OnsetTimeout: time.Second})

	// Silence shorter than the onset window does not count against speech.
	levels := append(repeat(quiet, 30), repeat(loud, 10)...)
	kept, st := drive(t, seg, levels)

	require.Equal(t, segmentListening, st)
	require.Equal(t, 10, kept)
}

func TestSegmenterCapsUtteranceLength(t *testing.T) {
	seg := newSegmenter(CaptureOptions{MaxUtterance: 200 * time.Millisecond})

	kept, st := drive(t, seg, repeat(loud, 100))

	require.Equal(t, segmentDone, st)
	require.Equal(t, 10, kept) // 200ms / 20ms frames
}

func TestSegmenterResumesAfterShortPause(t *testing.T) {
	seg := newSegmenter(CaptureOptions{})

	// A pause below the hangover window keeps the capture going.
	levels := append(repeat(loud, 10), repeat(quiet, 10)...)
	levels = append(levels, repeat(loud, 10)...)
	kept, st := drive(t, seg, levels)

	require.Equal(t, segmentListening, st)
	require.Equal(t, 30, kept)
}

func TestFrameRMS(t *testing.T) {
	require.InDelta(t, 0.5, frameRMS([]float32{0.5, -0.5, 0.5, -0.5}), 1e-9)
	require.Zero(t, frameRMS(make([]float32, 4)))
}
