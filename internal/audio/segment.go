package audio

import "time"

const (
	frameSize        = 320 // 20ms at 16 kHz
	frameDuration    = 20 * time.Millisecond
	speechThreshRMS  = 0.015
	hangoverDuration = 600 * time.Millisecond
)

type CaptureOptions struct {
	OnsetTimeout time.Duration // max wait for speech before giving up
	MaxUtterance time.Duration // cap on capture length after onset
}

type segmentState int

const (
	segmentListening segmentState = iota
	segmentDone
	segmentNoSpeech
)

// segmenter tracks voice activity frame by frame. It waits for an RMS level
// above the speech threshold, keeps frames until the level stays below it
// for the hangover window, and gives up when onset never arrives.
type segmenter struct {
	onsetFrames int
	maxFrames   int

	speaking bool
	waited   int
	kept     int
	quiet    int
}

func newSegmenter(opt CaptureOptions) *segmenter {
	onset := opt.OnsetTimeout
	if onset <= 0 {
		onset = 5 * time.Second
	}
	limit := opt.MaxUtterance
	if limit <= 0 {
		limit = 10 * time.Second
	}
	return &segmenter{
		onsetFrames: int(onset / frameDuration),
		maxFrames:   int(limit / frameDuration),
	}
}

// feed consumes one frame's RMS level. keep reports whether the caller
// should append the frame to the capture, state whether the segment is
// complete.
func (s *segmenter) feed(rms float64) (keep bool, state segmentState) {
	if !s.speaking {
		if rms <= speechThreshRMS {
			s.waited++
			if s.waited >= s.onsetFrames {
				return false, segmentNoSpeech
			}
			return false, segmentListening
		}
		s.speaking = true
	}

	if rms > speechThreshRMS {
		s.quiet = 0
	} else {
		s.quiet++
		if time.Duration(s.quiet)*frameDuration >= hangoverDuration {
			return false, segmentDone
		}
	}

	s.kept++
	if s.kept >= s.maxFrames {
		return true, segmentDone
	}

	return true, segmentListening
}
