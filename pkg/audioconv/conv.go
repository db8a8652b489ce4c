// Package audioconv converts between the audio layouts the pipeline uses:
// mono 16 kHz float32 samples in memory, 16 bit PCM on the wire and in
// files.
package audioconv

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pekim/opus"
)

const targetRate = 16000

// PCM16Bytes encodes mono float32 samples in [-1, 1] as little endian
// 16 bit PCM, the layout LINEAR16 recognition expects.
func PCM16Bytes(pcm []float32) []byte {
	out := make([]byte, len(pcm)*2)
	for i, x := range pcm {
		v := floatToInt16(x)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// SaveWAV writes mono float32 samples to path as a 16 bit PCM WAV file.
func SaveWAV(path string, pcm []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(pcm)),
	}
	for i, x := range pcm {
		buf.Data[i] = int(floatToInt16(x))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close wav: %w", err)
	}

	return f.Close()
}

// LoadPCM16k decodes a wav, mp3, ogg-vorbis or opus file into the mono
// 16 kHz samples the recognizers expect, downmixing and resampling as
// needed. maxSamples caps the result when positive.
func LoadPCM16k(path string, maxSamples int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pcm, rate, channels, err := decodeFile(f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if channels > 1 {
		pcm = downmix(pcm, channels)
	}
	if rate != targetRate {
		pcm = resample(pcm, rate, targetRate)
	}
	if maxSamples > 0 && len(pcm) > maxSamples {
		pcm = pcm[:maxSamples]
	}
	return pcm, nil
}

func decodeFile(f io.ReadSeeker, ext string) ([]float32, int, int, error) {
	switch ext {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".ogg", ".oga":
		// Both codecs ship in Ogg containers. Try Vorbis first, fall back
		// to Opus.
		pcm, rate, channels, err := decodeVorbis(f)
		if err == nil {
			return pcm, rate, channels, nil
		}
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, 0, 0, serr
		}
		return decodeOpus(f)
	case ".opus":
		return decodeOpus(f)
	default:
		return nil, 0, 0, fmt.Errorf("unsupported audio format %q", ext)
	}
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, 0, errors.New("invalid wav")
	}

	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, err
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, 0, 0, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	scale := 1.0 / float64(int64(1)<<(depth-1))

	pcm := make([]float32, len(pb.Data))
	for i, v := range pb.Data {
		pcm[i] = float32(clampf(float64(v)*scale, -1, 1))
	}

	rate, channels := 44100, 1
	if pb.Format != nil {
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
	}
	return pcm, rate, channels, nil
}

func decodeMP3(r io.Reader) ([]float32, int, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, err
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, err
	}

	// The decoder always emits interleaved stereo 16 bit little endian.
	pcm := make([]float32, len(raw)/2)
	for i := range pcm {
		v := int16(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
		pcm[i] = float32(v) / 32768
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	return pcm, rate, 2, nil
}

func decodeVorbis(r io.Reader) ([]float32, int, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, 0, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, 0, 0, errors.New("invalid vorbis stream")
	}
	return pcm, format.SampleRate, format.Channels, nil
}

// decodeOpus reads an Ogg Opus stream. libopus decodes at 48 kHz.
func decodeOpus(r io.ReadSeeker) ([]float32, int, int, error) {
	dec, err := opus.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, err
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	var pcm []float32
	buf := make([]int16, 4800*channels) // 100ms chunks
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			for _, v := range buf[:n*channels] {
				pcm = append(pcm, float32(v)/32768)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, 0, err
		}
	}
	return pcm, 48000, channels, nil
}

// downmix averages interleaved channels into mono.
func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	out := make([]float32, len(in)/channels)
	for i := range out {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// resample converts between rates with linear interpolation, plenty for
// speech input.
func resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	out := make([]float32, int(math.Ceil(float64(len(in))*ratio)))
	for i := range out {
		src := float64(i) / ratio
		i0 := int(src)
		if i0 >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(src - float64(i0))
		out[i] = in[i0]*(1-frac) + in[i0+1]*frac
	}
	return out
}

func floatToInt16(x float32) int16 {
	v := math.Round(float64(x) * 32767)
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(v)
}

func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
