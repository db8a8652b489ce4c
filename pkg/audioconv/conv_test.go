package audioconv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

func TestPCM16Bytes(t *testing.T) {
	got := PCM16Bytes([]float32{0, 1, -1, 0.5})

	require.Equal(t, []byte{
		0x00, 0x00, // 0
		0xFF, 0x7F, // 32767
		0x01, 0x80, // -32767
		0x00, 0x40, // 16384
	}, got)
}

func TestPCM16BytesClampsOutOfRange(t *testing.T) {
	got := PCM16Bytes([]float32{2.0, -2.0})

	require.Equal(t, []byte{
		0xFF, 0x7F, // clamped to 32767
		0x00, 0x80, // clamped to -32768
	}, got)
}

func TestPCM16BytesEmpty(t *testing.T) {
	require.Empty(t, PCM16Bytes(nil))
}

func TestDownmix(t *testing.T) {
	in := []float32{1, 0, 0.5, 0.5, -1, 1}

	require.Equal(t, []float32{0.5, 0.5, 0}, downmix(in, 2))
	require.Equal(t, in, downmix(in, 1))
}

func TestResampleDoublesRate(t *testing.T) {
	out := resample([]float32{0, 1, 0, -1}, 8000, 16000)

	require.Len(t, out, 8)
	require.Equal(t, float32(0), out[0])
	require.InDelta(t, 0.5, out[1], 1e-6) // midpoint between neighbours
	require.Equal(t, float32(1), out[2])
	require.Equal(t, float32(-1), out[7])
}

func TestResampleHalvesRate(t *testing.T) {
	out := resample(make([]float32, 480), 48000, 16000)

	require.Len(t, out, 160)
}

func TestResampleSameRateIsNoop(t *testing.T) {
	in := []float32{0.1, 0.2}

	require.Equal(t, in, resample(in, 16000, 16000))
}

func TestLoadPCM16kResamplesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	pcm := make([]float32, 800) // 100ms at 8 kHz
	for i := range pcm {
		pcm[i] = 0.25
	}
	require.NoError(t, SaveWAV(path, pcm, 8000))

	got, err := LoadPCM16k(path, 0)
	require.NoError(t, err)
	require.Len(t, got, 1600)
	require.InDelta(t, 0.25, float64(got[10]), 1e-3)
}

func TestLoadPCM16kCapsSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, SaveWAV(path, make([]float32, 1600), 16000))

	got, err := LoadPCM16k(path, 500)
	require.NoError(t, err)
	require.Len(t, got, 500)
}

func TestLoadPCM16kUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.flac")
	require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0o644))

	_, err := LoadPCM16k(path, 0)
	require.ErrorContains(t, err, "unsupported audio format")
}

func TestSaveWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	pcm := []float32{0, 0.25, -0.25, 1, -1}

	require.NoError(t, SaveWAV(path, pcm, 16000))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, len(pcm))
	require.Equal(t, 1, buf.Format.NumChannels)
	require.Equal(t, 16000, buf.Format.SampleRate)
	require.Equal(t, int(floatToInt16(0.25)), buf.Data[1])
	require.Equal(t, 32767, buf.Data[3])
}
