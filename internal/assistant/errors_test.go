package assistant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")

	withCause := NewError(KindServiceUnavailable, "chat completion", cause)
	require.Equal(t, "SERVICE_UNAVAILABLE: chat completion: connection refused", withCause.Error())

	withoutCause := NewError(KindNoSpeech, "onset timeout", nil)
	require.Equal(t, "NO_SPEECH_DETECTED: onset timeout", withoutCause.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(KindDeviceUnavailable, "audio capture", cause)

	require.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	err := NewError(KindInvalidResponse, "no choices", nil)

	require.Equal(t, KindInvalidResponse, KindOf(err))
	require.Equal(t, KindInvalidResponse, KindOf(fmt.Errorf("respond: %w", err)))
	require.Empty(t, KindOf(errors.New("plain")))
	require.Empty(t, KindOf(nil))
}
