// Package tts renders text through espeak-ng. Playback is synchronous, a
// call returns only after the utterance has been spoken.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text, const char *voice, int rate, int volume)
{
	if (!text)
	{ return -1; }

	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -2; }

	espeak_VOICE specs;
	memset(&specs, 0, sizeof(specs));
	specs.languages = voice;
	espeak_SetVoiceByProperties(&specs);

	espeak_SetParameter(espeakRATE, rate, 0);
	espeak_SetParameter(espeakVOLUME, volume, 0);

	espeak_Synth(text, strlen(text) + 1, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"parley/internal/assistant"
)

// Engine speaks with a fixed voice, rate and volume. espeak-ng keeps global
// state, so one engine per process.
type Engine struct {
	voice  string
	rate   int
	volume int
}

func NewEngine(voice string, rate, volume int) *Engine {
	if voice == "" {
		voice = "en"
	}
	return &Engine{voice: voice, rate: rate, volume: volume}
}

// Speak blocks until playback completes. Empty input is a no-op.
func (e *Engine) Speak(text string) error {
	if text == "" {
		return nil
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	cvoice := C.CString(e.voice)
	defer C.free(unsafe.Pointer(cvoice))

	rc := C.espeak_say(ctext, cvoice, C.int(e.rate), C.int(e.volume))
	switch rc {
	case 0:
		return nil
	case -2:
		return assistant.NewError(assistant.KindDeviceUnavailable, "espeak audio output", nil)
	default:
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
}
