// Package assistant drives the conversation loop: greet once, then listen,
// check, respond and speak until an exit phrase or cancellation.
package assistant

import (
	"context"
	"fmt"
	"strings"

	log "log/slog"

	"parley/internal/convo"
)

// Listener captures one utterance from the microphone and returns its
// transcript.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Responder produces the assistant reply for an utterance given the
// conversation so far.
type Responder interface {
	Respond(ctx context.Context, history []convo.Message, utterance string) (string, error)
}

// Speaker renders text aloud, blocking until playback completes.
type Speaker interface {
	Speak(text string) error
}

type state int

const (
	stateGreeting state = iota
	stateListening
	stateChecking
	stateResponding
	stateSpeaking
	stateTerminated
)

func (s state) String() string {
	switch s {
	case stateGreeting:
		return "greeting"
	case stateListening:
		return "listening"
	case stateChecking:
		return "checking"
	case stateResponding:
		return "responding"
	case stateSpeaking:
		return "speaking"
	case stateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Options carry the fixed utterances and the phrase sets the loop matches
// against.
type Options struct {
	Greeting     string
	Apology      string
	ResetAck     string
	ExitPhrases  []string
	ResetPhrases []string
}

// Bot is the single threaded conversation loop. One turn fully completes
// before the next listen starts.
type Bot struct {
	listener   Listener
	responder  Responder
	speaker    Speaker
	transcript *convo.Transcript
	opts       Options

	exit  map[string]bool
	reset map[string]bool
}

func NewBot(l Listener, r Responder, s Speaker, t *convo.Transcript, opts Options) *Bot {
	return &Bot{
		listener:   l,
		responder:  r,
		speaker:    s,
		transcript: t,
		opts:       opts,
		exit:       phraseSet(opts.ExitPhrases),
		reset:      phraseSet(opts.ResetPhrases),
	}
}

// Run drives one session until an exit phrase arrives, ctx is cancelled or
// the audio device becomes unusable. The session summary is logged on every
// exit path.
func (b *Bot) Run(ctx context.Context) error {
	defer b.logSummary()

	b.enter(stateGreeting)
	if err := b.speaker.Speak(b.opts.Greeting); err != nil {
		if KindOf(err) == KindDeviceUnavailable {
			b.enter(stateTerminated)
			return fmt.Errorf("greeting: %w", err)
		}
		log.Error("greeting failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			b.enter(stateTerminated)
			log.Info("session cancelled")
			return nil
		default:
		}

		b.enter(stateListening)
		utterance, err := b.listener.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				b.enter(stateTerminated)
				log.Info("session cancelled")
				return nil
			}
			switch KindOf(err) {
			case KindNoSpeech:
				log.Debug("no speech detected")
			case KindUnintelligible:
				log.Debug("could not understand audio")
			case KindDeviceUnavailable:
				b.enter(stateTerminated)
				log.Error("audio input unavailable", "err", err)
				return err
			default:
				log.Error("listen failed", "err", err)
			}
			continue
		}

		log.Info("heard", "text", utterance)

		b.enter(stateChecking)
		switch {
		case b.exit[normalizePhrase(utterance)]:
			b.enter(stateTerminated)
			log.Info("exit phrase received, goodbye")
			return nil
		case b.reset[normalizePhrase(utterance)]:
			b.transcript.Reset()
			log.Info("conversation reset")
			b.say(b.opts.ResetAck)
			continue
		}

		b.enter(stateResponding)
		reply, err := b.responder.Respond(ctx, b.transcript.Messages(), utterance)
		if err != nil {
			if ctx.Err() != nil {
				b.enter(stateTerminated)
				log.Info("session cancelled")
				return nil
			}
			log.Error("respond failed", "kind", KindOf(err), "err", err)
			b.say(b.opts.Apology)
			continue
		}

		b.transcript.AddExchange(utterance, reply)

		log.Info("replying", "text", reply)

		b.enter(stateSpeaking)
		b.say(reply)
	}
}

func (b *Bot) enter(s state) {
	log.Debug("state", "state", s)
}

// say logs speaker failures and keeps the loop alive.
func (b *Bot) say(text string) {
	if err := b.speaker.Speak(text); err != nil {
		log.Error("speak failed", "err", err)
	}
}

func (b *Bot) logSummary() {
	s := b.transcript.Stats()
	log.Info("session summary", "messages", s.Total, "user", s.User, "assistant", s.Assistant)
}

// normalizePhrase lowercases, trims whitespace and strips trailing sentence
// punctuation so "Quit." from the recognizer still matches "quit".
func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!?")
	return strings.TrimSpace(s)
}

func phraseSet(phrases []string) map[string]bool {
	set := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		if p = normalizePhrase(p); p != "" {
			set[p] = true
		}
	}
	return set
}
