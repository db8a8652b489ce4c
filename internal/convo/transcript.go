// Package convo holds the conversation history for one session.
package convo

// Role tags a transcript entry with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// DefaultMaxTurns bounds the history window when no limit is configured.
const DefaultMaxTurns = 20

// Transcript is the ordered conversation history. The loop owns it and
// hands it to the responder explicitly. Turns are strictly sequential, so
// no locking is needed.
type Transcript struct {
	messages []Message
	maxTurns int
}

func NewTranscript(maxTurns int) *Transcript {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Transcript{maxTurns: maxTurns}
}

// AddExchange appends one completed turn, user utterance then assistant
// reply. When the window is full the oldest turn is evicted, keeping the
// most recent maxTurns exchanges.
func (t *Transcript) AddExchange(user, assistant string) {
	t.messages = append(t.messages,
		Message{Role: RoleUser, Content: user},
		Message{Role: RoleAssistant, Content: assistant},
	)
	if limit := t.maxTurns * 2; len(t.messages) > limit {
		t.messages = t.messages[len(t.messages)-limit:]
	}
}

// Messages returns a copy of the history in chronological order.
func (t *Transcript) Messages() []Message {
	return append([]Message(nil), t.messages...)
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

// Reset discards the history, starting the conversation over.
func (t *Transcript) Reset() {
	t.messages = nil
}

// Stats summarizes the session for the shutdown log line.
type Stats struct {
	Total     int
	User      int
	Assistant int
}

func (t *Transcript) Stats() Stats {
	s := Stats{Total: len(t.messages)}
	for _, m := range t.messages {
		switch m.Role {
		case RoleUser:
			s.User++
		case RoleAssistant:
			s.Assistant++
		}
	}
	return s
}
