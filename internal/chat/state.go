// Package chat holds the client-side chat state: message history, the send
// and suggestion loading flags, the suggestion chips, the moderation toggle
// and the error banner.
//
// All transitions go through Reduce. Effects (Send, FetchSuggestion,
// LoadSuggestions) talk to the backend and return the Action to reduce, so
// both the TUI event loop and the blocking Session drive the same state
// machine.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// SuggestionCount is the fixed length of the suggestion list.
const SuggestionCount = 3

const (
	// ApologyContent is the bot reply shown when emoji generation fails.
	ApologyContent = "Sorry, I encountered an error processing your message."

	// SendFailedMessage is the banner text for failures that carry no message.
	SendFailedMessage = "Failed to send message"

	noReplacement = -1
)

// ApologyEmojis returns the emojis attached to the apology reply.
func ApologyEmojis() []string { return []string{"😔", "🔧"} }

// FallbackSuggestions returns the suggestions used when the initial load fails.
func FallbackSuggestions() []string {
	return []string{
		"I'm feeling excited about today!",
		"What a beautiful morning this is.",
		"I'm grateful for all the good things in my life.",
	}
}

// now is swapped in tests.
var now = time.Now

// Message is a single chat entry. Messages are never mutated after creation.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Emojis    []string
	Timestamp time.Time
}

// NewUserMessage builds the optimistic user entry for text.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   strings.TrimSpace(text),
		Timestamp: now(),
	}
}

func newBotMessage(content string, emojis []string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleBot,
		Content:   content,
		Emojis:    append([]string(nil), emojis...),
		Timestamp: now(),
	}
}

// State is an immutable snapshot of the chat. Reduce never modifies its
// input; it returns a new State.
type State struct {
	Messages          []Message
	Loading           bool
	Err               string
	Suggestions       []string
	ReplacingIndex    int
	ModerationEnabled bool
}

// NewState returns the initial state: empty history, no suggestions yet,
// moderation enabled.
func NewState() State {
	return State{
		ReplacingIndex:    noReplacement,
		ModerationEnabled: true,
	}
}

// CanSend reports whether text would start a send.
func (s State) CanSend(text string) bool {
	return strings.TrimSpace(text) != "" && !s.Loading
}

// CanReplace reports whether the suggestion at index may be replaced now.
// Only one replacement runs at a time across the whole list.
func (s State) CanReplace(index int) bool {
	return s.ReplacingIndex == noReplacement && index >= 0 && index < len(s.Suggestions)
}

// IsReplacing reports whether the suggestion at index is being replaced.
func (s State) IsReplacing(index int) bool {
	return s.ReplacingIndex != noReplacement && s.ReplacingIndex == index
}

// Suggestion returns the suggestion at index.
func (s State) Suggestion(index int) (string, bool) {
	if index < 0 || index >= len(s.Suggestions) {
		return "", false
	}
	return s.Suggestions[index], true
}

// LastMessage returns the newest message.
func (s State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	c := s
	c.Messages = append([]Message(nil), s.Messages...)
	c.Suggestions = append([]string(nil), s.Suggestions...)
	return c
}
