package chat

import (
	"context"
	"slices"
	"sync"

	"emojichat/internal/logging"
)

// Session owns one chat's State and runs effects against a Backend.
// Methods block for the duration of the backend call; the state lock is
// never held across it, so State may be read while a send is in flight.
type Session struct {
	backend Backend

	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int

	// notifyMu serializes deliveries so subscribers see snapshots in order.
	notifyMu sync.Mutex
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithModeration sets the initial moderation toggle.
func WithModeration(enabled bool) SessionOption {
	return func(s *Session) { s.state.ModerationEnabled = enabled }
}

// NewSession creates a session backed by b.
func NewSession(b Backend, opts ...SessionOption) *Session {
	s := &Session{
		backend:     b,
		state:       NewState(),
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to be called with every new state. Calls are
// serialized and never carry an older snapshot after a newer one. The
// returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// dispatch reduces a into the state and notifies subscribers outside the lock.
func (s *Session) dispatch(a Action) {
	s.tryDispatch(func(State) (Action, bool) { return a, true })
}

// tryDispatch reduces the action returned by build, if any. Building and
// reducing happen under one lock acquisition so check-and-set is atomic.
func (s *Session) tryDispatch(build func(State) (Action, bool)) bool {
	s.mu.Lock()
	a, ok := build(s.state)
	if !ok {
		s.mu.Unlock()
		return false
	}
	prev := s.state
	s.state = Reduce(s.state, a)
	changed := !sameState(prev, s.state)
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return true
}

// Init seeds the suggestion list.
func (s *Session) Init(ctx context.Context) {
	s.dispatch(LoadSuggestions(ctx, s.backend))
}

// SendMessage sends text and waits for the reply. It returns (nil, nil) when
// the send is ignored: blank text or a send already in flight. On failure the
// apology reply is returned together with the error.
func (s *Session) SendMessage(ctx context.Context, text string) (*Message, error) {
	var (
		start      SendStarted
		moderation bool
	)
	ok := s.tryDispatch(func(st State) (Action, bool) {
		a, ok := StartSend(st, text)
		start, moderation = a, st.ModerationEnabled
		return a, ok
	})
	if !ok {
		logging.ChatDebug("send ignored (blank or in flight)")
		return nil, nil
	}

	logging.Chat("send started id=%s moderation=%v", start.Message.ID, moderation)
	result := Send(ctx, s.backend, start.Message.Content, moderation)
	s.dispatch(result)

	switch r := result.(type) {
	case SendSucceeded:
		return &r.Message, nil
	case SendFailed:
		return &r.Message, &SendError{Message: r.Err}
	}
	return nil, nil
}

// ReplaceSuggestion fetches a new sentence for the suggestion at index.
// It reports false when another replacement is in flight, the index is out
// of range, or the fetch failed; failures leave the suggestion untouched.
func (s *Session) ReplaceSuggestion(ctx context.Context, index int) bool {
	started := s.tryDispatch(func(st State) (Action, bool) {
		if !st.CanReplace(index) {
			return nil, false
		}
		return SuggestionStarted{Index: index}, true
	})
	if !started {
		return false
	}

	result := FetchSuggestion(ctx, s.backend, index)
	s.dispatch(result)
	_, ok := result.(SuggestionReplaced)
	return ok
}

// HandleSuggestionClick sends the suggestion at index, then replaces that
// slot. The replacement runs even if the send was ignored.
func (s *Session) HandleSuggestionClick(ctx context.Context, index int) (*Message, error) {
	text, ok := s.State().Suggestion(index)
	if !ok {
		return nil, nil
	}
	reply, err := s.SendMessage(ctx, text)
	s.ReplaceSuggestion(ctx, index)
	return reply, err
}

// ClearError dismisses the error banner. History is untouched.
func (s *Session) ClearError() {
	s.dispatch(ErrorCleared{})
}

// SetModeration sets the moderation toggle used by subsequent sends.
func (s *Session) SetModeration(enabled bool) {
	s.dispatch(ModerationSet{Enabled: enabled})
}

func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	snapshot := s.state.Clone()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

// sameState is a cheap identity check: Reduce returns its input unchanged
// when a guard fails.
func sameState(a, b State) bool {
	return len(a.Messages) == len(b.Messages) &&
		a.Loading == b.Loading &&
		a.Err == b.Err &&
		a.ReplacingIndex == b.ReplacingIndex &&
		a.ModerationEnabled == b.ModerationEnabled &&
		slices.Equal(a.Suggestions, b.Suggestions)
}

// SendError is returned by SendMessage when the backend call failed. Message
// is the text shown in the error banner.
type SendError struct {
	Message string
}

func (e *SendError) Error() string { return e.Message }
