package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emojichat/internal/api"
)

func TestSession_InitLoadsSamples(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)
	s.Init(context.Background())

	st := s.State()
	require.Len(t, st.Suggestions, SuggestionCount)
	assert.ElementsMatch(t, []string{"sample 1", "sample 2", "sample 3"}, st.Suggestions)
	assert.Equal(t, SuggestionCount, b.samples())
}

func TestSession_InitFallbackOnAnyFailure(t *testing.T) {
	var n int
	var mu sync.Mutex
	b := &fakeBackend{sample: func(ctx context.Context) (*api.SampleResponse, error) {
		mu.Lock()
		n++
		call := n
		mu.Unlock()
		if call == 2 {
			return nil, errors.New("network down")
		}
		return &api.SampleResponse{Sample: "ok"}, nil
	}}
	s := NewSession(b)
	s.Init(context.Background())

	assert.Equal(t, FallbackSuggestions(), s.State().Suggestions)
}

func TestSession_SendMessage_Success(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)

	reply, err := s.SendMessage(context.Background(), "  I'm so happy today!  ")
	require.NoError(t, err)
	require.NotNil(t, reply)

	st := s.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, RoleUser, st.Messages[0].Role)
	assert.Equal(t, "I'm so happy today!", st.Messages[0].Content)
	assert.Equal(t, RoleBot, st.Messages[1].Role)
	assert.Equal(t, []string{"😊", "👍"}, st.Messages[1].Emojis)
	assert.Empty(t, st.Messages[1].Content)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)

	calls := b.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "I'm so happy today!", calls[0].Message)
	assert.False(t, calls[0].DisableModeration)
}

func TestSession_SendMessage_IgnoresBlank(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)

	for _, text := range []string{"", "   ", "\n\t"} {
		reply, err := s.SendMessage(context.Background(), text)
		assert.Nil(t, reply)
		assert.NoError(t, err)
	}
	assert.Empty(t, s.State().Messages)
	assert.Empty(t, b.calls())
}

func TestSession_SendMessage_Failure(t *testing.T) {
	b := &fakeBackend{generate: func(context.Context, string, bool) (*api.EmojiResponse, error) {
		return nil, &api.Error{Message: "Message failed content moderation: rude", Status: 400}
	}}
	s := NewSession(b)

	reply, err := s.SendMessage(context.Background(), "something rude")
	require.Error(t, err)
	require.NotNil(t, reply)

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, "Message failed content moderation: rude", sendErr.Message)

	st := s.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, ApologyContent, st.Messages[1].Content)
	assert.Equal(t, []string{"😔", "🔧"}, st.Messages[1].Emojis)
	assert.Equal(t, "Message failed content moderation: rude", st.Err)
	assert.False(t, st.Loading)
}

func TestSession_SendMessage_NonAPIErrorUsesGenericText(t *testing.T) {
	b := &fakeBackend{generate: func(context.Context, string, bool) (*api.EmojiResponse, error) {
		return nil, errors.New("something odd")
	}}
	s := NewSession(b)

	_, err := s.SendMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, SendFailedMessage, s.State().Err)
}

func TestSession_SendWhileInFlightIsNoop(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	b := &fakeBackend{generate: func(ctx context.Context, message string, _ bool) (*api.EmojiResponse, error) {
		close(entered)
		<-release
		return &api.EmojiResponse{Emojis: []string{"🎉"}, Message: message}, nil
	}}
	s := NewSession(b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.SendMessage(context.Background(), "first")
	}()
	<-entered

	// The user message is visible before the reply arrives.
	st := s.State()
	require.Len(t, st.Messages, 1)
	assert.True(t, st.Loading)

	reply, err := s.SendMessage(context.Background(), "second")
	assert.Nil(t, reply)
	assert.NoError(t, err)
	assert.Len(t, s.State().Messages, 1)

	close(release)
	<-done

	st = s.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "first", st.Messages[0].Content)
	assert.Equal(t, []string{"🎉"}, st.Messages[1].Emojis)
	assert.Len(t, b.calls(), 1)
}

func TestSession_ModerationFlagForwarded(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)
	s.SetModeration(false)

	_, err := s.SendMessage(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, b.calls(), 1)
	assert.True(t, b.calls()[0].DisableModeration)

	s2 := NewSession(b, WithModeration(false))
	assert.False(t, s2.State().ModerationEnabled)
}

func TestSession_ReplaceSuggestion(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)
	s.dispatch(SuggestionsLoaded{Suggestions: []string{"a", "b", "c"}})

	assert.True(t, s.ReplaceSuggestion(context.Background(), 1))
	st := s.State()
	require.Len(t, st.Suggestions, SuggestionCount)
	assert.Equal(t, "a", st.Suggestions[0])
	assert.Equal(t, "sample 1", st.Suggestions[1])
	assert.Equal(t, "c", st.Suggestions[2])
	assert.Equal(t, noReplacement, st.ReplacingIndex)
}

func TestSession_ReplaceSuggestion_FailureSwallowed(t *testing.T) {
	b := &fakeBackend{sample: failingSample}
	s := NewSession(b)
	s.dispatch(SuggestionsLoaded{Suggestions: []string{"a", "b", "c"}})

	assert.False(t, s.ReplaceSuggestion(context.Background(), 0))
	st := s.State()
	assert.Equal(t, []string{"a", "b", "c"}, st.Suggestions)
	assert.Empty(t, st.Err, "suggestion failures never reach the banner")
	assert.Equal(t, noReplacement, st.ReplacingIndex)
}

func TestSession_ReplaceSuggestion_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	b := &fakeBackend{sample: func(ctx context.Context) (*api.SampleResponse, error) {
		entered <- struct{}{}
		<-release
		return &api.SampleResponse{Sample: "new"}, nil
	}}
	s := NewSession(b)
	s.dispatch(SuggestionsLoaded{Suggestions: []string{"a", "b", "c"}})

	done := make(chan bool)
	go func() { done <- s.ReplaceSuggestion(context.Background(), 0) }()
	<-entered

	assert.False(t, s.ReplaceSuggestion(context.Background(), 0), "same index in flight")
	assert.False(t, s.ReplaceSuggestion(context.Background(), 2), "other index waits too")

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, []string{"new", "b", "c"}, s.State().Suggestions)
	assert.Equal(t, 1, b.samples())
}

func TestSession_HandleSuggestionClick(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)
	s.dispatch(SuggestionsLoaded{Suggestions: []string{"a", "b", "c"}})

	reply, err := s.HandleSuggestionClick(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, reply)

	st := s.State()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "b", st.Messages[0].Content)
	assert.Equal(t, []string{"a", "sample 1", "c"}, st.Suggestions)
	require.Len(t, b.calls(), 1)
	assert.Equal(t, "b", b.calls()[0].Message)
}

func TestSession_HandleSuggestionClick_OutOfRange(t *testing.T) {
	s := NewSession(&fakeBackend{})
	reply, err := s.HandleSuggestionClick(context.Background(), 5)
	assert.Nil(t, reply)
	assert.NoError(t, err)
}

func TestSession_ClearErrorKeepsHistory(t *testing.T) {
	b := &fakeBackend{generate: func(context.Context, string, bool) (*api.EmojiResponse, error) {
		return nil, &api.Error{Message: "HTTP 500", Status: 500}
	}}
	s := NewSession(b)
	_, _ = s.SendMessage(context.Background(), "hi")
	before := s.State().Messages

	s.ClearError()
	st := s.State()
	assert.Empty(t, st.Err)
	assert.Equal(t, before, st.Messages)
}

func TestSession_Subscribe(t *testing.T) {
	s := NewSession(&fakeBackend{})

	var (
		mu     sync.Mutex
		states []State
	)
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	_, err := s.SendMessage(context.Background(), "hi")
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, states, 2, "one notification for the send start, one for the reply")
	assert.True(t, states[0].Loading)
	assert.Len(t, states[0].Messages, 1)
	assert.False(t, states[1].Loading)
	mu.Unlock()

	// No-op transitions do not notify.
	s.ClearError()
	unsubscribe()
	s.SetModeration(false)

	mu.Lock()
	assert.Len(t, states, 2)
	mu.Unlock()
}

func TestSession_SubscribeDeliversLatestLast(t *testing.T) {
	s := NewSession(&fakeBackend{})

	var (
		mu   sync.Mutex
		last State
		seen int
	)
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		last = st
		seen++
		mu.Unlock()
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.Init(context.Background()) }()
	go func() { defer wg.Done(); _, _ = s.SendMessage(context.Background(), "hi") }()
	go func() { defer wg.Done(); s.SetModeration(false) }()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, seen, 4)
	assert.Equal(t, s.State(), last, "the final delivery is the current state")
}

func TestSession_ContextCancellation(t *testing.T) {
	b := &fakeBackend{generate: func(ctx context.Context, _ string, _ bool) (*api.EmojiResponse, error) {
		select {
		case <-ctx.Done():
			return nil, &api.Error{Message: ctx.Err().Error()}
		case <-time.After(5 * time.Second):
			return &api.EmojiResponse{}, nil
		}
	}}
	s := NewSession(b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SendMessage(ctx, "hi")
	require.Error(t, err)
	st := s.State()
	assert.False(t, st.Loading)
	assert.Equal(t, "context canceled", st.Err)
}
