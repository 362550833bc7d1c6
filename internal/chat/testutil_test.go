package chat

import (
	"context"
	"fmt"
	"sync"

	"emojichat/internal/api"
)

// fakeBackend is a scriptable Backend. Nil funcs return canned successes.
type fakeBackend struct {
	mu          sync.Mutex
	generate    func(ctx context.Context, message string, disableModeration bool) (*api.EmojiResponse, error)
	sample      func(ctx context.Context) (*api.SampleResponse, error)
	generateLog []generateCall
	sampleCalls int
}

type generateCall struct {
	Message           string
	DisableModeration bool
}

func (f *fakeBackend) GenerateEmojis(ctx context.Context, message string, disableModeration bool) (*api.EmojiResponse, error) {
	f.mu.Lock()
	f.generateLog = append(f.generateLog, generateCall{message, disableModeration})
	fn := f.generate
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, message, disableModeration)
	}
	return &api.EmojiResponse{Emojis: []string{"😊", "👍"}, Message: message}, nil
}

func (f *fakeBackend) SampleSentence(ctx context.Context) (*api.SampleResponse, error) {
	f.mu.Lock()
	f.sampleCalls++
	n := f.sampleCalls
	fn := f.sample
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return &api.SampleResponse{Sample: fmt.Sprintf("sample %d", n)}, nil
}

func (f *fakeBackend) calls() []generateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]generateCall(nil), f.generateLog...)
}

func (f *fakeBackend) samples() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sampleCalls
}

func failingSample(context.Context) (*api.SampleResponse, error) {
	return nil, &api.Error{Message: "HTTP 500", Status: 500}
}

func seededState(suggestions ...string) State {
	s := NewState()
	s.Suggestions = suggestions
	return s
}
