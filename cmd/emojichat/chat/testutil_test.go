package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"emojichat/internal/api"
	chatstate "emojichat/internal/chat"
	"emojichat/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MOCK BACKEND
// =============================================================================

// MockBackend is a scriptable Backend for model tests.
type MockBackend struct {
	mu sync.Mutex

	Emojis    []string
	EmojiErr  error
	Samples   []string
	SampleErr error
	HealthErr error

	// Gate, when set, holds GenerateEmojis until it is closed.
	Gate chan struct{}

	sampleCalls int
	sent        []string
	disabled    []bool
}

func (b *MockBackend) GenerateEmojis(ctx context.Context, message string, disableModeration bool) (*api.EmojiResponse, error) {
	if b.Gate != nil {
		select {
		case <-b.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, message)
	b.disabled = append(b.disabled, disableModeration)
	if b.EmojiErr != nil {
		return nil, b.EmojiErr
	}
	return &api.EmojiResponse{Emojis: b.Emojis, Message: message}, nil
}

// SetSampleErr makes later SampleSentence calls fail.
func (b *MockBackend) SetSampleErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SampleErr = err
}

func (b *MockBackend) SampleSentence(ctx context.Context) (*api.SampleResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SampleErr != nil {
		return nil, b.SampleErr
	}
	i := b.sampleCalls
	b.sampleCalls++
	if i < len(b.Samples) {
		return &api.SampleResponse{Sample: b.Samples[i]}, nil
	}
	return &api.SampleResponse{Sample: fmt.Sprintf("sample %d", i)}, nil
}

func (b *MockBackend) Health(ctx context.Context) (*api.HealthResponse, error) {
	if b.HealthErr != nil {
		return nil, b.HealthErr
	}
	return &api.HealthResponse{Status: "healthy", LLMModel: "test-model"}, nil
}

// Sent returns the messages passed to GenerateEmojis.
func (b *MockBackend) Sent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sent...)
}

// Disabled returns the disableModeration flags passed to GenerateEmojis.
func (b *MockBackend) Disabled() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.disabled...)
}

// =============================================================================
// TEST MODEL BUILDER
// =============================================================================

// TestModelOption configures a test model.
type TestModelOption func(*Options)

// WithBackend injects a backend.
func WithBackend(b Backend) TestModelOption {
	return func(o *Options) { o.Backend = b }
}

// WithConfig injects a config.
func WithConfig(cfg *config.Config) TestModelOption {
	return func(o *Options) { o.Config = cfg }
}

// NewTestModel creates a sized model on the light theme with a default mock
// backend and the suggestions already loaded.
func NewTestModel(t *testing.T, opts ...TestModelOption) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.UI.Theme = "light"
	o := Options{Backend: &MockBackend{Emojis: []string{"😀", "🎉"}}, Config: cfg}
	for _, opt := range opts {
		opt(&o)
	}

	m := New(o)
	t.Cleanup(m.Shutdown)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return settle(t, m, m.initCmd())
}

// update feeds msg to m and returns the concrete model.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return out
}

// updateCmd feeds msg to m and returns the model and the command.
func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return out, cmd
}

// settle runs cmd synchronously, feeds back any message it returns and then
// applies the latest session snapshot.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	if msg := cmd(); msg != nil {
		m = update(t, m, msg)
	}
	select {
	case st := <-m.states:
		m = update(t, m, stateMsg{state: st})
	default:
	}
	return m
}

// awaitState applies snapshots until cond holds.
func awaitState(t *testing.T, m Model, cond func(chatstate.State) bool) Model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-m.states:
			m = update(t, m, stateMsg{state: st})
			if cond(st) {
				return m
			}
		case <-deadline:
			t.Fatal("timed out waiting for session state")
			return m
		}
	}
}

// startGated runs cmd in the background and waits until the send is in
// flight. The returned channel closes when cmd finishes.
func startGated(t *testing.T, m Model, cmd tea.Cmd) (Model, <-chan struct{}) {
	t.Helper()
	require.NotNil(t, cmd)
	done := make(chan struct{})
	go func() {
		defer close(done)
		cmd()
	}()
	m = awaitState(t, m, func(st chatstate.State) bool { return st.Loading })
	return m, done
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runeMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText sets the input value as if the user typed it.
func typeText(m Model, s string) Model {
	m.input.SetValue(s)
	return m
}
