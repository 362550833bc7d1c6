package chat

import (
	"context"

	"emojichat/cmd/emojichat/ui"
	chatstate "emojichat/internal/chat"
	"emojichat/internal/config"
	"emojichat/internal/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const (
	inputPlaceholder = "Type your message here..."
	headerHeight     = 3
	// input, suggestions (bordered), moderation/help footer and spacing
	chromeHeight = 9
)

// New creates the chat model and subscribes it to a fresh session. The model
// owns a context that is cancelled when the user quits, aborting in-flight
// backend calls.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	styles := ui.NewStyles(ui.ResolveTheme(cfg.UI.Theme))

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = cfg.Chat.MaxMessageLength
	ti.Prompt = "› "
	ti.PromptStyle = styles.Prompt
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	session := chatstate.NewSession(opts.Backend, chatstate.WithModeration(cfg.Chat.Moderation))

	// Latest snapshot wins. The session serializes deliveries, so this is
	// the only sender and the send after the drain never blocks.
	states := make(chan chatstate.State, 1)
	unsubscribe := session.Subscribe(func(st chatstate.State) {
		select {
		case <-states:
		default:
		}
		states <- st
	})

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		input:       ti,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		help:        help.New(),
		keys:        defaultKeyMap(),
		styles:      styles,
		backend:     opts.Backend,
		session:     session,
		state:       session.State(),
		states:      states,
		unsubscribe: unsubscribe,
		focus:       focusInput,
		ctx:         ctx,
		cancel:      cancel,
	}
	m.renderer = newRenderer(styles.Theme, 80)
	return m
}

func newRenderer(theme ui.Theme, width int) *glamour.TermRenderer {
	style := "light"
	if theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("glamour renderer unavailable: %v", err)
		return nil
	}
	return r
}

// Init starts the cursor blink, the spinner, the state listener, the
// suggestion load and the health check.
func (m Model) Init() tea.Cmd {
	logging.UI("chat model initialized")
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForState(),
		m.initCmd(),
		m.healthCmd(),
	)
}

// State returns the latest chat state snapshot.
func (m Model) State() chatstate.State {
	return m.state
}

// Shutdown cancels in-flight backend calls and detaches from the session.
func (m Model) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForState blocks until the session publishes a snapshot.
func (m Model) waitForState() tea.Cmd {
	ctx, states := m.ctx, m.states
	return func() tea.Msg {
		select {
		case st := <-states:
			return stateMsg{state: st}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) initCmd() tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		s.Init(ctx)
		return nil
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		if _, err := s.SendMessage(ctx, text); err != nil {
			logging.UIDebug("send failed: %v", err)
		}
		return nil
	}
}

func (m Model) clickCmd(index int) tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		if _, err := s.HandleSuggestionClick(ctx, index); err != nil {
			logging.UIDebug("suggestion %d send failed: %v", index, err)
		}
		return nil
	}
}

func (m Model) healthCmd() tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		h, err := b.Health(ctx)
		return healthMsg{health: h, err: err}
	}
}

// =============================================================================
// INTENTS
// =============================================================================

// submit sends text unless the latest snapshot already rules it out. The
// session re-checks the guard, so a stale snapshot only costs a no-op call.
func (m Model) submit(text string) (Model, tea.Cmd) {
	if !m.state.CanSend(text) {
		return m, nil
	}
	m.input.Blur()
	logging.UIDebug("send requested (%d chars)", len(text))
	return m, m.sendCmd(text)
}

// clickSuggestion sends the suggestion and then refreshes its slot. Focus
// goes back to the input.
func (m Model) clickSuggestion(index int) (Model, tea.Cmd) {
	if !m.canClick(index) {
		return m, nil
	}
	m.setFocus(focusInput)
	m.input.Blur()
	return m, m.clickCmd(index)
}

// applyState installs a session snapshot.
func (m *Model) applyState(st chatstate.State) {
	prev := m.state
	m.state = st
	if st.Loading {
		m.input.Blur()
	} else if m.focus == focusInput {
		m.input.Focus()
	}
	if len(st.Messages) != len(prev.Messages) {
		m.refreshViewport()
	}
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput && !m.state.Loading {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// canClick reports whether the suggestion at index accepts a click. Buttons
// are disabled while a send runs or while that slot is being replaced.
func (m Model) canClick(index int) bool {
	if _, ok := m.state.Suggestion(index); !ok {
		return false
	}
	return !m.state.Loading && !m.state.IsReplacing(index)
}
