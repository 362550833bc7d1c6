package chat

import (
	"emojichat/cmd/emojichat/ui"
	"emojichat/internal/logging"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles every message delivered to the chat model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateMsg:
		m.applyState(msg.state)
		return m, m.waitForState()

	case healthMsg:
		m.healthChecked = true
		m.health = msg.health
		m.healthErr = msg.err
		if msg.err != nil {
			logging.Get(logging.CategoryUI).Warn("health check failed: %v", msg.err)
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config == nil {
			return m, nil
		}
		m.styles = ui.NewStyles(ui.ResolveTheme(msg.Config.UI.Theme))
		m.spinner.Style = m.styles.Spinner
		m.input.PromptStyle = m.styles.Prompt
		m.input.CharLimit = msg.Config.Chat.MaxMessageLength
		m.renderer = newRenderer(m.styles.Theme, m.contentWidth())
		m.refreshViewport()
		logging.UI("applied reloaded config (theme=%s)", msg.Config.UI.Theme)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg routes keyboard input. Global bindings are checked first,
// then the binding for the focused widget.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes the help panel; quit keys also quit.
		m.showHelp = false
		if key.Matches(msg, m.keys.Quit) {
			m.Shutdown()
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.ClearError):
		m.session.ClearError()
		m.applyState(m.session.State())
		return m, nil

	case key.Matches(msg, m.keys.Moderation):
		m.session.SetModeration(!m.state.ModerationEnabled)
		m.applyState(m.session.State())
		logging.UIDebug("moderation toggled: %v", m.state.ModerationEnabled)
		return m, nil

	case key.Matches(msg, m.keys.Help) && (msg.String() != "?" || m.focus != focusInput):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.NextFocus), key.Matches(msg, m.keys.PrevFocus):
		if m.focus == focusInput && len(m.state.Suggestions) > 0 {
			m.setFocus(focusSuggestions)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil
	}

	if m.focus == focusSuggestions {
		return m.handleSuggestionKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		mm, cmd := m.submit(m.input.Value())
		if cmd != nil {
			mm.input.Reset()
		}
		return mm, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSuggestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.state.Suggestions)
	switch {
	case key.Matches(msg, m.keys.Left):
		if n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}
	case key.Matches(msg, m.keys.Right):
		if n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case key.Matches(msg, m.keys.Submit):
		return m.clickSuggestion(m.selected)
	}
	return m, nil
}

// resize lays out the viewport for the new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	vpHeight := height - headerHeight - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = vpHeight
	m.input.Width = m.contentWidth() - 4

	if !m.ready || m.renderer == nil {
		m.renderer = newRenderer(m.styles.Theme, m.contentWidth())
	}
	m.ready = true
	m.refreshViewport()
}

func (m Model) contentWidth() int {
	if m.width <= 4 {
		return 76
	}
	return m.width - 2
}

// refreshViewport re-renders the history and scrolls to the newest message.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
