package chat

import (
	"fmt"
	"strings"

	chatstate "emojichat/internal/chat"

	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle      = "Emoji Chat"
	appSubtitle   = "Express yourself with AI-generated emoji reactions"
	welcomeTitle  = "Welcome to Emoji Chat!"
	welcomeText   = "Send a message or try one of the suggestions below."
	loadingText   = "Generating emojis..."
	timeFormat    = "15:04"
	moderationTip = "Moderation"
)

// View renders the whole screen.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	sections := []string{
		m.renderHeader(),
		m.viewport.View(),
	}
	if m.state.Loading {
		sections = append(sections, m.renderLoading())
	}
	if m.state.Err != "" {
		sections = append(sections, m.renderError())
	}
	sections = append(sections,
		m.renderSuggestions(),
		m.styles.Content.Render(m.input.View()),
		m.renderFooter(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render(appTitle)
	subtitle := m.styles.Subtitle.Render(appSubtitle)
	left := lipgloss.JoinVertical(lipgloss.Left, title, subtitle)

	right := lipgloss.JoinHorizontal(lipgloss.Top, m.renderHealth(), "  💬")
	gap := m.contentWidth() - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
	return m.styles.Header.Render(row)
}

func (m Model) renderHealth() string {
	switch {
	case !m.healthChecked:
		return m.styles.Muted.Render("○ checking backend")
	case m.healthErr != nil:
		return m.styles.Unhealthy.Render("● backend unreachable")
	case m.health != nil && m.health.LLMModel != "":
		return m.styles.Healthy.Render("● " + m.health.LLMModel)
	default:
		return m.styles.Healthy.Render("● backend online")
	}
}

// renderHistory renders the welcome block or the message bubbles.
func (m Model) renderHistory() string {
	width := m.contentWidth()
	if len(m.state.Messages) == 0 {
		welcome := lipgloss.JoinVertical(lipgloss.Center,
			"👋",
			m.styles.Bold.Render(welcomeTitle),
			welcomeText,
		)
		return m.styles.Welcome.Width(width).Render(welcome)
	}

	var b strings.Builder
	for i, msg := range m.state.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMessage(msg chatstate.Message, width int) string {
	maxBubble := width * 3 / 4
	if maxBubble < 20 {
		maxBubble = width
	}
	stamp := m.styles.Timestamp.Render(msg.Timestamp.Format(timeFormat))

	if msg.Role == chatstate.RoleUser {
		bubble := wrapBubble(m.styles.UserBubble, msg.Content, maxBubble)
		block := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}

	var lines []string
	if msg.Content != "" {
		lines = append(lines, m.styles.BotQuote.Render(fmt.Sprintf("“%s”", msg.Content)))
	}
	lines = append(lines, m.styles.Emojis.Render(strings.Join(msg.Emojis, " ")))
	bubble := wrapBubble(m.styles.BotBubble, lipgloss.JoinVertical(lipgloss.Left, lines...), maxBubble)
	return lipgloss.JoinVertical(lipgloss.Left, bubble, stamp)
}

// wrapBubble renders content in style, word-wrapping it when the bubble
// would be wider than maxWidth. Short content keeps its natural width.
func wrapBubble(style lipgloss.Style, content string, maxWidth int) string {
	frame := style.GetHorizontalFrameSize()
	if lipgloss.Width(content)+frame > maxWidth {
		// Width covers padding but not the border.
		style = style.Width(maxWidth - style.GetHorizontalBorderSize())
	}
	return style.Render(content)
}

func (m Model) renderLoading() string {
	return m.styles.Content.Render(m.spinner.View() + " " + m.styles.Muted.Render(loadingText))
}

func (m Model) renderError() string {
	text := "⚠ " + m.state.Err + "  " + m.styles.Muted.Render("(ctrl+e to dismiss)")
	return m.styles.ErrorBanner.Render(text)
}

func (m Model) renderSuggestions() string {
	if len(m.state.Suggestions) == 0 {
		return m.styles.Content.Render(m.styles.Muted.Render("Loading suggestions..."))
	}
	buttons := make([]string, 0, len(m.state.Suggestions))
	for i, s := range m.state.Suggestions {
		style := m.styles.Suggestion
		label := s
		switch {
		case m.state.IsReplacing(i):
			style = m.styles.SuggestionDisabled
			label = m.spinner.View() + " " + s
		case !m.canClick(i):
			style = m.styles.SuggestionDisabled
		case m.focus == focusSuggestions && i == m.selected:
			style = m.styles.SuggestionSelected
		}
		buttons = append(buttons, style.Render(label))
	}
	return m.styles.Content.Render(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
}

func (m Model) renderFooter() string {
	box := "[ ]"
	if m.state.ModerationEnabled {
		box = "[x]"
	}
	moderation := m.styles.Checkbox.Render(box + " " + moderationTip)
	return m.styles.Footer.Render(moderation + "   " + m.help.View(m.keys))
}
