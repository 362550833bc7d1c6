package chat

import "strings"

const helpMarkdown = `# Emoji Chat

Type a message and press **Enter**. The backend answers with a sequence of
emojis that captures what you wrote.

## Keys

| Key | Action |
| --- | --- |
| Enter | Send the message, or the focused suggestion |
| Tab / Shift+Tab | Move between the input and the suggestions |
| ← / → | Pick a suggestion |
| Ctrl+E | Dismiss the error banner |
| Ctrl+T | Toggle content moderation |
| F1 / ? | Show this help |
| Esc / Ctrl+C | Quit |

## Suggestions

Sending a suggestion replaces it with a fresh sample sentence once the reply
arrives. While a send is running the suggestions are disabled.

## Moderation

With moderation on, the backend may refuse a message. Turn it off with
**Ctrl+T** to skip the check.

_Press any key to close._
`

// renderHelp renders the help panel with glamour, falling back to the raw
// markdown when no renderer is available.
func (m Model) renderHelp() string {
	if m.renderer == nil {
		return helpMarkdown
	}
	out, err := m.renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
