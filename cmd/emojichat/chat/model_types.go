// Package chat implements the interactive terminal UI for emojichat.
//
// The Model drives a chatstate.Session. User intents call the session from
// tea.Cmds; the session's state snapshots come back through a subscription
// as stateMsg values, so the TUI and the one-shot CLI commands share one
// state machine.
package chat

import (
	"context"

	"emojichat/cmd/emojichat/ui"
	"emojichat/internal/api"
	chatstate "emojichat/internal/chat"
	"emojichat/internal/config"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// Backend is what the TUI needs from the emoji service.
type Backend interface {
	chatstate.Backend
	Health(ctx context.Context) (*api.HealthResponse, error)
}

// focusArea is the widget that receives Enter and typing.
type focusArea int

const (
	focusInput focusArea = iota
	focusSuggestions
)

// =============================================================================
// MESSAGES
// =============================================================================

// stateMsg carries a session snapshot.
type stateMsg struct {
	state chatstate.State
}

// healthMsg reports the startup health check.
type healthMsg struct {
	health *api.HealthResponse
	err    error
}

// ConfigReloadedMsg is delivered by the config watcher after the file on disk
// changed and validated.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// Options configures New.
type Options struct {
	Backend Backend
	Config  *config.Config
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	// UI components
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// Chat state
	backend     Backend
	session     *chatstate.Session
	state       chatstate.State // latest snapshot received
	states      chan chatstate.State
	unsubscribe func()

	// Focus
	focus    focusArea
	selected int

	// Backend health, fetched once at startup
	health        *api.HealthResponse
	healthErr     error
	healthChecked bool

	showHelp bool

	// Layout
	width  int
	height int
	ready  bool

	ctx    context.Context
	cancel context.CancelFunc
}
