package chat

// Action is a state transition request. The set is closed: only the types in
// this file implement it.
type Action interface {
	isAction()
}

type (
	// SuggestionsLoaded seeds the suggestion list.
	SuggestionsLoaded struct {
		Suggestions []string
	}

	// SendStarted appends the user message and marks a send in flight.
	SendStarted struct {
		Message Message
	}

	// SendSucceeded appends the bot reply.
	SendSucceeded struct {
		Message Message
	}

	// SendFailed appends the apology reply and raises the error banner.
	SendFailed struct {
		Err     string
		Message Message
	}

	// SuggestionStarted marks the suggestion at Index as being replaced.
	SuggestionStarted struct {
		Index int
	}

	// SuggestionReplaced writes Text at Index.
	SuggestionReplaced struct {
		Index int
		Text  string
	}

	// SuggestionFailed ends a replacement and keeps the old suggestion.
	SuggestionFailed struct {
		Index int
		Err   error
	}

	// ErrorCleared dismisses the error banner.
	ErrorCleared struct{}

	// ModerationSet sets the moderation toggle.
	ModerationSet struct {
		Enabled bool
	}
)

func (SuggestionsLoaded) isAction()  {}
func (SendStarted) isAction()        {}
func (SendSucceeded) isAction()      {}
func (SendFailed) isAction()         {}
func (SuggestionStarted) isAction()  {}
func (SuggestionReplaced) isAction() {}
func (SuggestionFailed) isAction()   {}
func (ErrorCleared) isAction()       {}
func (ModerationSet) isAction()      {}

// StartSend builds the SendStarted action for text, or reports false when
// the send must be ignored (blank text or a send already in flight).
func StartSend(s State, text string) (SendStarted, bool) {
	if !s.CanSend(text) {
		return SendStarted{}, false
	}
	return SendStarted{Message: NewUserMessage(text)}, true
}

// Reduce applies a to s and returns the resulting state. Actions whose guard
// fails return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SuggestionsLoaded:
		next := s.Clone()
		next.Suggestions = append([]string(nil), a.Suggestions...)
		return next

	case SendStarted:
		if s.Loading {
			return s
		}
		next := s.Clone()
		next.Err = ""
		next.Loading = true
		next.Messages = append(next.Messages, a.Message)
		return next

	case SendSucceeded:
		if !s.Loading {
			return s
		}
		next := s.Clone()
		next.Loading = false
		next.Messages = append(next.Messages, a.Message)
		return next

	case SendFailed:
		if !s.Loading {
			return s
		}
		next := s.Clone()
		next.Loading = false
		next.Err = a.Err
		next.Messages = append(next.Messages, a.Message)
		return next

	case SuggestionStarted:
		if !s.CanReplace(a.Index) {
			return s
		}
		next := s.Clone()
		next.ReplacingIndex = a.Index
		return next

	case SuggestionReplaced:
		if !s.IsReplacing(a.Index) {
			return s
		}
		next := s.Clone()
		next.Suggestions[a.Index] = a.Text
		next.ReplacingIndex = noReplacement
		return next

	case SuggestionFailed:
		if !s.IsReplacing(a.Index) {
			return s
		}
		next := s.Clone()
		next.ReplacingIndex = noReplacement
		return next

	case ErrorCleared:
		if s.Err == "" {
			return s
		}
		next := s.Clone()
		next.Err = ""
		return next

	case ModerationSet:
		next := s.Clone()
		next.ModerationEnabled = a.Enabled
		return next
	}
	return s
}
