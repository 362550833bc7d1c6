package chat

import (
	"context"

	"golang.org/x/sync/errgroup"

	"emojichat/internal/api"
	"emojichat/internal/logging"
)

// Backend is the subset of the API client the chat state needs.
type Backend interface {
	GenerateEmojis(ctx context.Context, message string, disableModeration bool) (*api.EmojiResponse, error)
	SampleSentence(ctx context.Context) (*api.SampleResponse, error)
}

// Send translates text and returns SendSucceeded or SendFailed.
func Send(ctx context.Context, b Backend, text string, moderationEnabled bool) Action {
	resp, err := b.GenerateEmojis(ctx, text, !moderationEnabled)
	if err != nil {
		logging.Get(logging.CategoryChat).Warn("emoji generation failed: %v", err)
		return SendFailed{
			Err:     api.Message(err, SendFailedMessage),
			Message: newBotMessage(ApologyContent, ApologyEmojis()),
		}
	}
	logging.ChatDebug("received %d emojis", len(resp.Emojis))
	// The reply shows only emojis; the echoed text is redundant.
	return SendSucceeded{Message: newBotMessage("", resp.Emojis)}
}

// FetchSuggestion fetches a new sample for the suggestion at index.
func FetchSuggestion(ctx context.Context, b Backend, index int) Action {
	resp, err := b.SampleSentence(ctx)
	if err != nil {
		logging.Get(logging.CategoryChat).Warn("failed to replace suggestion %d: %v", index, err)
		return SuggestionFailed{Index: index, Err: err}
	}
	return SuggestionReplaced{Index: index, Text: resp.Sample}
}

// LoadSuggestions requests SuggestionCount samples in parallel. Any failure
// yields FallbackSuggestions.
func LoadSuggestions(ctx context.Context, b Backend) Action {
	samples := make([]string, SuggestionCount)
	g, gctx := errgroup.WithContext(ctx)
	for i := range samples {
		g.Go(func() error {
			resp, err := b.SampleSentence(gctx)
			if err != nil {
				return err
			}
			samples[i] = resp.Sample
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Get(logging.CategoryChat).Warn("failed to load initial suggestions: %v", err)
		return SuggestionsLoaded{Suggestions: FallbackSuggestions()}
	}
	return SuggestionsLoaded{Suggestions: samples}
}
