package main

import (
	"fmt"
	"io"
	"strings"

	"emojichat/internal/api"
	"emojichat/internal/chat"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	noModeration bool
	sampleCount  int
)

// sendCmd translates one message
var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Translate a single message into emojis",
	Long: `Sends the message to the backend and prints the emoji reply.

Example:
  emojichat send "I'm feeling excited about today!"
  emojichat send --no-moderation "skip the content check"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

// sampleCmd prints sample sentences
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print sample sentences from the backend",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

// healthCmd checks the backend
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show backend health",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	moderation := cfg.Chat.Moderation && !noModeration
	session := chat.NewSession(newClient(cfg), chat.WithModeration(moderation))

	text := joinArgs(args)
	logger.Debug("Sending message", zap.Int("length", len(text)), zap.Bool("moderation", moderation))

	reply, err := session.SendMessage(ctx, text)
	if reply == nil && err == nil {
		return fmt.Errorf("nothing to send")
	}
	if err != nil {
		logger.Warn("Send failed", zap.Error(err))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(reply.Emojis, " "))
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	if sampleCount < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", sampleCount)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	client := newClient(cfg)
	samples := make([]string, sampleCount)
	g, gctx := errgroup.WithContext(ctx)
	for i := range samples {
		g.Go(func() error {
			resp, err := client.SampleSentence(gctx)
			if err != nil {
				return err
			}
			samples[i] = resp.Sample
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fetch samples: %w", err)
	}

	for _, s := range samples {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	h, err := newClient(cfg).Health(ctx)
	if err != nil {
		fmt.Fprintf(out, "Backend:  %s\nStatus:   down (%s)\n", cfg.API.BaseURL, api.Message(err, "unreachable"))
		return fmt.Errorf("backend is not healthy")
	}
	printHealth(out, cfg.API.BaseURL, h)
	return nil
}

func printHealth(out io.Writer, baseURL string, h *api.HealthResponse) {
	fmt.Fprintf(out, "Backend:     %s\n", baseURL)
	fmt.Fprintf(out, "Status:      %s\n", valueOr(h.Status, "ok"))
	if h.LLMModel != "" {
		fmt.Fprintf(out, "Model:       %s\n", h.LLMModel)
	}
	if h.LLMURL != "" {
		fmt.Fprintf(out, "LLM URL:     %s\n", h.LLMURL)
	}
	moderation := "disabled"
	if h.ContentModerationEnabled {
		moderation = "enabled"
		if h.ModerationModel != "" {
			moderation += " (" + h.ModerationModel + ")"
		}
	}
	fmt.Fprintf(out, "Moderation:  %s\n", moderation)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
