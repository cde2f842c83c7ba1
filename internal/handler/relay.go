package handler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"wedding-relay/internal/llm"
	"wedding-relay/internal/whatsapp"
)

var thinkTags = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Messenger delivers text to a conversation
type Messenger interface {
	SendText(ctx context.Context, chat, text string) error
}

// Completer turns a prompt into a completion
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RelayConfig controls when and how the bot answers
type RelayConfig struct {
	BotName         string
	Echo            bool
	RemoveThinkTags bool
	LogCompletions  bool
}

type RelayHandler struct {
	messenger Messenger
	completer Completer
	config    RelayConfig
	log       zerolog.Logger
}

// NewRelayHandler creates a relay answering mentions of the bot
func NewRelayHandler(messenger Messenger, completer Completer, cfg RelayConfig, log zerolog.Logger) *RelayHandler {
	return &RelayHandler{
		messenger: messenger,
		completer: completer,
		config:    cfg,
		log:       log.With().Str("component", "Relay").Logger(),
	}
}

// HandleMessage replies to messages that mention @BotName, either echoing
// them or with a language model completion.
func (h *RelayHandler) HandleMessage(ctx context.Context, msg whatsapp.Incoming) error {
	mention := "@" + h.config.BotName
	if h.config.BotName == "" || !strings.Contains(strings.ToLower(msg.Text), strings.ToLower(mention)) {
		return nil
	}

	reply := msg.Text
	if !h.config.Echo {
		reply = h.complete(ctx, stripMention(msg.Text, mention))
	}

	if err := h.messenger.SendText(ctx, msg.Chat, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (h *RelayHandler) complete(ctx context.Context, prompt string) string {
	if h.config.LogCompletions {
		h.log.Info().Str("prompt", prompt).Msg("Calling LM Studio")
	}

	out, err := h.completer.Complete(ctx, prompt)
	if err != nil {
		h.log.Error().Err(err).Msg("Completion failed")
		return llm.FallbackReply
	}

	if h.config.LogCompletions {
		h.log.Info().Str("response", out).Msg("LM Studio response")
	}
	if h.config.RemoveThinkTags {
		out = RemoveThinkTags(out)
	}
	return out
}

// RemoveThinkTags drops <think>...</think> reasoning blocks.
func RemoveThinkTags(text string) string {
	return strings.TrimSpace(thinkTags.ReplaceAllString(text, ""))
}

// stripMention removes every case-insensitive occurrence of the mention.
func stripMention(text, mention string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(mention))
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}
