package ai

import (
	"context"
	"errors"
	"strings"
)

// FallbackReply is the user-safe text returned in place of any generation
// failure; callers always receive a usable reply.
const FallbackReply = "I apologize, but I encountered an error processing your request. Please try again."

// Outcome distinguishes why a generation did or did not produce text, so
// callers and tests can tell "the model declined" from "the model was
// unreachable".
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeUnreachable
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

type Result struct {
	Text    string
	Outcome Outcome
	Err     error
}

// Reply returns the generated text, or the fixed fallback on any failure.
func (r Result) Reply() string {
	if r.Outcome == OutcomeOK {
		return r.Text
	}
	return FallbackReply
}

// Gateway is the boundary to the external model: one completion attempt per
// call, failures normalized into a Result instead of an error.
type Gateway struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewGateway(cfg ChatConfig) *Gateway {
	return &Gateway{
		client: NewOpenAICompatibleClient(),
		cfg:    cfg,
	}
}

func (g *Gateway) Generate(ctx context.Context, prompt string) Result {
	text, err := g.client.Complete(ctx, g.cfg, []ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		outcome := OutcomeUnreachable
		if errors.Is(err, ErrBadResponse) {
			outcome = OutcomeMalformed
		}
		return Result{Outcome: outcome, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Outcome: OutcomeMalformed, Err: errors.New("empty completion text")}
	}
	return Result{Text: text, Outcome: OutcomeOK}
}
