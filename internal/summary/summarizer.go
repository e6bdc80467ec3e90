package summary

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/internal/prompt"
)

var tracer = otel.Tracer("github.com/capitalize-ai/conversation-summarizer/internal/summary")

// PromptBuilder turns a conversation into a prompt and its history metrics.
type PromptBuilder interface {
	Build(conv model.Conversation, org model.OrganizationProfile, language string) prompt.Context
}

// Summarizer condenses a conversation into a short summary.
type Summarizer struct {
	builder  PromptBuilder
	selector *Selector
	invoker  *Invoker
	params   Params
	diag     Diagnostics
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithParams sets the sampling parameters forwarded to the model.
func WithParams(p Params) Option {
	return func(s *Summarizer) {
		s.params = p
	}
}

// WithDiagnostics sets the diagnostics sink.
func WithDiagnostics(d Diagnostics) Option {
	return func(s *Summarizer) {
		s.diag = d
	}
}

// New creates a summarizer.
func New(builder PromptBuilder, selector *Selector, invoker *Invoker, opts ...Option) *Summarizer {
	s := &Summarizer{
		builder:  builder,
		selector: selector,
		invoker:  invoker,
		params:   DefaultParams(),
		diag:     NopDiagnostics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize builds the prompt, selects a model and invokes it. The returned
// summary may be empty when both the primary and fallback models produced
// nothing. An error means every attempt of a model sequence failed.
func (s *Summarizer) Summarize(ctx context.Context, conv model.Conversation, language string, org model.OrganizationProfile) (string, error) {
	ctx, span := tracer.Start(ctx, "summary.Summarize")
	defer span.End()

	pc := s.builder.Build(conv, org, language)
	s.diag.PromptBuilt(ctx, pc)

	tier := s.selector.Tier(pc.NumPastMessagesIncluded, pc.PastConvTokenCount, org.MatchingStepModel)
	primary := s.selector.Select(pc.NumPastMessagesIncluded, pc.PastConvTokenCount, org.MatchingStepModel)
	s.diag.ModelSelected(ctx, primary, tier)

	span.SetAttributes(
		attribute.Int64("organization.id", org.ID),
		attribute.Int("conversation.messages", conv.Len()),
		attribute.Int("summary.past_messages", pc.NumPastMessagesIncluded),
		attribute.Int("summary.past_tokens", pc.PastConvTokenCount),
		attribute.String("summary.model", primary),
		attribute.String("summary.tier", tier.String()),
	)

	out, err := s.invoker.Invoke(ctx, pc.Messages, s.params, primary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	s.diag.Summarized(ctx, out)
	return out, nil
}
