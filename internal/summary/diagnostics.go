package summary

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/conversation-summarizer/internal/prompt"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
	"github.com/capitalize-ai/conversation-summarizer/pkg/metrics"
)

// Diagnostics receives observations from the pipeline. Implementations must
// not block and cannot influence the result.
type Diagnostics interface {
	PromptBuilt(ctx context.Context, pc prompt.Context)
	ModelSelected(ctx context.Context, model string, tier Tier)
	AttemptFailed(ctx context.Context, model string, attempt int, delay time.Duration, err error)
	CallCompleted(ctx context.Context, model string, duration time.Duration, err error)
	FallbackTriggered(ctx context.Context, primary, fallback string)
	Summarized(ctx context.Context, summary string)
}

// NopDiagnostics discards everything.
type NopDiagnostics struct{}

func (NopDiagnostics) PromptBuilt(context.Context, prompt.Context)                      {}
func (NopDiagnostics) ModelSelected(context.Context, string, Tier)                      {}
func (NopDiagnostics) AttemptFailed(context.Context, string, int, time.Duration, error) {}
func (NopDiagnostics) CallCompleted(context.Context, string, time.Duration, error)      {}
func (NopDiagnostics) FallbackTriggered(context.Context, string, string)                {}
func (NopDiagnostics) Summarized(context.Context, string)                               {}

// LogDiagnostics writes pipeline observations to a structured logger and
// records the matching Prometheus metrics.
type LogDiagnostics struct {
	logger *logger.Logger
}

// NewLogDiagnostics creates a logging diagnostics sink.
func NewLogDiagnostics(log *logger.Logger) *LogDiagnostics {
	return &LogDiagnostics{logger: log}
}

func (d *LogDiagnostics) PromptBuilt(ctx context.Context, pc prompt.Context) {
	var content string
	if len(pc.Messages) > 0 {
		content = pc.Messages[0].Content
	}
	d.logger.Info("summary prompt built",
		zap.String("prompt", content),
		zap.Int("past_messages", pc.NumPastMessagesIncluded),
		zap.Int("past_tokens", pc.PastConvTokenCount),
	)
}

func (d *LogDiagnostics) ModelSelected(ctx context.Context, model string, tier Tier) {
	d.logger.Debug("summary model selected", zap.String("model", model), zap.Stringer("tier", tier))
	metrics.SummaryTierTotal.WithLabelValues(tier.String()).Inc()
}

func (d *LogDiagnostics) AttemptFailed(ctx context.Context, model string, attempt int, delay time.Duration, err error) {
	d.logger.Warn("llm call failed, retrying",
		zap.String("model", model),
		zap.Int("attempt", attempt),
		zap.Duration("backoff", delay),
		zap.Error(err),
	)
	metrics.LLMRetriesTotal.WithLabelValues(model).Inc()
}

func (d *LogDiagnostics) CallCompleted(ctx context.Context, model string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordLLMCall(model, status, duration.Seconds())
}

func (d *LogDiagnostics) FallbackTriggered(ctx context.Context, primary, fallback string) {
	d.logger.Info("empty summary, falling back",
		zap.String("primary_model", primary),
		zap.String("fallback_model", fallback),
	)
	metrics.SummaryFallbacksTotal.WithLabelValues(primary).Inc()
}

func (d *LogDiagnostics) Summarized(ctx context.Context, summary string) {
	d.logger.Info("conversation summarized", zap.String("summary", summary))
}
