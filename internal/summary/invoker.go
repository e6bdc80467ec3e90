package summary

import (
	"context"
	"time"

	"github.com/capitalize-ai/conversation-summarizer/internal/llm"
	"github.com/capitalize-ai/conversation-summarizer/internal/retry"
)

// Transport performs a single model call.
type Transport interface {
	Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Params are the sampling settings forwarded with every call.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// DefaultParams returns the settings used for summaries.
func DefaultParams() Params {
	return Params{MaxTokens: 256, Temperature: 0}
}

// Invoker calls the transport with bounded retries and falls back to a fixed
// model when the primary model returns no text.
type Invoker struct {
	transport Transport
	selector  *Selector
	policy    retry.Policy
	timer     retry.TimerFunc
	diag      Diagnostics
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithRetryPolicy sets the retry policy used for each model sequence.
func WithRetryPolicy(p retry.Policy) InvokerOption {
	return func(i *Invoker) {
		i.policy = p
	}
}

// WithRetryTimer replaces the wall-clock timer used between attempts.
func WithRetryTimer(fn retry.TimerFunc) InvokerOption {
	return func(i *Invoker) {
		i.timer = fn
	}
}

// WithInvokerDiagnostics sets the diagnostics sink.
func WithInvokerDiagnostics(d Diagnostics) InvokerOption {
	return func(i *Invoker) {
		i.diag = d
	}
}

// NewInvoker creates an invoker that falls back to the selector's fallback model.
func NewInvoker(transport Transport, selector *Selector, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		transport: transport,
		selector:  selector,
		policy:    retry.DefaultPolicy(),
		diag:      NopDiagnostics{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke runs the primary sequence and, if it returned an empty result, one
// fallback sequence. Errors after exhausted retries are returned without
// falling back. The fallback result is returned as is, even when empty.
func (i *Invoker) Invoke(ctx context.Context, prompt []llm.ChatMessage, params Params, primaryModel string) (string, error) {
	out, err := i.sequence(ctx, prompt, params, primaryModel)
	if err != nil {
		return "", err
	}
	if out != "" {
		return out, nil
	}

	// The organization override is not applied here.
	fallback := i.selector.Fallback()
	i.diag.FallbackTriggered(ctx, primaryModel, fallback)
	i.diag.ModelSelected(ctx, fallback, TierFallback)
	return i.sequence(ctx, prompt, params, fallback)
}

func (i *Invoker) sequence(ctx context.Context, prompt []llm.ChatMessage, params Params, model string) (string, error) {
	opts := []retry.Option{
		retry.WithNotify(func(attempt int, delay time.Duration, err error) {
			i.diag.AttemptFailed(ctx, model, attempt, delay, err)
		}),
	}
	if i.timer != nil {
		opts = append(opts, retry.WithTimer(i.timer))
	}

	return retry.Do(ctx, i.policy, func(ctx context.Context) (string, error) {
		return i.call(ctx, prompt, params, model)
	}, opts...)
}

func (i *Invoker) call(ctx context.Context, prompt []llm.ChatMessage, params Params, model string) (string, error) {
	start := time.Now()
	resp, err := i.transport.Complete(ctx, &llm.CompletionRequest{
		Model:       model,
		Messages:    prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	i.diag.CallCompleted(ctx, model, time.Since(start), err)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}
