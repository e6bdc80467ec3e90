package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/capitalize-ai/conversation-summarizer/internal/llm"
	"github.com/capitalize-ai/conversation-summarizer/internal/prompt"
	"github.com/capitalize-ai/conversation-summarizer/internal/retry"
)

var errTransport = errors.New("transport failure")

// step is one scripted transport outcome.
type step struct {
	content string
	nilResp bool
	err     error
}

// scriptedTransport returns the scripted steps in order and repeats the last
// one once the script runs out.
type scriptedTransport struct {
	mu     sync.Mutex
	steps  []step
	models []string
}

func (s *scriptedTransport) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.models = append(s.models, req.Model)
	idx := len(s.models) - 1
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	st := s.steps[idx]
	if st.err != nil {
		return nil, st.err
	}
	if st.nilResp {
		return nil, nil
	}
	return &llm.CompletionResponse{Content: st.content, Model: req.Model}, nil
}

func (s *scriptedTransport) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.models...)
}

// instantTimer fires immediately and records the delays it was asked to wait.
type instantTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	c      chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delays = append(t.delays, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c
}

func (t *instantTimer) recorded() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.delays...)
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second}
}

func newTestInvoker(tr Transport, timer *instantTimer, opts ...InvokerOption) *Invoker {
	return newTestInvokerWithSelector(tr, NewSelector(), timer, opts...)
}

func newTestInvokerWithSelector(tr Transport, sel *Selector, timer *instantTimer, opts ...InvokerOption) *Invoker {
	opts = append([]InvokerOption{
		WithRetryPolicy(testPolicy()),
		WithRetryTimer(func() backoff.Timer { return timer }),
	}, opts...)
	return NewInvoker(tr, sel, opts...)
}

// recordingDiagnostics keeps the events the pipeline reported.
type recordingDiagnostics struct {
	NopDiagnostics
	mu        sync.Mutex
	prompts   []prompt.Context
	selected  []string
	tiers     []Tier
	failures  []int
	fallbacks int
	summaries []string
}

func (r *recordingDiagnostics) PromptBuilt(_ context.Context, pc prompt.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, pc)
}

func (r *recordingDiagnostics) ModelSelected(_ context.Context, model string, tier Tier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = append(r.selected, model)
	r.tiers = append(r.tiers, tier)
}

func (r *recordingDiagnostics) AttemptFailed(_ context.Context, _ string, attempt int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, attempt)
}

func (r *recordingDiagnostics) FallbackTriggered(context.Context, string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks++
}

func (r *recordingDiagnostics) Summarized(_ context.Context, summary string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
}
