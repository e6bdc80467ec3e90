package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/capitalize-ai/conversation-summarizer/internal/middleware"
	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/internal/service"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

// Source labels summaries requested over NATS in metrics.
const Source = "nats"

// Reply error codes.
const (
	codeInvalid     = "invalid_request"
	codeNotFound    = "not_found"
	codeTimeout     = "timeout"
	codeUnavailable = "unavailable"
	codeInternal    = "internal"
)

// SummaryService runs the summarization pipeline for an organization.
type SummaryService interface {
	Summarize(ctx context.Context, source string, orgID int64, req *model.SummaryRequest) (*model.SummaryResponse, error)
}

// Responder answers summary requests published on <subject>.<org_id>.
type Responder struct {
	client  *Client
	service SummaryService
	subject string
	queue   string
	timeout time.Duration
	logger  *logger.Logger

	sub      *nats.Subscription
	inflight chan struct{}
	wg       sync.WaitGroup
}

// DefaultConcurrency is the number of requests one responder handles at once.
const DefaultConcurrency = 8

const drainTimeout = 30 * time.Second

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithConcurrency bounds the requests handled at once. Values below 1 are ignored.
func WithConcurrency(n int) ResponderOption {
	return func(r *Responder) {
		if n > 0 {
			r.inflight = make(chan struct{}, n)
		}
	}
}

// NewResponder creates a responder. timeout bounds each request, zero means none.
func NewResponder(client *Client, svc SummaryService, subject, queue string, timeout time.Duration, log *logger.Logger, opts ...ResponderOption) *Responder {
	r := &Responder{
		client:   client,
		service:  svc,
		subject:  subject,
		queue:    queue,
		timeout:  timeout,
		logger:   log,
		inflight: make(chan struct{}, DefaultConcurrency),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start joins the queue group. Each request runs on its own goroutine; when
// the concurrency limit is reached the subscription stops reading until a
// slot frees up.
func (r *Responder) Start() error {
	sub, err := r.client.Conn().QueueSubscribe(r.subject+".*", r.queue, r.onMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.subject, err)
	}
	r.sub = sub
	r.logger.Info("summary responder started",
		zap.String("subject", sub.Subject),
		zap.String("queue", r.queue),
	)
	return nil
}

// Stop drains the subscription and waits for in-flight requests.
func (r *Responder) Stop() error {
	var err error
	if r.sub != nil {
		err = r.sub.Drain()
		// Drain is asynchronous; pending messages are still dispatched until
		// the subscription closes.
		deadline := time.Now().Add(drainTimeout)
		for r.sub.IsValid() && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
	}
	r.wg.Wait()
	return err
}

func (r *Responder) onMessage(msg *nats.Msg) {
	r.inflight <- struct{}{}
	r.wg.Add(1)
	go func() {
		defer func() {
			<-r.inflight
			r.wg.Done()
		}()
		r.serve(msg)
	}()
}

func (r *Responder) serve(msg *nats.Msg) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	reply := r.handle(ctx, msg.Subject, msg.Data)
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(reply); err != nil {
		r.logger.Error("failed to send summary reply",
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}

// handle decodes one request and encodes the reply payload.
func (r *Responder) handle(ctx context.Context, subject string, data []byte) []byte {
	orgID, err := organizationFromSubject(subject)
	if err != nil {
		return errorReply(codeInvalid, err.Error())
	}

	var req model.SummaryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorReply(codeInvalid, "invalid request body")
	}
	if err := middleware.ValidateSummaryRequest(&req); err != nil {
		return errorReply(codeInvalid, err.Error())
	}

	resp, err := r.service.Summarize(ctx, Source, orgID, &req)
	if err != nil {
		r.logger.Warn("summary request failed",
			zap.String("subject", subject),
			zap.Int64("organization_id", orgID),
			zap.Error(err),
		)
		return failureReply(err)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return errorReply(codeInternal, "failed to encode summary")
	}
	return out
}

func organizationFromSubject(subject string) (int64, error) {
	i := strings.LastIndexByte(subject, '.')
	if i < 0 || i == len(subject)-1 {
		return 0, errors.New("subject has no organization token")
	}
	id, err := strconv.ParseInt(subject[i+1:], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid organization id %q", subject[i+1:])
	}
	return id, nil
}

func failureReply(err error) []byte {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		return errorReply(codeNotFound, "organization not found")
	case errors.Is(err, context.DeadlineExceeded):
		return errorReply(codeTimeout, "summary timed out")
	default:
		return errorReply(codeUnavailable, "summary model unavailable")
	}
}

func errorReply(code, message string) []byte {
	out, _ := json.Marshal(&model.ErrorResponse{Code: code, Message: message})
	return out
}
