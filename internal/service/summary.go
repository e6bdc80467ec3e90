package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
	"github.com/capitalize-ai/conversation-summarizer/pkg/metrics"
)

// Summarizer is the summarization pipeline.
type Summarizer interface {
	Summarize(ctx context.Context, conv model.Conversation, language string, org model.OrganizationProfile) (string, error)
}

// SummaryService resolves the organization for a request and runs the
// summarization pipeline under a deadline.
type SummaryService struct {
	summarizer    Summarizer
	organizations *OrganizationService
	timeout       time.Duration
	logger        *logger.Logger
	now           func() time.Time
}

// NewSummaryService creates a new summary service. A zero timeout disables the deadline.
func NewSummaryService(summarizer Summarizer, orgs *OrganizationService, timeout time.Duration, log *logger.Logger) *SummaryService {
	return &SummaryService{
		summarizer:    summarizer,
		organizations: orgs,
		timeout:       timeout,
		logger:        log,
		now:           time.Now,
	}
}

// Summarize summarizes the request's conversation for the given organization.
// source labels the caller ("http", "nats", "cli") in metrics.
func (s *SummaryService) Summarize(ctx context.Context, source string, orgID int64, req *model.SummaryRequest) (*model.SummaryResponse, error) {
	start := s.now()

	org, err := s.organizations.Get(ctx, orgID)
	if err != nil {
		metrics.RecordSummary(source, "unknown_organization", time.Since(start).Seconds())
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.summarizer.Summarize(ctx, req.Conversation(), req.Language, org)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.RecordSummary(source, outcome, time.Since(start).Seconds())
		s.logger.Error("failed to summarize conversation",
			zap.String("source", source),
			zap.Int64("organization_id", orgID),
			zap.String("conversation_id", req.ConversationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to summarize conversation: %w", err)
	}

	outcome := "success"
	if out == "" {
		outcome = "empty"
	}
	metrics.RecordSummary(source, outcome, time.Since(start).Seconds())

	return &model.SummaryResponse{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: req.ConversationID,
		Summary:        out,
		CreatedAt:      s.now().UTC(),
	}, nil
}
