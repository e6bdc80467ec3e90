package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/capitalize-ai/conversation-summarizer/internal/middleware"
	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/internal/service"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

// SummaryHandler handles summary endpoints.
type SummaryHandler struct {
	service *service.SummaryService
	logger  *logger.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(svc *service.SummaryService, log *logger.Logger) *SummaryHandler {
	return &SummaryHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/summaries
func (h *SummaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := middleware.GetOrganizationID(ctx)

	var req model.SummaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateSummaryRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Summarize(ctx, "http", orgID, &req)
	if err != nil {
		status, message := summaryErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithRequest(middleware.GetCorrelationID(ctx), orgID).
				Error("summary request failed", zap.Error(err))
		}
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func summaryErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound):
		return http.StatusNotFound, "organization not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "summary timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusBadGateway, "summary model unavailable"
	}
}
