package handler

import (
	"net/http"

	"github.com/capitalize-ai/conversation-summarizer/internal/middleware"
	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/internal/service"
	"github.com/capitalize-ai/conversation-summarizer/internal/summary"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

// OrganizationHandler exposes organization profiles and the model catalogue.
type OrganizationHandler struct {
	service *service.OrganizationService
	tiers   summary.ModelTable
	models  func() []string
	logger  *logger.Logger
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(svc *service.OrganizationService, tiers summary.ModelTable, models func() []string, log *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		service: svc,
		tiers:   tiers,
		models:  models,
		logger:  log,
	}
}

// ModelsResponse lists the models an organization override may name.
type ModelsResponse struct {
	Tiers  summary.ModelTable `json:"tiers"`
	Models []string           `json:"models"`
}

// ListOrganizationsResponse is the response for listing organizations.
type ListOrganizationsResponse struct {
	Organizations []model.OrganizationProfile `json:"organizations"`
	Total         int                         `json:"total"`
}

// Current handles GET /api/v1/organization
func (h *OrganizationHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := h.service.Get(ctx, middleware.GetOrganizationID(ctx))
	if err != nil {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// List handles GET /api/v1/organizations
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs := h.service.List(r.Context())
	writeJSON(w, http.StatusOK, &ListOrganizationsResponse{
		Organizations: orgs,
		Total:         len(orgs),
	})
}

// Models handles GET /api/v1/models
func (h *OrganizationHandler) Models(w http.ResponseWriter, r *http.Request) {
	var models []string
	if h.models != nil {
		models = h.models()
	}
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, &ModelsResponse{
		Tiers:  h.tiers,
		Models: models,
	})
}
