// Package app assembles the summarization pipeline from configuration.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/capitalize-ai/conversation-summarizer/internal/config"
	"github.com/capitalize-ai/conversation-summarizer/internal/llm"
	"github.com/capitalize-ai/conversation-summarizer/internal/prompt"
	"github.com/capitalize-ai/conversation-summarizer/internal/service"
	"github.com/capitalize-ai/conversation-summarizer/internal/summary"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

// Pipeline is the assembled summarizer and the selector it consults.
type Pipeline struct {
	Selector   *summary.Selector
	Summarizer *summary.Summarizer
}

// NewTransport builds a router over every provider with an API key.
// Client construction failures are logged and the provider left out.
func NewTransport(cfg *config.Config, log *logger.Logger) *llm.Router {
	keys := []struct {
		provider llm.Provider
		apiKey   string
	}{
		{llm.ProviderOpenAI, cfg.OpenAIAPIKey},
		{llm.ProviderAnthropic, cfg.AnthropicAPIKey},
	}

	var clients []llm.Client
	for _, k := range keys {
		if k.apiKey == "" {
			continue
		}
		c, err := llm.NewClient(k.provider, k.apiKey)
		if err != nil {
			log.Warn("failed to create LLM client", zap.String("provider", string(k.provider)), zap.Error(err))
			continue
		}
		clients = append(clients, c)
	}

	return llm.NewRouter(llm.Provider(cfg.DefaultLLM), clients...)
}

// NewPipeline wires the prompt builder, selector and invoker over transport.
func NewPipeline(cfg *config.Config, transport summary.Transport, log *logger.Logger) *Pipeline {
	diag := summary.NewLogDiagnostics(log)

	selector := summary.NewSelector(
		summary.WithModelTable(cfg.Models),
		summary.WithThresholds(cfg.MinPastMessages, cfg.MaxFastTokens),
	)
	invoker := summary.NewInvoker(transport, selector,
		summary.WithRetryPolicy(cfg.Retry),
		summary.WithInvokerDiagnostics(diag),
	)
	summarizer := summary.New(
		prompt.NewBuilder(cfg.PromptMaxPastMessages, cfg.PromptMaxPastTokens),
		selector,
		invoker,
		summary.WithParams(cfg.Params()),
		summary.WithDiagnostics(diag),
	)

	return &Pipeline{
		Selector:   selector,
		Summarizer: summarizer,
	}
}

// LoadOrganizations builds the organization registry from cfg.OrganizationsFile.
// An unset path yields an empty registry.
func LoadOrganizations(cfg *config.Config, log *logger.Logger) (*service.OrganizationService, error) {
	if cfg.OrganizationsFile == "" {
		log.Warn("ORGANIZATIONS_FILE not set, no organizations loaded")
		return service.NewOrganizationService(log), nil
	}

	orgs, err := service.LoadOrganizations(cfg.OrganizationsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load organizations: %w", err)
	}
	log.Info("organizations loaded",
		zap.String("file", cfg.OrganizationsFile),
		zap.Int("count", len(orgs)),
	)
	return service.NewOrganizationService(log, orgs...), nil
}
