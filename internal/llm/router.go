package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Router dispatches completion requests to a provider based on the model id.
//
// Model ids may carry a provider prefix ("anthropic/claude-3-haiku-20240307",
// "openai/gpt-4"). The prefix is stripped before the request reaches the
// provider. Unprefixed "claude-" models go to Anthropic; anything else goes to
// the default provider.
type Router struct {
	clients  map[Provider]Client
	fallback Provider
}

// NewRouter creates a router over the given clients. Nil clients are ignored.
func NewRouter(defaultProvider Provider, clients ...Client) *Router {
	r := &Router{
		clients:  make(map[Provider]Client, len(clients)),
		fallback: defaultProvider,
	}
	for _, c := range clients {
		if c == nil {
			continue
		}
		r.clients[Provider(c.Name())] = c
	}
	return r
}

// Resolve returns the provider and provider-local model name for a model id.
func (r *Router) Resolve(model string) (Provider, string) {
	if provider, name, ok := strings.Cut(model, "/"); ok {
		switch Provider(provider) {
		case ProviderAnthropic, ProviderOpenAI:
			return Provider(provider), name
		}
	}
	if strings.HasPrefix(model, "claude-") {
		return ProviderAnthropic, model
	}
	return r.fallback, model
}

// Complete sends the request to the provider owning req.Model.
func (r *Router) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	provider, name := r.Resolve(req.Model)

	client, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s (model %q)", ErrProviderUnavailable, provider, req.Model)
	}

	routed := *req
	routed.Model = name
	return client.Complete(ctx, &routed)
}

// Name returns the router name.
func (r *Router) Name() string {
	return "router"
}

// Models returns every model of every configured provider, prefixed with its
// provider name.
func (r *Router) Models() []string {
	var models []string
	for provider, c := range r.clients {
		for _, m := range c.Models() {
			models = append(models, string(provider)+"/"+m)
		}
	}
	sort.Strings(models)
	return models
}

// Configured reports whether at least one provider client is available.
func (r *Router) Configured() bool {
	return len(r.clients) > 0
}
