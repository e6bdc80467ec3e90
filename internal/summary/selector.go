// Package summary implements the resilient conversation summarization pipeline:
// model selection, retried invocation with a fallback model, and the
// orchestration tying them to the prompt builder.
package summary

// Tier is a class of backend models.
type Tier int

const (
	TierFast Tier = iota
	TierCapable
	TierOverride
	TierFallback
)

// String returns the tier name used in logs and metric labels.
func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierCapable:
		return "capable"
	case TierOverride:
		return "override"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Default model identifiers per tier.
const (
	DefaultCapableModel  = "gpt-4"
	DefaultFastModel     = "gpt-4-0125-preview"
	DefaultFallbackModel = "anthropic/claude-3-haiku-20240307"
)

// Default thresholds above which the capable tier is used.
const (
	DefaultMinPastMessages = 5
	DefaultMaxFastTokens   = 100
)

// ModelTable maps tiers to model identifiers.
type ModelTable struct {
	Capable  string `json:"capable"`
	Fast     string `json:"fast"`
	Fallback string `json:"fallback"`
}

// DefaultModelTable returns the built-in tier mapping.
func DefaultModelTable() ModelTable {
	return ModelTable{
		Capable:  DefaultCapableModel,
		Fast:     DefaultFastModel,
		Fallback: DefaultFallbackModel,
	}
}

// Selector picks the model for a summary before any call is made.
type Selector struct {
	models          ModelTable
	minPastMessages int
	maxFastTokens   int
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithModelTable replaces the non-empty entries of the tier mapping.
func WithModelTable(t ModelTable) SelectorOption {
	return func(s *Selector) {
		if t.Capable != "" {
			s.models.Capable = t.Capable
		}
		if t.Fast != "" {
			s.models.Fast = t.Fast
		}
		if t.Fallback != "" {
			s.models.Fallback = t.Fallback
		}
	}
}

// WithThresholds sets the history size from which the capable tier is used:
// minPastMessages or more folded turns, or more than maxFastTokens tokens.
func WithThresholds(minPastMessages, maxFastTokens int) SelectorOption {
	return func(s *Selector) {
		s.minPastMessages = minPastMessages
		s.maxFastTokens = maxFastTokens
	}
}

// NewSelector creates a selector with the default table and thresholds.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		models:          DefaultModelTable(),
		minPastMessages: DefaultMinPastMessages,
		maxFastTokens:   DefaultMaxFastTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Models returns the tier mapping.
func (s *Selector) Models() ModelTable {
	return s.models
}

// Tier classifies a request. A non-empty override always wins.
func (s *Selector) Tier(numPastMessagesIncluded, pastConvTokenCount int, override string) Tier {
	if override != "" {
		return TierOverride
	}
	if numPastMessagesIncluded >= s.minPastMessages || pastConvTokenCount > s.maxFastTokens {
		return TierCapable
	}
	return TierFast
}

// Select returns the model identifier for the primary attempt sequence.
func (s *Selector) Select(numPastMessagesIncluded, pastConvTokenCount int, override string) string {
	switch s.Tier(numPastMessagesIncluded, pastConvTokenCount, override) {
	case TierOverride:
		return override
	case TierCapable:
		return s.models.Capable
	default:
		return s.models.Fast
	}
}

// Fallback returns the model used when the primary sequence yields nothing.
func (s *Selector) Fallback() string {
	return s.models.Fallback
}
