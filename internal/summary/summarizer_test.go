package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/conversation-summarizer/internal/llm"
	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/internal/prompt"
)

// fixedBuilder reports fixed history metrics regardless of input.
type fixedBuilder struct {
	numPast, tokens int
}

func (b fixedBuilder) Build(conv model.Conversation, org model.OrganizationProfile, language string) prompt.Context {
	return prompt.Context{
		Messages: []llm.ChatMessage{{
			Role:    "system",
			Content: org.Name + "|" + language + "|" + conv.Messages[len(conv.Messages)-1].Content,
		}},
		NumPastMessagesIncluded: b.numPast,
		PastConvTokenCount:      b.tokens,
	}
}

var (
	testConversation = model.Conversation{Messages: []model.Message{
		{Role: model.RoleUser, Content: "I want to fly to Lisbon"},
		{Role: model.RoleAssistant, Content: "When would you like to travel?"},
		{Role: model.RoleUser, Content: "Next Friday"},
	}}
	testOrganization = model.OrganizationProfile{ID: 1, Name: "Acme", Description: "Travel agency"}
)

func newTestSummarizer(b PromptBuilder, tr Transport, diag Diagnostics) *Summarizer {
	inv := newTestInvoker(tr, &instantTimer{}, WithInvokerDiagnostics(diag))
	return New(b, NewSelector(), inv, WithDiagnostics(diag))
}

func TestSummarizeScenarioFastTier(t *testing.T) {
	tr := &scriptedTransport{steps: []step{{content: "Summary A"}}}
	diag := &recordingDiagnostics{}
	s := newTestSummarizer(fixedBuilder{numPast: 2, tokens: 40}, tr, diag)

	out, err := s.Summarize(context.Background(), testConversation, "", testOrganization)

	require.NoError(t, err)
	assert.Equal(t, "Summary A", out)
	assert.Equal(t, []string{DefaultFastModel}, tr.calls())
	assert.Equal(t, []string{DefaultFastModel}, diag.selected)
	assert.Equal(t, []string{"Summary A"}, diag.summaries)
}

func TestSummarizeScenarioOverrideThenFallback(t *testing.T) {
	tr := &scriptedTransport{steps: []step{{content: ""}, {content: "Summary B"}}}
	org := testOrganization
	org.MatchingStepModel = "custom-model-x"
	s := newTestSummarizer(fixedBuilder{numPast: 6, tokens: 300}, tr, &recordingDiagnostics{})

	out, err := s.Summarize(context.Background(), testConversation, "", org)

	require.NoError(t, err)
	assert.Equal(t, "Summary B", out)
	assert.Equal(t, []string{"custom-model-x", DefaultFallbackModel}, tr.calls())
}

func TestSummarizeScenarioTransportDown(t *testing.T) {
	tr := &scriptedTransport{steps: []step{{err: errTransport}}}
	diag := &recordingDiagnostics{}
	s := newTestSummarizer(fixedBuilder{numPast: 2, tokens: 40}, tr, diag)

	out, err := s.Summarize(context.Background(), testConversation, "", testOrganization)

	require.Error(t, err)
	assert.ErrorIs(t, err, errTransport)
	assert.Empty(t, out)
	assert.Equal(t, []string{DefaultFastModel, DefaultFastModel, DefaultFastModel}, tr.calls())
	assert.Zero(t, diag.fallbacks)
	assert.Empty(t, diag.summaries)
}

func TestSummarizeCapableTier(t *testing.T) {
	tr := &scriptedTransport{steps: []step{{content: "long"}}}
	s := newTestSummarizer(fixedBuilder{numPast: 5, tokens: 10}, tr, NopDiagnostics{})

	_, err := s.Summarize(context.Background(), testConversation, "", testOrganization)

	require.NoError(t, err)
	assert.Equal(t, []string{DefaultCapableModel}, tr.calls())
}

// echoTransport deterministically echoes the prompt back.
type echoTransport struct{}

func (echoTransport) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: req.Model + ":" + req.Messages[0].Content}, nil
}

func TestSummarizeIsIdempotent(t *testing.T) {
	s := newTestSummarizer(prompt.NewBuilder(0, 0), echoTransport{}, NopDiagnostics{})

	first, err := s.Summarize(context.Background(), testConversation, "Portuguese", testOrganization)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := s.Summarize(context.Background(), testConversation, "Portuguese", testOrganization)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSummarizeDoesNotMutateInputs(t *testing.T) {
	conv := model.Conversation{Messages: append([]model.Message(nil), testConversation.Messages...)}
	org := testOrganization
	org.MatchingStepModel = "custom-model-x"
	wantConv := model.Conversation{Messages: append([]model.Message(nil), conv.Messages...)}
	wantOrg := org

	s := newTestSummarizer(prompt.NewBuilder(0, 0), echoTransport{}, NopDiagnostics{})
	_, err := s.Summarize(context.Background(), conv, "", org)

	require.NoError(t, err)
	assert.Equal(t, wantConv, conv)
	assert.Equal(t, wantOrg, org)
}

func TestSummarizeWithPromptBuilder(t *testing.T) {
	tr := &scriptedTransport{steps: []step{{content: "Book a flight to Lisbon next Friday"}}}
	s := newTestSummarizer(prompt.NewBuilder(0, 0), tr, NopDiagnostics{})

	out, err := s.Summarize(context.Background(), testConversation, "", testOrganization)

	require.NoError(t, err)
	assert.Equal(t, "Book a flight to Lisbon next Friday", out)
	// Two short past turns stay on the fast tier.
	assert.Equal(t, []string{DefaultFastModel}, tr.calls())
}
