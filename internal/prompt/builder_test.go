package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/conversation-summarizer/internal/model"
)

var testOrg = model.OrganizationProfile{ID: 7, Name: "Acme", Description: "Acme sells rockets."}

func turns(n int) []model.Message {
	msgs := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msgs = append(msgs, model.Message{Role: role, Content: "message number " + string(rune('a'+i))})
	}
	return msgs
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 3, EstimateTokens("abcdefghij"))
	assert.Equal(t, 1, EstimateTokens("日本語"))
}

func TestBuildCountsPastMessages(t *testing.T) {
	conv := model.Conversation{Messages: turns(3)}

	pc := NewBuilder(0, 0).Build(conv, testOrg, "")

	assert.Equal(t, 2, pc.NumPastMessagesIncluded)
	assert.Equal(t, EstimateTokens("message number a")+EstimateTokens("message number b"), pc.PastConvTokenCount)
	require.Len(t, pc.Messages, 1)
	assert.Equal(t, "system", pc.Messages[0].Role)

	content := pc.Messages[0].Content
	assert.Contains(t, content, "Acme")
	assert.Contains(t, content, "Acme sells rockets.")
	assert.Less(t, strings.Index(content, "message number a"), strings.Index(content, "message number c"))
}

func TestBuildRespectsMessageLimit(t *testing.T) {
	conv := model.Conversation{Messages: turns(8)}

	pc := NewBuilder(3, 0).Build(conv, testOrg, "")

	assert.Equal(t, 3, pc.NumPastMessagesIncluded)
	content := pc.Messages[0].Content
	assert.NotContains(t, content, "message number d")
	assert.Contains(t, content, "message number e")
	assert.Contains(t, content, "message number h")
}

func TestBuildRespectsTokenBudget(t *testing.T) {
	long := strings.Repeat("x", 400)
	conv := model.Conversation{Messages: []model.Message{
		{Role: model.RoleUser, Content: long},
		{Role: model.RoleAssistant, Content: "short answer"},
		{Role: model.RoleUser, Content: "and now?"},
	}}

	pc := NewBuilder(10, 50).Build(conv, testOrg, "")

	assert.Equal(t, 1, pc.NumPastMessagesIncluded)
	assert.Equal(t, EstimateTokens("short answer"), pc.PastConvTokenCount)
	assert.NotContains(t, pc.Messages[0].Content, long)
}

func TestBuildSkipsSystemTurns(t *testing.T) {
	conv := model.Conversation{Messages: []model.Message{
		{Role: model.RoleSystem, Content: "internal instructions"},
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleUser, Content: "book a flight"},
	}}

	pc := NewBuilder(0, 0).Build(conv, testOrg, "")

	assert.Equal(t, 1, pc.NumPastMessagesIncluded)
	assert.NotContains(t, pc.Messages[0].Content, "internal instructions")
}

func TestBuildLanguageHint(t *testing.T) {
	conv := model.Conversation{Messages: turns(1)}

	withHint := NewBuilder(0, 0).Build(conv, testOrg, "French")
	without := NewBuilder(0, 0).Build(conv, testOrg, "")

	assert.Contains(t, withHint.Messages[0].Content, "Write the summary in French.")
	assert.NotContains(t, without.Messages[0].Content, "Write the summary in")
}

func TestBuildEmptyConversation(t *testing.T) {
	pc := NewBuilder(0, 0).Build(model.Conversation{}, testOrg, "")

	assert.Zero(t, pc.NumPastMessagesIncluded)
	assert.Zero(t, pc.PastConvTokenCount)
	require.Len(t, pc.Messages, 1)
}

func TestBuildDoesNotMutateConversation(t *testing.T) {
	msgs := turns(4)
	original := append([]model.Message(nil), msgs...)
	conv := model.Conversation{Messages: msgs}

	NewBuilder(2, 0).Build(conv, testOrg, "German")

	assert.Equal(t, original, conv.Messages)
}
