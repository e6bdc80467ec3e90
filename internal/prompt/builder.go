// Package prompt turns a conversation and organization profile into the
// prompt used to summarize the user's latest request.
package prompt

import (
	"fmt"
	"strings"

	"github.com/capitalize-ai/conversation-summarizer/internal/llm"
	"github.com/capitalize-ai/conversation-summarizer/internal/model"
)

const (
	DefaultMaxPastMessages = 10
	DefaultMaxPastTokens   = 1000
)

// Context is a built prompt together with the size of the history folded into it.
type Context struct {
	Messages []llm.ChatMessage

	// NumPastMessagesIncluded counts the turns before the latest one that made
	// it into the prompt.
	NumPastMessagesIncluded int

	// PastConvTokenCount is the estimated token size of those turns.
	PastConvTokenCount int
}

// Builder folds recent conversation history into a single system prompt.
type Builder struct {
	MaxPastMessages int
	MaxPastTokens   int
}

// NewBuilder creates a builder. Non-positive limits fall back to the defaults.
func NewBuilder(maxPastMessages, maxPastTokens int) *Builder {
	if maxPastMessages <= 0 {
		maxPastMessages = DefaultMaxPastMessages
	}
	if maxPastTokens <= 0 {
		maxPastTokens = DefaultMaxPastTokens
	}
	return &Builder{
		MaxPastMessages: maxPastMessages,
		MaxPastTokens:   maxPastTokens,
	}
}

// Build creates the prompt context. The conversation is not modified.
func (b *Builder) Build(conv model.Conversation, org model.OrganizationProfile, language string) Context {
	latest, ok := conv.Last()
	if !ok {
		return Context{
			Messages: []llm.ChatMessage{{Role: string(model.RoleSystem), Content: header(org, language)}},
		}
	}

	past := conv.Messages[:len(conv.Messages)-1]

	// Walk newest first so the most recent turns win the budget.
	var included []model.Message
	tokens := 0
	for i := len(past) - 1; i >= 0 && len(included) < b.MaxPastMessages; i-- {
		msg := past[i]
		if msg.Role == model.RoleSystem || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		n := EstimateTokens(msg.Content)
		if tokens+n > b.MaxPastTokens {
			break
		}
		tokens += n
		included = append(included, msg)
	}

	var sb strings.Builder
	sb.WriteString(header(org, language))
	sb.WriteString("\n\nConversation:\n\"\"\"\n")
	for i := len(included) - 1; i >= 0; i-- {
		writeTurn(&sb, included[i])
	}
	writeTurn(&sb, latest)
	sb.WriteString("\"\"\"")

	return Context{
		Messages:                []llm.ChatMessage{{Role: string(model.RoleSystem), Content: sb.String()}},
		NumPastMessagesIncluded: len(included),
		PastConvTokenCount:      tokens,
	}
}

func header(org model.OrganizationProfile, language string) string {
	var sb strings.Builder
	if org.Name != "" {
		fmt.Fprintf(&sb, "You are an assistant working for %s.", org.Name)
	} else {
		sb.WriteString("You are an assistant.")
	}
	if desc := strings.TrimSpace(org.Description); desc != "" {
		fmt.Fprintf(&sb, " %s", desc)
	}
	sb.WriteString("\n\nSummarise the user's latest request in the conversation below as a single, " +
		"self-contained instruction. Include any details from earlier messages needed to act on it. " +
		"Reply with the summary only.")
	if language != "" {
		fmt.Fprintf(&sb, " Write the summary in %s.", language)
	}
	return sb.String()
}

func writeTurn(sb *strings.Builder, msg model.Message) {
	fmt.Fprintf(sb, "%s: %s\n", msg.Role, strings.TrimSpace(msg.Content))
}
