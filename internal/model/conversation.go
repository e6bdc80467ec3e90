// Package model defines data structures for the conversation summarizer.
package model

import (
	"time"
)

// Conversation is an ordered, chronological sequence of messages.
type Conversation struct {
	ID       string    `json:"id,omitempty"`
	Messages []Message `json:"messages"`
}

// Len returns the number of messages in the conversation.
func (c Conversation) Len() int {
	return len(c.Messages)
}

// Last returns the most recent message and false when the conversation is empty.
func (c Conversation) Last() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// OrganizationProfile is the read-only configuration of the organization a
// conversation belongs to.
type OrganizationProfile struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// MatchingStepModel pins the summary model for this organization when set.
	MatchingStepModel string `json:"matching_step_model,omitempty" yaml:"matching_step_model"`
}

// SummaryRequest is the request to summarize a conversation.
type SummaryRequest struct {
	ConversationID string    `json:"conversation_id,omitempty"`
	OrganizationID int64     `json:"organization_id,omitempty"`
	Messages       []Message `json:"messages"`
	Language       string    `json:"language,omitempty"`
}

// Conversation returns the request messages as a conversation.
func (r *SummaryRequest) Conversation() Conversation {
	return Conversation{ID: r.ConversationID, Messages: r.Messages}
}

// SummaryResponse is the response after summarizing a conversation.
type SummaryResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Summary        string    `json:"summary"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrorResponse is returned to NATS requesters when a summary could not be produced.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}
