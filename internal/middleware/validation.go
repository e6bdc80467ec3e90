package middleware

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/capitalize-ai/conversation-summarizer/internal/model"
)

const (
	maxMessages          = 500
	maxMessageBytes      = 100000 // ~100KB per turn
	maxLanguageLength    = 64
	maxConversationIDLen = 128
)

// ValidateMessageContent validates the content of the message to summarize.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("content cannot be empty")
	}
	return validateContentSize(content)
}

// validateContentSize checks a history turn, which may be empty.
func validateContentSize(content string) error {
	if len(content) > maxMessageBytes {
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateSummaryRequest validates a request to summarize a conversation.
func ValidateSummaryRequest(req *model.SummaryRequest) error {
	if len(req.Messages) == 0 {
		return errors.New("messages cannot be empty")
	}
	if len(req.Messages) > maxMessages {
		return fmt.Errorf("at most %d messages are allowed", maxMessages)
	}
	for i, msg := range req.Messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("message %d: invalid role %q", i, msg.Role)
		}
		check := validateContentSize
		if i == len(req.Messages)-1 {
			check = ValidateMessageContent
		}
		if err := check(msg.Content); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	if len(req.Language) > maxLanguageLength || !utf8.ValidString(req.Language) {
		return errors.New("invalid language")
	}
	if len(req.ConversationID) > maxConversationIDLen {
		return errors.New("conversation ID exceeds maximum length")
	}
	return nil
}
