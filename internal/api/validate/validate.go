package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// UserID must be lowercase letters, digits, underscore or hyphen, 1-64 chars
var userIdRx = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// conversationIdRx matches the UUID shape the service issues.
var conversationIdRx = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)

const maxMessageLen = 4000

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIdRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIdRx.String())
	}
	return nil
}

// ConversationID accepts empty values; an empty id asks the service to start
// a fresh conversation.
func ConversationID(v string) error {
	if v == "" {
		return nil
	}
	if !conversationIdRx.MatchString(v) {
		return fmt.Errorf("conversationId must be a UUID")
	}
	return nil
}

func Message(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("message is required")
	}
	if len(v) > maxMessageLen {
		return fmt.Errorf("message exceeds %d characters", maxMessageLen)
	}
	return nil
}

func Title(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("title is required")
	}
	if len(v) > 200 {
		return fmt.Errorf("title exceeds 200 characters")
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}
