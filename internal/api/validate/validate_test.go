package validate

import (
	"strings"
	"testing"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		expectError bool
	}{
		{"valid simple", "alice", false},
		{"valid with digits", "alice42", false},
		{"valid with separators", "alice_b-2", false},
		{"empty", "", true},
		{"uppercase", "Alice", true},
		{"leading separator", "-alice", true},
		{"too long", strings.Repeat("a", 65), true},
		{"at max length", strings.Repeat("a", 64), false},
		{"spaces", "alice smith", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UserID(tt.userID)
			if tt.expectError && err == nil {
				t.Fatalf("expected error for userId %q", tt.userID)
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error for userId %q: %v", tt.userID, err)
			}
		})
	}
}

func TestConversationID(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		expectError bool
	}{
		{"empty starts new conversation", "", false},
		{"valid uuid", "550e8400-e29b-41d4-a716-446655440000", false},
		{"too short", "abc-123", true},
		{"not a uuid", strings.Repeat("z", 36), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ConversationID(tt.id)
			if tt.expectError && err == nil {
				t.Fatalf("expected error for conversationId %q", tt.id)
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error for conversationId %q: %v", tt.id, err)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		expectError bool
	}{
		{"valid", "add milk to my list", false},
		{"empty", "", true},
		{"whitespace only", "   \t\n", true},
		{"at max length", strings.Repeat("a", 4000), false},
		{"exceeds max length", strings.Repeat("a", 4001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Message(tt.message)
			if tt.expectError && err == nil {
				t.Fatalf("expected error for test case %q", tt.name)
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error for test case %q: %v", tt.name, err)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	if err := Title(""); err == nil {
		t.Fatalf("expected error for empty title")
	}
	if err := Title("   "); err == nil {
		t.Fatalf("expected error for blank title")
	}
	if err := Title(strings.Repeat("a", 201)); err == nil {
		t.Fatalf("expected error for oversized title")
	}
	if err := Title("Buy groceries"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMaxLen(t *testing.T) {
	long := strings.Repeat("a", 11)
	short := "short"
	if err := MaxLen("description", nil, 10); err != nil {
		t.Fatalf("nil value must pass: %v", err)
	}
	if err := MaxLen("description", &short, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := MaxLen("description", &long, 10); err == nil {
		t.Fatalf("expected error for oversized value")
	}
}
