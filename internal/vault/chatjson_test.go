// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConversation = `[
  {
    "id": "conv-abc",
    "title": "Draft workflow discussion",
    "create_time": 1735732800,
    "mapping": {
      "node-b": {"message": {
        "author": {"role": "assistant"},
        "create_time": 1735732860,
        "content": {"parts": ["We decided to use a draft-first workflow"]}
      }},
      "node-a": {"message": {
        "author": {"role": "user"},
        "create_time": 1735732800,
        "content": {"parts": ["How should automated actions be reviewed?"]}
      }},
      "node-root": {"message": null}
    }
  }
]`

func TestChatJSONParseList(t *testing.T) {
	parsed, err := NewChatJSON().Parse("conversations.json", []byte(sampleConversation))
	require.NoError(t, err)

	assert.Equal(t, "Draft workflow discussion", parsed.Title)
	require.Len(t, parsed.Units, 2)

	// Messages come out in timestamp order, not map order.
	assert.Equal(t, "user", parsed.Units[0].Role)
	assert.Equal(t, "How should automated actions be reviewed?", parsed.Units[0].Text)
	assert.Equal(t, "assistant", parsed.Units[1].Role)
	assert.Equal(t, time.Unix(1735732860, 0).UTC(), parsed.Units[1].Timestamp)
	assert.Equal(t, "Draft workflow discussion", parsed.Units[0].Conversation)
}

func TestChatJSONParseWrapper(t *testing.T) {
	wrapped := fmt.Sprintf(`{"conversations": %s}`, sampleConversation)

	parsed, err := NewChatJSON().Parse("conversations.json", []byte(wrapped))
	require.NoError(t, err)
	assert.Len(t, parsed.Units, 2)
}

func TestChatJSONMissingMetadataTolerated(t *testing.T) {
	export := `[{"mapping": {"n1": {"message": {"content": {"parts": ["hello there"]}}}}}]`

	parsed, err := NewChatJSON().Parse("conversations.json", []byte(export))
	require.NoError(t, err)
	require.Len(t, parsed.Units, 1)

	u := parsed.Units[0]
	assert.Empty(t, u.Role)
	assert.True(t, u.Timestamp.IsZero())
	assert.Equal(t, "hello there", u.Text)
	// Untitled conversations still get a label.
	assert.Equal(t, "conversation-1", u.Conversation)
}

func TestChatJSONDeterministicOrderWithoutTimestamps(t *testing.T) {
	export := `[{"title": "t", "mapping": {
		"z": {"message": {"content": {"parts": ["last key"]}}},
		"a": {"message": {"content": {"parts": ["first key"]}}}
	}}]`

	for i := 0; i < 10; i++ {
		parsed, err := NewChatJSON().Parse("conversations.json", []byte(export))
		require.NoError(t, err)
		require.Len(t, parsed.Units, 2)
		assert.Equal(t, "first key", parsed.Units[0].Text)
		assert.Equal(t, "last key", parsed.Units[1].Text)
	}
}

func TestChatJSONCreatedAtString(t *testing.T) {
	export := `[{"title": "t", "created_at": "2025-06-01T12:00:00Z", "mapping": {
		"n1": {"message": {"content": {"parts": ["dated message"]}}}
	}}]`

	parsed, err := NewChatJSON().Parse("conversations.json", []byte(export))
	require.NoError(t, err)
	require.Len(t, parsed.Units, 1)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), parsed.Units[0].Timestamp)
}

func TestChatJSONMessageTimestampVariants(t *testing.T) {
	// Some exports carry message-level create_time as a string. The
	// whole file must still decode; variant shapes degrade only the
	// timestamp.
	export := `[{"title": "t", "mapping": {
		"n1": {"message": {"create_time": "1735732800", "content": {"parts": ["epoch string"]}}},
		"n2": {"message": {"create_time": "2025-06-01T12:00:00Z", "content": {"parts": ["rfc3339 string"]}}},
		"n3": {"message": {"create_time": "next tuesday", "content": {"parts": ["unparseable"]}}}
	}}]`

	parsed, err := NewChatJSON().Parse("conversations.json", []byte(export))
	require.NoError(t, err)
	require.Len(t, parsed.Units, 3)

	byText := make(map[string]RawUnit, len(parsed.Units))
	for _, u := range parsed.Units {
		byText[u.Text] = u
	}
	assert.Equal(t, time.Unix(1735732800, 0).UTC(), byText["epoch string"].Timestamp)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), byText["rfc3339 string"].Timestamp)
	assert.True(t, byText["unparseable"].Timestamp.IsZero())
}

func TestChatJSONNonStringPartsSkipped(t *testing.T) {
	export := `[{"title": "t", "mapping": {
		"n1": {"message": {"content": {"parts": ["keep", {"asset": "img"}, 42]}}}
	}}]`

	parsed, err := NewChatJSON().Parse("conversations.json", []byte(export))
	require.NoError(t, err)
	require.Len(t, parsed.Units, 1)
	assert.Equal(t, "keep", parsed.Units[0].Text)
}

func TestChatJSONParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed JSON", `{"conversations": [`},
		{"no conversation list", `{"settings": {}}`},
		{"no messages", `[{"title": "empty", "mapping": {}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChatJSON().Parse("conversations.json", []byte(tt.input))
			require.Error(t, err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "error should be a *ParseError, got %T", err)
			assert.Equal(t, "conversations.json", pe.Path)
		})
	}
}
