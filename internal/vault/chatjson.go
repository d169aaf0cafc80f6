// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/agentvault/pkg/types"
)

// ChatJSONAdapter handles conversations.json exports. It accepts both a
// bare conversation list and a {"conversations": [...]} wrapper, and
// emits one unit per message.
type ChatJSONAdapter struct{}

// NewChatJSON creates the conversations-JSON adapter.
func NewChatJSON() *ChatJSONAdapter {
	return &ChatJSONAdapter{}
}

// Kind identifies the format this adapter handles.
func (a *ChatJSONAdapter) Kind() types.SourceKind { return types.KindChatJSON }

// Extensions lists the file extensions this adapter claims.
func (a *ChatJSONAdapter) Extensions() []string { return []string{".json"} }

// Wire shapes for conversation exports. Fields beyond these vary
// between export versions and are ignored.
type jsonConversation struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	CreateTime json.RawMessage     `json:"create_time"`
	CreatedAt  json.RawMessage     `json:"created_at"`
	Mapping    map[string]jsonNode `json:"mapping"`
}

type jsonNode struct {
	Message *jsonMessage `json:"message"`
}

type jsonMessage struct {
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	CreateTime json.RawMessage `json:"create_time"`
	Content    struct {
		Parts []any `json:"parts"`
	} `json:"content"`
}

// Parse extracts one unit per message across all conversations in the
// file. Messages missing author or timestamp are kept; only messages
// with no body are dropped.
func (a *ChatJSONAdapter) Parse(path string, content []byte) (*Parsed, error) {
	convs, err := decodeConversations(content)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	parsed := &Parsed{}
	for i, c := range convs {
		label := c.Title
		if label == "" {
			label = c.ID
		}
		if label == "" {
			label = fmt.Sprintf("conversation-%d", i+1)
		}
		if parsed.Title == "" {
			parsed.Title = label
		}

		created := parseExportTime(c.CreateTime)
		if created.IsZero() {
			created = parseExportTime(c.CreatedAt)
		}

		for _, m := range orderedMessages(c.Mapping) {
			body := messageBody(m.msg)
			if body == "" {
				continue
			}
			ts := created
			if !m.ts.IsZero() {
				ts = m.ts
			}
			parsed.Units = append(parsed.Units, RawUnit{
				Conversation: label,
				Role:         strings.TrimSpace(m.msg.Author.Role),
				Timestamp:    ts,
				Text:         body,
			})
		}
	}

	if len(parsed.Units) == 0 {
		return nil, parseErrorf(path, "no messages found in export")
	}
	return parsed, nil
}

// decodeConversations handles both export shapes: a bare list and an
// object wrapping the list under "conversations".
func decodeConversations(content []byte) ([]jsonConversation, error) {
	var list []jsonConversation
	if err := json.Unmarshal(content, &list); err == nil {
		return list, nil
	}

	var wrapper struct {
		Conversations []jsonConversation `json:"conversations"`
	}
	if err := json.Unmarshal(content, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding conversations: %w", err)
	}
	if wrapper.Conversations == nil {
		return nil, fmt.Errorf("unsupported export shape: no conversation list")
	}
	return wrapper.Conversations, nil
}

// orderedMessage pairs a message with its decoded timestamp, zero when
// unknown or unparseable.
type orderedMessage struct {
	key string
	msg *jsonMessage
	ts  time.Time
}

// orderedMessages flattens the mapping into a deterministic message
// sequence. Go map iteration order is random, so messages sort by
// timestamp first and node key second. Message timestamps go through
// the same tolerant decoding as conversation timestamps: a variant
// shape degrades the timestamp, never the document.
func orderedMessages(mapping map[string]jsonNode) []orderedMessage {
	entries := make([]orderedMessage, 0, len(mapping))
	for key, node := range mapping {
		if node.Message == nil {
			continue
		}
		entries = append(entries, orderedMessage{
			key: key,
			msg: node.Message,
			ts:  parseExportTime(node.Message.CreateTime),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ts.Equal(entries[j].ts) {
			return entries[i].ts.Before(entries[j].ts)
		}
		return entries[i].key < entries[j].key
	})
	return entries
}

// messageBody joins the string parts of a message into one body.
func messageBody(msg *jsonMessage) string {
	var parts []string
	for _, p := range msg.Content.Parts {
		if s, ok := p.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// parseExportTime decodes a conversation-level timestamp, which exports
// carry either as a unix epoch number or an RFC 3339 string. Anything
// unparseable is treated as unknown.
func parseExportTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}

	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err == nil {
		return unixTime(epoch)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		return unixTime(epoch)
	}
	return time.Time{}
}

func unixTime(epoch float64) time.Time {
	if epoch <= 0 {
		return time.Time{}
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
