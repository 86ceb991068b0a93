package conversation

import (
	"bytes"
	"encoding/json"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Format names an export format.
type Format string

const (
	FormatAuto   Format = ""
	FormatClaude Format = "claude"
	FormatKura   Format = "kura"
)

// Formats lists the supported formats.
var Formats = []Format{FormatClaude, FormatKura}

// ParseFormat converts a user-supplied name. "auto" and "" select detection.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatClaude, FormatKura:
		return f, nil
	case FormatAuto, "auto":
		return FormatAuto, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want claude or kura)", s)
	}
}

// DetectFormat inspects the first element of a JSON array export.
// An empty array is reported as kura.
func DetectFormat(data []byte) (Format, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "export is not a JSON array of objects")
	}
	if len(items) == 0 {
		return FormatKura, nil
	}
	first := items[0]
	if _, ok := first["chat_messages"]; ok {
		return FormatClaude, nil
	}
	if _, ok := first["chat_id"]; ok {
		return FormatKura, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unrecognized export format")
}

// Parse reads an export in the given format. FormatAuto detects it first.
func Parse(r io.Reader, f Format) ([]Conversation, error) {
	if f != FormatAuto {
		return parseAs(r, f)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f, err = DetectFormat(data); err != nil {
		return nil, err
	}
	return parseAs(bytes.NewReader(data), f)
}

func parseAs(r io.Reader, f Format) ([]Conversation, error) {
	switch f {
	case FormatClaude:
		return ParseClaude(r)
	case FormatKura:
		return ParseKura(r)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
}

type claudeChat struct {
	UUID      string          `json:"uuid"`
	CreatedAt string          `json:"created_at"`
	Messages  []claudeMessage `json:"chat_messages"`
}

type claudeMessage struct {
	CreatedAt string          `json:"created_at"`
	Sender    string          `json:"sender"`
	Content   []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseClaude converts a Claude export. Messages are ordered by timestamp,
// ties keep export order. The "human" sender maps to user and every other
// sender to assistant. Only text content blocks are kept, joined by newlines.
func ParseClaude(r io.Reader) ([]Conversation, error) {
	var chats []claudeChat
	if err := json.NewDecoder(r).Decode(&chats); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConversation, err, "decode claude export")
	}

	convs := make([]Conversation, len(chats))
	for i, chat := range chats {
		msgs := slices.Clone(chat.Messages)
		slices.SortStableFunc(msgs, func(a, b claudeMessage) int {
			return timestamp(a.CreatedAt).Compare(timestamp(b.CreatedAt))
		})

		out := make([]Message, len(msgs))
		for j, m := range msgs {
			role := RoleAssistant
			if m.Sender == "human" {
				role = RoleUser
			}
			var texts []string
			for _, c := range m.Content {
				if c.Type == "text" {
					texts = append(texts, c.Text)
				}
			}
			out[j] = Message{CreatedAt: m.CreatedAt, Role: role, Content: strings.Join(texts, "\n")}
		}
		convs[i] = Conversation{ChatID: chat.UUID, CreatedAt: chat.CreatedAt, Messages: out}
	}

	if err := ValidateAll(convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// ParseKura reads conversations already in the normalized format.
func ParseKura(r io.Reader) ([]Conversation, error) {
	var convs []Conversation
	if err := json.NewDecoder(r).Decode(&convs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConversation, err, "decode kura export")
	}
	if convs == nil {
		convs = []Conversation{}
	}
	if err := ValidateAll(convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// timestamp parses an export timestamp. Unparseable values sort first.
func timestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
