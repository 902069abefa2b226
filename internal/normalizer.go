package internal

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// AI output is untrusted: normalization is best effort by design. Entries
// that cannot be coerced into the canonical shape are dropped rather than
// failing the whole draft, so partially garbage input degrades to a smaller
// valid draft.

var fencePattern = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// NormalizeDraft coerces arbitrary decoded JSON into the canonical draft
// shape. It fails with MalformedDraftError only when the top-level value is
// not an object or lacks a categorized array; everything below that level is
// dropped silently when malformed. Normalizing an already-normalized draft
// is a no-op.
func NormalizeDraft(raw any) (Draft, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Draft{}, &MalformedDraftError{Reason: "data must be a JSON object"}
	}
	categorized, ok := obj["categorized"].([]any)
	if !ok {
		return Draft{}, &MalformedDraftError{Reason: "missing categorized array"}
	}

	draft := NewDraft()
	for _, item := range categorized {
		folderItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		folderID, ok := coerceInt(folderItem["folder_id"])
		if !ok {
			continue
		}
		folderTitle := strings.TrimSpace(stringValue(folderItem["folder_title"]))
		chatsRaw, present := folderItem["chats"]
		if chatsRaw == nil && !present {
			chatsRaw = []any{}
		}
		chats, ok := chatsRaw.([]any)
		if !ok {
			continue
		}

		assignment := FolderAssignment{
			FolderID:    folderID,
			FolderTitle: folderTitle,
			Chats:       []ChatAssignment{},
		}
		seen := make(map[int64]struct{})
		for _, chatRaw := range chats {
			chatItem, ok := chatRaw.(map[string]any)
			if !ok {
				continue
			}
			chatID, ok := coerceInt(chatItem["chat_id"])
			if !ok {
				continue
			}
			if _, dup := seen[chatID]; dup {
				continue
			}
			seen[chatID] = struct{}{}

			chatType := stringValue(chatItem["type"])
			if chatType == "" {
				chatType = ChatTypeUnknown
			}
			assignment.Chats = append(assignment.Chats, ChatAssignment{
				ChatID: chatID,
				Type:   chatType,
				Reason: Truncate(stringValue(chatItem["reason"]), MaxReasonLen),
			})
		}
		draft.Categorized = append(draft.Categorized, assignment)
	}

	return draft, nil
}

// ParseAIResponse extracts a draft from raw AI response text. A wrapping
// markdown code fence (optionally tagged json) is stripped first; if the
// remainder is not directly parseable, the substring between the first "{"
// and the last "}" is tried before giving up.
func ParseAIResponse(text string) (Draft, error) {
	cleaned := stripMarkdownFence(text)

	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end == -1 || end <= start {
			return Draft{}, &AIResponseFormatError{Reason: "response is not a valid JSON object"}
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
			return Draft{}, &AIResponseFormatError{Reason: "embedded JSON object is invalid", Err: err}
		}
	}

	return NormalizeDraft(raw)
}

func stripMarkdownFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if match := fencePattern.FindStringSubmatch(cleaned); match != nil {
		return strings.TrimSpace(match[1])
	}
	return cleaned
}

// coerceInt converts decoded JSON scalars to an int64 id. Floats with a
// fractional part, booleans, and unparseable strings all fail coercion.
func coerceInt(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
