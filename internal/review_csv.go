package internal

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The review CSV is the human review surface: one row per categorized
// assignment followed by one row per unassigned chat, editable in any
// spreadsheet. It is written with a UTF-8 byte-order marker so spreadsheet
// applications pick the right encoding.

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var reviewColumns = []string{
	"status",
	"folder_id",
	"folder_title",
	"chat_id",
	"chat_title",
	"chat_type",
	"username",
	"reason",
}

// DefaultCSVReason marks assignments created by editing the review CSV
// without filling in a reason.
const DefaultCSVReason = "assigned during CSV review"

// ExportReviewCSV writes the review table for a draft. Chat metadata is
// joined from the snapshot, not from the draft.
func ExportReviewCSV(path string, d Draft, allChats []Chat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}

	chatLookup := BuildChatLookup(allChats)
	assigned := make(map[int64]struct{})

	w := csv.NewWriter(f)
	if err := w.Write(reviewColumns); err != nil {
		return err
	}

	for _, folderItem := range d.Categorized {
		for _, chatItem := range folderItem.Chats {
			chat := chatLookup[chatItem.ChatID]
			assigned[chatItem.ChatID] = struct{}{}
			chatType := chatItem.Type
			if chatType == "" {
				chatType = chat.Type
			}
			record := []string{
				"categorized",
				strconv.FormatInt(folderItem.FolderID, 10),
				folderItem.FolderTitle,
				strconv.FormatInt(chatItem.ChatID, 10),
				chat.Title,
				chatType,
				chat.Username,
				chatItem.Reason,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	for _, chat := range allChats {
		if _, ok := assigned[chat.ChatID]; ok {
			continue
		}
		record := []string{
			"unassigned",
			"",
			"",
			strconv.FormatInt(chat.ChatID, 10),
			chat.Title,
			chat.Type,
			chat.Username,
			"",
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// RebuildFromReviewCSV reconstructs a draft from an edited review CSV. Only
// rows with status "categorized" (case-insensitive) are consumed; rows with
// non-integer ids, references to unknown folders or chats, or a chat id
// already consumed earlier in the file are silently skipped (first wins).
// Folder ordering follows first appearance in the file.
func RebuildFromReviewCSV(path string, folders []Folder, allChats []Chat) (Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Draft{}, &ReviewFormatError{Path: path, Reason: fmt.Sprintf("cannot read file: %v", err)}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return Draft{}, &ReviewFormatError{Path: path, Reason: fmt.Sprintf("cannot parse csv: %v", err)}
	}
	if len(records) == 0 {
		return Draft{}, &ReviewFormatError{Path: path, Reason: "missing header row"}
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"status", "folder_id", "chat_id"} {
		if _, ok := columns[required]; !ok {
			return Draft{}, &ReviewFormatError{Path: path, Reason: "missing required columns: status, folder_id, chat_id"}
		}
	}

	folderLookup := BuildFolderLookup(folders)
	chatLookup := BuildChatLookup(allChats)
	seen := make(map[int64]struct{})
	bucketIndex := make(map[int64]int)
	draft := NewDraft()

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for _, row := range records[1:] {
		if !strings.EqualFold(field(row, "status"), "categorized") {
			continue
		}

		folderID, err := strconv.ParseInt(field(row, "folder_id"), 10, 64)
		if err != nil {
			continue
		}
		chatID, err := strconv.ParseInt(field(row, "chat_id"), 10, 64)
		if err != nil {
			continue
		}

		folderTitle, knownFolder := folderLookup[folderID]
		if !knownFolder {
			continue
		}
		chat, knownChat := chatLookup[chatID]
		if !knownChat {
			continue
		}
		if _, dup := seen[chatID]; dup {
			continue
		}
		seen[chatID] = struct{}{}

		reason := field(row, "reason")
		if reason == "" {
			reason = DefaultCSVReason
		}
		chatType := field(row, "chat_type")
		if chatType == "" {
			chatType = chat.Type
		}
		if chatType == "" {
			chatType = ChatTypeUnknown
		}

		idx, ok := bucketIndex[folderID]
		if !ok {
			draft.Categorized = append(draft.Categorized, FolderAssignment{
				FolderID:    folderID,
				FolderTitle: folderTitle,
				Chats:       []ChatAssignment{},
			})
			idx = len(draft.Categorized) - 1
			bucketIndex[folderID] = idx
		}
		draft.Categorized[idx].Chats = append(draft.Categorized[idx].Chats, ChatAssignment{
			ChatID: chatID,
			Type:   chatType,
			Reason: reason,
		})
	}

	return draft, nil
}
