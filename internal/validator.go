package internal

import "fmt"

// ValidateShape structurally checks decoded draft JSON: object shape,
// required fields, integer-coercible ids, chats as an array. It fails fast
// and returns the first violation with a path-qualified message.
func ValidateShape(raw any) (bool, string) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false, "data must be a JSON object"
	}
	categorized, ok := obj["categorized"].([]any)
	if !ok {
		return false, "missing categorized array"
	}

	for i, item := range categorized {
		folderItem, ok := item.(map[string]any)
		if !ok {
			return false, fmt.Sprintf("categorized[%d] must be an object", i)
		}
		for _, field := range []string{"folder_id", "folder_title", "chats"} {
			if _, present := folderItem[field]; !present {
				return false, fmt.Sprintf("categorized[%d] missing field: %s", i, field)
			}
		}
		if _, ok := coerceInt(folderItem["folder_id"]); !ok {
			return false, fmt.Sprintf("categorized[%d].folder_id must be an integer", i)
		}
		chats, ok := folderItem["chats"].([]any)
		if !ok {
			return false, fmt.Sprintf("categorized[%d].chats must be an array", i)
		}

		for j, chatRaw := range chats {
			chatItem, ok := chatRaw.(map[string]any)
			if !ok {
				return false, fmt.Sprintf("categorized[%d].chats[%d] must be an object", i, j)
			}
			if _, present := chatItem["chat_id"]; !present {
				return false, fmt.Sprintf("categorized[%d].chats[%d] missing chat_id", i, j)
			}
			if _, ok := coerceInt(chatItem["chat_id"]); !ok {
				return false, fmt.Sprintf("categorized[%d].chats[%d].chat_id must be an integer", i, j)
			}
		}
	}

	return true, "OK"
}

// ValidateReferences checks every id in the draft against the known folder
// and chat universes. Unlike ValidateShape it aggregates all violations:
// unknown folder ids, unknown chat ids, and chats assigned in more than one
// place (every occurrence after the first is reported). An empty result
// means the draft is fully consistent.
func ValidateReferences(d Draft, validFolderIDs, validChatIDs map[int64]struct{}) []string {
	var errs []string
	seen := make(map[int64]struct{})

	for i, folderItem := range d.Categorized {
		if _, ok := validFolderIDs[folderItem.FolderID]; !ok {
			errs = append(errs, fmt.Sprintf("categorized[%d].folder_id=%d does not exist", i, folderItem.FolderID))
		}
		for j, chatItem := range folderItem.Chats {
			if _, ok := validChatIDs[chatItem.ChatID]; !ok {
				errs = append(errs, fmt.Sprintf("categorized[%d].chats[%d].chat_id=%d does not exist", i, j, chatItem.ChatID))
			}
			if _, dup := seen[chatItem.ChatID]; dup {
				errs = append(errs, fmt.Sprintf("chat_id=%d is assigned in more than one folder", chatItem.ChatID))
			}
			seen[chatItem.ChatID] = struct{}{}
		}
	}

	return errs
}
