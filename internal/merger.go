package internal

// MergeBatchResults combines per-batch classification drafts into one draft.
// A single assigned set spans every batch and folder, so a chat claimed by an
// earlier batch is silently skipped in every later occurrence: first batch
// wins, and the merged draft never assigns a chat to more than one folder.
// Output buckets keep first-appearance order.
func MergeBatchResults(results []Draft, folderTitles map[int64]string) Draft {
	merged := NewDraft()
	bucketIndex := make(map[int64]int)
	assigned := make(map[int64]struct{})

	for _, result := range results {
		for _, folderItem := range result.Categorized {
			idx, ok := bucketIndex[folderItem.FolderID]
			if !ok {
				title := folderItem.FolderTitle
				if title == "" {
					title = folderTitles[folderItem.FolderID]
				}
				if title == "" {
					title = "Unknown"
				}
				merged.Categorized = append(merged.Categorized, FolderAssignment{
					FolderID:    folderItem.FolderID,
					FolderTitle: title,
					Chats:       []ChatAssignment{},
				})
				idx = len(merged.Categorized) - 1
				bucketIndex[folderItem.FolderID] = idx
			}

			for _, chatItem := range folderItem.Chats {
				if _, taken := assigned[chatItem.ChatID]; taken {
					continue
				}
				assigned[chatItem.ChatID] = struct{}{}
				merged.Categorized[idx].Chats = append(merged.Categorized[idx].Chats, chatItem)
			}
		}
	}

	return merged
}
