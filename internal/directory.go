package internal

import "context"

// Directory is the external chat/folder data source. The wire protocol
// behind it (Telegram or otherwise) is not this package's concern; the port
// exposes exactly the operations the wizard needs.
type Directory interface {
	// ListFolders returns the user's folders with current membership.
	ListFolders(ctx context.Context) ([]Folder, error)
	// ListChats enumerates the chats eligible for categorization. May be
	// slow; callers cache the result.
	ListChats(ctx context.Context) ([]Chat, error)
	// UpdateFolder replaces the folder's membership with memberIDs.
	UpdateFolder(ctx context.Context, folder Folder, memberIDs []int64) error
}

// ClearFolders empties every folder down to its first member, so the later
// apply step can do fresh placement. Folders with at most one member are
// left alone (an empty folder is rejected by the live store). Failures are
// logged and do not stop the remaining folders.
func ClearFolders(ctx context.Context, dir Directory, folders []Folder) {
	LogInfo("Clearing existing folders (keeping one chat per folder)...")
	for i := range folders {
		folder := &folders[i]
		if len(folder.ExistingPeers) <= 1 {
			LogInfo("Folder %q has <=1 chats, skip.", folder.Title)
			continue
		}
		kept := folder.ExistingPeers[:1]
		if err := dir.UpdateFolder(ctx, *folder, kept); err != nil {
			LogError("Failed clearing folder %q: %v", folder.Title, err)
			continue
		}
		folder.ExistingPeers = kept
		LogInfo("Cleared folder %q, kept 1 chat", folder.Title)
	}
}

// ApplyCategorization writes a validated draft to the folder store,
// folder by folder. Chat ids that cannot be resolved in the snapshot are
// logged and skipped. In additive mode the new members are de-duplicated
// against the folder's existing peers; after a clear, the draft's chats are
// placed as-is. Per-folder failures are logged and the remaining folders
// still get their updates: best effort, not atomic. Returns the number of
// folders updated.
func ApplyCategorization(
	ctx context.Context,
	dir Directory,
	d Draft,
	chatLookup map[int64]Chat,
	folders []Folder,
	foldersWereCleared bool,
) int {
	LogInfo("Updating folders with categorization results...")

	folderIndex := make(map[int64]int, len(folders))
	for i, folder := range folders {
		folderIndex[folder.ID] = i
	}

	updated := 0
	for _, folderItem := range d.Categorized {
		idx, ok := folderIndex[folderItem.FolderID]
		if !ok {
			LogWarn("Folder id=%d not found. Skip.", folderItem.FolderID)
			continue
		}
		folder := &folders[idx]

		var newPeers []int64
		for _, chatItem := range folderItem.Chats {
			if _, ok := chatLookup[chatItem.ChatID]; !ok {
				LogWarn("chat_id=%d not found in chat snapshot", chatItem.ChatID)
				continue
			}
			newPeers = append(newPeers, chatItem.ChatID)
		}
		if len(newPeers) == 0 {
			LogInfo("No chats to add for folder %q", folder.Title)
			continue
		}

		peersToAdd := newPeers
		if !foldersWereCleared {
			existing := make(map[int64]struct{}, len(folder.ExistingPeers))
			for _, peer := range folder.ExistingPeers {
				existing[peer] = struct{}{}
			}
			peersToAdd = nil
			for _, peer := range newPeers {
				if _, dup := existing[peer]; dup {
					continue
				}
				existing[peer] = struct{}{}
				peersToAdd = append(peersToAdd, peer)
			}
		}
		if len(peersToAdd) == 0 {
			LogInfo("All target chats already in folder %q", folder.Title)
			continue
		}

		allPeers := make([]int64, 0, len(folder.ExistingPeers)+len(peersToAdd))
		allPeers = append(allPeers, folder.ExistingPeers...)
		allPeers = append(allPeers, peersToAdd...)

		if err := dir.UpdateFolder(ctx, *folder, allPeers); err != nil {
			LogError("Failed updating folder %q: %v", folder.Title, err)
			continue
		}
		folder.ExistingPeers = allPeers
		updated++
		LogInfo("Updated folder %q, added %d chats", folder.Title, len(peersToAdd))
	}

	return updated
}
