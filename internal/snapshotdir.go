package internal

import (
	"context"
	"fmt"
)

// SnapshotDirectory is a Directory backed by the snapshot cache files. It is
// the collaborator the wizard runs against when no live transport is wired
// in: folder membership updates are persisted back into the folder snapshot,
// so a run can be inspected and repeated offline. A live Telegram client
// would implement the same interface.
type SnapshotDirectory struct {
	cache *SnapshotCache
}

// NewSnapshotDirectory returns a Directory over the given cache.
func NewSnapshotDirectory(cache *SnapshotCache) *SnapshotDirectory {
	return &SnapshotDirectory{cache: cache}
}

// ListFolders implements Directory.
func (s *SnapshotDirectory) ListFolders(ctx context.Context) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	folders, err := s.cache.LoadFolders()
	if err != nil {
		return nil, err
	}
	if folders == nil {
		return nil, fmt.Errorf("no folder snapshot at %s; seed it before running", s.cache.FoldersPath())
	}
	return folders, nil
}

// ListChats implements Directory.
func (s *SnapshotDirectory) ListChats(ctx context.Context) ([]Chat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chats, err := s.cache.LoadChats()
	if err != nil {
		return nil, err
	}
	if chats == nil {
		return nil, fmt.Errorf("no chat snapshot at %s; seed it before running", s.cache.ChatsPath())
	}
	return chats, nil
}

// UpdateFolder implements Directory by rewriting the folder snapshot with
// the new membership.
func (s *SnapshotDirectory) UpdateFolder(ctx context.Context, folder Folder, memberIDs []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	folders, err := s.cache.LoadFolders()
	if err != nil {
		return err
	}
	for i := range folders {
		if folders[i].ID == folder.ID {
			folders[i].ExistingPeers = memberIDs
			return s.cache.SaveFolders(folders)
		}
	}
	return fmt.Errorf("folder id=%d not present in snapshot", folder.ID)
}
