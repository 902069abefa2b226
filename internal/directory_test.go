package internal

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakeDirectory records UpdateFolder calls and can fail for chosen folders.
type fakeDirectory struct {
	updates map[int64][]int64
	failIDs map[int64]struct{}
}

func newFakeDirectory(failIDs ...int64) *fakeDirectory {
	fail := make(map[int64]struct{}, len(failIDs))
	for _, id := range failIDs {
		fail[id] = struct{}{}
	}
	return &fakeDirectory{updates: make(map[int64][]int64), failIDs: fail}
}

func (f *fakeDirectory) ListFolders(context.Context) ([]Folder, error) { return nil, nil }
func (f *fakeDirectory) ListChats(context.Context) ([]Chat, error)    { return nil, nil }

func (f *fakeDirectory) UpdateFolder(_ context.Context, folder Folder, memberIDs []int64) error {
	if _, fail := f.failIDs[folder.ID]; fail {
		return errors.New("update rejected")
	}
	f.updates[folder.ID] = memberIDs
	return nil
}

func TestClearFolders(t *testing.T) {
	dir := newFakeDirectory()
	folders := []Folder{
		{ID: 1, Title: "Big", ExistingPeers: []int64{10, 20, 30}},
		{ID: 2, Title: "Single", ExistingPeers: []int64{40}},
		{ID: 3, Title: "Empty"},
	}

	ClearFolders(context.Background(), dir, folders)

	if !reflect.DeepEqual(dir.updates[1], []int64{10}) {
		t.Errorf("folder 1 cleared to %v, want [10]", dir.updates[1])
	}
	if _, touched := dir.updates[2]; touched {
		t.Error("single-member folder should be skipped")
	}
	if _, touched := dir.updates[3]; touched {
		t.Error("empty folder should be skipped")
	}
	if !reflect.DeepEqual(folders[0].ExistingPeers, []int64{10}) {
		t.Errorf("in-memory peers not updated: %v", folders[0].ExistingPeers)
	}
}

func TestClearFoldersContinuesOnFailure(t *testing.T) {
	dir := newFakeDirectory(1)
	folders := []Folder{
		{ID: 1, Title: "Fails", ExistingPeers: []int64{10, 20}},
		{ID: 2, Title: "Works", ExistingPeers: []int64{30, 40}},
	}

	ClearFolders(context.Background(), dir, folders)

	if !reflect.DeepEqual(folders[0].ExistingPeers, []int64{10, 20}) {
		t.Errorf("failed folder should keep its peers: %v", folders[0].ExistingPeers)
	}
	if !reflect.DeepEqual(dir.updates[2], []int64{30}) {
		t.Errorf("folder 2 = %v, want cleared despite earlier failure", dir.updates[2])
	}
}

func TestApplyCategorizationAdditive(t *testing.T) {
	dir := newFakeDirectory()
	folders := []Folder{
		{ID: 1, Title: "News", ExistingPeers: []int64{10}},
	}
	chatLookup := map[int64]Chat{
		10: {ChatID: 10}, 20: {ChatID: 20}, 30: {ChatID: 30},
	}
	d := Draft{Categorized: []FolderAssignment{
		{FolderID: 1, FolderTitle: "News", Chats: []ChatAssignment{
			{ChatID: 10}, // already a member, deduplicated
			{ChatID: 20},
			{ChatID: 999}, // not in the snapshot, skipped
			{ChatID: 30},
		}},
	}}

	updated := ApplyCategorization(context.Background(), dir, d, chatLookup, folders, false)

	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	if !reflect.DeepEqual(dir.updates[1], []int64{10, 20, 30}) {
		t.Errorf("folder 1 members = %v, want [10 20 30]", dir.updates[1])
	}
}

func TestApplyCategorizationAfterClear(t *testing.T) {
	dir := newFakeDirectory()
	folders := []Folder{
		{ID: 1, Title: "News", ExistingPeers: []int64{10}},
	}
	chatLookup := map[int64]Chat{10: {ChatID: 10}, 20: {ChatID: 20}}
	d := Draft{Categorized: []FolderAssignment{
		{FolderID: 1, FolderTitle: "News", Chats: []ChatAssignment{
			{ChatID: 10}, {ChatID: 20},
		}},
	}}

	updated := ApplyCategorization(context.Background(), dir, d, chatLookup, folders, true)

	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	// Cleared mode places the draft's chats on top of the kept peer without
	// dedup against it; 10 is both the kept peer and a draft member.
	if !reflect.DeepEqual(dir.updates[1], []int64{10, 10, 20}) {
		t.Errorf("folder 1 members = %v", dir.updates[1])
	}
}

func TestApplyCategorizationSkipsAndContinues(t *testing.T) {
	dir := newFakeDirectory(2)
	folders := []Folder{
		{ID: 1, Title: "OnlyExisting", ExistingPeers: []int64{10}},
		{ID: 2, Title: "Fails"},
		{ID: 3, Title: "Works"},
	}
	chatLookup := map[int64]Chat{10: {ChatID: 10}, 20: {ChatID: 20}, 30: {ChatID: 30}}
	d := Draft{Categorized: []FolderAssignment{
		{FolderID: 99, FolderTitle: "Ghost", Chats: []ChatAssignment{{ChatID: 20}}},
		{FolderID: 1, FolderTitle: "OnlyExisting", Chats: []ChatAssignment{{ChatID: 10}}},
		{FolderID: 2, FolderTitle: "Fails", Chats: []ChatAssignment{{ChatID: 20}}},
		{FolderID: 3, FolderTitle: "Works", Chats: []ChatAssignment{{ChatID: 30}}},
	}}

	updated := ApplyCategorization(context.Background(), dir, d, chatLookup, folders, false)

	// Ghost folder skipped, folder 1 had nothing new, folder 2 failed,
	// folder 3 succeeded.
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	if !reflect.DeepEqual(dir.updates[3], []int64{30}) {
		t.Errorf("folder 3 members = %v, want [30]", dir.updates[3])
	}
}
