package internal

import (
	"context"
	"reflect"
	"testing"
)

func TestSnapshotDirectory(t *testing.T) {
	cache := NewSnapshotCache(t.TempDir())
	dir := NewSnapshotDirectory(cache)
	ctx := context.Background()

	// Empty cache means there is nothing to organize.
	if _, err := dir.ListFolders(ctx); err == nil {
		t.Error("ListFolders() on an empty cache should fail")
	}
	if _, err := dir.ListChats(ctx); err == nil {
		t.Error("ListChats() on an empty cache should fail")
	}

	folders := []Folder{{ID: 1, Title: "News", ExistingPeers: []int64{10}}}
	chats := []Chat{{ChatID: 10, Title: "a"}, {ChatID: 20, Title: "b"}}
	if err := cache.SaveFolders(folders); err != nil {
		t.Fatal(err)
	}
	if err := cache.SaveChats(chats); err != nil {
		t.Fatal(err)
	}

	gotFolders, err := dir.ListFolders(ctx)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if !reflect.DeepEqual(gotFolders, folders) {
		t.Errorf("folders = %+v", gotFolders)
	}
	gotChats, err := dir.ListChats(ctx)
	if err != nil {
		t.Fatalf("ListChats() error = %v", err)
	}
	if len(gotChats) != 2 {
		t.Errorf("chats = %+v", gotChats)
	}
}

func TestSnapshotDirectoryUpdateFolder(t *testing.T) {
	cache := NewSnapshotCache(t.TempDir())
	dir := NewSnapshotDirectory(cache)
	ctx := context.Background()

	if err := cache.SaveFolders([]Folder{
		{ID: 1, Title: "News", ExistingPeers: []int64{10}},
		{ID: 2, Title: "Work"},
	}); err != nil {
		t.Fatal(err)
	}

	if err := dir.UpdateFolder(ctx, Folder{ID: 1, Title: "News"}, []int64{10, 20, 30}); err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}

	folders, err := cache.LoadFolders()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(folders[0].ExistingPeers, []int64{10, 20, 30}) {
		t.Errorf("peers = %v, want [10 20 30]", folders[0].ExistingPeers)
	}
	if folders[1].ExistingPeers != nil {
		t.Errorf("unrelated folder changed: %+v", folders[1])
	}

	if err := dir.UpdateFolder(ctx, Folder{ID: 99, Title: "Ghost"}, nil); err == nil {
		t.Error("UpdateFolder() on an unknown folder should fail")
	}
}
