package internal

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SnapshotCache persists the chat and folder snapshots between runs, because
// enumerating chats from the data source can take minutes. Payloads are JSON
// envelopes with a collection timestamp; a small YAML index next to them
// records when each side of the snapshot was refreshed.
type SnapshotCache struct {
	dir string
}

// SnapshotMetadata is the YAML index of the cache.
type SnapshotMetadata struct {
	CacheVersion     string    `yaml:"cache_version"`
	ChatsRefreshed   time.Time `yaml:"chats_refreshed,omitempty"`
	FoldersRefreshed time.Time `yaml:"folders_refreshed,omitempty"`
	TotalChats       int       `yaml:"total_chats"`
	TotalFolders     int       `yaml:"total_folders"`
}

type chatsEnvelope struct {
	Timestamp  string `json:"timestamp"`
	TotalChats int    `json:"total_chats"`
	Chats      []Chat `json:"chats"`
}

type foldersEnvelope struct {
	Timestamp    string   `json:"timestamp"`
	TotalFolders int      `json:"total_folders"`
	Folders      []Folder `json:"folders"`
}

const snapshotCacheVersion = "1.0"

// NewSnapshotCache creates a cache rooted at dir.
func NewSnapshotCache(dir string) *SnapshotCache {
	return &SnapshotCache{dir: dir}
}

// ChatsPath returns the chat snapshot file path.
func (c *SnapshotCache) ChatsPath() string {
	return filepath.Join(c.dir, "chats_info.json")
}

// FoldersPath returns the folder snapshot file path.
func (c *SnapshotCache) FoldersPath() string {
	return filepath.Join(c.dir, "folders_info.json")
}

// IndexPath returns the YAML metadata index path.
func (c *SnapshotCache) IndexPath() string {
	return filepath.Join(c.dir, "snapshot.yaml")
}

// SaveChats persists the chat snapshot and refreshes the index.
func (c *SnapshotCache) SaveChats(chats []Chat) error {
	envelope := chatsEnvelope{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalChats: len(chats),
		Chats:      chats,
	}
	if err := SaveJSONFile(c.ChatsPath(), envelope); err != nil {
		return err
	}
	return c.updateMetadata(func(meta *SnapshotMetadata) {
		meta.ChatsRefreshed = time.Now()
		meta.TotalChats = len(chats)
	})
}

// LoadChats returns the cached chat snapshot, or nil when no usable cache
// exists.
func (c *SnapshotCache) LoadChats() ([]Chat, error) {
	var envelope chatsEnvelope
	if err := LoadJSONFile(c.ChatsPath(), &envelope); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return envelope.Chats, nil
}

// SaveFolders persists the folder snapshot and refreshes the index.
func (c *SnapshotCache) SaveFolders(folders []Folder) error {
	envelope := foldersEnvelope{
		Timestamp:    time.Now().Format(time.RFC3339),
		TotalFolders: len(folders),
		Folders:      folders,
	}
	if err := SaveJSONFile(c.FoldersPath(), envelope); err != nil {
		return err
	}
	return c.updateMetadata(func(meta *SnapshotMetadata) {
		meta.FoldersRefreshed = time.Now()
		meta.TotalFolders = len(folders)
	})
}

// LoadFolders returns the cached folder snapshot, or nil when no usable
// cache exists.
func (c *SnapshotCache) LoadFolders() ([]Folder, error) {
	var envelope foldersEnvelope
	if err := LoadJSONFile(c.FoldersPath(), &envelope); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return envelope.Folders, nil
}

// LoadMetadata reads the YAML index; a missing index yields a zero value.
func (c *SnapshotCache) LoadMetadata() (SnapshotMetadata, error) {
	data, err := os.ReadFile(c.IndexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return SnapshotMetadata{CacheVersion: snapshotCacheVersion}, nil
		}
		return SnapshotMetadata{}, err
	}
	var meta SnapshotMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return SnapshotMetadata{}, err
	}
	return meta, nil
}

func (c *SnapshotCache) updateMetadata(update func(*SnapshotMetadata)) error {
	meta, err := c.LoadMetadata()
	if err != nil {
		meta = SnapshotMetadata{}
	}
	meta.CacheVersion = snapshotCacheVersion
	update(&meta)

	data, err := yaml.Marshal(&meta)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.IndexPath(), data, 0644)
}
