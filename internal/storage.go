package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// RuntimeFiles names every flat-file artifact of a run. All of them are
// re-readable across process restarts; superseded drafts are overwritten in
// place, and the final artifact gets a timestamped backup before promotion.
type RuntimeFiles struct {
	Draft     string // working draft JSON
	Final     string // promoted final artifact
	ReviewCSV string // human review table
	Chats     string // chat snapshot cache
	Folders   string // folder snapshot cache
	Log       string // run log
}

// NewRuntimeFiles lays the artifacts out under the configured directories.
func NewRuntimeFiles(dataDir, logsDir string) RuntimeFiles {
	return RuntimeFiles{
		Draft:     filepath.Join(dataDir, "groups.draft.json"),
		Final:     filepath.Join(dataDir, "groups.json"),
		ReviewCSV: filepath.Join(dataDir, "classification_review.csv"),
		Chats:     filepath.Join(dataDir, "chats_info.json"),
		Folders:   filepath.Join(dataDir, "folders_info.json"),
		Log:       filepath.Join(logsDir, "run.log"),
	}
}

// SaveJSONFile writes v as indented JSON, creating parent directories.
func SaveJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	LogInfo("Saved file: %s", path)
	return nil
}

// LoadJSONFile reads path into v.
func LoadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// LoadRawJSON reads path into an untyped JSON value for shape validation
// and normalization.
func LoadRawJSON(path string) (any, error) {
	var raw any
	if err := LoadJSONFile(path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// BackupFile copies path to a sibling named <timestamp>-<name> and returns
// the backup path. Missing source is not an error; it returns "".
func BackupFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer src.Close()

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(filepath.Dir(path), timestamp+"-"+filepath.Base(path))

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	LogInfo("Backed up %s to %s", path, backupPath)
	return backupPath, nil
}

// SaveFinalDraft promotes a validated draft to the final artifact, backing
// up any prior final artifact first.
func SaveFinalDraft(d Draft, path string) error {
	if _, err := BackupFile(path); err != nil {
		return err
	}
	return SaveJSONFile(path, d)
}

// MigrateLegacyFiles moves run artifacts that older versions wrote into the
// working directory to their configured locations. Existing targets are
// never overwritten. Returns a "source -> target" line per moved file.
func MigrateLegacyFiles(workDir string, files RuntimeFiles) []string {
	mapping := map[string]string{
		filepath.Join(workDir, "chats_info.json"):           files.Chats,
		filepath.Join(workDir, "folders_info.json"):         files.Folders,
		filepath.Join(workDir, "groups.draft.json"):         files.Draft,
		filepath.Join(workDir, "groups.json"):               files.Final,
		filepath.Join(workDir, "classification_review.csv"): files.ReviewCSV,
		filepath.Join(workDir, "run.log"):                   files.Log,
	}

	var moved []string
	for source, target := range mapping {
		if _, err := os.Stat(source); err != nil {
			continue
		}
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			LogWarn("Cannot prepare %s: %v", filepath.Dir(target), err)
			continue
		}
		if err := os.Rename(source, target); err != nil {
			LogWarn("Cannot migrate %s: %v", source, err)
			continue
		}
		moved = append(moved, fmt.Sprintf("%s -> %s", filepath.Base(source), target))
	}
	return moved
}
