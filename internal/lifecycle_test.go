package internal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func lifecycleFixture(t *testing.T) (*Controller, *ScriptedPrompter, RuntimeFiles) {
	t.Helper()
	dir := t.TempDir()
	files := NewRuntimeFiles(dir, dir)
	p := &ScriptedPrompter{}
	c := &Controller{
		Prompter: p,
		Files:    files,
		Out:      &bytes.Buffer{},
	}
	return c, p, files
}

func writeDraftFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestValidateDraftLoopPassesFirstTry(t *testing.T) {
	c, _, files := lifecycleFixture(t)
	writeDraftFile(t, files.Draft,
		`{"categorized": [{"folder_id": 1, "folder_title": "A", "chats": [{"chat_id": 10, "type": "GROUP", "reason": "r"}]}]}`)

	d, err := c.ValidateDraftLoop(
		map[int64]struct{}{1: {}},
		map[int64]struct{}{10: {}},
	)
	if err != nil {
		t.Fatalf("ValidateDraftLoop() error = %v", err)
	}
	if d.TotalAssigned() != 1 {
		t.Errorf("draft = %+v, want one assignment", d)
	}
}

func TestValidateDraftLoopRetryAfterFix(t *testing.T) {
	c, p, files := lifecycleFixture(t)
	// Starts with a reference violation (unknown folder 99).
	writeDraftFile(t, files.Draft,
		`{"categorized": [{"folder_id": 99, "folder_title": "Ghost", "chats": [{"chat_id": 10, "type": "GROUP", "reason": "r"}]}]}`)

	p.YesNoAnswers = []bool{true} // keep editing
	p.OnWaitForEnter = func(string) {
		writeDraftFile(t, files.Draft,
			`{"categorized": [{"folder_id": 1, "folder_title": "A", "chats": [{"chat_id": 10, "type": "GROUP", "reason": "r"}]}]}`)
	}

	d, err := c.ValidateDraftLoop(
		map[int64]struct{}{1: {}},
		map[int64]struct{}{10: {}},
	)
	if err != nil {
		t.Fatalf("ValidateDraftLoop() error = %v", err)
	}
	if d.Categorized[0].FolderID != 1 {
		t.Errorf("draft = %+v, want the fixed version", d)
	}
}

func TestValidateDraftLoopAborts(t *testing.T) {
	tests := []struct {
		name    string
		answers []bool
	}{
		{"user declines retry", []bool{false}},
		{"no answer at all", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, p, files := lifecycleFixture(t)
			writeDraftFile(t, files.Draft, `{"not": "a draft"}`)
			p.YesNoAnswers = tt.answers

			_, err := c.ValidateDraftLoop(map[int64]struct{}{}, map[int64]struct{}{})
			if !errors.Is(err, ErrAborted) {
				t.Errorf("error = %v, want ErrAborted", err)
			}
		})
	}
}

func TestValidateDraftLoopMissingFile(t *testing.T) {
	c, p, _ := lifecycleFixture(t)
	p.YesNoAnswers = []bool{false}

	_, err := c.ValidateDraftLoop(map[int64]struct{}{}, map[int64]struct{}{})
	if !errors.Is(err, ErrAborted) {
		t.Errorf("error = %v, want ErrAborted after declining to fix a missing draft", err)
	}
}

func TestConfirmAndPromote(t *testing.T) {
	d := Draft{Categorized: []FolderAssignment{
		{FolderID: 1, FolderTitle: "A", Chats: []ChatAssignment{{ChatID: 10, Type: "GROUP"}}},
	}}

	t.Run("confirmed", func(t *testing.T) {
		c, p, files := lifecycleFixture(t)
		p.YesNoAnswers = []bool{true}

		promoted, err := c.ConfirmAndPromote(d)
		if err != nil || !promoted {
			t.Fatalf("ConfirmAndPromote() = (%v, %v), want (true, nil)", promoted, err)
		}
		var saved Draft
		if err := LoadJSONFile(files.Final, &saved); err != nil {
			t.Fatalf("final artifact not written: %v", err)
		}
		if saved.TotalAssigned() != 1 {
			t.Errorf("saved = %+v", saved)
		}
	})

	t.Run("declined", func(t *testing.T) {
		c, p, files := lifecycleFixture(t)
		p.YesNoAnswers = []bool{false}

		promoted, err := c.ConfirmAndPromote(d)
		if err != nil || promoted {
			t.Fatalf("ConfirmAndPromote() = (%v, %v), want (false, nil)", promoted, err)
		}
		if _, err := os.Stat(files.Final); !os.IsNotExist(err) {
			t.Error("declined promotion must not write the final artifact")
		}
	})

	t.Run("timeout counts as decline", func(t *testing.T) {
		c, _, files := lifecycleFixture(t)

		promoted, err := c.ConfirmAndPromote(d)
		if err != nil || promoted {
			t.Fatalf("ConfirmAndPromote() = (%v, %v), want (false, nil)", promoted, err)
		}
		if _, err := os.Stat(files.Final); !os.IsNotExist(err) {
			t.Error("timed-out promotion must not write the final artifact")
		}
	})
}

func TestConfirmApply(t *testing.T) {
	tests := []struct {
		name    string
		answers []bool
		want    bool
	}{
		{"confirmed", []bool{true}, true},
		{"declined", []bool{false}, false},
		{"no answer", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, p, _ := lifecycleFixture(t)
			p.YesNoAnswers = tt.answers
			if got := c.ConfirmApply(); got != tt.want {
				t.Errorf("ConfirmApply() = %v, want %v", got, tt.want)
			}
		})
	}
}
