package internal

import (
	"reflect"
	"testing"
)

func TestValidateShapeFailFast(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"not an object", `[1]`, "data must be a JSON object"},
		{"no categorized", `{}`, "missing categorized array"},
		{"entry not object", `{"categorized": ["x"]}`, "categorized[0] must be an object"},
		{
			"missing folder_id",
			`{"categorized": [{"folder_title": "T", "chats": []}]}`,
			"categorized[0] missing field: folder_id",
		},
		{
			"non-integer folder_id",
			`{"categorized": [{"folder_id": 1.5, "folder_title": "T", "chats": []}]}`,
			"categorized[0].folder_id must be an integer",
		},
		{
			"chats not array",
			`{"categorized": [{"folder_id": 1, "folder_title": "T", "chats": {}}]}`,
			"categorized[0].chats must be an array",
		},
		{
			"chat entry not object",
			`{"categorized": [{"folder_id": 1, "folder_title": "T", "chats": [5]}]}`,
			"categorized[0].chats[0] must be an object",
		},
		{
			"missing chat_id",
			`{"categorized": [{"folder_id": 1, "folder_title": "T", "chats": [{"type": "GROUP"}]}]}`,
			"categorized[0].chats[0] missing chat_id",
		},
		{
			"non-integer chat_id",
			`{"categorized": [{"folder_id": 1, "folder_title": "T", "chats": [{"chat_id": "x"}]}]}`,
			"categorized[0].chats[0].chat_id must be an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateShape(decodeJSON(t, tt.raw))
			if ok {
				t.Fatal("ValidateShape() accepted an invalid draft")
			}
			if reason != tt.want {
				t.Errorf("reason = %q, want %q", reason, tt.want)
			}
		})
	}
}

func TestValidateShapeAcceptsValid(t *testing.T) {
	raw := decodeJSON(t, `{"categorized": [
		{"folder_id": 1, "folder_title": "A", "chats": [{"chat_id": 10, "type": "GROUP", "reason": "r"}]},
		{"folder_id": "2", "folder_title": "B", "chats": []}
	]}`)
	if ok, reason := ValidateShape(raw); !ok {
		t.Errorf("ValidateShape() rejected a valid draft: %s", reason)
	}
}

func TestValidateReferencesAggregates(t *testing.T) {
	d := Draft{Categorized: []FolderAssignment{
		{FolderID: 99, FolderTitle: "Ghost", Chats: []ChatAssignment{
			{ChatID: 10},
		}},
		{FolderID: 1, FolderTitle: "A", Chats: []ChatAssignment{
			{ChatID: 555},
			{ChatID: 10},
			{ChatID: 10},
		}},
	}}
	validFolders := map[int64]struct{}{1: {}, 2: {}}
	validChats := map[int64]struct{}{10: {}}

	got := ValidateReferences(d, validFolders, validChats)
	want := []string{
		"categorized[0].folder_id=99 does not exist",
		"categorized[1].chats[0].chat_id=555 does not exist",
		"chat_id=10 is assigned in more than one folder",
		"chat_id=10 is assigned in more than one folder",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ValidateReferences() = %v, want %v", got, want)
	}
}

func TestValidateReferencesClean(t *testing.T) {
	d := Draft{Categorized: []FolderAssignment{
		{FolderID: 1, FolderTitle: "A", Chats: []ChatAssignment{{ChatID: 10}, {ChatID: 20}}},
	}}
	validFolders := map[int64]struct{}{1: {}}
	validChats := map[int64]struct{}{10: {}, 20: {}}

	if errs := ValidateReferences(d, validFolders, validChats); len(errs) != 0 {
		t.Errorf("ValidateReferences() = %v, want empty", errs)
	}
}
