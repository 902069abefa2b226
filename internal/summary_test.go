package internal

import (
	"reflect"
	"testing"
)

func TestBuildSummaryLines(t *testing.T) {
	d := Draft{Categorized: []FolderAssignment{
		{FolderID: 1, FolderTitle: "News", Chats: []ChatAssignment{
			{ChatID: 10}, {ChatID: 11}, {ChatID: 12}, {ChatID: 13},
		}},
		{FolderID: 2, FolderTitle: "", Chats: []ChatAssignment{{ChatID: 20}}},
		{FolderID: 3, FolderTitle: "Empty", Chats: nil},
	}}
	lookup := map[int64]Chat{
		10: {ChatID: 10, Title: "Go Weekly"},
		11: {ChatID: 11, Title: "HN Digest"},
		20: {ChatID: 20, Title: "Alice"},
	}

	lines, total := BuildSummaryLines(d, lookup, 3)

	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	want := []string{
		"- News: +4 (e.g. Go Weekly, HN Digest, 12)",
		"- Unknown: +1 (e.g. Alice)",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}

func TestBuildSummaryLinesEmptyDraft(t *testing.T) {
	lines, total := BuildSummaryLines(NewDraft(), nil, 3)
	if total != 0 || len(lines) != 0 {
		t.Errorf("BuildSummaryLines() = (%v, %d), want empty", lines, total)
	}
}
