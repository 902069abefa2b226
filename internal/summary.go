package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildSummaryLines renders one line per non-empty folder assignment with up
// to maxExamples example chat titles, plus the total number of assignments.
func BuildSummaryLines(d Draft, chatLookup map[int64]Chat, maxExamples int) ([]string, int) {
	var lines []string
	total := 0

	for _, folderItem := range d.Categorized {
		if len(folderItem.Chats) == 0 {
			continue
		}
		title := folderItem.FolderTitle
		if title == "" {
			title = "Unknown"
		}
		total += len(folderItem.Chats)

		var examples []string
		for _, chatItem := range folderItem.Chats {
			if len(examples) >= maxExamples {
				break
			}
			if chat, ok := chatLookup[chatItem.ChatID]; ok && chat.Title != "" {
				examples = append(examples, chat.Title)
			} else {
				examples = append(examples, strconv.FormatInt(chatItem.ChatID, 10))
			}
		}

		line := fmt.Sprintf("- %s: +%d", title, len(folderItem.Chats))
		if len(examples) > 0 {
			line += fmt.Sprintf(" (e.g. %s)", strings.Join(examples, ", "))
		}
		lines = append(lines, line)
	}

	return lines, total
}
