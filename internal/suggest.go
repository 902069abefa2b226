package internal

import "strings"

// SuggestFolderID proposes a candidate folder for a chat by counting how many
// whitespace tokens of each folder title occur in the chat's title,
// description, and last message (case-insensitive). The highest nonzero score
// wins, ties keep the first folder encountered, and a zero score yields no
// suggestion. Advisory only: the reviewer never auto-applies it.
func SuggestFolderID(chat Chat, folders []Folder) (int64, bool) {
	text := strings.ToLower(chat.Title + " " + chat.Description + " " + chat.LastMessage)

	var bestID int64
	bestScore := 0
	for _, folder := range folders {
		score := 0
		for _, token := range strings.Fields(strings.ToLower(folder.Title)) {
			if strings.Contains(text, token) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestID = folder.ID
		}
	}

	return bestID, bestScore > 0
}
