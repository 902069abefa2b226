package internal

import (
	"encoding/json"
	"fmt"
)

// Payload truncation limits keep a batch inside request-size limits without
// losing the signal the classifier needs.
const (
	promptTitleLimit       = 120
	promptUsernameLimit    = 80
	promptDescriptionLimit = 300
	promptLastMessageLimit = 300
)

type promptFolder struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type promptChat struct {
	ChatID           int64  `json:"chat_id"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	Username         string `json:"username"`
	Description      string `json:"description"`
	LastMessage      string `json:"last_message"`
	ParticipantCount int    `json:"participant_count"`
	IsVerified       bool   `json:"is_verified"`
	IsScam           bool   `json:"is_scam"`
}

// BuildPrompts renders the fixed system and task prompts for one
// classification batch.
func BuildPrompts(chats []Chat, folders []Folder) (systemPrompt, userPrompt string) {
	folderPayload := make([]promptFolder, 0, len(folders))
	for _, folder := range folders {
		folderPayload = append(folderPayload, promptFolder{ID: folder.ID, Title: folder.Title})
	}

	chatPayload := make([]promptChat, 0, len(chats))
	for _, chat := range chats {
		chatType := chat.Type
		if chatType == "" {
			chatType = ChatTypeUnknown
		}
		chatPayload = append(chatPayload, promptChat{
			ChatID:           chat.ChatID,
			Title:            Truncate(chat.Title, promptTitleLimit),
			Type:             chatType,
			Username:         Truncate(chat.Username, promptUsernameLimit),
			Description:      Truncate(chat.Description, promptDescriptionLimit),
			LastMessage:      Truncate(chat.LastMessage, promptLastMessageLimit),
			ParticipantCount: chat.ParticipantCount,
			IsVerified:       chat.IsVerified,
			IsScam:           chat.IsScam,
		})
	}

	folderJSON, _ := json.Marshal(folderPayload)
	chatJSON, _ := json.Marshal(chatPayload)

	systemPrompt = "You are an expert at organizing Telegram chats. " +
		"Output strict JSON only: no markdown code fences, no explanatory text."

	userPrompt = "Categorize the chats into the folders by semantic relevance.\n" +
		"Rules:\n" +
		"1) A chat may be assigned to at most one folder.\n" +
		"2) Only output folders that gain new chats.\n" +
		"3) When unsure, leave the chat uncategorized.\n" +
		"4) Respond with exactly this JSON structure:\n" +
		`{"categorized":[{"folder_id":123,"folder_title":"Title","chats":[{"chat_id":1,"type":"GROUP","reason":"why"}]}]}` + "\n\n" +
		fmt.Sprintf("folders=%s\nchats=%s", folderJSON, chatJSON)

	return systemPrompt, userPrompt
}

// BuildManualPrompt returns the task prompt alone, printed for the user to
// paste into any AI when automatic classification fails.
func BuildManualPrompt(chats []Chat, folders []Folder) string {
	_, userPrompt := BuildPrompts(chats, folders)
	return userPrompt
}
