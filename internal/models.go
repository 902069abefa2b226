package internal

// Chat type values as reported by the chat/folder data source.
const (
	ChatTypePrivate    = "PRIVATE"
	ChatTypeBot        = "BOT"
	ChatTypeGroup      = "GROUP"
	ChatTypeSupergroup = "SUPERGROUP"
	ChatTypeChannel    = "CHANNEL"
	ChatTypeUnknown    = "UNKNOWN"
)

// MaxReasonLen caps the per-assignment reason text stored in a draft.
const MaxReasonLen = 200

// Folder is an externally managed named bucket that chats can be placed into.
// ExistingPeers holds the chat ids already included in the folder; membership
// only changes when a validated draft is applied at the end of a run.
type Folder struct {
	ID            int64   `json:"id" yaml:"id"`
	Title         string  `json:"title" yaml:"title"`
	ExistingPeers []int64 `json:"existing_peers,omitempty" yaml:"existing_peers,omitempty"`
}

// Chat is an immutable snapshot of a conversation eligible for categorization,
// collected once per session (or loaded from the snapshot cache).
type Chat struct {
	ChatID           int64    `json:"chat_id"`
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	Username         string   `json:"username"`
	Description      string   `json:"description"`
	LastMessage      string   `json:"last_message"`
	LastMessageDate  string   `json:"last_message_date,omitempty"`
	RecentMessages   []string `json:"recent_messages,omitempty"`
	ParticipantCount int      `json:"participant_count"`
	IsVerified       bool     `json:"is_verified"`
	IsScam           bool     `json:"is_scam"`
}

// ChatAssignment places one chat into a folder, with a short reason.
type ChatAssignment struct {
	ChatID int64  `json:"chat_id"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// FolderAssignment groups the chat assignments targeting one folder.
type FolderAssignment struct {
	FolderID    int64            `json:"folder_id"`
	FolderTitle string           `json:"folder_title"`
	Chats       []ChatAssignment `json:"chats"`
}

// Draft is the working, possibly-invalid categorization of chats into
// folders. It is persisted between wizard steps and promoted to the final
// artifact only after validation and explicit confirmation.
type Draft struct {
	Categorized []FolderAssignment `json:"categorized"`
}

// NewDraft returns the empty manual template.
func NewDraft() Draft {
	return Draft{Categorized: []FolderAssignment{}}
}

// AssignedChatIDs returns the set of chat ids referenced anywhere in the draft.
func (d Draft) AssignedChatIDs() map[int64]struct{} {
	assigned := make(map[int64]struct{})
	for _, folder := range d.Categorized {
		for _, chat := range folder.Chats {
			assigned[chat.ChatID] = struct{}{}
		}
	}
	return assigned
}

// TotalAssigned returns the number of chat assignments in the draft.
func (d Draft) TotalAssigned() int {
	total := 0
	for _, folder := range d.Categorized {
		total += len(folder.Chats)
	}
	return total
}

// BuildChatLookup indexes chats by id.
func BuildChatLookup(chats []Chat) map[int64]Chat {
	lookup := make(map[int64]Chat, len(chats))
	for _, chat := range chats {
		lookup[chat.ChatID] = chat
	}
	return lookup
}

// BuildFolderLookup indexes folder titles by id.
func BuildFolderLookup(folders []Folder) map[int64]string {
	lookup := make(map[int64]string, len(folders))
	for _, folder := range folders {
		lookup[folder.ID] = folder.Title
	}
	return lookup
}

// FolderIDSet returns the set of known folder ids.
func FolderIDSet(folders []Folder) map[int64]struct{} {
	set := make(map[int64]struct{}, len(folders))
	for _, folder := range folders {
		set[folder.ID] = struct{}{}
	}
	return set
}

// ChatIDSet returns the set of known chat ids.
func ChatIDSet(chats []Chat) map[int64]struct{} {
	set := make(map[int64]struct{}, len(chats))
	for _, chat := range chats {
		set[chat.ChatID] = struct{}{}
	}
	return set
}

// Truncate shortens text to maxLen runes, marking the cut with an ellipsis.
func Truncate(text string, maxLen int) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
