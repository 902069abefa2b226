package internal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reasons recorded for assignments made during the interactive review.
const (
	manualReviewReason = "assigned during manual review"
	bulkReviewReason   = "assigned during bulk review"
)

// ComputeUnassigned returns the chats present in the snapshot but absent
// from every folder assignment in the draft, in source order.
func ComputeUnassigned(chats []Chat, d Draft) []Chat {
	assigned := d.AssignedChatIDs()
	var unassigned []Chat
	for _, chat := range chats {
		if _, ok := assigned[chat.ChatID]; !ok {
			unassigned = append(unassigned, chat)
		}
	}
	return unassigned
}

// AddChatAssignment appends a chat to the folder's bucket, creating the
// bucket if the draft does not mention the folder yet. This is the single
// mutation primitive shared by AI and manual assignment paths.
func AddChatAssignment(d *Draft, folderID int64, folderTitle string, chat Chat, reason string) {
	chatType := chat.Type
	if chatType == "" {
		chatType = ChatTypeUnknown
	}
	assignment := ChatAssignment{
		ChatID: chat.ChatID,
		Type:   chatType,
		Reason: reason,
	}

	for i := range d.Categorized {
		if d.Categorized[i].FolderID == folderID {
			d.Categorized[i].Chats = append(d.Categorized[i].Chats, assignment)
			return
		}
	}

	d.Categorized = append(d.Categorized, FolderAssignment{
		FolderID:    folderID,
		FolderTitle: folderTitle,
		Chats:       []ChatAssignment{assignment},
	})
}

// ReviewActionKind enumerates what the user can do with the current chat.
type ReviewActionKind int

const (
	// ReviewIgnore leaves the current chat unassigned and advances.
	ReviewIgnore ReviewActionKind = iota
	// ReviewAssign places the current chat into FolderID and advances.
	ReviewAssign
	// ReviewBulkAssign places every remaining chat into FolderID and ends
	// the review.
	ReviewBulkAssign
	// ReviewRelist redisplays the folder options without advancing.
	ReviewRelist
	// ReviewQuit ends the review early, leaving the rest unassigned.
	ReviewQuit
)

// ReviewAction is one user decision fed to the review state machine.
type ReviewAction struct {
	Kind     ReviewActionKind
	FolderID int64
}

// ReviewState tracks progress through the unassigned sequence. The state
// transitions are pure so the machine can be exercised without a terminal;
// the prompt loop only translates input into actions and performs the
// draft mutations.
type ReviewState struct {
	Index        int
	LastFolderID int64 // 0 until the first manual assignment
	Done         bool
	Quit         bool
}

// ApplyReviewAction computes the next state for an action over a sequence of
// total chats.
func ApplyReviewAction(state ReviewState, action ReviewAction, total int) ReviewState {
	switch action.Kind {
	case ReviewIgnore:
		state.Index++
	case ReviewAssign:
		state.LastFolderID = action.FolderID
		state.Index++
	case ReviewBulkAssign:
		state.LastFolderID = action.FolderID
		state.Done = true
	case ReviewQuit:
		state.Quit = true
		state.Done = true
	case ReviewRelist:
		// no state change
	}
	if state.Index >= total {
		state.Done = true
	}
	return state
}

// ReviewUnassigned walks the unassigned chats one at a time, letting the
// user ignore, assign, relist, bulk-assign, or quit. Every assignment goes
// through AddChatAssignment, and this loop only ever sees genuinely
// unassigned chats, so the one-folder-per-chat invariant is preserved.
func ReviewUnassigned(p Prompter, d *Draft, unassigned []Chat, folders []Folder, out io.Writer) {
	if len(unassigned) == 0 {
		fmt.Fprintln(out, "Unassigned review: no unassigned chats.")
		return
	}

	folderLookup := BuildFolderLookup(folders)
	printReviewHint(out)
	PrintFolderPicker(out, folders)
	fmt.Fprintf(out, "Unassigned chats to review: %d\n", len(unassigned))

	state := ReviewState{}
	for !state.Done {
		chat := unassigned[state.Index]

		fmt.Fprintln(out, "\n"+strings.Repeat("-", 88))
		fmt.Fprintf(out, "[%d/%d] chat_id=%d | %s | %s\n", state.Index+1, len(unassigned), chat.ChatID, chat.Title, chat.Type)
		if summary := chatSummary(chat); summary != "" {
			fmt.Fprintf(out, "Summary: %s\n", Truncate(summary, 160))
		}
		if suggested, ok := SuggestFolderID(chat, folders); ok {
			fmt.Fprintf(out, "Suggested folder: %d (%s)\n", suggested, folderLookup[suggested])
		}

		switch p.Choice("Choose an action [i/m/l/q]: ", []string{"i", "m", "l", "q"}, "i") {
		case "q":
			fmt.Fprintln(out, "Review ended; remaining chats stay unassigned.")
			state = ApplyReviewAction(state, ReviewAction{Kind: ReviewQuit}, len(unassigned))
		case "l":
			PrintFolderPicker(out, folders)
		case "i":
			state = ApplyReviewAction(state, ReviewAction{Kind: ReviewIgnore}, len(unassigned))
		case "m":
			state = promptManualAssignment(p, d, state, chat, unassigned, folders, folderLookup, out)
		}
	}
}

// promptManualAssignment drives the folder-id entry for a single chat. It
// returns the next state: unchanged on cancel, advanced on assignment, done
// on a confirmed bulk assignment.
func promptManualAssignment(
	p Prompter,
	d *Draft,
	state ReviewState,
	chat Chat,
	unassigned []Chat,
	folders []Folder,
	folderLookup map[int64]string,
	out io.Writer,
) ReviewState {
	for {
		hint := "Enter folder_id (l to list / c to cancel"
		if state.LastFolderID != 0 {
			hint += fmt.Sprintf(", Enter reuses %d", state.LastFolderID)
		}
		hint += "): "

		raw, ok := p.Text(hint, 0)
		if !ok {
			return state
		}
		text := strings.ToLower(strings.TrimSpace(raw))

		var targetID int64
		switch {
		case text == "":
			if state.LastFolderID == 0 {
				fmt.Fprintln(out, "No folder chosen yet; Enter has nothing to reuse.")
				continue
			}
			targetID = state.LastFolderID
		case text == "l":
			PrintFolderPicker(out, folders)
			continue
		case text == "c":
			return state
		case strings.HasPrefix(text, "all:"):
			bulkID, err := strconv.ParseInt(strings.TrimPrefix(text, "all:"), 10, 64)
			if err != nil {
				fmt.Fprintln(out, "all: must be followed by a numeric folder_id.")
				continue
			}
			title, known := folderLookup[bulkID]
			if !known {
				fmt.Fprintln(out, "folder_id does not exist.")
				continue
			}
			remaining := len(unassigned) - state.Index
			confirmed, answered := p.YesNo(
				fmt.Sprintf("Assign all %d remaining chats to %q?", remaining, title), false, 0)
			if !answered || !confirmed {
				continue
			}
			for _, rest := range unassigned[state.Index:] {
				AddChatAssignment(d, bulkID, title, rest, bulkReviewReason)
			}
			fmt.Fprintln(out, "Bulk assignment complete.")
			return ApplyReviewAction(state, ReviewAction{Kind: ReviewBulkAssign, FolderID: bulkID}, len(unassigned))
		default:
			parsed, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				fmt.Fprintln(out, "folder_id must be an integer.")
				continue
			}
			targetID = parsed
		}

		title, known := folderLookup[targetID]
		if !known {
			fmt.Fprintln(out, "folder_id does not exist; pick an id from the folder list.")
			continue
		}

		AddChatAssignment(d, targetID, title, chat, manualReviewReason)
		fmt.Fprintf(out, "Assigned: %s -> %s\n", chat.Title, title)
		return ApplyReviewAction(state, ReviewAction{Kind: ReviewAssign, FolderID: targetID}, len(unassigned))
	}
}

func chatSummary(chat Chat) string {
	if chat.Description != "" {
		return chat.Description
	}
	return chat.LastMessage
}

func printReviewHint(out io.Writer) {
	fmt.Fprintln(out, "\nUnassigned chat review:")
	fmt.Fprintln(out, "- i: ignore this chat")
	fmt.Fprintln(out, "- m: assign a folder_id manually")
	fmt.Fprintln(out, "- l: show the folder list again")
	fmt.Fprintln(out, "- q: end the review, leave the rest unassigned")
}

// PrintFolderPicker lists the selectable target folders.
func PrintFolderPicker(out io.Writer, folders []Folder) {
	fmt.Fprintln(out, "\nAvailable target folders:")
	for _, folder := range folders {
		fmt.Fprintf(out, "- %d: %s\n", folder.ID, folder.Title)
	}
}
