package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/melosbot/telegram-chat-organizer/internal"
	"github.com/melosbot/telegram-chat-organizer/internal/ai"
)

var (
	// Styles
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	stepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

func printStep(n int, title string) {
	fmt.Println()
	fmt.Println(stepStyle.Render(fmt.Sprintf("Step %d: %s", n, title)))
}

// runWizard drives the whole interactive flow, from configuration to the
// optional folder update. Aborting at any gate is a normal exit, not an
// error.
func runWizard(ctx context.Context, workDir string) error {
	out := os.Stdout
	prompter := internal.NewConsolePrompter(os.Stdin, out)

	fmt.Println(bannerStyle.Render("Telegram Chat Organizer"))

	// Step 1: configuration and run layout.
	printStep(1, "Load configuration")
	cfg, err := internal.LoadConfig(workDir)
	if err != nil {
		var cfgErr *internal.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Println(warnStyle.Render("Configuration problem: " + cfgErr.Message))
			fmt.Println(detailStyle.Render("Fix your environment or .env file and run again."))
			return err
		}
		return err
	}
	if err := internal.EnsureRuntimeDirs(cfg); err != nil {
		return fmt.Errorf("cannot create runtime directories: %w", err)
	}
	files := internal.NewRuntimeFiles(cfg.DataDir, cfg.LogsDir)
	if err := internal.SetLogFile(files.Log); err != nil {
		internal.LogWarn("Cannot open log file %s: %v", files.Log, err)
	}
	defer internal.CloseLogFile()

	for _, line := range internal.MigrateLegacyFiles(workDir, files) {
		fmt.Println(detailStyle.Render("Migrated legacy file: " + line))
	}

	active := cfg.ActiveProvider()
	fmt.Printf("Provider: %s | Model: %s | API key: %s\n",
		cfg.Provider, active.Model, internal.MaskSecret(active.APIKey))
	fmt.Println(detailStyle.Render("Data dir: " + cfg.DataDir))
	fmt.Println(detailStyle.Render("Logs dir: " + cfg.LogsDir))

	cache := internal.NewSnapshotCache(cfg.DataDir)
	var dir internal.Directory = internal.NewSnapshotDirectory(cache)

	// Step 2: folders.
	printStep(2, "Read folders")
	folders, err := dir.ListFolders(ctx)
	if err != nil {
		return fmt.Errorf("cannot read folders: %w", err)
	}
	if len(folders) == 0 {
		return fmt.Errorf("no folders found; create target folders first")
	}
	fmt.Printf("Found %d folders:\n", len(folders))
	for _, folder := range folders {
		fmt.Printf("- %d: %s (%d chats)\n", folder.ID, folder.Title, len(folder.ExistingPeers))
	}

	// Step 3: optional clear.
	printStep(3, "Clear folders (optional)")
	foldersCleared := false
	if clear, ok := prompter.YesNo("Empty the folders before categorizing (one chat is kept per folder)?", false, 0); ok && clear {
		internal.ClearFolders(ctx, dir, folders)
		foldersCleared = true
	} else {
		fmt.Println("Folders left as they are; new assignments will be additive.")
	}

	// Step 4: chats, from cache when the user wants it.
	printStep(4, "Collect chats")
	chats, err := collectChats(ctx, prompter, cache, dir)
	if err != nil {
		return err
	}
	fmt.Printf("Working with %d chats.\n", len(chats))

	chatLookup := internal.BuildChatLookup(chats)
	validFolderIDs := internal.FolderIDSet(folders)
	validChatIDs := internal.ChatIDSet(chats)

	controller := &internal.Controller{
		Prompter:       prompter,
		Files:          files,
		ConfirmTimeout: cfg.ConfirmTimeout,
		Out:            out,
	}

	// Step 5: produce the draft.
	printStep(5, "Classify chats")
	fmt.Println("Classification rules:")
	fmt.Println(detailStyle.Render("- every chat goes to at most one folder"))
	fmt.Println(detailStyle.Render("- uncertain chats stay unassigned for manual review"))
	fmt.Println(detailStyle.Render("- each assignment carries a short reason you can audit"))
	draft, err := produceDraft(ctx, prompter, cfg, files, chats, folders)
	if err != nil {
		return err
	}

	// Step 6: persist the draft and its review CSV.
	printStep(6, "Save draft and review CSV")
	if err := internal.SaveJSONFile(files.Draft, draft); err != nil {
		return err
	}
	if err := internal.ExportReviewCSV(files.ReviewCSV, draft, chats); err != nil {
		internal.LogWarn("Cannot export review CSV: %v", err)
	}

	// Step 7: hand over for manual review.
	printStep(7, "Review the draft")
	printDraftSummary(draft, chatLookup)
	fmt.Println("\nYou can now edit either file:")
	fmt.Println(detailStyle.Render("- JSON draft: " + files.Draft))
	fmt.Println(detailStyle.Render("- Review CSV: " + files.ReviewCSV))
	prompter.WaitForEnter("Edit the draft if you want, then come back here.")

	source := prompter.Choice(
		"Continue from which file? json = draft JSON, csv = review CSV [json/csv]: ",
		[]string{"json", "csv"}, "json")
	if source == "csv" {
		rebuilt, err := internal.RebuildFromReviewCSV(files.ReviewCSV, folders, chats)
		if err != nil {
			fmt.Println(warnStyle.Render("Review CSV rejected: " + err.Error()))
			fmt.Println("Falling back to the JSON draft.")
		} else {
			draft = rebuilt
			if err := internal.SaveJSONFile(files.Draft, draft); err != nil {
				return err
			}
			fmt.Printf("Draft rebuilt from CSV: %d assignments.\n", draft.TotalAssigned())
		}
	}

	// Step 8: validate, with a fix-and-retry loop.
	printStep(8, "Validate the draft")
	draft, err = controller.ValidateDraftLoop(validFolderIDs, validChatIDs)
	if err != nil {
		return finishAborted(err)
	}

	// Step 9: walk through the chats the draft left out.
	printStep(9, "Review unassigned chats")
	unassigned := internal.ComputeUnassigned(chats, draft)
	internal.ReviewUnassigned(prompter, &draft, unassigned, folders, out)
	if err := internal.SaveJSONFile(files.Draft, draft); err != nil {
		return err
	}

	// Manual assignments go through the same gate as AI output.
	draft, err = controller.ValidateDraftLoop(validFolderIDs, validChatIDs)
	if err != nil {
		return finishAborted(err)
	}

	// Step 10: promote.
	printStep(10, "Promote the draft")
	printDraftSummary(draft, chatLookup)
	promoted, err := controller.ConfirmAndPromote(draft)
	if err != nil {
		return err
	}
	if !promoted {
		fmt.Println("Draft kept at " + files.Draft + "; nothing promoted.")
		return nil
	}
	fmt.Println(successStyle.Render("Final result saved: " + files.Final))

	// Step 11: apply.
	printStep(11, "Apply to folders")
	if !controller.ConfirmApply() {
		fmt.Println("Folders left untouched. Run again to apply " + files.Final + ".")
		return nil
	}
	updated := internal.ApplyCategorization(ctx, dir, draft, chatLookup, folders, foldersCleared)
	fmt.Println(successStyle.Render(fmt.Sprintf("Done: %d folders updated.", updated)))
	return nil
}

// collectChats reuses the snapshot cache when the user accepts it, otherwise
// re-enumerates from the directory and refreshes the cache.
func collectChats(ctx context.Context, prompter internal.Prompter, cache *internal.SnapshotCache, dir internal.Directory) ([]internal.Chat, error) {
	cached, err := cache.LoadChats()
	if err != nil {
		internal.LogWarn("Chat cache unreadable: %v", err)
	}
	if len(cached) > 0 {
		if meta, err := cache.LoadMetadata(); err == nil && !meta.ChatsRefreshed.IsZero() {
			fmt.Printf("Cached chat snapshot: %d chats, refreshed %s\n",
				len(cached), meta.ChatsRefreshed.Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("Cached chat snapshot: %d chats\n", len(cached))
		}
		if reuse, ok := prompter.YesNo("Reuse the cached chat list?", true, 0); ok && reuse {
			return cached, nil
		}
	}

	fmt.Println("Enumerating chats (this can take a while)...")
	chats, err := dir.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate chats: %w", err)
	}
	if err := cache.SaveChats(chats); err != nil {
		internal.LogWarn("Cannot cache chat snapshot: %v", err)
	}
	return chats, nil
}

// produceDraft gets the initial draft: a previously promoted result reused
// as a seed, an AI classification run, or a blank draft for fully manual
// editing when the AI path fails.
func produceDraft(
	ctx context.Context,
	prompter internal.Prompter,
	cfg *internal.Config,
	files internal.RuntimeFiles,
	chats []internal.Chat,
	folders []internal.Folder,
) (internal.Draft, error) {
	if raw, err := internal.LoadRawJSON(files.Final); err == nil {
		if previous, err := internal.NormalizeDraft(raw); err == nil && previous.TotalAssigned() > 0 {
			fmt.Printf("Previous result found at %s (%d assignments).\n", files.Final, previous.TotalAssigned())
			if reuse, ok := prompter.YesNo("Reuse it as the starting draft instead of calling the AI?", false, 0); ok && reuse {
				return previous, nil
			}
		}
	}

	active := cfg.ActiveProvider()
	classifier, err := ai.New(ai.Options{
		Provider:     cfg.Provider,
		APIKey:       active.APIKey,
		BaseURL:      active.BaseURL,
		Model:        active.Model,
		Timeout:      active.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	})
	if err != nil {
		return internal.Draft{}, err
	}

	fmt.Printf("Asking %s (%s) to classify %d chats in batches of %d...\n",
		cfg.Provider, active.Model, len(chats), cfg.BatchSize)

	draft, err := ai.ClassifyInBatches(ctx, classifier, chats, folders, cfg.BatchSize,
		func(batch, totalBatches, assigned int) {
			fmt.Printf("Batch %d/%d done: %d assignments.\n", batch, totalBatches, assigned)
		})
	if err == nil {
		fmt.Println(successStyle.Render(fmt.Sprintf("Classification complete: %d assignments.", draft.TotalAssigned())))
		return draft, nil
	}

	internal.LogError("Automatic classification failed: %v", err)
	fmt.Println(warnStyle.Render("Automatic classification failed: " + err.Error()))
	fmt.Println("\nYou can run the classification manually. Paste this prompt into any AI:")
	fmt.Println(strings.Repeat("-", 88))
	fmt.Println(internal.BuildManualPrompt(chats, folders))
	fmt.Println(strings.Repeat("-", 88))
	fmt.Printf("Save the AI's JSON answer to %s, then continue.\n", files.Draft)
	return internal.NewDraft(), nil
}

func printDraftSummary(d internal.Draft, chatLookup map[int64]internal.Chat) {
	lines, total := internal.BuildSummaryLines(d, chatLookup, 3)
	if total == 0 {
		fmt.Println("The draft is empty.")
		return
	}
	fmt.Printf("Draft summary (%d assignments):\n", total)
	for _, line := range lines {
		fmt.Println(line)
	}
}

// finishAborted turns a user abort into a clean exit.
func finishAborted(err error) error {
	if errors.Is(err, internal.ErrAborted) {
		fmt.Println("Run aborted. The draft file is kept for the next run.")
		return nil
	}
	return err
}
