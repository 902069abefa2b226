package ai

import (
	"context"

	"github.com/melosbot/telegram-chat-organizer/internal"
)

// ProgressFunc reports batch progress: the batch just finished, the total
// batch count, and how many assignments that batch produced.
type ProgressFunc func(batch, totalBatches, assigned int)

// ClassifyInBatches splits the chats into fixed-size batches, classifies
// them sequentially, and merges the per-batch drafts into one. Sequential
// on purpose: provider rate limits punish parallel classification requests
// far more than the latency saves. A batch failure aborts the run; the
// caller falls back to the manual prompt path.
func ClassifyInBatches(
	ctx context.Context,
	classifier Classifier,
	chats []internal.Chat,
	folders []internal.Folder,
	batchSize int,
	progress ProgressFunc,
) (internal.Draft, error) {
	if batchSize <= 0 {
		batchSize = len(chats)
	}
	if len(chats) == 0 {
		return internal.NewDraft(), nil
	}

	totalBatches := (len(chats) + batchSize - 1) / batchSize
	results := make([]internal.Draft, 0, totalBatches)

	for i := 0; i < len(chats); i += batchSize {
		end := i + batchSize
		if end > len(chats) {
			end = len(chats)
		}
		batchNum := i/batchSize + 1
		internal.LogInfo("Classifying batch %d/%d (%d chats)", batchNum, totalBatches, end-i)

		d, err := classifier.Classify(ctx, chats[i:end], folders)
		if err != nil {
			return internal.Draft{}, err
		}
		results = append(results, d)
		if progress != nil {
			progress(batchNum, totalBatches, d.TotalAssigned())
		}
	}

	folderTitles := make(map[int64]string, len(folders))
	for _, folder := range folders {
		folderTitles[folder.ID] = folder.Title
	}
	return internal.MergeBatchResults(results, folderTitles), nil
}
