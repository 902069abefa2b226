package internal

import (
	"fmt"
	"io"
	"time"
)

// Controller drives the validate/promote/apply gates of a draft. It owns no
// draft state itself; the draft file on disk is the source of truth, so a
// user can edit it in another window between retries.
type Controller struct {
	Prompter       Prompter
	Files          RuntimeFiles
	ConfirmTimeout time.Duration
	Out            io.Writer
}

// ValidateDraftLoop reads the draft file, validates shape first and
// references second, and keeps offering a fix-and-retry cycle until the
// draft passes or the user gives up. Returns ErrAborted when the user
// declines to keep editing.
func (c *Controller) ValidateDraftLoop(validFolderIDs, validChatIDs map[int64]struct{}) (Draft, error) {
	for {
		d, problems := c.validateOnce(validFolderIDs, validChatIDs)
		if len(problems) == 0 {
			fmt.Fprintln(c.Out, "Draft validation passed.")
			return d, nil
		}

		fmt.Fprintf(c.Out, "Draft validation failed with %d problem(s):\n", len(problems))
		for _, problem := range problems {
			fmt.Fprintf(c.Out, "- %s\n", problem)
		}

		retry, answered := c.Prompter.YesNo("Keep editing the draft and retry validation?", true, 0)
		if !answered || !retry {
			return Draft{}, ErrAborted
		}
		c.Prompter.WaitForEnter(fmt.Sprintf("Edit %s to fix the issues.", c.Files.Draft))
	}
}

// validateOnce runs one full validation pass over the draft file. Shape
// problems stop the pass immediately; reference problems are aggregated.
func (c *Controller) validateOnce(validFolderIDs, validChatIDs map[int64]struct{}) (Draft, []string) {
	raw, err := LoadRawJSON(c.Files.Draft)
	if err != nil {
		return Draft{}, []string{fmt.Sprintf("cannot read draft: %v", err)}
	}

	if ok, reason := ValidateShape(raw); !ok {
		return Draft{}, []string{reason}
	}

	d, err := NormalizeDraft(raw)
	if err != nil {
		return Draft{}, []string{err.Error()}
	}

	if problems := ValidateReferences(d, validFolderIDs, validChatIDs); len(problems) > 0 {
		return Draft{}, problems
	}
	return d, nil
}

// ConfirmAndPromote asks the final confirmation and, on approval, promotes
// the draft to the final artifact. A timed-out or declined confirmation is
// reported as not promoted, never as an error.
func (c *Controller) ConfirmAndPromote(d Draft) (bool, error) {
	confirmed, answered := c.Prompter.YesNo(
		fmt.Sprintf("Promote the validated draft to %s?", c.Files.Final),
		false, c.ConfirmTimeout)
	if !answered {
		fmt.Fprintln(c.Out, "No answer before the timeout; draft not promoted.")
		return false, nil
	}
	if !confirmed {
		return false, nil
	}

	if err := SaveFinalDraft(d, c.Files.Final); err != nil {
		return false, err
	}
	LogInfo("Promoted draft to %s", c.Files.Final)
	return true, nil
}

// ConfirmApply asks whether the promoted result should be written to the
// folder store. Timeout counts as a decline.
func (c *Controller) ConfirmApply() bool {
	confirmed, answered := c.Prompter.YesNo(
		"Apply the categorization to your folders now?", false, c.ConfirmTimeout)
	if !answered {
		fmt.Fprintln(c.Out, "No answer before the timeout; folders left untouched.")
		return false
	}
	return confirmed
}
