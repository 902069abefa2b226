package internal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Prompter is the blocking human-input surface of the wizard. Every method
// that can be time-bounded reports expiry through its ok result — a missing
// answer is a distinguished outcome, never an error. A zero timeout waits
// forever.
type Prompter interface {
	// Text prints the prompt and returns one line of input.
	Text(prompt string, timeout time.Duration) (answer string, ok bool)
	// YesNo asks until it gets an affirmative or negative answer; empty
	// input selects the default.
	YesNo(question string, def bool, timeout time.Duration) (answer bool, ok bool)
	// Choice asks until the answer is one of allowed; empty input selects
	// the default.
	Choice(question string, allowed []string, def string) string
	// WaitForEnter blocks until the user presses enter.
	WaitForEnter(message string)
}

// Affirmative and negative synonyms accepted by YesNo, including Chinese
// equivalents.
var (
	yesWords = map[string]struct{}{"y": {}, "yes": {}, "1": {}, "是": {}, "确认": {}}
	noWords  = map[string]struct{}{"n": {}, "no": {}, "0": {}, "否": {}, "取消": {}}
)

// ConsolePrompter reads line-oriented input from a terminal. A single reader
// goroutine feeds a channel so timed prompts can expire without losing the
// eventually-typed line to a later prompt.
type ConsolePrompter struct {
	out   io.Writer
	lines chan string
}

// NewConsolePrompter starts the reader goroutine over in and returns the
// prompter. The channel closes on EOF.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	p := &ConsolePrompter{
		out:   out,
		lines: make(chan string),
	}
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
		close(p.lines)
	}()
	return p
}

// Text implements Prompter. EOF on input is reported as no answer.
func (p *ConsolePrompter) Text(prompt string, timeout time.Duration) (string, bool) {
	fmt.Fprint(p.out, prompt)

	if timeout <= 0 {
		line, ok := <-p.lines
		return line, ok
	}

	select {
	case line, ok := <-p.lines:
		return line, ok
	case <-time.After(timeout):
		fmt.Fprintln(p.out)
		return "", false
	}
}

// YesNo implements Prompter.
func (p *ConsolePrompter) YesNo(question string, def bool, timeout time.Duration) (bool, bool) {
	suffix := " [y/N]: "
	if def {
		suffix = " [Y/n]: "
	}

	for {
		answer, ok := p.Text(question+suffix, timeout)
		if !ok {
			return false, false
		}
		normalized := strings.ToLower(strings.TrimSpace(answer))
		if normalized == "" {
			return def, true
		}
		if _, yes := yesWords[normalized]; yes {
			return true, true
		}
		if _, no := noWords[normalized]; no {
			return false, true
		}
		fmt.Fprintln(p.out, "Invalid input, please answer y or n.")
	}
}

// Choice implements Prompter. On EOF the default is returned.
func (p *ConsolePrompter) Choice(question string, allowed []string, def string) string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, item := range allowed {
		allowedSet[strings.ToLower(item)] = struct{}{}
	}

	for {
		answer, ok := p.Text(question, 0)
		if !ok {
			return strings.ToLower(def)
		}
		value := strings.ToLower(strings.TrimSpace(answer))
		if value == "" && def != "" {
			value = strings.ToLower(def)
		}
		if _, allowed := allowedSet[value]; allowed {
			return value
		}
		fmt.Fprintf(p.out, "Invalid input, expected one of: %s\n", strings.Join(allowed, ", "))
	}
}

// WaitForEnter implements Prompter.
func (p *ConsolePrompter) WaitForEnter(message string) {
	p.Text(message+"\nPress Enter to continue...", 0)
}
