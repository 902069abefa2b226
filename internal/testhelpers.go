package internal

import "time"

// ScriptedPrompter answers prompts from pre-loaded scripts. Each method pops
// the next entry of its own queue; an exhausted queue reports no answer
// (Text, YesNo) or the default (Choice). OnWaitForEnter, when set, runs on
// every WaitForEnter so a test can mutate files between prompts.
type ScriptedPrompter struct {
	TextAnswers   []string
	YesNoAnswers  []bool
	ChoiceAnswers []string
	OnWaitForEnter func(message string)

	Prompts []string // every prompt/question seen, in order
}

func (s *ScriptedPrompter) Text(prompt string, _ time.Duration) (string, bool) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.TextAnswers) == 0 {
		return "", false
	}
	answer := s.TextAnswers[0]
	s.TextAnswers = s.TextAnswers[1:]
	return answer, true
}

func (s *ScriptedPrompter) YesNo(question string, _ bool, _ time.Duration) (bool, bool) {
	s.Prompts = append(s.Prompts, question)
	if len(s.YesNoAnswers) == 0 {
		return false, false
	}
	answer := s.YesNoAnswers[0]
	s.YesNoAnswers = s.YesNoAnswers[1:]
	return answer, true
}

func (s *ScriptedPrompter) Choice(question string, _ []string, def string) string {
	s.Prompts = append(s.Prompts, question)
	if len(s.ChoiceAnswers) == 0 {
		return def
	}
	answer := s.ChoiceAnswers[0]
	s.ChoiceAnswers = s.ChoiceAnswers[1:]
	return answer
}

func (s *ScriptedPrompter) WaitForEnter(message string) {
	s.Prompts = append(s.Prompts, message)
	if s.OnWaitForEnter != nil {
		s.OnWaitForEnter(message)
	}
}
