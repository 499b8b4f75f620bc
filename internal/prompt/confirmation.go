package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	affirmativeShortAnswerConstant = "y"
	affirmativeLongAnswerConstant  = "yes"
)

// ConfirmationPrompter collects an affirmative confirmation before a destructive action proceeds.
type ConfirmationPrompter interface {
	Confirm(promptText string) (bool, error)
}

// IOConfirmationPrompter reads confirmations from an input stream after writing the prompt to an output stream.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	output io.Writer
}

// NewIOConfirmationPrompter constructs a prompter around the provided streams.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), output: output}
}

// Confirm writes the prompt and interprets y/yes (case-insensitive) as affirmative.
func (prompter *IOConfirmationPrompter) Confirm(promptText string) (bool, error) {
	if prompter.output != nil {
		if _, writeError := fmt.Fprint(prompter.output, promptText); writeError != nil {
			return false, writeError
		}
	}

	answerLine, readError := prompter.reader.ReadString('\n')
	if readError != nil && len(answerLine) == 0 {
		return false, readError
	}

	normalizedAnswer := strings.ToLower(strings.TrimSpace(answerLine))
	confirmed := normalizedAnswer == affirmativeShortAnswerConstant || normalizedAnswer == affirmativeLongAnswerConstant
	return confirmed, nil
}
