/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter defines the interface for user prompting
type Prompter interface {
	// Confirm asks a yes/no question; empty input means no.
	Confirm(message string) (bool, error)
	// ConfirmTyped asks the user to type an exact phrase; anything else
	// means no. Used for irreversible operations.
	ConfirmTyped(message, phrase string) (bool, error)
}

// StdinPrompter implements Prompter using standard input
type StdinPrompter struct {
	input io.Reader
}

// NewStdinPrompter creates a new prompter that reads from stdin
func NewStdinPrompter() *StdinPrompter {
	return &StdinPrompter{input: os.Stdin}
}

// Confirm prompts the user via stdin for a yes/no answer
func (p *StdinPrompter) Confirm(message string) (bool, error) {
	fmt.Printf("\n%s [y/N]: ", message)

	response, err := p.readLine()
	if err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// ConfirmTyped prompts the user to type phrase exactly to confirm
func (p *StdinPrompter) ConfirmTyped(message, phrase string) (bool, error) {
	fmt.Printf("\n%s\nType %q to confirm: ", message, phrase)

	response, err := p.readLine()
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(response) == phrase, nil
}

func (p *StdinPrompter) readLine() (string, error) {
	scanner := bufio.NewScanner(p.input)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read user input: %w", err)
		}
		// EOF or empty input - treat as "no"
		return "", nil
	}
	return scanner.Text(), nil
}

// defaultPrompter is the package-level default prompter
var defaultPrompter Prompter = NewStdinPrompter()

// SetPrompter allows injection of a custom prompter (for testing)
func SetPrompter(p Prompter) {
	defaultPrompter = p
}

// GetDefaultPrompter returns the current default prompter (for testing)
func GetDefaultPrompter() Prompter {
	return defaultPrompter
}

// Confirm asks a yes/no question using the default prompter
func Confirm(message string) (bool, error) {
	return defaultPrompter.Confirm(message)
}

// ConfirmTyped asks for an exact typed phrase using the default prompter
func ConfirmTyped(message, phrase string) (bool, error) {
	return defaultPrompter.ConfirmTyped(message, phrase)
}
