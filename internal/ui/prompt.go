// Package ui covers the interactive surface of yubikey-setup: confirmation
// prompts, the key-path input, and the styled terminal output.
package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Prompter asks the user the questions the pipeline cannot answer itself.
// Steps depend on this interface so tests can script the answers.
type Prompter interface {
	// ConfirmPIN asks whether the user has their YubiKey PIN.
	ConfirmPIN(ctx context.Context) (bool, error)

	// AskKeyPath asks for the path to the GPG public key file.
	AskKeyPath(ctx context.Context) (string, error)

	// WaitForToken pauses until the user confirms the YubiKey is
	// inserted.
	WaitForToken(ctx context.Context) error
}

// Terminal is the production Prompter, backed by huh forms.
type Terminal struct{}

// NewTerminal returns a Prompter for an interactive terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ConfirmPIN implements Prompter.
func (t *Terminal) ConfirmPIN(ctx context.Context) (bool, error) {
	if !IsInteractive() {
		return false, fmt.Errorf("stdin is not a terminal; re-run with --skip-pin once you have your PIN")
	}

	var hasPIN bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Do you have your YubiKey PIN?").
			Description("You need the PIN to use the token. Contact Klavs or Ashish if you do not have it.").
			Value(&hasPIN),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return hasPIN, nil
}

// AskKeyPath implements Prompter.
func (t *Terminal) AskKeyPath(ctx context.Context) (string, error) {
	if !IsInteractive() {
		return "", fmt.Errorf("stdin is not a terminal; pass the key file with --gpg-key")
	}

	var path string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Path to your GPG public key").
			Placeholder("~/abc.key").
			Value(&path).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("a key file path is required")
				}
				return nil
			}),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return path, nil
}

// WaitForToken implements Prompter.
func (t *Terminal) WaitForToken(ctx context.Context) error {
	if !IsInteractive() {
		return nil
	}

	var inserted bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Is your YubiKey inserted?").
			Description("Insert the token now if it is not.").
			Affirmative("Continue").
			Negative("Abort").
			Value(&inserted),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("aborted waiting for the YubiKey")
	}
	return nil
}
