package ui

import "context"

// Scripted is a Prompter for tests with pre-decided answers.
type Scripted struct {
	HasPIN     bool
	PINErr     error
	KeyPath    string
	KeyPathErr error
	TokenErr   error

	ConfirmPINCalls   int
	AskKeyPathCalls   int
	WaitForTokenCalls int
}

// ConfirmPIN implements Prompter.
func (s *Scripted) ConfirmPIN(context.Context) (bool, error) {
	s.ConfirmPINCalls++
	return s.HasPIN, s.PINErr
}

// AskKeyPath implements Prompter.
func (s *Scripted) AskKeyPath(context.Context) (string, error) {
	s.AskKeyPathCalls++
	return s.KeyPath, s.KeyPathErr
}

// WaitForToken implements Prompter.
func (s *Scripted) WaitForToken(context.Context) error {
	s.WaitForTokenCalls++
	return s.TokenErr
}
