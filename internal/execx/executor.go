// Package execx abstracts external command execution.
//
// Every binary this tool touches (gpg, gpg-agent, ssh-add, git, the package
// managers) is reached through the Runner interface so the provisioning
// steps can be exercised against a fake without invoking real system tools.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external commands. All methods block until the command
// exits; there is deliberately no timeout, since several commands wait on
// interactive PIN entry or a hardware touch.
type Runner interface {
	// Run executes a command, discarding its output.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes a command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// Input executes a command with the given string piped to stdin and
	// returns its stdout.
	Input(ctx context.Context, stdin, name string, args ...string) (string, error)

	// LookPath reports where a binary resolves on PATH.
	LookPath(name string) (string, error)
}

// System is the production Runner backed by os/exec.
type System struct{}

// NewSystem returns a Runner that executes real commands.
func NewSystem() *System {
	return &System{}
}

// Run implements Runner.
func (s *System) Run(ctx context.Context, name string, args ...string) error {
	// #nosec G204 -- command names and arguments come from fixed step
	// definitions, not user input.
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return commandError(name, args, err, stderr.String())
	}
	return nil
}

// Output implements Runner.
func (s *System) Output(ctx context.Context, name string, args ...string) (string, error) {
	// #nosec G204 -- see Run.
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", commandError(name, args, err, stderr.String())
	}
	return stdout.String(), nil
}

// Input implements Runner.
func (s *System) Input(ctx context.Context, stdin, name string, args ...string) (string, error) {
	// #nosec G204 -- see Run.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", commandError(name, args, err, stderr.String())
	}
	return stdout.String(), nil
}

// LookPath implements Runner.
func (s *System) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// commandError wraps a command failure with the command line and, when the
// command produced any, the last stderr line for diagnosis.
func commandError(name string, args []string, err error, stderr string) error {
	cmdline := name
	if len(args) > 0 {
		cmdline += " " + strings.Join(args, " ")
	}
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("%s: %w", cmdline, err)
	}
	lines := strings.Split(stderr, "\n")
	return fmt.Errorf("%s: %w: %s", cmdline, err, strings.TrimSpace(lines[len(lines)-1]))
}
