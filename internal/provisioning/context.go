// Package provisioning provides the step model for YubiKey setup: a fixed,
// ordered sequence of named steps run against a shared context, fail-fast
// with a run-scoped tracking id, and downgraded to warnings in dry-run mode.
package provisioning

import (
	"context"
	"io"
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/platform"
	"github.com/enableit/yubikey-setup/internal/ui"
)

// DryRunOutput is the synthetic stdout returned for captured-output
// commands in dry-run mode, so downstream parsing has something to chew on.
const DryRunOutput = "dry-run"

// Options configure a single pipeline run. They are fixed before the first
// step executes.
type Options struct {
	// DryRun replaces every mutating command with a logged no-op and
	// downgrades fatal step failures to warnings.
	DryRun bool

	// SkipPinCheck suppresses the interactive PIN confirmation.
	SkipPinCheck bool

	// GPGKeyPath is the public key file given by flag or config; when
	// empty the public-key step prompts for it.
	GPGKeyPath string

	// EmailDomain is the domain of the fallback recipient identifier.
	EmailDomain string

	// KnownKeyID marks the import step as already done when found in
	// the local keyring listing.
	KnownKeyID string
}

// State holds the mutable results of the run, progressively populated as
// steps complete and read by later steps.
type State struct {
	// Platform is set by the platform step and immutable afterwards.
	Platform *platform.Platform

	// GPGKeyPath is the validated public key file.
	GPGKeyPath string

	// PGPKeyID is the long key id discovered from the keyring listing.
	PGPKeyID string

	// AgentKeyLine is the token's authorized-key line from the SSH
	// agent, kept for the final instructions.
	AgentKeyLine string
}

// Context wraps everything a step needs: options, shared state, the command
// runner, prompter, observer, and the host facts resolved at start. The
// context is owned by the single pipeline goroutine; no locking.
type Context struct {
	context.Context

	Options  Options
	State    *State
	Runner   execx.Runner
	Prompter ui.Prompter
	Observer Observer

	// TrackingID correlates every fatal error of this run in support
	// requests. Immutable after creation.
	TrackingID string

	// Host facts, resolved once. Overridable in tests.
	GOOS     string
	Home     string
	UID      string
	Username string

	// OS hooks, injectable for tests.
	Getenv   func(string) string
	Setenv   func(string, string) error
	Unsetenv func(string) error
	Sleep    func(time.Duration)

	// Stdout receives the user-facing final instructions.
	Stdout io.Writer
}

// NewContext creates a run context with host facts resolved from the
// current process and a fresh tracking id.
func NewContext(ctx context.Context, opts Options, runner execx.Runner, prompter ui.Prompter, observer Observer) *Context {
	c := &Context{
		Context:    ctx,
		Options:    opts,
		State:      &State{},
		Runner:     runner,
		Prompter:   prompter,
		Observer:   observer,
		TrackingID: uuid.New().String(),
		GOOS:       runtime.GOOS,
		Getenv:     os.Getenv,
		Setenv:     os.Setenv,
		Unsetenv:   os.Unsetenv,
		Sleep:      time.Sleep,
		Stdout:     os.Stdout,
	}
	if u, err := user.Current(); err == nil {
		c.Home = u.HomeDir
		c.UID = u.Uid
		c.Username = u.Username
	}
	return c
}

// Run executes a command, or logs it and succeeds in dry-run mode.
func (c *Context) Run(name string, args ...string) error {
	if c.Options.DryRun {
		c.Observer.Event(Event{Type: EventDryRun, Message: "would execute: " + execx.Call{Name: name, Args: args}.Cmdline()})
		return nil
	}
	return c.Runner.Run(c, name, args...)
}

// Output executes a command capturing stdout, or returns DryRunOutput in
// dry-run mode.
func (c *Context) Output(name string, args ...string) (string, error) {
	if c.Options.DryRun {
		c.Observer.Event(Event{Type: EventDryRun, Message: "would execute: " + execx.Call{Name: name, Args: args}.Cmdline()})
		return DryRunOutput, nil
	}
	return c.Runner.Output(c, name, args...)
}

// Input executes a command with stdin piped, or returns DryRunOutput in
// dry-run mode.
func (c *Context) Input(stdin, name string, args ...string) (string, error) {
	if c.Options.DryRun {
		c.Observer.Event(Event{Type: EventDryRun, Message: "would execute: " + execx.Call{Name: name, Args: args}.Cmdline()})
		return DryRunOutput, nil
	}
	return c.Runner.Input(c, stdin, name, args...)
}
