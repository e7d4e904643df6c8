// Package handlers contains the command execution logic. Commands in the
// commands package parse flags and delegate here.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/enableit/yubikey-setup/internal/config"
	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/provisioning"
	"github.com/enableit/yubikey-setup/internal/provisioning/steps"
	"github.com/enableit/yubikey-setup/internal/ui"
)

// SetupOptions carries the flag values of the setup command.
type SetupOptions struct {
	ConfigPath   string
	GPGKeyPath   string
	SkipPinCheck bool
	DryRun       bool
	Verbose      bool
}

// Setup handles the setup command: it merges flags over the optional config
// file and runs the full provisioning pipeline.
func Setup(ctx context.Context, opts SetupOptions) error {
	observer := provisioning.NewConsoleObserver(opts.Verbose)
	return runSetup(ctx, opts, execx.NewSystem(), ui.NewTerminal(), observer, os.Stdout, os.Stderr)
}

// runSetup is Setup with every external surface injectable.
func runSetup(ctx context.Context, opts SetupOptions, runner execx.Runner, prompter ui.Prompter, observer provisioning.Observer, stdout, stderr io.Writer) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}

	cfg, err := config.Load(opts.ConfigPath, home)
	if err != nil {
		return err
	}

	// Flags win over the config file.
	keyPath := opts.GPGKeyPath
	if keyPath == "" {
		keyPath = cfg.GPGKeyPath
	}

	runCtx := provisioning.NewContext(ctx, provisioning.Options{
		DryRun:       opts.DryRun,
		SkipPinCheck: opts.SkipPinCheck || cfg.SkipPinCheck,
		GPGKeyPath:   keyPath,
		EmailDomain:  cfg.EmailDomain,
		KnownKeyID:   cfg.KnownKeyID,
	}, runner, prompter, observer)
	runCtx.Stdout = stdout

	fmt.Fprintln(stdout, ui.Banner())
	if opts.DryRun {
		observer.Infof("dry-run mode: no changes will be made")
	}

	runErr := provisioning.NewPipeline(steps.Setup()...).Run(runCtx)

	var fatal *provisioning.FatalError
	if errors.As(runErr, &fatal) {
		fmt.Fprintf(stderr, "\nSetup failed. Quote tracking id %s when asking for help.\n", fatal.TrackingID)
	}
	return runErr
}
