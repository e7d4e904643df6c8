package steps

import (
	"fmt"
	"os"

	"github.com/enableit/yubikey-setup/internal/config"
	"github.com/enableit/yubikey-setup/internal/platform"
	"github.com/enableit/yubikey-setup/internal/provisioning"
)

// dryRunKeyPath stands in for the public key file when a dry run has no
// real path to validate.
const dryRunKeyPath = "~/public.key"

type platformStep struct{}

// Platform resolves OS compatibility and the OS-dependent paths. It must
// run first; every later step reads the resolved platform.
func Platform() provisioning.Step {
	return &platformStep{}
}

func (s *platformStep) Name() string { return "platform" }

func (s *platformStep) Run(ctx *provisioning.Context) error {
	p, err := platform.Resolve(ctx.GOOS, ctx.Home, ctx.UID)
	if err != nil {
		return err
	}
	ctx.State.Platform = p
	ctx.Observer.Infof("%s detected, shell profile %s", p.OS, p.ShellProfile)
	return nil
}

type pinCheckStep struct{}

// PINCheck confirms the user has their token PIN before anything mutates.
func PINCheck() provisioning.Step {
	return &pinCheckStep{}
}

func (s *pinCheckStep) Name() string { return "pin-check" }

func (s *pinCheckStep) Run(ctx *provisioning.Context) error {
	if ctx.Options.SkipPinCheck {
		ctx.Observer.Warnf("skipping PIN check (not recommended)")
		return nil
	}
	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{Type: provisioning.EventDryRun, Step: s.Name(), Message: "would ask for PIN confirmation"})
		return nil
	}

	hasPIN, err := ctx.Prompter.ConfirmPIN(ctx)
	if err != nil {
		return err
	}
	if !hasPIN {
		return fmt.Errorf("YubiKey PIN required; contact Klavs or Ashish to get it (see https://gitea.obmondo.com/EnableIT/pass)")
	}
	return nil
}

type publicKeyStep struct{}

// PublicKey resolves and validates the GPG public key file path, prompting
// when no flag or config default was given.
func PublicKey() provisioning.Step {
	return &publicKeyStep{}
}

func (s *publicKeyStep) Name() string { return "public-key" }

func (s *publicKeyStep) Run(ctx *provisioning.Context) error {
	path := ctx.Options.GPGKeyPath
	if path == "" {
		if ctx.Options.DryRun {
			ctx.State.GPGKeyPath = dryRunKeyPath
			ctx.Observer.Event(provisioning.Event{Type: provisioning.EventDryRun, Step: s.Name(), Message: "would prompt for the public key path"})
			return nil
		}
		var err error
		path, err = ctx.Prompter.AskKeyPath(ctx)
		if err != nil {
			return err
		}
	}
	path = config.ExpandHome(path, ctx.Home)

	if !ctx.Options.DryRun {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("GPG public key file not found at %q; get it from https://gitea.obmondo.com/EnableIT/pass and try again", path)
		}
	}

	ctx.State.GPGKeyPath = path
	ctx.Observer.Infof("GPG public key found at %s", path)
	return nil
}
