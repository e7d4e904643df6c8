package steps

import (
	"fmt"
	"strings"

	"github.com/enableit/yubikey-setup/internal/pkgmgr"
	"github.com/enableit/yubikey-setup/internal/provisioning"
)

type prerequisitesStep struct{}

// Prerequisites installs the GnuPG/smartcard packages via the platform
// package manager, skipping when the marker package is already present.
func Prerequisites() provisioning.Step {
	return &prerequisitesStep{}
}

func (s *prerequisitesStep) Name() string { return "prerequisites" }

func (s *prerequisitesStep) Run(ctx *provisioning.Context) error {
	if ctx.State.Platform == nil {
		return fmt.Errorf("platform not resolved")
	}

	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: "would ensure prerequisite packages are installed",
		})
		return nil
	}

	mgr, err := pkgmgr.For(ctx.State.Platform.OS, ctx.Runner)
	if err != nil {
		return err
	}

	installed, err := mgr.MarkerInstalled(ctx)
	if err != nil {
		return err
	}
	if installed {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventStepSkipped,
			Step:    s.Name(),
			Message: "prerequisites already installed",
		})
		return nil
	}

	ctx.Observer.Infof("installing prerequisites with %s: %s", mgr.Name(), strings.Join(mgr.Packages(), " "))
	return mgr.Install(ctx)
}
