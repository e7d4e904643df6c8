package steps

import (
	"fmt"

	"github.com/enableit/yubikey-setup/internal/provisioning"
)

type gitSigningStep struct{}

// GitSigning configures git to sign every commit with the discovered key.
func GitSigning() provisioning.Step {
	return &gitSigningStep{}
}

func (s *gitSigningStep) Name() string { return "git-signing" }

func (s *gitSigningStep) Run(ctx *provisioning.Context) error {
	if _, err := ctx.Runner.LookPath("git"); err != nil {
		return fmt.Errorf("git not found on PATH; install git and re-run")
	}

	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: fmt.Sprintf("would set git signing key to %s and enable commit signing", ctx.State.PGPKeyID),
		})
		return nil
	}
	if ctx.State.PGPKeyID == "" {
		return fmt.Errorf("no PGP key id discovered")
	}

	if err := ctx.Run("git", "config", "--global", "user.signingkey", ctx.State.PGPKeyID); err != nil {
		return fmt.Errorf("failed to set git signing key: %w", err)
	}
	if err := ctx.Run("git", "config", "--global", "commit.gpgsign", "true"); err != nil {
		return fmt.Errorf("failed to enable git commit signing: %w", err)
	}
	ctx.Observer.Infof("git commit signing enabled for key %s", ctx.State.PGPKeyID)
	return nil
}
