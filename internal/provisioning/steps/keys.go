package steps

import (
	"fmt"
	"time"

	"github.com/enableit/yubikey-setup/internal/gpg"
	"github.com/enableit/yubikey-setup/internal/platform"
	"github.com/enableit/yubikey-setup/internal/provisioning"
	"github.com/enableit/yubikey-setup/internal/sshkey"
)

type importKeyStep struct{}

// ImportKey imports the public key into the local keyring, skipping when
// the known key id is already listed.
func ImportKey() provisioning.Step {
	return &importKeyStep{}
}

func (s *importKeyStep) Name() string { return "key-import" }

func (s *importKeyStep) Run(ctx *provisioning.Context) error {
	if listing, err := ctx.Output("gpg", "--list-keys"); err == nil {
		if gpg.ListingContainsKey(listing, ctx.Options.KnownKeyID) {
			ctx.Observer.Event(provisioning.Event{
				Type:    provisioning.EventStepSkipped,
				Step:    s.Name(),
				Message: fmt.Sprintf("key %s already present, skipping import", ctx.Options.KnownKeyID),
			})
			return nil
		}
	}

	if err := ctx.Run("gpg", "--import", ctx.State.GPGKeyPath); err != nil {
		return fmt.Errorf("failed to import GPG key from %s: %w", ctx.State.GPGKeyPath, err)
	}
	return nil
}

type agentRestartStep struct {
	settle time.Duration
}

// AgentRestart terminates any running gpg-agent, waits for the OS to
// reclaim its sockets, verifies termination, and starts a fresh instance.
// A stuck agent would keep serving the stale configuration, so failed
// termination is fatal.
func AgentRestart(settle time.Duration) provisioning.Step {
	return &agentRestartStep{settle: settle}
}

func (s *agentRestartStep) Name() string { return "agent-restart" }

func (s *agentRestartStep) Run(ctx *provisioning.Context) error {
	// pkill exits non-zero when no agent was running; not an error.
	_ = ctx.Run("pkill", "gpg-agent")

	if !ctx.Options.DryRun {
		ctx.Sleep(s.settle)
		// pgrep succeeding means the agent survived the kill.
		if err := ctx.Runner.Run(ctx, "pgrep", "gpg-agent"); err == nil {
			return fmt.Errorf("gpg-agent still running after kill attempt")
		}
	}

	// The agent also auto-starts on first use; a failed explicit start is
	// not fatal.
	if err := ctx.Run("gpg-agent", "--daemon"); err != nil {
		ctx.Observer.Warnf("gpg-agent --daemon: %v", err)
	}
	return nil
}

type tokenDetectStep struct{}

// TokenDetect confirms the hardware token is visible to GnuPG and, on
// Linux, registers the pinentry alternative.
func TokenDetect() provisioning.Step {
	return &tokenDetectStep{}
}

func (s *tokenDetectStep) Name() string { return "token-detect" }

func (s *tokenDetectStep) Run(ctx *provisioning.Context) error {
	if !ctx.Options.DryRun {
		if err := ctx.Prompter.WaitForToken(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Run("gpg2", "--card-status"); err != nil {
		return fmt.Errorf("YubiKey not detected; replug the token and try again: %w", err)
	}

	if ctx.State.Platform != nil && ctx.State.Platform.OS == platform.Linux {
		if _, err := ctx.Runner.LookPath("update-alternatives"); err == nil {
			ctx.Observer.Infof("registering %s as the pinentry alternative", ctx.State.Platform.PinentryProgram)
			pinentry := ctx.State.Platform.PinentryProgram
			// Registration failures are tolerated; the agent still
			// works with the distribution default pinentry.
			_ = ctx.Run("sudo", "update-alternatives", "--install", "/usr/bin/pinentry", "pinentry", pinentry, "1")
			_ = ctx.Run("sudo", "update-alternatives", "--set", "pinentry", pinentry)
		}
	}
	return nil
}

type sshIdentityStep struct{}

// SSHIdentity confirms the SSH agent advertises the token's identity.
func SSHIdentity() provisioning.Step {
	return &sshIdentityStep{}
}

func (s *sshIdentityStep) Name() string { return "ssh-identity" }

func (s *sshIdentityStep) Run(ctx *provisioning.Context) error {
	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: "would verify the token's SSH identity via ssh-add -L",
		})
		return nil
	}

	listing, err := ctx.Runner.Output(ctx, "ssh-add", "-L")
	if err != nil {
		return fmt.Errorf("ssh-add -L failed; replug the YubiKey and restart the setup: %w", err)
	}

	key, err := sshkey.FindHardwareKey(listing)
	if err != nil {
		return fmt.Errorf("%w; replug the YubiKey and restart the setup", err)
	}
	ctx.State.AgentKeyLine = key.AuthorizedKeyLine()
	return nil
}

type keyIDStep struct{}

// KeyID discovers the long key id from the keyring listing. Later steps
// (trust, encryption test, git signing) address the key by this id.
func KeyID() provisioning.Step {
	return &keyIDStep{}
}

func (s *keyIDStep) Name() string { return "key-id" }

func (s *keyIDStep) Run(ctx *provisioning.Context) error {
	if ctx.Options.DryRun {
		ctx.State.PGPKeyID = "0x1234567890ABCDEF"
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: "would discover the PGP key id; using " + ctx.State.PGPKeyID,
		})
		return nil
	}

	listing, err := ctx.Runner.Output(ctx, "gpg2", "--list-keys", "--keyid-format", "0xlong")
	if err != nil {
		return fmt.Errorf("could not list GPG keys: %w", err)
	}

	id, err := gpg.ParseKeyID(listing)
	if err != nil {
		return fmt.Errorf("could not determine PGP key id: %w", err)
	}
	ctx.State.PGPKeyID = id
	ctx.Observer.Infof("PGP key id: %s", id)
	return nil
}
