package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/enableit/yubikey-setup/internal/gpg"
	"github.com/enableit/yubikey-setup/internal/platform"
	"github.com/enableit/yubikey-setup/internal/provisioning"
)

type gpgConfigStep struct{}

// GPGConfig writes gpg.conf and dirmngr.conf, creating ~/.gnupg with
// restrictive permissions first. Contents are deterministic, so existing
// files are overwritten rather than merged.
func GPGConfig() provisioning.Step {
	return &gpgConfigStep{}
}

func (s *gpgConfigStep) Name() string { return "gpg-config" }

func (s *gpgConfigStep) Run(ctx *provisioning.Context) error {
	if ctx.State.Platform == nil {
		return fmt.Errorf("platform not resolved")
	}
	dir := ctx.State.Platform.GnupgDir()

	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: fmt.Sprintf("would write gpg.conf and dirmngr.conf under %s", dir),
		})
		return nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gpg.conf"), []byte(gpg.Conf), 0o644); err != nil {
		return fmt.Errorf("failed to write gpg.conf: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dirmngr.conf"), []byte(gpg.DirmngrConf), 0o644); err != nil {
		return fmt.Errorf("failed to write dirmngr.conf: %w", err)
	}
	return nil
}

type agentConfigStep struct{}

// AgentConfig writes the OS-specific gpg-agent.conf. On macOS the pinentry
// binary it names must exist; a dangling path would leave the agent unable
// to prompt for the PIN at all.
func AgentConfig() provisioning.Step {
	return &agentConfigStep{}
}

func (s *agentConfigStep) Name() string { return "agent-config" }

func (s *agentConfigStep) Run(ctx *provisioning.Context) error {
	p := ctx.State.Platform
	if p == nil {
		return fmt.Errorf("platform not resolved")
	}

	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: "would write gpg-agent.conf",
		})
		return nil
	}

	if p.OS == platform.MacOS {
		if _, err := os.Stat(p.PinentryProgram); err != nil {
			return fmt.Errorf("pinentry-mac not found at %s; ensure it is installed correctly", p.PinentryProgram)
		}
	}

	path := filepath.Join(p.GnupgDir(), "gpg-agent.conf")
	if err := os.WriteFile(path, []byte(gpg.AgentConf(p)), 0o644); err != nil {
		return fmt.Errorf("failed to write gpg-agent.conf: %w", err)
	}
	return nil
}

type shellProfileStep struct{}

// ShellProfile appends the SSH_AUTH_SOCK line to the shell profile unless
// an equivalent line is already there.
func ShellProfile() provisioning.Step {
	return &shellProfileStep{}
}

func (s *shellProfileStep) Name() string { return "shell-profile" }

func (s *shellProfileStep) Run(ctx *provisioning.Context) error {
	p := ctx.State.Platform
	if p == nil {
		return fmt.Errorf("platform not resolved")
	}

	if ctx.Options.DryRun {
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventDryRun,
			Step:    s.Name(),
			Message: fmt.Sprintf("would append to %s: %s", p.ShellProfile, p.ProfileLine),
		})
		return nil
	}

	if content, err := os.ReadFile(p.ShellProfile); err == nil {
		if strings.Contains(string(content), p.ProfileLine) {
			ctx.Observer.Event(provisioning.Event{
				Type:    provisioning.EventStepSkipped,
				Step:    s.Name(),
				Message: "shell profile already configured",
			})
			return nil
		}
	}

	f, err := os.OpenFile(p.ShellProfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p.ShellProfile, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n%s\n", p.ProfileLine); err != nil {
		return fmt.Errorf("failed to update %s: %w", p.ShellProfile, err)
	}
	return nil
}

type authSockStep struct{}

// AuthSock clears a pre-existing SSH_AUTH_SOCK so the agent's own socket
// wins after the shell is reloaded. Never fatal.
func AuthSock() provisioning.Step {
	return &authSockStep{}
}

func (s *authSockStep) Name() string { return "auth-sock" }

func (s *authSockStep) Run(ctx *provisioning.Context) error {
	if ctx.Getenv("SSH_AUTH_SOCK") == "" {
		return nil
	}

	ctx.Observer.Warnf("found existing SSH_AUTH_SOCK, unsetting it")
	if ctx.Options.DryRun {
		return nil
	}
	return ctx.Unsetenv("SSH_AUTH_SOCK")
}
