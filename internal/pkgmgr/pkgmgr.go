// Package pkgmgr adapts the platform package manager (apt-get on Linux,
// Homebrew on macOS) for installing the GnuPG/smartcard prerequisites.
package pkgmgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/platform"
)

// aptPackages is the Debian prerequisite set. gnupg2 doubles as the marker
// package for the already-installed check.
var aptPackages = []string{
	"gnupg2", "gnupg-agent", "pinentry-curses", "scdaemon",
	"pcscd", "libusb-1.0-0-dev", "pinentry-gnome3",
}

// brewPackages is the Homebrew prerequisite set; gnupg is the marker.
var brewPackages = []string{"gnupg", "yubikey-personalization", "pinentry-mac"}

// Manager installs the prerequisite packages for one platform.
type Manager interface {
	// Name identifies the package manager binary.
	Name() string

	// Packages returns the full prerequisite set.
	Packages() []string

	// MarkerInstalled reports whether the marker package is already
	// present, in which case installation is skipped.
	MarkerInstalled(ctx context.Context) (bool, error)

	// Install installs the full prerequisite set.
	Install(ctx context.Context) error
}

// For returns the package manager for the platform, or an error carrying a
// manual-installation hint if the manager binary itself is absent.
func For(os platform.OS, runner execx.Runner) (Manager, error) {
	switch os {
	case platform.Linux:
		if _, err := runner.LookPath("apt-get"); err != nil {
			return nil, fmt.Errorf("apt-get not found; install prerequisites manually: %s",
				strings.Join(aptPackages, " "))
		}
		return &apt{runner: runner}, nil
	case platform.MacOS:
		if _, err := runner.LookPath("brew"); err != nil {
			return nil, fmt.Errorf("Homebrew not found; install it first: https://brew.sh/")
		}
		return &brew{runner: runner}, nil
	default:
		return nil, fmt.Errorf("no package manager for OS %q", os)
	}
}

type apt struct {
	runner execx.Runner
}

func (a *apt) Name() string       { return "apt-get" }
func (a *apt) Packages() []string { return aptPackages }

func (a *apt) MarkerInstalled(ctx context.Context) (bool, error) {
	// dpkg -l exits non-zero when the package is unknown.
	if err := a.runner.Run(ctx, "dpkg", "-l", "gnupg2"); err != nil {
		return false, nil
	}
	return true, nil
}

func (a *apt) Install(ctx context.Context) error {
	if err := a.runner.Run(ctx, "sudo", "apt-get", "update"); err != nil {
		return fmt.Errorf("failed to update package list: %w", err)
	}
	args := append([]string{"apt-get", "install", "-y"}, aptPackages...)
	if err := a.runner.Run(ctx, "sudo", args...); err != nil {
		return fmt.Errorf("failed to install prerequisites: %w", err)
	}
	return nil
}

type brew struct {
	runner execx.Runner
}

func (b *brew) Name() string       { return "brew" }
func (b *brew) Packages() []string { return brewPackages }

func (b *brew) MarkerInstalled(ctx context.Context) (bool, error) {
	if err := b.runner.Run(ctx, "brew", "list", "gnupg"); err != nil {
		return false, nil
	}
	return true, nil
}

func (b *brew) Install(ctx context.Context) error {
	// brew install is per-formula; a single failure aborts the step.
	for _, pkg := range brewPackages {
		if err := b.runner.Run(ctx, "brew", "install", pkg); err != nil {
			return fmt.Errorf("failed to install %s: %w", pkg, err)
		}
	}
	return nil
}
