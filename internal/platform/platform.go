// Package platform resolves the OS-dependent parts of a YubiKey setup:
// shell profile location, pinentry binary, and the gpg-agent SSH socket.
//
// Resolution is a pure function of (GOOS, home directory, numeric user id)
// so it can be verified for both supported platforms without running on them.
package platform

import (
	"fmt"
	"path/filepath"
)

// OS identifies a supported operating system.
type OS string

const (
	// Linux is any Debian-flavored Linux with apt-get available.
	Linux OS = "linux"
	// MacOS is macOS with Homebrew available.
	MacOS OS = "darwin"
)

// Pinentry binary locations. The macOS path assumes an Apple Silicon
// Homebrew prefix, matching what `brew install pinentry-mac` produces.
const (
	linuxPinentry = "/usr/bin/pinentry-gnome3"
	macPinentry   = "/opt/homebrew/bin/pinentry-mac"
)

// macSSHAuthSock is evaluated by the shell at login, not by us; gpgconf
// prints the per-user agent socket path.
const macSSHAuthSock = "$(gpgconf --list-dirs agent-ssh-socket)"

// Platform holds everything OS-dependent that the provisioning steps need.
// All fields are fixed once resolved.
type Platform struct {
	OS OS

	// Home is the user's home directory.
	Home string

	// UID is the numeric user id as a string. Used to build the
	// /run/user/<uid> socket paths on Linux.
	UID string

	// ShellProfile is the file that receives the SSH_AUTH_SOCK line
	// (.bashrc on Linux, .bash_profile on macOS).
	ShellProfile string

	// PinentryProgram is the PIN prompt backend the agent should use.
	PinentryProgram string

	// SSHAuthSock is the value SSH_AUTH_SOCK should have once the agent
	// serves SSH. On Linux this is a literal path, on macOS a shell
	// command substitution.
	SSHAuthSock string

	// ProfileLine is the exact line appended to ShellProfile.
	ProfileLine string
}

// Resolve maps a GOOS value to its platform configuration.
// Any GOOS outside {linux, darwin} is an error.
func Resolve(goos, home, uid string) (*Platform, error) {
	switch OS(goos) {
	case Linux:
		sock := fmt.Sprintf("/run/user/%s/gnupg/S.gpg-agent.ssh", uid)
		return &Platform{
			OS:              Linux,
			Home:            home,
			UID:             uid,
			ShellProfile:    filepath.Join(home, ".bashrc"),
			PinentryProgram: linuxPinentry,
			SSHAuthSock:     sock,
			ProfileLine:     fmt.Sprintf("SSH_AUTH_SOCK=%s", sock),
		}, nil
	case MacOS:
		return &Platform{
			OS:              MacOS,
			Home:            home,
			UID:             uid,
			ShellProfile:    filepath.Join(home, ".bash_profile"),
			PinentryProgram: macPinentry,
			SSHAuthSock:     macSSHAuthSock,
			ProfileLine:     fmt.Sprintf("export SSH_AUTH_SOCK=%s", macSSHAuthSock),
		}, nil
	default:
		return nil, fmt.Errorf("operating system %q is not supported, only Linux and macOS are", goos)
	}
}

// GnupgDir returns the GnuPG home directory for this platform.
func (p *Platform) GnupgDir() string {
	return filepath.Join(p.Home, ".gnupg")
}
