// Package sshkey parses `ssh-add -L` listings. The gpg-agent advertises a
// YubiKey-backed identity with a comment of the form "cardno:<serial>", and
// that marker is the contract for detecting the token's SSH identity.
package sshkey

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// HardwareMarker is the comment prefix gpg-agent attaches to identities
// that live on a smartcard. Existing tooling greps for this exact string.
const HardwareMarker = "cardno:"

// AgentKey is one identity advertised by the SSH agent.
type AgentKey struct {
	PublicKey ssh.PublicKey
	Comment   string
}

// Hardware reports whether the identity is backed by a hardware token.
func (k AgentKey) Hardware() bool {
	return strings.Contains(k.Comment, HardwareMarker)
}

// AuthorizedKeyLine renders the identity as a single authorized_keys line,
// comment included.
func (k AgentKey) AuthorizedKeyLine() string {
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(k.PublicKey)))
	if k.Comment != "" {
		line += " " + k.Comment
	}
	return line
}

// ParseAgentListing parses the output of `ssh-add -L`. Lines that are not
// valid authorized-key lines (such as "The agent has no identities.") are
// skipped rather than treated as errors.
func ParseAgentListing(output string) []AgentKey {
	var keys []AgentKey
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pub, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			continue
		}
		keys = append(keys, AgentKey{PublicKey: pub, Comment: comment})
	}
	return keys
}

// FindHardwareKey returns the first hardware-token identity in the listing.
func FindHardwareKey(output string) (AgentKey, error) {
	for _, key := range ParseAgentListing(output) {
		if key.Hardware() {
			return key, nil
		}
	}
	return AgentKey{}, fmt.Errorf("no %q identity advertised by the SSH agent", HardwareMarker)
}
