// Package main is the entry point for the yubikey-setup CLI.
//
// yubikey-setup prepares a Linux or macOS workstation to use a YubiKey as
// the single hardware credential: it installs the GnuPG/smartcard
// prerequisites, writes the GnuPG configuration, imports the public key,
// and wires the token into SSH authentication and signed git commits.
//
// Commands: setup, check, version, completion.
//
// For detailed usage information, run:
//
//	yubikey-setup --help
package main

import (
	"fmt"
	"os"

	"github.com/enableit/yubikey-setup/cmd/yubikey-setup/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
