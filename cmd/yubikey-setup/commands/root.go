// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the yubikey-setup CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yubikey-setup",
		Short: "Set up a YubiKey for GPG, SSH, and signed git commits",
		Long: `yubikey-setup configures a Linux or macOS workstation to use a
YubiKey as the single hardware credential for GPG operations, SSH
authentication, and signed git commits.

Run 'yubikey-setup setup' on a new machine, or 'yubikey-setup check' to
inspect the current state without changing anything.`,
	}

	cmd.AddCommand(Setup())
	cmd.AddCommand(Check())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
