package commands

import (
	"github.com/spf13/cobra"

	"github.com/enableit/yubikey-setup/cmd/yubikey-setup/handlers"
)

// Check returns the command that diagnoses the current setup state.
//
// Optional flags:
//
//	--config, -c: Path to a defaults file
//	--watch, -w: Continuously refresh the report
//	--json: Output in JSON format
func Check() *cobra.Command {
	var configPath string
	var watch bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Diagnose the current YubiKey setup without changing anything",
		Long: `Inspect the machine and token state: required binaries, GnuPG
configuration files, smartcard visibility, the imported key, and the SSH
identity the agent advertises. Nothing is modified.

Examples:
  # One-shot report
  yubikey-setup check

  # Keep refreshing while you replug the token
  yubikey-setup check --watch

  # Machine-readable output
  yubikey-setup check --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Check(cmd.Context(), configPath, watch, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a defaults file")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Continuously refresh the report")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
