package commands

import (
	"github.com/spf13/cobra"

	"github.com/enableit/yubikey-setup/cmd/yubikey-setup/handlers"
)

// Setup returns the command that runs the full provisioning sequence.
//
// Optional flags:
//
//	--gpg-key, -k: Path to the GPG public key file (prompted for otherwise)
//	--skip-pin: Skip the PIN confirmation prompt
//	--dry-run: Log every action without changing anything
//	--config, -c: Path to a defaults file (default: ~/.config/yubikey-setup/config.yaml)
//	--verbose, -v: Include diagnostic output
func Setup() *cobra.Command {
	var opts handlers.SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run the full YubiKey setup sequence",
		Long: `Run the full setup sequence: install prerequisites, write the GnuPG
configuration, import the public key, restart the agent, verify the token,
and enable signed git commits.

Steps run in a fixed order and the first failure aborts the run. Every
failure carries a tracking id; quote it when asking for help.

Examples:
  # Interactive setup
  yubikey-setup setup

  # Non-interactive, key file given up front
  yubikey-setup setup --gpg-key ~/jdoe.pub.key --skip-pin

  # See what would happen without touching anything
  yubikey-setup setup --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Setup(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.GPGKeyPath, "gpg-key", "k", "", "Path to the GPG public key file")
	cmd.Flags().BoolVar(&opts.SkipPinCheck, "skip-pin", false, "Skip the PIN confirmation prompt")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Log every action without changing anything")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a defaults file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include diagnostic output")

	return cmd
}
