package steps

import (
	"fmt"
	"strings"

	"github.com/enableit/yubikey-setup/internal/provisioning"
	"github.com/enableit/yubikey-setup/internal/ui"
)

// exportPreviewLines caps how much of the armored key export is shown.
const exportPreviewLines = 10

type reportStep struct{}

// Report prints the closing instructions: the SSH key to register, a
// preview of the exported GPG key, and the manual follow-ups. Everything
// here is informational, so the step never fails the run.
func Report() provisioning.Step {
	return &reportStep{}
}

func (s *reportStep) Name() string { return "report" }

func (s *reportStep) Run(ctx *provisioning.Context) error {
	out := ctx.Stdout

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.SuccessBox("YubiKey setup complete!"))
	fmt.Fprintln(out)

	if ctx.State.AgentKeyLine != "" {
		fmt.Fprintln(out, ui.Section("SSH public key (add it to Gitea and servers):"))
		fmt.Fprintln(out, ctx.State.AgentKeyLine)
		fmt.Fprintln(out)
	}

	if ctx.State.PGPKeyID != "" {
		if export, err := ctx.Output("gpg", "--export", "-a", ctx.State.PGPKeyID); err == nil {
			fmt.Fprintln(out, ui.Section("GPG public key (first lines):"))
			lines := strings.Split(strings.TrimRight(export, "\n"), "\n")
			for i, line := range lines {
				if i == exportPreviewLines {
					fmt.Fprintln(out, "... (truncated, run `gpg --export -a "+ctx.State.PGPKeyID+"` for the full key)")
					break
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
		} else {
			ctx.Observer.Warnf("could not export the GPG key: %v", err)
		}
	}

	p := ctx.State.Platform
	fmt.Fprintln(out, ui.Section("Next steps:"))
	if p != nil {
		fmt.Fprintf(out, "  1. Run `source %s` or open a new terminal.\n", p.ShellProfile)
	} else {
		fmt.Fprintln(out, "  1. Open a new terminal so the shell profile changes take effect.")
	}
	fmt.Fprintln(out, "  2. Make a test commit and check the signature with `git log --show-signature -1`.")
	fmt.Fprintln(out, "  3. Keep the YubiKey plugged in while working; touch it when it blinks.")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Tracking id for this run: %s\n", ctx.TrackingID)
	return nil
}
