package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/enableit/yubikey-setup/internal/config"
	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/gpg"
	"github.com/enableit/yubikey-setup/internal/platform"
	"github.com/enableit/yubikey-setup/internal/prereq"
	"github.com/enableit/yubikey-setup/internal/sshkey"
)

// watchInterval is how often --watch refreshes the report.
const watchInterval = 5 * time.Second

// CheckRow is one line of the diagnostic report.
type CheckRow struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Blocker bool   `json:"blocker"`
}

// CheckReport is the full diagnostic report of the check command.
type CheckReport struct {
	OS    string     `json:"os"`
	Rows  []CheckRow `json:"checks"`
	Ready bool       `json:"ready"`
}

// Check handles the check command. It inspects the current state of the
// machine and token without changing anything.
func Check(ctx context.Context, configPath string, watch, jsonOutput bool) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}
	cfg, err := config.Load(configPath, home)
	if err != nil {
		return err
	}

	runner := execx.NewSystem()
	if watch {
		return checkWatch(ctx, runner, cfg, home, jsonOutput)
	}
	return checkOnce(ctx, runner, cfg, home, jsonOutput, os.Stdout)
}

func checkOnce(ctx context.Context, runner execx.Runner, cfg *config.Config, home string, jsonOutput bool, out io.Writer) error {
	report := gatherChecks(ctx, runner, cfg, runtime.GOOS, home)

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printReport(out, report)
	if !report.Ready {
		return fmt.Errorf("setup is incomplete; run 'yubikey-setup setup' to fix it")
	}
	return nil
}

// checkWatch re-renders the report on a fixed interval until interrupted.
func checkWatch(ctx context.Context, runner execx.Runner, cfg *config.Config, home string, jsonOutput bool) error {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	_ = checkOnce(ctx, runner, cfg, home, jsonOutput, os.Stdout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !jsonOutput && isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Print("\033[H\033[2J")
			}
			if err := checkOnce(ctx, runner, cfg, home, jsonOutput, os.Stdout); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}
	}
}

// gatherChecks runs every diagnostic probe. Nothing here mutates the system:
// only PATH lookups, file stats, and read-only gpg/ssh-add queries.
func gatherChecks(ctx context.Context, runner execx.Runner, cfg *config.Config, goos, home string) *CheckReport {
	report := &CheckReport{OS: goos}

	p, err := platform.Resolve(goos, home, "")
	if err != nil {
		report.Rows = append(report.Rows, CheckRow{
			Name:    "operating system",
			Detail:  err.Error(),
			Blocker: true,
		})
		report.Ready = false
		return report
	}
	report.Rows = append(report.Rows, CheckRow{
		Name:   "operating system",
		OK:     true,
		Detail: string(p.OS),
	})

	for _, result := range prereq.Check(runner, prereq.ToolsFor(p.OS)).Results {
		row := CheckRow{
			Name:    result.Tool.Name,
			OK:      result.Found,
			Blocker: result.Tool.Required,
		}
		if result.Found {
			row.Detail = result.Path
		} else {
			row.Detail = result.Tool.InstallHint
		}
		report.Rows = append(report.Rows, row)
	}

	for _, file := range []string{"gpg.conf", "gpg-agent.conf"} {
		path := filepath.Join(p.GnupgDir(), file)
		_, statErr := os.Stat(path)
		report.Rows = append(report.Rows, CheckRow{
			Name:    file,
			OK:      statErr == nil,
			Detail:  path,
			Blocker: true,
		})
	}

	report.Rows = append(report.Rows, probeCard(ctx, runner))
	report.Rows = append(report.Rows, probeKeyring(ctx, runner, cfg.KnownKeyID))
	report.Rows = append(report.Rows, probeSSHIdentity(ctx, runner))

	report.Ready = true
	for _, row := range report.Rows {
		if row.Blocker && !row.OK {
			report.Ready = false
			break
		}
	}
	return report
}

func probeCard(ctx context.Context, runner execx.Runner) CheckRow {
	row := CheckRow{Name: "YubiKey detected", Blocker: true}
	if err := runner.Run(ctx, "gpg2", "--card-status"); err != nil {
		row.Detail = "no smartcard found; is the token plugged in?"
		return row
	}
	row.OK = true
	return row
}

func probeKeyring(ctx context.Context, runner execx.Runner, knownKeyID string) CheckRow {
	row := CheckRow{Name: "GPG key imported", Blocker: true}
	listing, err := runner.Output(ctx, "gpg", "--list-keys", "--keyid-format", "0xlong")
	if err != nil {
		row.Detail = err.Error()
		return row
	}
	if knownKeyID != "" && gpg.ListingContainsKey(listing, knownKeyID) {
		row.OK = true
		row.Detail = knownKeyID
		return row
	}
	if id, err := gpg.ParseKeyID(listing); err == nil {
		row.OK = true
		row.Detail = id
		return row
	}
	row.Detail = "no public key in the keyring"
	return row
}

func probeSSHIdentity(ctx context.Context, runner execx.Runner) CheckRow {
	row := CheckRow{Name: "SSH identity", Blocker: true}
	listing, err := runner.Output(ctx, "ssh-add", "-L")
	if err != nil {
		row.Detail = "ssh-add -L failed; is the agent socket exported?"
		return row
	}
	key, err := sshkey.FindHardwareKey(listing)
	if err != nil {
		row.Detail = "agent has no " + sshkey.HardwareMarker + " identity"
		return row
	}
	row.OK = true
	row.Detail = key.Comment
	return row
}

func printReport(out io.Writer, report *CheckReport) {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  yubikey-setup check")
	fmt.Fprintln(out, "  "+strings.Repeat("─", 40))

	for _, row := range report.Rows {
		mark := pass("✓")
		if !row.OK {
			if row.Blocker {
				mark = fail("✗")
			} else {
				mark = warn("!")
			}
		}
		if row.Detail != "" {
			fmt.Fprintf(out, "  %s  %-22s %s\n", mark, row.Name, row.Detail)
		} else {
			fmt.Fprintf(out, "  %s  %s\n", mark, row.Name)
		}
	}

	fmt.Fprintln(out)
	if report.Ready {
		fmt.Fprintln(out, "  "+pass("Everything looks good."))
	} else {
		fmt.Fprintln(out, "  "+fail("Setup is incomplete."))
	}
	fmt.Fprintln(out)
}
