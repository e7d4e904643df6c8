// Package prereq checks for the client tools a YubiKey setup depends on.
package prereq

import (
	"fmt"
	"strings"

	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/platform"
)

// Tool is a binary that may be required on PATH.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallHint tells the user how to get the tool.
	InstallHint string
}

// ToolsFor returns the binaries to check on the given platform.
func ToolsFor(os platform.OS) []Tool {
	tools := []Tool{
		{
			Name:        "gpg",
			Required:    true,
			Description: "Imports the public key and manages owner trust",
			InstallHint: "installed by the prerequisites step",
		},
		{
			Name:        "gpg2",
			Required:    true,
			Description: "Smartcard-aware GnuPG used for card status and the encryption test",
			InstallHint: "installed by the prerequisites step",
		},
		{
			Name:        "gpg-agent",
			Required:    true,
			Description: "Serves both GPG and SSH requests for the token",
			InstallHint: "installed by the prerequisites step",
		},
		{
			Name:        "ssh-add",
			Required:    true,
			Description: "Lists the SSH identity the token advertises",
			InstallHint: "part of openssh-client",
		},
		{
			Name:        "git",
			Required:    true,
			Description: "Commit signing configuration",
			InstallHint: "https://git-scm.com/downloads",
		},
	}

	switch os {
	case platform.Linux:
		tools = append(tools, Tool{
			Name:        "pinentry-gnome3",
			Required:    false,
			Description: "PIN prompt backend registered via update-alternatives",
			InstallHint: "apt-get install pinentry-gnome3",
		})
	case platform.MacOS:
		tools = append(tools, Tool{
			Name:        "pinentry-mac",
			Required:    false,
			Description: "PIN prompt backend named in gpg-agent.conf",
			InstallHint: "brew install pinentry-mac",
		})
	}

	return tools
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallHint))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools resolve on PATH.
func Check(runner execx.Runner, tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		if path, err := runner.LookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}
