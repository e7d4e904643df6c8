package ui

import "github.com/charmbracelet/lipgloss"

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 3)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 3)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))
)

// Banner renders the tool's startup banner.
func Banner() string {
	return bannerStyle.Render("YubiKey Setup Tool\nEnableIT Employee Setup")
}

// SuccessBox renders a completion banner.
func SuccessBox(message string) string {
	return successStyle.Render(message)
}

// Section renders a heading for the final instructions.
func Section(title string) string {
	return sectionStyle.Render(title)
}
