package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4285F4")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	bannerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Italic(true)

	replHeaderStyle = lipgloss.NewStyle().Bold(true)

	answerLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34A853")).
			Bold(true)

	sourcesLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4285F4")).
			Bold(true)
)

// printBanner displays the startup banner with version and model info.
func printBanner(version, model string) {
	printBannerTo(os.Stdout, version, model)
}

func printBannerTo(w io.Writer, version, model string) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, bannerStyle.Render("FAQ RAG"))
	_, _ = fmt.Fprintln(w, bannerInfoStyle.Render(fmt.Sprintf("Version: %s | Model: %s", version, model)))
	_, _ = fmt.Fprintln(w)
}
