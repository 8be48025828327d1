package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerArt string

const (
	bannerTagline = "pantry · recipes · shopping"
	fallbackWidth = 80
)

var taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b")).Italic(true)

// RenderBanner returns the banner centred in the terminal.
func RenderBanner() string {
	return renderBanner(termWidth())
}

// renderBanner lays the art out as one block with the tagline centred
// beneath it, then centres the block in width columns. The art is never
// clipped: a narrow width leaves it flush left.
func renderBanner(width int) string {
	block := lipgloss.JoinVertical(lipgloss.Center,
		BannerStyle.Render(strings.TrimRight(bannerArt, "\n")),
		taglineStyle.Render(bannerTagline),
	)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block) + "\n"
}

func termWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return fallbackWidth
	}
	return w
}
