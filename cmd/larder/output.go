package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/larder/internal/display"
	"github.com/hammamikhairi/larder/internal/pantry"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5")).Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#86efac"))
)

func printf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}

func done(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render(fmt.Sprintf(format, a...)))
}

// confirm shows what a deletion takes with it and asks before going on.
// Harmless deletions and --yes skip the question.
func confirm(cmd *cobra.Command, what string, imp pantry.Impact, yes bool) bool {
	if !imp.Destructive() || yes {
		return true
	}
	fmt.Fprintln(cmd.OutOrStdout(), display.Impact(what, imp))
	fmt.Fprint(cmd.OutOrStdout(), "Proceed? [y/N] ")

	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	fmt.Fprintln(cmd.OutOrStdout(), "aborted")
	return false
}
