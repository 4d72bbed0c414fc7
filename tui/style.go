package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleQuestion = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleRule = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindQuestion
	kindRule
	kindSystem
	kindError
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Something bad"),
		strings.HasPrefix(line, "Something really bad"),
		strings.HasPrefix(line, "Please tell the developer"),
		strings.HasPrefix(line, "Could not "):
		return kindError
	case isRuleLine(line):
		return kindRule
	case strings.HasSuffix(line, "?"),
		strings.HasSuffix(line, ":"),
		strings.Contains(line, "? ("):
		return kindQuestion
	default:
		return kindNarrative
	}
}

// isRuleLine matches the numbered rule listing, "  3. pattern -> actions".
func isRuleLine(line string) bool {
	rest := strings.TrimLeft(line, " ")
	if len(rest) == len(line) {
		return false
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	return i > 0 && strings.HasPrefix(rest[i:], ". ")
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindQuestion:
		return styleQuestion.Render(line)
	case kindRule:
		return styleRule.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a front end message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
