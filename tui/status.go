package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// sceneDisplayName derives a human-readable name from a scene name.
// "great_hall" -> "Great Hall", "castle gates" -> "Castle Gates".
func sceneDisplayName(name string) string {
	name = strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " ")
	return cases.Title(language.English).String(name)
}

// renderStatusBar produces a full-width inverted status line showing the
// adventure, the current scene, and any media attached to it.
func (m Model) renderStatusBar() string {
	left := " " + m.adventure
	if m.scene != "" {
		left += " | " + sceneDisplayName(m.scene)
	}

	var media []string
	if m.image != "" {
		media = append(media, "img")
	}
	if m.sound != "" {
		media = append(media, "snd")
	}
	right := fmt.Sprintf("T:%d ", m.turns)
	if len(media) > 0 {
		candidate := strings.Join(media, ",") + " | " + right
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}
	if m.ended {
		right = "ended "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
