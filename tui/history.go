// Package tui provides a Bubble Tea terminal UI for grow adventures.
package tui

// History is a ring buffer for command history with cursor-based navigation.
// The line being typed when navigation starts, often a suggestion from an
// authoring prompt, is kept as a draft and given back at the bottom.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating, 0..len-1 = position in entries
	draft   string
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push adds a line to history and stops any navigation. Blank lines and
// consecutive duplicates are skipped.
func (h *History) Push(line string) {
	h.cursor = -1
	h.draft = ""
	if line == "" {
		return
	}
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	return len(h.entries)
}

// Prev returns the previous (older) history entry. current is the line in
// the input box, saved as the draft when navigation starts.
// Returns ("", false) if history is empty.
func (h *History) Prev(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.draft = current
		h.cursor = len(h.entries) - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next returns the next (newer) history entry. Past the most recent entry
// it returns the draft and false.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return h.draft, false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return h.draft, false
	}
	return h.entries[h.cursor], true
}
