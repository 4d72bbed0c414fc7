package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/grow/engine"
	"github.com/nathoo/grow/engine/scene"
)

// EngineFactory builds the engine the TUI drives from the input and output
// streams the TUI provides.
type EngineFactory func(in io.Reader, out io.Writer) *engine.Engine

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for front end messages
}

// Model is the Bubble Tea model for the grow TUI.
type Model struct {
	feed *lineFeed

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	adventure string
	scene     string
	image     string
	sound     string
	turns     int

	width    int
	height   int
	ready    bool
	trace    bool
	ended    bool
	quitting bool
}

// New creates a TUI model that submits input lines to feed.
func New(feed *lineFeed) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		feed:    feed,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program and plays an adventure on the engine
// built by newEngine.
func Run(newEngine EngineFactory) error {
	feed := newLineFeed()
	p := tea.NewProgram(New(feed), tea.WithAltScreen(), tea.WithMouseCellMotion())

	eng := newEngine(feed, &msgWriter{send: p.Send})
	done := make(chan error, 1)
	go func() { done <- play(eng, p.Send) }()

	_, err := p.Run()
	// The engine sees EOF and winds down.
	feed.Close()
	playErr := <-done
	if err != nil {
		return err
	}
	return playErr
}

// Init starts the cursor blinking; the engine goroutine produces the
// opening output.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages (key presses, window resize, engine events).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			next, _ := m.history.Next()
			m.input.SetValue(next)
			m.input.CursorEnd()
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendLine(rawLine{text: msg.text, kind: classifyLine(msg.text)})
		return m, nil

	case suggestMsg:
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		return m, nil

	case mediaMsg:
		name := msg.res.Name
		if name == "" && !msg.res.Empty() {
			name = fmt.Sprintf("%d bytes", len(msg.res.Data))
		}
		if msg.res.Kind == scene.KindSound {
			m.sound = name
		} else {
			m.image = name
		}
		if m.trace {
			note := msg.res.Kind.String() + " cleared"
			if name != "" {
				note = msg.res.Kind.String() + ": " + name
			}
			m = m.appendLine(rawLine{text: note, isSystem: true})
		}
		return m, nil

	case statusMsg:
		m.adventure, m.scene = msg.adventure, msg.scene
		return m, nil

	case endedMsg:
		m.ended = true
		text := "The adventure is over. Press Enter to leave."
		if msg.err != nil {
			text = "The game stopped after an error. Press Enter to leave."
		}
		m = m.appendLine(rawLine{text: text, isSystem: true})
		return m, nil
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.feed.Close()
	return m, tea.Quit
}

// handleEnter submits the input line to the engine. Blank lines are
// submitted too; prompts may accept them.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.ended {
		return m.quit()
	}

	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.history.Push(input)

	// Front end commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendLine(rawLine{text: "> " + input, isInput: true})
		for _, line := range output {
			m = m.appendLine(rawLine{text: line, isSystem: true})
		}
		if quit {
			return m.quit()
		}
		return m, nil
	}

	m.turns++
	m = m.appendLine(rawLine{text: "> " + input, isInput: true})
	m.feed.Submit(input)
	return m, nil
}

// appendLine adds a line to the narrative and refreshes the viewport.
func (m Model) appendLine(rl rawLine) Model {
	m.rawLines = append(m.rawLines, rl)
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wordwrap.String(rl.text, width)))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wordwrap.String(rl.text, width-2)))
		default:
			styled = append(styled, renderLineKind(wordwrap.String(rl.text, width), rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches front end commands. Returns output lines and quit
// flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Media notes enabled."}, false
		}
		return []string{"Media notes disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"Terminal:",
		"  /quit   Leave without saving",
		"  /help   Show this help",
		"  /trace  Toggle media notes",
		"",
		`Type ":help" for the game's own commands.`,
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for input history",
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
