// Package cli provides the plain terminal front end: line prompts, output
// passed straight through, and media shown as bracketed notes.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/grow/engine"
	"github.com/nathoo/grow/engine/scene"
)

// CLI handles terminal interaction with the player. Input is read through
// the engine so interactive actions share the same line source.
type CLI struct {
	Engine    *engine.Engine
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	adventure string
	scene     string
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		Out:    os.Stdout,
	}
}

// Run starts a session and loops: prompt, input, turn. It returns when the
// game ends, input runs out, or the engine halts; only a halt is an error.
func (c *CLI) Run() error {
	if err := c.Engine.Init(c.suggest, c, c); err != nil {
		return err
	}

	in := c.Engine.Input()
	for {
		c.print("> ")
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			c.printLine("")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		input := strings.TrimSpace(line)
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Front end commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return nil
			}
			continue
		}

		if !c.Engine.DoTurn(input, c.suggest, c, c) {
			if err := c.Engine.Err(); err != nil {
				return err
			}
			c.printSystem("The adventure is over.")
			return nil
		}
	}
}

// handleMeta dispatches front end commands. Returns true if the game should
// exit.
func (c *CLI) handleMeta(input string) bool {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/where":
		c.printSystem(fmt.Sprintf("%s is stored at %s", c.adventure, c.Engine.AdventureFile()))

	case "/help":
		c.cmdHelp()

	case "/image", "/sound":
		c.cmdAttach(cmd, strings.TrimSpace(strings.TrimPrefix(input, cmd)))

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

// cmdAttach reads a media file and attaches it to the current scene.
func (c *CLI) cmdAttach(cmd, path string) {
	if path == "" {
		c.printSystem(fmt.Sprintf("Usage: %s <path>", cmd))
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Could not read %s: %v", path, err))
		return
	}
	attach, kind := c.Engine.SaveImage, "image"
	if cmd == "/sound" {
		attach, kind = c.Engine.SaveSound, "sound"
	}
	if !attach(filepath.Base(path), data) {
		c.printSystem(fmt.Sprintf("Could not attach %s to this scene.", kind))
		return
	}
	c.printSystem(fmt.Sprintf("Attached %s %s to %s.", kind, filepath.Base(path), c.scene))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Terminal:",
		"  /where  Show where the adventure is stored",
		"  /image  Attach an image file to this scene",
		"  /sound  Attach a sound file to this scene",
		"  /trace  Toggle scene and media notes",
		"  /quit   Leave without saving",
		"  /help   Show this help",
		"",
		`Type ":help" for the game's own commands.`,
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// Process notes media changes. Plain terminals cannot show media.
func (c *CLI) Process(r scene.Resource) {
	if !c.Trace {
		return
	}
	if r.Empty() {
		c.printSystem(fmt.Sprintf("%s cleared", r.Kind))
		return
	}
	c.printSystem(fmt.Sprintf("%s: %s", r.Kind, r.Name))
}

// Update records the current adventure and scene.
func (c *CLI) Update(adventure, sceneName string) {
	moved := c.adventure != adventure || c.scene != sceneName
	c.adventure, c.scene = adventure, sceneName
	if c.Trace && moved {
		c.printSystem(fmt.Sprintf("%s / %s", adventure, sceneName))
	}
}

// suggest shows text an authoring prompt would pre-fill.
func (c *CLI) suggest(text string) {
	if text != "" {
		c.printSystem("currently: " + text)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
