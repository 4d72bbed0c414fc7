package scene

import (
	"bufio"
	"io"
	"strings"

	"github.com/nathoo/grow/engine/pattern"
)

// Action is a single step of a rule. Act returns the scene the world should
// move to next, or nil to end the game. A non-nil error is an unexpected
// fault, not a game outcome.
type Action interface {
	Act(sc *Scene, w *World, env *Env) (*Scene, error)
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(sc *Scene, w *World, env *Env) (*Scene, error)

// Act calls f.
func (f ActionFunc) Act(sc *Scene, w *World, env *Env) (*Scene, error) {
	return f(sc, w, env)
}

// Input is the line source shared by the turn loop and interactive actions.
type Input interface {
	// ReadLine returns the next line without its terminator, or io.EOF.
	ReadLine() (string, error)
}

// Env is what an action may touch besides the scene graph. Nothing in it may
// be retained after Act returns.
type Env struct {
	In     Input
	Out    io.Writer
	Prompt func(text string) // pre-fills the front end's input line
	Vars   pattern.Bindings  // captures of the matched rule
}

// Suggest calls Prompt when one is set.
func (e *Env) Suggest(text string) {
	if e.Prompt != nil {
		e.Prompt(text)
	}
}

// LineReader reads lines from an io.Reader.
type LineReader struct {
	sc *bufio.Scanner
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{sc: bufio.NewScanner(r)}
}

// ReadLine implements Input.
func (l *LineReader) ReadLine() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(l.sc.Text(), "\r"), nil
}
