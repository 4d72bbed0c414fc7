package tui

import (
	"bytes"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/grow/engine"
	"github.com/nathoo/grow/engine/scene"
)

// Messages sent from the engine goroutine into the Update loop.
type (
	outputMsg  struct{ text string }
	suggestMsg struct{ text string }
	mediaMsg   struct{ res scene.Resource }
	statusMsg  struct{ adventure, scene string }
	endedMsg   struct{ err error }
)

// lineFeed is the engine's input: lines typed into the TUI, read as a
// stream. Reads block until a line is submitted.
type lineFeed struct {
	lines chan string
	buf   []byte
	once  sync.Once
}

func newLineFeed() *lineFeed {
	return &lineFeed{lines: make(chan string, 32)}
}

func (f *lineFeed) Read(p []byte) (int, error) {
	if len(f.buf) == 0 {
		line, ok := <-f.lines
		if !ok {
			return 0, io.EOF
		}
		f.buf = []byte(line + "\n")
	}
	n := copy(p, f.buf)
	f.buf = f.buf[n:]
	return n, nil
}

// Submit queues a line for the engine.
func (f *lineFeed) Submit(line string) {
	f.lines <- line
}

// Close ends the input; the engine sees EOF.
func (f *lineFeed) Close() {
	f.once.Do(func() { close(f.lines) })
}

// msgWriter turns engine output into one outputMsg per line.
type msgWriter struct {
	send func(tea.Msg)
	mu   sync.Mutex
	buf  []byte
}

func (w *msgWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.send(outputMsg{text: string(w.buf[:i])})
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// observer forwards engine callbacks as messages.
type observer struct {
	send func(tea.Msg)
}

func (o observer) Process(r scene.Resource) { o.send(mediaMsg{res: r}) }

func (o observer) Update(adventure, sceneName string) {
	o.send(statusMsg{adventure: adventure, scene: sceneName})
}

func (o observer) suggest(text string) { o.send(suggestMsg{text: text}) }

// play runs a whole session on the engine goroutine and reports how it
// ended.
func play(eng *engine.Engine, send func(tea.Msg)) error {
	o := observer{send: send}
	err := eng.Init(o.suggest, o, o)
	if err == nil {
		err = eng.Play(o.suggest, o, o)
	}
	send(endedMsg{err: err})
	return err
}
