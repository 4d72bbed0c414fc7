// Package engine provides the turn loop that wires input matching, action
// execution, and world transitions into a single game session.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/nathoo/grow/engine/action"
	"github.com/nathoo/grow/engine/scene"
	"github.com/nathoo/grow/metrics"
)

// State is the lifecycle state of a session.
type State int

const (
	Uninitialized State = iota
	Running
	Terminated
	// Halted is the fail-stop state entered after an unexpected fault. A
	// halted engine refuses all further turns.
	Halted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrHalted is wrapped by the error returned from a halted engine.
var ErrHalted = errors.New("game halted")

// MediaProcessor displays images and plays sounds. It must accept empty
// resources.
type MediaProcessor interface {
	Process(r scene.Resource)
}

// MediaFunc adapts a function to MediaProcessor.
type MediaFunc func(r scene.Resource)

// Process calls f.
func (f MediaFunc) Process(r scene.Resource) { f(r) }

// StatusUpdater is told which adventure and scene are current.
type StatusUpdater interface {
	Update(adventure, scene string)
}

// StatusFunc adapts a function to StatusUpdater.
type StatusFunc func(adventure, scene string)

// Update calls f.
func (f StatusFunc) Update(adventure, scene string) { f(adventure, scene) }

var (
	noMedia  MediaProcessor = MediaFunc(func(scene.Resource) {})
	noStatus StatusUpdater  = StatusFunc(func(string, string) {})
)

// Engine runs one game session at a time: it owns the world and the input
// it reads from, and executes every turn to completion before the next.
type Engine struct {
	in    scene.Input
	out   io.Writer
	store Store
	base  *scene.Scene

	world *scene.World
	state State
	fault error

	rng     *RNG
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithSeed seeds the unknown-response picker.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = NewRNG(seed) }
}

// WithMetrics records turn loop counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine reading lines from in and writing to out.
func New(in io.Reader, out io.Writer, store Store, opts ...Option) *Engine {
	e := &Engine{
		in:    scene.NewLineReader(in),
		out:   out,
		store: store,
		base:  baseRules(store),
		rng:   NewRNG(time.Now().UnixNano()),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Input returns the line source shared with interactive actions.
func (e *Engine) Input() scene.Input {
	return e.in
}

// State returns the session state.
func (e *Engine) State() State {
	return e.state
}

// World returns the loaded world, or nil when no session is running.
func (e *Engine) World() *scene.World {
	return e.world
}

// Err returns the fault that halted the engine, if any.
func (e *Engine) Err() error {
	if e.state != Halted {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrHalted, e.fault)
}

// Init starts a session, loading its world from the store. Calling Init on
// a running session is a programming error and panics.
func (e *Engine) Init(prompt func(string), p MediaProcessor, u StatusUpdater) error {
	switch e.state {
	case Running:
		panic("engine: Init called on a running game")
	case Halted:
		return e.Err()
	}
	p, u = observers(p, u)

	w, err := e.store.Init(e.env(prompt))
	if err != nil {
		return fmt.Errorf("loading adventure: %w", err)
	}
	e.world = w
	e.state = Running

	cur := w.Current()
	p.Process(cur.Image())
	p.Process(cur.Sound())
	// Freshly loaded, so nothing is pending.
	cur.ClearImageChanged()
	cur.ClearSoundChanged()
	u.Update(w.Name(), cur.Name())

	e.log.Info("game started", "adventure", w.Name(), "scene", cur.Name())
	return nil
}

// DoTurn runs one turn with line as its input; interactive actions read any
// further input from the engine's input. It returns false once the game is
// over, after which Init may start a new session. An unexpected fault halts
// the engine for good.
func (e *Engine) DoTurn(line string, prompt func(string), p MediaProcessor, u StatusUpdater) (running bool) {
	switch e.state {
	case Halted:
		fmt.Fprintf(e.out, "The game has stopped after an error: %v\n", e.fault)
		return false
	case Uninitialized, Terminated:
		fmt.Fprintln(e.out, "No adventure is loaded.")
		return false
	}
	p, u = observers(p, u)

	defer func() {
		if r := recover(); r != nil {
			running = e.halt(fmt.Errorf("panic: %v", r), debug.Stack())
		}
	}()

	e.metrics.Turn()
	running, err := e.turn(line, prompt, p, u)
	if err != nil {
		return e.halt(err, debug.Stack())
	}
	return running
}

func (e *Engine) turn(line string, prompt func(string), p MediaProcessor, u StatusUpdater) (bool, error) {
	var (
		actions []scene.Action
		matched bool
		env     = e.env(prompt)
	)
	if cmd, ok := strings.CutPrefix(line, CommandMarker); ok {
		actions, env.Vars, matched = e.base.Act(cmd)
	}
	if !matched {
		actions, env.Vars, matched = e.world.Current().Act(line)
	}
	if !matched {
		e.metrics.UnknownInput()
		fmt.Fprintln(e.out, e.unknownResponse())
		return true, nil
	}

	for _, a := range actions {
		kind := action.SpecOf(a).Kind
		e.metrics.Action(kind)
		e.log.Debug("running action", "kind", kind, "scene", e.world.Current().Name())

		prev := e.world.Current()
		next, err := a.Act(prev, e.world, env)
		if err != nil {
			return false, fmt.Errorf("%s action: %w", kind, err)
		}
		if next != nil {
			if err := e.world.Move(next); err != nil {
				fmt.Fprintln(e.out, "Something bad has occurred. Please tell the developer.")
				fmt.Fprintln(e.out, err)
				e.log.Error("invalid transition", "err", err, "from", prev.Name())
				next = nil
			}
		}
		if next == nil {
			e.log.Info("game over", "adventure", e.world.Name())
			// Release the world so Init can start afresh.
			e.world = nil
			e.state = Terminated
			e.metrics.Over()
			return false, nil
		}

		if next.ImageChanged() || prev != next {
			next.ClearImageChanged()
			p.Process(next.Image())
		}
		if next.SoundChanged() || prev != next {
			next.ClearSoundChanged()
			p.Process(next.Sound())
		}
		u.Update(e.world.Name(), e.world.Current().Name())
	}
	return true, nil
}

// halt reports a fault twice, cause and then stack, and stops the engine.
func (e *Engine) halt(cause error, stack []byte) bool {
	e.state = Halted
	e.fault = cause
	e.metrics.Fault()
	e.log.Error("game halted", "err", cause)

	fmt.Fprintln(e.out, "Something really bad happened.")
	fmt.Fprintln(e.out, cause)
	if len(stack) > 0 {
		fmt.Fprintln(e.out, strings.TrimSpace(string(stack)))
	}
	fmt.Fprintln(e.out, "Please tell the developer.")
	return false
}

// Play runs turns from the engine's input until the game ends or the input
// runs out. It returns the halting fault, if any.
func (e *Engine) Play(prompt func(string), p MediaProcessor, u StatusUpdater) error {
	for {
		line, err := e.in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if !e.DoTurn(line, prompt, p, u) {
			return e.Err()
		}
	}
}

// SaveImage attaches an image to the current scene and saves the adventure.
// It reports false when no game is running or saving failed.
func (e *Engine) SaveImage(name string, data []byte) bool {
	if e.state != Running {
		return false
	}
	if err := e.store.SaveImage(e.world.Current(), e.world, name, data); err != nil {
		e.log.Error("saving image", "err", err)
		return false
	}
	return true
}

// SaveSound attaches a sound to the current scene and saves the adventure.
func (e *Engine) SaveSound(name string, data []byte) bool {
	if e.state != Running {
		return false
	}
	if err := e.store.SaveSound(e.world.Current(), e.world, name, data); err != nil {
		e.log.Error("saving sound", "err", err)
		return false
	}
	return true
}

// AdventureFile describes where the current adventure is stored. It is
// empty unless a game is running.
func (e *Engine) AdventureFile() string {
	if e.state != Running {
		return ""
	}
	return e.store.Locate(e.world.Name())
}

func (e *Engine) env(prompt func(string)) *scene.Env {
	return &scene.Env{In: e.in, Out: e.out, Prompt: prompt}
}

func (e *Engine) unknownResponse() string {
	return unknownResponses[e.rng.Pick(len(unknownResponses))]
}

func observers(p MediaProcessor, u StatusUpdater) (MediaProcessor, StatusUpdater) {
	if p == nil {
		p = noMedia
	}
	if u == nil {
		u = noStatus
	}
	return p, u
}
