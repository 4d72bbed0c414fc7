package save

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nathoo/grow/engine/action"
	"github.com/nathoo/grow/engine/scene"
)

// DefaultName names the adventure created when the store is empty.
const DefaultName = "My Adventure"

// StartScene names the first scene of a new adventure.
const StartScene = "start"

const newDescription = `This is the start of a new adventure. Type ":extend" to add to it, or ":help" for instructions.`

// ScriptLoader compiles an adventure script file into a world.
type ScriptLoader func(path string) (*scene.World, error)

// Manager loads and saves adventures through a Backend and provides the
// persistence actions of the base commands.
type Manager struct {
	backend     Backend
	defaultName string
	script      ScriptLoader
	log         *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDefault sets the adventure opened by Init.
func WithDefault(name string) ManagerOption {
	return func(m *Manager) { m.defaultName = name }
}

// WithScriptLoader enables importing adventure scripts (.lua).
func WithScriptLoader(fn ScriptLoader) ManagerOption {
	return func(m *Manager) { m.script = fn }
}

// WithLogger sets the logger for store operations.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a manager storing adventures in b.
func NewManager(b Backend, opts ...ManagerOption) *Manager {
	m := &Manager{
		backend: b,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewWorld creates an adventure holding only an empty start scene.
func NewWorld(name string) *scene.World {
	return scene.NewWorld(name, scene.New(StartScene, newDescription))
}

// Init opens the default adventure, falling back to the first stored one.
// An empty store gets a new adventure.
func (m *Manager) Init(env *scene.Env) (*scene.World, error) {
	ctx := context.Background()
	name := m.defaultName
	if name == "" {
		names, err := m.backend.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(names) > 0 {
			name = names[0]
		}
	}
	if name == "" {
		name = DefaultName
	}

	w, err := m.Load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		w = NewWorld(name)
		if err := m.Save(ctx, w); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if env != nil && env.Out != nil {
		describe(env.Out, w.Current())
	}
	return w, nil
}

// Load reads and decodes the named adventure.
func (m *Manager) Load(ctx context.Context, name string) (*scene.World, error) {
	data, err := m.backend.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	w, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", name, err)
	}
	m.log.Info("adventure loaded", "adventure", name, "scenes", len(w.Scenes()))
	return w, nil
}

// Save encodes and stores w under its name.
func (m *Manager) Save(ctx context.Context, w *scene.World) error {
	data, err := Encode(w)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", w.Name(), err)
	}
	if err := m.backend.Write(ctx, w.Name(), data); err != nil {
		return err
	}
	m.log.Info("adventure saved", "adventure", w.Name(), "bytes", len(data))
	return nil
}

// Locate describes where the named adventure is stored.
func (m *Manager) Locate(name string) string {
	return m.backend.Locate(name)
}

// SaveImage attaches an image to sc and saves w.
func (m *Manager) SaveImage(sc *scene.Scene, w *scene.World, name string, data []byte) error {
	sc.SetImage(scene.Resource{Name: MediaName(filepath.Ext(name)), Data: data})
	return m.Save(context.Background(), w)
}

// SaveSound attaches a sound to sc and saves w.
func (m *Manager) SaveSound(sc *scene.Scene, w *scene.World, name string, data []byte) error {
	sc.SetSound(scene.Resource{Name: MediaName(filepath.Ext(name)), Data: data})
	return m.Save(context.Background(), w)
}

// Import reads an adventure from an archive or, with a script loader, a
// .lua script or a directory of them.
func (m *Manager) Import(path string) (*scene.World, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") || isDir(path) {
		if m.script == nil {
			return nil, errors.New("adventure scripts are not supported")
		}
		return m.script(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// exists reports whether the named adventure is stored. Only ErrNotFound
// counts as absent.
func (m *Manager) exists(ctx context.Context, name string) (bool, error) {
	_, err := m.backend.Read(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// saveReporting saves w and tells the player how it went. Storage errors
// are reported, not returned.
func (m *Manager) saveReporting(env *scene.Env, w *scene.World) bool {
	if err := m.Save(context.Background(), w); err != nil {
		m.log.Error("saving adventure", "adventure", w.Name(), "err", err)
		fmt.Fprintf(env.Out, "Could not save %q: %v\n", w.Name(), err)
		return false
	}
	fmt.Fprintf(env.Out, "Saved %q to %s.\n", w.Name(), m.Locate(w.Name()))
	return true
}

// offerSave asks whether to save w before it is left.
func (m *Manager) offerSave(env *scene.Env, w *scene.World) error {
	ok, err := confirm(env, fmt.Sprintf("Would you like to save %q first? (yes/no)", w.Name()))
	if err != nil {
		return err
	}
	if ok {
		m.saveReporting(env, w)
	}
	return nil
}

// confirm asks a yes/no question until it gets an answer.
func confirm(env *scene.Env, question string) (bool, error) {
	for {
		answer, err := action.Ask(env, question)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(env.Out, `Please answer "yes" or "no".`)
	}
}

// switchTo replaces w's contents with next, describes where the player is,
// and returns the scene to move to.
func switchTo(env *scene.Env, w, next *scene.World) *scene.Scene {
	w.Replace(next)
	fmt.Fprintf(env.Out, "Now playing %q.\n", w.Name())
	describe(env.Out, w.Current())
	return w.Current()
}

func describe(out io.Writer, sc *scene.Scene) {
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}
}

func cancelled(sc *scene.Scene, env *scene.Env, err error) (*scene.Scene, error) {
	if errors.Is(err, action.ErrCancelled) {
		fmt.Fprintln(env.Out, "Cancelled.")
		return sc, nil
	}
	return sc, err
}

// NewAction starts a new adventure.
func (m *Manager) NewAction() scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		if err := m.offerSave(env, w); err != nil {
			return cancelled(sc, env, err)
		}
		name, err := action.Ask(env, "What is the name of the new adventure?")
		if err != nil {
			return cancelled(sc, env, err)
		}
		if err := checkName(name); err != nil {
			fmt.Fprintf(env.Out, "%v.\n", err)
			return sc, nil
		}
		taken, err := m.exists(context.Background(), name)
		if err != nil {
			m.log.Error("checking adventure", "adventure", name, "err", err)
			fmt.Fprintf(env.Out, "Could not check for %q: %v\n", name, err)
			return sc, nil
		}
		if taken {
			fmt.Fprintf(env.Out, "An adventure called %q already exists.\n", name)
			return sc, nil
		}
		next := NewWorld(name)
		if !m.saveReporting(env, next) {
			return sc, nil
		}
		return switchTo(env, w, next), nil
	})
}

// OpenAction switches to another stored adventure.
func (m *Manager) OpenAction() scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		ctx := context.Background()
		names, err := m.backend.List(ctx)
		if err != nil {
			m.log.Error("listing adventures", "err", err)
			fmt.Fprintf(env.Out, "Could not list adventures: %v\n", err)
			return sc, nil
		}
		if len(names) == 0 {
			fmt.Fprintln(env.Out, "There are no saved adventures.")
			return sc, nil
		}
		fmt.Fprintln(env.Out, "Adventures:")
		for i, name := range names {
			fmt.Fprintf(env.Out, "  %d. %s\n", i+1, name)
		}
		answer, err := action.Ask(env, "Which adventure should be opened?")
		if err != nil {
			return cancelled(sc, env, err)
		}
		name := answer
		if i, err := strconv.Atoi(answer); err == nil && i >= 1 && i <= len(names) {
			name = names[i-1]
		}

		next, err := m.Load(ctx, name)
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintf(env.Out, "There is no adventure called %q.\n", name)
			return sc, nil
		}
		if err != nil {
			m.log.Error("opening adventure", "adventure", name, "err", err)
			fmt.Fprintf(env.Out, "Could not open %q: %v\n", name, err)
			return sc, nil
		}
		if err := m.offerSave(env, w); err != nil {
			return cancelled(sc, env, err)
		}
		return switchTo(env, w, next), nil
	})
}

// SaveAction saves the current adventure.
func (m *Manager) SaveAction() scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		m.saveReporting(env, w)
		return sc, nil
	})
}

// QuitAction offers to save, then ends the game.
func (m *Manager) QuitAction() scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		if err := m.offerSave(env, w); err != nil {
			return cancelled(sc, env, err)
		}
		fmt.Fprintln(env.Out, "Goodbye.")
		return nil, nil
	})
}

// ImportAction imports an adventure file into the store and opens it.
func (m *Manager) ImportAction() scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		path, err := action.Ask(env, "Enter the path of the adventure to import (.grow or .lua):")
		if err != nil {
			return cancelled(sc, env, err)
		}
		next, err := m.Import(path)
		if err != nil {
			m.log.Warn("importing adventure", "path", path, "err", err)
			fmt.Fprintf(env.Out, "Could not import %s: %v\n", path, err)
			return sc, nil
		}
		taken, err := m.exists(context.Background(), next.Name())
		if err != nil {
			m.log.Error("checking adventure", "adventure", next.Name(), "err", err)
			fmt.Fprintf(env.Out, "Could not check for %q: %v\n", next.Name(), err)
			return sc, nil
		}
		if taken {
			ok, err := confirm(env, fmt.Sprintf("An adventure called %q already exists. Replace it? (yes/no)", next.Name()))
			if err != nil {
				return cancelled(sc, env, err)
			}
			if !ok {
				fmt.Fprintln(env.Out, "Nothing imported.")
				return sc, nil
			}
		}
		if err := m.offerSave(env, w); err != nil {
			return cancelled(sc, env, err)
		}
		if !m.saveReporting(env, next) {
			return sc, nil
		}
		return switchTo(env, w, next), nil
	})
}

// ImportImageAction attaches an image file to the current scene.
func (m *Manager) ImportImageAction() scene.Action {
	return m.importMedia(scene.KindImage, m.SaveImage)
}

// ImportMusicAction attaches a sound file to the current scene.
func (m *Manager) ImportMusicAction() scene.Action {
	return m.importMedia(scene.KindSound, m.SaveSound)
}

func (m *Manager) importMedia(kind scene.Kind, attach func(*scene.Scene, *scene.World, string, []byte) error) scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		path, err := action.Ask(env, fmt.Sprintf("Enter the path of the %s file:", kind))
		if err != nil {
			return cancelled(sc, env, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(env.Out, "Could not read %s: %v\n", path, err)
			return sc, nil
		}
		if err := attach(sc, w, filepath.Base(path), data); err != nil {
			m.log.Error("saving media", "kind", kind, "err", err)
			fmt.Fprintf(env.Out, "Could not save %q: %v\n", w.Name(), err)
			return sc, nil
		}
		fmt.Fprintf(env.Out, "Added %s %s to scene %q.\n", kind, filepath.Base(path), sc.Name())
		return sc, nil
	})
}

// ClearImageAction removes the current scene's image.
func (m *Manager) ClearImageAction() scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		sc.SetImage(scene.Resource{})
		fmt.Fprintln(env.Out, "Image cleared.")
		m.saveReporting(env, w)
		return sc, nil
	})
}

// ClearMusicAction removes the current scene's sound.
func (m *Manager) ClearMusicAction() scene.Action {
	return scene.ActionFunc(func(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
		sc.SetSound(scene.Resource{})
		fmt.Fprintln(env.Out, "Music cleared.")
		m.saveReporting(env, w)
		return sc, nil
	})
}
