package scene

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoSuchScene is matched by every NoSuchSceneError.
var ErrNoSuchScene = errors.New("no such scene")

// NoSuchSceneError reports a transition to a scene that is not in the world.
type NoSuchSceneError struct {
	Name string
}

func (e *NoSuchSceneError) Error() string {
	return fmt.Sprintf("no such scene %q", e.Name)
}

// Is makes errors.Is(err, ErrNoSuchScene) hold.
func (e *NoSuchSceneError) Is(target error) bool {
	return target == ErrNoSuchScene
}

// World is an adventure: named scenes plus a pointer to the current one.
// current always points at a scene held in scenes.
type World struct {
	name    string
	scenes  map[string]*Scene
	start   *Scene
	current *Scene
}

// NewWorld creates a world whose start and current scene is start.
func NewWorld(name string, start *Scene) *World {
	return &World{
		name:    name,
		scenes:  map[string]*Scene{start.Name(): start},
		start:   start,
		current: start,
	}
}

// Name returns the adventure name.
func (w *World) Name() string {
	return w.name
}

// Current returns the current scene.
func (w *World) Current() *Scene {
	return w.current
}

// Start returns the scene the adventure begins in.
func (w *World) Start() *Scene {
	return w.start
}

// SetStart makes the named scene the starting scene.
func (w *World) SetStart(name string) error {
	sc, ok := w.scenes[name]
	if !ok {
		return &NoSuchSceneError{Name: name}
	}
	w.start = sc
	return nil
}

// Scene looks up a scene by name.
func (w *World) Scene(name string) (*Scene, bool) {
	sc, ok := w.scenes[name]
	return sc, ok
}

// Scenes returns every scene sorted by name.
func (w *World) Scenes() []*Scene {
	out := make([]*Scene, 0, len(w.scenes))
	for _, sc := range w.scenes {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Add inserts a scene. Names must be unique.
func (w *World) Add(sc *Scene) error {
	if _, ok := w.scenes[sc.Name()]; ok {
		return fmt.Errorf("scene %q already exists", sc.Name())
	}
	w.scenes[sc.Name()] = sc
	return nil
}

// Move makes next the current scene. next must be the very scene the world
// holds under its name; otherwise Move fails and current is untouched.
func (w *World) Move(next *Scene) error {
	if next == nil {
		return &NoSuchSceneError{}
	}
	if sc, ok := w.scenes[next.Name()]; !ok || sc != next {
		return &NoSuchSceneError{Name: next.Name()}
	}
	w.current = next
	return nil
}

// Replace swaps the contents of w for those of other in place, so holders
// of w see the new adventure.
func (w *World) Replace(other *World) {
	w.name = other.name
	w.scenes = other.scenes
	w.start = other.start
	w.current = other.current
}
