// Package action implements the narrative and authoring actions that rules
// run. Narrative actions never touch the scene graph; authoring actions edit
// it in place through prompts read from the shared input.
package action

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nathoo/grow/engine/pattern"
	"github.com/nathoo/grow/engine/scene"
)

// ErrCancelled is returned by prompts when the player types "cancel" or the
// input runs out.
var ErrCancelled = errors.New("cancelled")

// CancelWord aborts any authoring prompt.
const CancelWord = "cancel"

// Print writes its text, with captures expanded, and stays in the scene.
type Print struct {
	Text string
}

// Act writes the text with captures expanded and stays in the scene.
func (a Print) Act(sc *scene.Scene, _ *scene.World, env *scene.Env) (*scene.Scene, error) {
	fmt.Fprintln(env.Out, pattern.Expand(a.Text, env.Vars))
	return sc, nil
}

// Goto moves to the named scene and describes it.
type Goto struct {
	Scene string
}

// Act describes the destination and moves there.
func (a Goto) Act(_ *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
	next, ok := w.Scene(a.Scene)
	if !ok {
		// A detached scene fails the world's Move, which the executor reports.
		return scene.New(a.Scene, ""), nil
	}
	describe(env.Out, next)
	return next, nil
}

// End writes its text and ends the game.
type End struct {
	Text string
}

// Act writes the closing text, if any, and ends the game.
func (a End) Act(_ *scene.Scene, _ *scene.World, env *scene.Env) (*scene.Scene, error) {
	if a.Text != "" {
		fmt.Fprintln(env.Out, pattern.Expand(a.Text, env.Vars))
	}
	return nil, nil
}

// Restart returns to the adventure's starting scene.
type Restart struct{}

// Act describes the starting scene and returns it.
func (Restart) Act(_ *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
	describe(env.Out, w.Start())
	return w.Start(), nil
}

// View summarizes the current scene.
type View struct{}

// Act prints the scene name, description, media and numbered rules.
func (View) Act(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
	out := env.Out
	name := sc.Name()
	if sc == w.Start() {
		name += " (start)"
	}
	fmt.Fprintf(out, "Adventure: %s\n", w.Name())
	fmt.Fprintf(out, "Scene: %s\n", name)
	fmt.Fprintf(out, "Description: %s\n", sc.Description)
	fmt.Fprintf(out, "Image: %s\n", mediaName(sc.Image()))
	fmt.Fprintf(out, "Sound: %s\n", mediaName(sc.Sound()))
	listRules(out, sc)
	return sc, nil
}

func mediaName(r scene.Resource) string {
	switch {
	case r.Empty():
		return "none"
	case r.Name == "":
		return fmt.Sprintf("%d bytes", len(r.Data))
	default:
		return r.Name
	}
}

// listRules prints the scene's rules numbered from 1.
func listRules(out io.Writer, sc *scene.Scene) {
	rules := sc.Rules()
	if len(rules) == 0 {
		fmt.Fprintln(out, "This scene has no rules.")
		return
	}
	fmt.Fprintln(out, "Rules:")
	for i, r := range rules {
		fmt.Fprintf(out, "  %d. %s -> %s\n", i+1, r.Pattern(), Summary(r.Actions()))
	}
}

// Summary renders actions as a short one-line description.
func Summary(actions []scene.Action) string {
	if len(actions) == 0 {
		return "nothing"
	}
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, SpecOf(a).String())
	}
	return strings.Join(parts, "; ")
}

func describe(out io.Writer, sc *scene.Scene) {
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}
}
