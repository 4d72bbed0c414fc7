package action

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nathoo/grow/engine/scene"
)

// Ask writes question, then reads one trimmed line. Typing CancelWord or
// reaching the end of input yields ErrCancelled.
func Ask(env *scene.Env, question string) (string, error) {
	fmt.Fprintln(env.Out, question)
	line, err := env.In.ReadLine()
	if errors.Is(err, io.EOF) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, CancelWord) {
		return "", ErrCancelled
	}
	return line, nil
}

// askRule asks for a rule number (1-based) and returns its index.
func askRule(env *scene.Env, sc *scene.Scene, question string) (int, error) {
	n := len(sc.Rules())
	for {
		answer, err := Ask(env, question)
		if err != nil {
			return 0, err
		}
		i, err := strconv.Atoi(answer)
		if err == nil && i >= 1 && i <= n {
			return i - 1, nil
		}
		fmt.Fprintf(env.Out, "Please enter a number from 1 to %d.\n", n)
	}
}

// askActions asks what a rule should do and builds its actions. A new
// destination scene is created in w after asking for its description.
func askActions(env *scene.Env, w *scene.World) ([]scene.Action, error) {
	var actions []scene.Action
	msg, err := Ask(env, "What should be printed? (leave blank for nothing)")
	if err != nil {
		return nil, err
	}
	if msg != "" {
		actions = append(actions, Print{Text: msg})
	}

	dest, err := Ask(env, "Which scene should it go to? (leave blank to stay here)")
	if err != nil {
		return nil, err
	}
	if dest == "" {
		return actions, nil
	}
	if _, ok := w.Scene(dest); !ok {
		desc, err := Ask(env, fmt.Sprintf("%q is a new scene. Describe it:", dest))
		if err != nil {
			return nil, err
		}
		if err := w.Add(scene.New(dest, desc)); err != nil {
			return nil, err
		}
		fmt.Fprintf(env.Out, "Created scene %q.\n", dest)
	}
	return append(actions, Goto{Scene: dest}), nil
}

// cancelled turns ErrCancelled into a normal outcome and passes other
// errors through.
func cancelled(sc *scene.Scene, env *scene.Env, err error) (*scene.Scene, error) {
	if errors.Is(err, ErrCancelled) {
		fmt.Fprintln(env.Out, "Cancelled.")
		return sc, nil
	}
	return sc, err
}

// requireRules prints a notice and returns false when sc has no rules.
func requireRules(sc *scene.Scene, env *scene.Env) bool {
	if len(sc.Rules()) == 0 {
		fmt.Fprintln(env.Out, "This scene has no rules.")
		return false
	}
	return true
}

// Extend appends a new rule to the current scene.
type Extend struct{}

// Act asks for a pattern, a message and a destination, creating the
// destination scene when it is new.
func (Extend) Act(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
	pat, err := Ask(env, "What should the player type? (type \"cancel\" at any time to stop)")
	if err != nil {
		return cancelled(sc, env, err)
	}
	if pat == "" {
		fmt.Fprintln(env.Out, "A rule needs something to match. Nothing added.")
		return sc, nil
	}
	actions, err := askActions(env, w)
	if err != nil {
		return cancelled(sc, env, err)
	}
	sc.AddRule(scene.NewRule(pat, actions...))
	fmt.Fprintf(env.Out, "Added rule %d: %s\n", len(sc.Rules()), pat)
	return sc, nil
}

// Remove deletes a rule from the current scene.
type Remove struct{}

// Act asks which rule to delete.
func (Remove) Act(sc *scene.Scene, _ *scene.World, env *scene.Env) (*scene.Scene, error) {
	if !requireRules(sc, env) {
		return sc, nil
	}
	listRules(env.Out, sc)
	i, err := askRule(env, sc, "Which rule should be removed?")
	if err != nil {
		return cancelled(sc, env, err)
	}
	pat := sc.Rules()[i].Pattern()
	if err := sc.RemoveRule(i); err != nil {
		return sc, err
	}
	fmt.Fprintf(env.Out, "Removed rule: %s\n", pat)
	return sc, nil
}

// Edit replaces a rule of the current scene.
type Edit struct{}

// Act asks which rule to change, suggesting its old pattern, then asks
// for its actions again.
func (Edit) Act(sc *scene.Scene, w *scene.World, env *scene.Env) (*scene.Scene, error) {
	if !requireRules(sc, env) {
		return sc, nil
	}
	listRules(env.Out, sc)
	i, err := askRule(env, sc, "Which rule should be edited?")
	if err != nil {
		return cancelled(sc, env, err)
	}
	old := sc.Rules()[i].Pattern()
	env.Suggest(old)
	pat, err := Ask(env, fmt.Sprintf("What should the player type? (leave blank to keep %q)", old))
	if err != nil {
		return cancelled(sc, env, err)
	}
	if pat == "" {
		pat = old
	}
	actions, err := askActions(env, w)
	if err != nil {
		return cancelled(sc, env, err)
	}
	if err := sc.ReplaceRule(i, scene.NewRule(pat, actions...)); err != nil {
		return sc, err
	}
	fmt.Fprintf(env.Out, "Updated rule %d: %s\n", i+1, pat)
	return sc, nil
}

// Reorder moves a rule of the current scene to a new position.
type Reorder struct{}

// Act asks for a rule and its new position.
func (Reorder) Act(sc *scene.Scene, _ *scene.World, env *scene.Env) (*scene.Scene, error) {
	if !requireRules(sc, env) {
		return sc, nil
	}
	listRules(env.Out, sc)
	from, err := askRule(env, sc, "Which rule should be moved?")
	if err != nil {
		return cancelled(sc, env, err)
	}
	to, err := askRule(env, sc, "To which position?")
	if err != nil {
		return cancelled(sc, env, err)
	}
	if err := sc.MoveRule(from, to); err != nil {
		return sc, err
	}
	listRules(env.Out, sc)
	return sc, nil
}

// ChangeDescription replaces the current scene's description.
type ChangeDescription struct{}

// Act asks for a new description, suggesting the old one.
func (ChangeDescription) Act(sc *scene.Scene, _ *scene.World, env *scene.Env) (*scene.Scene, error) {
	env.Suggest(sc.Description)
	desc, err := Ask(env, "Enter the new description:")
	if err != nil {
		return cancelled(sc, env, err)
	}
	sc.Description = desc
	fmt.Fprintln(env.Out, "Description updated.")
	return sc, nil
}
