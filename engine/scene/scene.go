// Package scene defines the narrative graph: worlds, scenes, rules, and the
// Action contract that drives transitions between scenes.
package scene

import (
	"fmt"

	"github.com/nathoo/grow/engine/pattern"
)

// Rule pairs an input pattern with the ordered actions it triggers.
// A rule is never mutated after construction; Edit replaces it wholesale.
type Rule struct {
	pattern pattern.Pattern
	actions []Action
}

// NewRule compiles pat and returns a rule running actions in order.
func NewRule(pat string, actions ...Action) *Rule {
	return &Rule{pattern: pattern.Compile(pat), actions: actions}
}

// Pattern returns the rule's pattern source.
func (r *Rule) Pattern() string {
	return r.pattern.String()
}

// Actions returns a copy of the rule's actions.
func (r *Rule) Actions() []Action {
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Match matches input against the rule's pattern.
func (r *Rule) Match(input string) (pattern.Bindings, bool) {
	return r.pattern.Match(input)
}

// Scene is a node in the narrative graph.
type Scene struct {
	name        string
	Description string

	rules []*Rule

	image        Resource
	sound        Resource
	imageChanged bool
	soundChanged bool
}

// New creates an empty scene.
func New(name, description string) *Scene {
	return &Scene{
		name:        name,
		Description: description,
		image:       Resource{Kind: KindImage},
		sound:       Resource{Kind: KindSound},
	}
}

// Name returns the scene name, unique within its world.
func (s *Scene) Name() string {
	return s.name
}

// Rules returns a copy of the scene's rules in match order.
func (s *Scene) Rules() []*Rule {
	out := make([]*Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Act returns the actions of the first rule matching input, along with the
// captured bindings. ok is false when no rule matches.
func (s *Scene) Act(input string) (actions []Action, binds pattern.Bindings, ok bool) {
	for _, r := range s.rules {
		if b, matched := r.Match(input); matched {
			return r.Actions(), b, true
		}
	}
	return nil, nil, false
}

// AddRule appends r, giving it the lowest match priority.
func (s *Scene) AddRule(r *Rule) {
	s.rules = append(s.rules, r)
}

// RemoveRule deletes the rule at index i.
func (s *Scene) RemoveRule(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	return nil
}

// ReplaceRule swaps the rule at index i for r.
func (s *Scene) ReplaceRule(i int, r *Rule) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.rules[i] = r
	return nil
}

// MoveRule moves the rule at index from so that it ends up at index to.
func (s *Scene) MoveRule(from, to int) error {
	if err := s.checkIndex(from); err != nil {
		return err
	}
	if err := s.checkIndex(to); err != nil {
		return err
	}
	r := s.rules[from]
	s.rules = append(s.rules[:from], s.rules[from+1:]...)
	s.rules = append(s.rules[:to], append([]*Rule{r}, s.rules[to:]...)...)
	return nil
}

func (s *Scene) checkIndex(i int) error {
	if i < 0 || i >= len(s.rules) {
		return fmt.Errorf("scene %q: rule %d out of range [0,%d)", s.name, i, len(s.rules))
	}
	return nil
}

// Image returns the scene's image.
func (s *Scene) Image() Resource {
	return s.image
}

// SetImage replaces the image and marks it changed.
func (s *Scene) SetImage(r Resource) {
	r.Kind = KindImage
	s.image = r
	s.imageChanged = true
}

// ImageChanged reports whether the image changed since the flag was cleared.
func (s *Scene) ImageChanged() bool {
	return s.imageChanged
}

// ClearImageChanged clears the image dirty flag.
func (s *Scene) ClearImageChanged() {
	s.imageChanged = false
}

// Sound returns the scene's sound.
func (s *Scene) Sound() Resource {
	return s.sound
}

// SetSound replaces the sound and marks it changed.
func (s *Scene) SetSound(r Resource) {
	r.Kind = KindSound
	s.sound = r
	s.soundChanged = true
}

// SoundChanged reports whether the sound changed since the flag was cleared.
func (s *Scene) SoundChanged() bool {
	return s.soundChanged
}

// ClearSoundChanged clears the sound dirty flag.
func (s *Scene) ClearSoundChanged() {
	s.soundChanged = false
}
