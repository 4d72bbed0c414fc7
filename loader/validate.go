package loader

import (
	"fmt"
	"path"
	"strings"

	"github.com/nathoo/grow/engine/action"
	"github.com/nathoo/grow/engine/pattern"
	"github.com/nathoo/grow/engine/save"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Known action kinds.
var validKinds = map[string]bool{
	action.KindPrint:       true,
	action.KindGoto:        true,
	action.KindEnd:         true,
	action.KindRestart:     true,
	action.KindView:        true,
	action.KindExtend:      true,
	action.KindRemove:      true,
	action.KindEdit:        true,
	action.KindReorder:     true,
	action.KindDescription: true,
}

// validate checks the manifest for referential integrity and consistency.
func validate(m *save.Manifest) *ValidationError {
	ve := &ValidationError{}

	if m.Name == "" {
		ve.errorf("Adventure.name is required")
	}
	if len(m.Scenes) == 0 {
		ve.errorf("adventure defines no scenes")
		return ve
	}

	scenes := map[string]bool{}
	for _, sc := range m.Scenes {
		if scenes[sc.Name] {
			ve.errorf("scene %q is defined more than once", sc.Name)
		}
		scenes[sc.Name] = true
	}
	if !scenes[m.Start] {
		ve.errorf("start scene %q not found in defined scenes", m.Start)
	}

	for _, sc := range m.Scenes {
		validateMedia(sc.Name, "image", sc.Image, ve)
		validateMedia(sc.Name, "sound", sc.Sound, ve)
		validateRules(sc, scenes, ve)
	}

	for _, name := range unreachable(m) {
		ve.warnf("scene %q cannot be reached from the start scene", name)
	}
	return ve
}

func validateMedia(sceneName, field, p string, ve *ValidationError) {
	if p == "" {
		return
	}
	clean := path.Clean(p)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		ve.errorf("scene %q %s %q must be a path inside the adventure directory", sceneName, field, p)
	}
}

func validateRules(sc save.SceneRecord, scenes map[string]bool, ve *ValidationError) {
	catchAll := 0
	for i, r := range sc.Rules {
		n := i + 1
		if strings.TrimSpace(r.Pattern) == "" {
			ve.errorf("scene %q rule %d has an empty pattern", sc.Name, n)
		}
		if catchAll > 0 {
			ve.warnf("scene %q rule %d (%q) is never reached after catch-all rule %d", sc.Name, n, r.Pattern, catchAll)
		} else if _, ok := pattern.Match(r.Pattern, ""); ok {
			catchAll = n
		}
		if len(r.Actions) == 0 {
			ve.warnf("scene %q rule %d (%q) does nothing", sc.Name, n, r.Pattern)
		}
		for _, a := range r.Actions {
			if !validKinds[a.Kind] {
				ve.errorf("scene %q rule %d has unknown action %q", sc.Name, n, a.Kind)
				continue
			}
			if a.Kind == action.KindGoto && !scenes[a.Scene] {
				ve.errorf("scene %q rule %d goes to undefined scene %q", sc.Name, n, a.Scene)
			}
		}
	}
}

// unreachable lists scenes no chain of goto actions leads to from the
// start scene, in definition order.
func unreachable(m *save.Manifest) []string {
	edges := map[string][]string{}
	for _, sc := range m.Scenes {
		for _, r := range sc.Rules {
			for _, a := range r.Actions {
				if a.Kind == action.KindGoto {
					edges[sc.Name] = append(edges[sc.Name], a.Scene)
				}
			}
		}
	}

	seen := map[string]bool{m.Start: true}
	queue := []string{m.Start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range edges[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	var out []string
	for _, sc := range m.Scenes {
		if !seen[sc.Name] {
			out = append(out, sc.Name)
		}
	}
	return out
}
