package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/grow/engine/action"
	"github.com/nathoo/grow/engine/scene"
)

// writeScript writes a single Lua file into a temp dir and returns its path.
func writeScript(t *testing.T, src string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "adventure.lua")
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Directory(t *testing.T) {
	w, err := Load("testdata/cave")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.Name() != "The Cave" {
		t.Errorf("Name = %q, want %q", w.Name(), "The Cave")
	}
	if w.Start().Name() != "entrance" || w.Current() != w.Start() {
		t.Errorf("start = %q, current = %q", w.Start().Name(), w.Current().Name())
	}
	if len(w.Scenes()) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(w.Scenes()))
	}

	entrance := w.Start()
	if entrance.Description != "You stand at the mouth of a dark cave." {
		t.Errorf("description = %q", entrance.Description)
	}
	if got := string(entrance.Image().Data); got != "not really a png" {
		t.Errorf("image data = %q", got)
	}
	rules := entrance.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].Pattern() != "go in | enter | go north" {
		t.Errorf("rule 1 pattern = %q", rules[0].Pattern())
	}
	if a := rules[0].Actions(); len(a) != 1 || a[0] != (action.Goto{Scene: "hall"}) {
		t.Errorf("rule 1 actions = %#v", a)
	}

	hall, ok := w.Scene("hall")
	if !ok {
		t.Fatal("scene 'hall' not found")
	}
	if got := string(hall.Sound().Data); got != "drip drip" {
		t.Errorf("sound data = %q", got)
	}
	out := hall.Rules()[0].Actions()
	if len(out) != 2 || out[0] != (action.Print{Text: "You squint in the daylight."}) {
		t.Errorf("go out actions = %#v", out)
	}
	if a := hall.Rules()[1].Actions(); a[0] != (action.End{Text: "You never wake up."}) {
		t.Errorf("sleep actions = %#v", a)
	}
}

func TestLoad_SingleFile(t *testing.T) {
	w, err := Load("testdata/single/tiny.lua")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if w.Start().Name() != "only" {
		t.Errorf("start should default to the first scene, got %q", w.Start().Name())
	}

	want := []scene.Action{
		action.Extend{}, action.Remove{}, action.Edit{},
		action.Reorder{}, action.ChangeDescription{}, action.End{},
	}
	rules := w.Start().Rules()
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if got := r.Actions()[0]; got != want[i] {
			t.Errorf("rule %d action = %#v, want %#v", i+1, got, want[i])
		}
	}
}

func TestLoad_PlaysThroughEngineTypes(t *testing.T) {
	w, err := Load("testdata/cave")
	if err != nil {
		t.Fatal(err)
	}
	actions, binds, ok := w.Start().Act("SAY hello there")
	if !ok {
		t.Fatal("expected a match")
	}
	var out strings.Builder
	if _, err := actions[0].Act(w.Start(), w, &scene.Env{Out: &out, Vars: binds}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Your voice echoes: hello there.\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing name",
			src:  `Scene "a" { rules = { Rule("x", Print "y") } }`,
			want: "Adventure.name is required",
		},
		{
			name: "no scenes",
			src:  `Adventure { name = "x" }`,
			want: "defines no scenes",
		},
		{
			name: "bad start",
			src:  `Adventure { name = "x", start = "nowhere" } Scene "a" {}`,
			want: `start scene "nowhere" not found`,
		},
		{
			name: "bad goto",
			src:  `Adventure { name = "x" } Scene "a" { rules = { Rule("go", Goto "b") } }`,
			want: `goes to undefined scene "b"`,
		},
		{
			name: "duplicate scene",
			src:  `Adventure { name = "x" } Scene "a" {} Scene "a" {}`,
			want: "defined more than once",
		},
		{
			name: "empty pattern",
			src:  `Adventure { name = "x" } Scene "a" { rules = { Rule("  ", Print "y") } }`,
			want: "empty pattern",
		},
		{
			name: "escaping media",
			src:  `Adventure { name = "x" } Scene "a" { image = "../secret.png" }`,
			want: "inside the adventure directory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScript(t, tt.src))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", ve.Error(), tt.want)
			}
		})
	}
}

func TestLoad_CompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"not a rule", `Adventure { name = "x" } Scene "a" { rules = { "go" } }`, "is not a Rule"},
		{"lua syntax", `Adventure { name = `, "executing adventure.lua"},
		{"wrong argument", `Adventure { name = "x" } Scene "a" { rules = { Rule("go", Goto()) } }`, "executing adventure.lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScript(t, tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad_Sandbox(t *testing.T) {
	for _, global := range []string{"dofile", "loadfile", "load", "os", "io", "require"} {
		t.Run(global, func(t *testing.T) {
			src := `Adventure { name = "x" } Scene "a" {} ` + global + `("x")`
			if _, err := Load(writeScript(t, src)); err == nil {
				t.Errorf("calling %s should fail inside the sandbox", global)
			}
		})
	}
}

func TestCheck_Warnings(t *testing.T) {
	src := `
Adventure { name = "x" }
Scene "a" {
  rules = {
    Rule("*", Print "anything"),
    Rule("look", Print "never"),
    Rule("idle"),
  },
}
Scene "island" {}
`
	ve, err := Check(writeScript(t, src))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	joined := strings.Join(ve.Warnings, "\n")
	for _, want := range []string{
		`rule 2 ("look") is never reached after catch-all rule 1`,
		`rule 3 ("idle") does nothing`,
		`scene "island" cannot be reached`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
}

func TestCheck_Missing(t *testing.T) {
	if _, err := Check(filepath.Join(t.TempDir(), "nope.lua")); err == nil {
		t.Error("expected an error for a missing script")
	}
	if _, err := Check(t.TempDir()); err == nil {
		t.Error("expected an error for a directory without scripts")
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"zoo.lua", "adventure.lua", "alpha.lua"})
	want := []string{"adventure.lua", "alpha.lua", "zoo.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
