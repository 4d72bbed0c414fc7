package scene

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// noop is an action that stays in place.
var noop = ActionFunc(func(sc *Scene, _ *World, _ *Env) (*Scene, error) { return sc, nil })

func patterns(sc *Scene) []string {
	var out []string
	for _, r := range sc.Rules() {
		out = append(out, r.Pattern())
	}
	return out
}

func TestScene_ActFirstMatchWins(t *testing.T) {
	sc := New("hall", "A hall.")
	first := ActionFunc(func(sc *Scene, _ *World, _ *Env) (*Scene, error) { return sc, nil })
	second := ActionFunc(func(*Scene, *World, *Env) (*Scene, error) { return nil, nil })
	sc.AddRule(NewRule("take <item>", first))
	sc.AddRule(NewRule("take lamp", second))

	actions, binds, ok := sc.Act("take lamp")
	if !ok {
		t.Fatal("expected a match")
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if binds["item"] != "lamp" {
		t.Errorf("item = %q, want lamp", binds["item"])
	}
	next, _ := actions[0].Act(sc, nil, &Env{})
	if next != sc {
		t.Error("expected the first rule's action to run")
	}
}

func TestScene_ActNoMatch(t *testing.T) {
	sc := New("hall", "")
	sc.AddRule(NewRule("look", noop))
	if _, _, ok := sc.Act("dance"); ok {
		t.Error("expected no match")
	}
}

func TestScene_RuleEditing(t *testing.T) {
	sc := New("hall", "")
	for _, p := range []string{"a", "b", "c", "d"} {
		sc.AddRule(NewRule(p, noop))
	}

	if err := sc.MoveRule(3, 0); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(patterns(sc), ","); got != "d,a,b,c" {
		t.Errorf("after move to front: %s", got)
	}
	if err := sc.MoveRule(0, 3); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(patterns(sc), ","); got != "a,b,c,d" {
		t.Errorf("after move to back: %s", got)
	}
	if err := sc.RemoveRule(1); err != nil {
		t.Fatal(err)
	}
	if err := sc.ReplaceRule(0, NewRule("z", noop)); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(patterns(sc), ","); got != "z,c,d" {
		t.Errorf("after remove+replace: %s", got)
	}
	if err := sc.RemoveRule(3); err == nil {
		t.Error("expected out of range error")
	}
	if err := sc.MoveRule(0, -1); err == nil {
		t.Error("expected out of range error")
	}
}

func TestScene_MediaFlags(t *testing.T) {
	sc := New("hall", "")
	if sc.ImageChanged() || sc.SoundChanged() {
		t.Fatal("new scene should be clean")
	}
	sc.SetImage(Resource{Name: "hall.png", Data: []byte{1}})
	if !sc.ImageChanged() || sc.SoundChanged() {
		t.Error("only image flag should be set")
	}
	if sc.Image().Kind != KindImage {
		t.Error("image kind not set")
	}
	sc.ClearImageChanged()
	sc.SetSound(Resource{})
	if sc.ImageChanged() || !sc.SoundChanged() {
		t.Error("only sound flag should be set")
	}
	if !sc.Sound().Empty() {
		t.Error("cleared sound should be empty")
	}
}

func TestWorld_MoveUnknownKeepsCurrent(t *testing.T) {
	start := New("start", "")
	w := NewWorld("test", start)
	end := New("end", "")
	if err := w.Add(end); err != nil {
		t.Fatal(err)
	}

	if err := w.Move(end); err != nil {
		t.Fatalf("Move(end): %v", err)
	}
	if w.Current() != end {
		t.Error("current should be end")
	}

	err := w.Move(New("nowhere", ""))
	if !errors.Is(err, ErrNoSuchScene) {
		t.Fatalf("expected ErrNoSuchScene, got %v", err)
	}
	var nse *NoSuchSceneError
	if !errors.As(err, &nse) || nse.Name != "nowhere" {
		t.Errorf("error = %v", err)
	}
	if w.Current() != end {
		t.Error("failed move must not change current")
	}

	// Same name, different identity.
	if err := w.Move(New("start", "")); err == nil {
		t.Error("expected impostor scene to be rejected")
	}
	if err := w.Move(nil); err == nil {
		t.Error("expected nil scene to be rejected")
	}
}

func TestWorld_AddAndSetStart(t *testing.T) {
	start := New("start", "")
	w := NewWorld("test", start)
	if err := w.Add(New("start", "")); err == nil {
		t.Error("expected duplicate error")
	}
	cave := New("cave", "")
	if err := w.Add(cave); err != nil {
		t.Fatal(err)
	}
	if got := len(w.Scenes()); got != 2 {
		t.Errorf("scenes = %d, want 2", got)
	}

	if err := w.SetStart("cave"); err != nil {
		t.Fatal(err)
	}
	if w.Start() != cave {
		t.Errorf("start = %q, want cave", w.Start().Name())
	}
	if w.Current() != start {
		t.Error("SetStart must not move the current scene")
	}
	if err := w.SetStart("nowhere"); !errors.Is(err, ErrNoSuchScene) {
		t.Errorf("SetStart(nowhere) = %v", err)
	}
	if w.Start() != cave {
		t.Error("failed SetStart changed the start scene")
	}
}

func TestWorld_Replace(t *testing.T) {
	w := NewWorld("one", New("a", ""))
	other := NewWorld("two", New("b", ""))
	w.Replace(other)
	if w.Name() != "two" || w.Current().Name() != "b" || w.Start().Name() != "b" {
		t.Errorf("replace failed: %s/%s", w.Name(), w.Current().Name())
	}
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("one\r\ntwo\n"))
	for _, want := range []string{"one", "two"} {
		got, err := r.ReadLine()
		if err != nil || got != want {
			t.Fatalf("ReadLine() = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := r.ReadLine(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
