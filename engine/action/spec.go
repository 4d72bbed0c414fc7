package action

import (
	"fmt"
	"strconv"

	"github.com/nathoo/grow/engine/scene"
)

// Kinds of persisted actions.
const (
	KindPrint       = "print"
	KindGoto        = "goto"
	KindEnd         = "end"
	KindRestart     = "restart"
	KindView        = "view"
	KindExtend      = "extend"
	KindRemove      = "remove"
	KindEdit        = "edit"
	KindReorder     = "reorder"
	KindDescription = "description"

	// KindCustom marks actions with no persisted form, such as the store's
	// save and quit actions.
	KindCustom = "custom"
)

// Spec is the serializable form of an action.
type Spec struct {
	Kind  string `yaml:"kind"`
	Text  string `yaml:"text,omitempty"`
	Scene string `yaml:"scene,omitempty"`
}

func (s Spec) String() string {
	switch s.Kind {
	case KindPrint:
		return "print " + strconv.Quote(s.Text)
	case KindGoto:
		return "goto " + s.Scene
	case KindEnd:
		if s.Text == "" {
			return "end"
		}
		return "end " + strconv.Quote(s.Text)
	default:
		return s.Kind
	}
}

// Specer is implemented by actions that can be persisted.
type Specer interface {
	Spec() Spec
}

func (a Print) Spec() Spec           { return Spec{Kind: KindPrint, Text: a.Text} }
func (a Goto) Spec() Spec            { return Spec{Kind: KindGoto, Scene: a.Scene} }
func (a End) Spec() Spec             { return Spec{Kind: KindEnd, Text: a.Text} }
func (Restart) Spec() Spec           { return Spec{Kind: KindRestart} }
func (View) Spec() Spec              { return Spec{Kind: KindView} }
func (Extend) Spec() Spec            { return Spec{Kind: KindExtend} }
func (Remove) Spec() Spec            { return Spec{Kind: KindRemove} }
func (Edit) Spec() Spec              { return Spec{Kind: KindEdit} }
func (Reorder) Spec() Spec           { return Spec{Kind: KindReorder} }
func (ChangeDescription) Spec() Spec { return Spec{Kind: KindDescription} }

// SpecOf returns the persisted form of a, or a KindCustom spec.
func SpecOf(a scene.Action) Spec {
	if s, ok := a.(Specer); ok {
		return s.Spec()
	}
	return Spec{Kind: KindCustom}
}

// FromSpec builds the action described by s.
func FromSpec(s Spec) (scene.Action, error) {
	switch s.Kind {
	case KindPrint:
		return Print{Text: s.Text}, nil
	case KindGoto:
		if s.Scene == "" {
			return nil, fmt.Errorf("goto action needs a scene")
		}
		return Goto{Scene: s.Scene}, nil
	case KindEnd:
		return End{Text: s.Text}, nil
	case KindRestart:
		return Restart{}, nil
	case KindView:
		return View{}, nil
	case KindExtend:
		return Extend{}, nil
	case KindRemove:
		return Remove{}, nil
	case KindEdit:
		return Edit{}, nil
	case KindReorder:
		return Reorder{}, nil
	case KindDescription:
		return ChangeDescription{}, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", s.Kind)
	}
}
