package engine

import (
	"bufio"
	_ "embed"
	"strings"

	"github.com/nathoo/grow/engine/action"
	"github.com/nathoo/grow/engine/scene"
)

// CommandMarker starts a line that is matched against the base commands
// before the scene's own rules.
const CommandMarker = ":"

var (
	//go:embed text/unknown.txt
	unknownText string
	//go:embed text/help.txt
	helpText string
	//go:embed text/helpa.txt
	helpaText string
	//go:embed text/about.txt
	aboutText string
	//go:embed text/license.txt
	licenseText string
)

// unknownResponses is the pool answers to unmatched input are drawn from.
var unknownResponses = readLines(unknownText)

func readLines(text string) []string {
	var lines []string
	s := bufio.NewScanner(strings.NewReader(text))
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// UnknownResponses returns a copy of the unknown-input response pool.
func UnknownResponses() []string {
	out := make([]string, len(unknownResponses))
	copy(out, unknownResponses)
	return out
}

// Store loads and saves adventures and provides the actions that the base
// commands bind to.
type Store interface {
	// Init returns the world a new session starts in.
	Init(env *scene.Env) (*scene.World, error)

	NewAction() scene.Action
	OpenAction() scene.Action
	SaveAction() scene.Action
	QuitAction() scene.Action
	ImportAction() scene.Action
	ImportImageAction() scene.Action
	ImportMusicAction() scene.Action
	ClearImageAction() scene.Action
	ClearMusicAction() scene.Action

	// SaveImage and SaveSound attach media to sc and persist w.
	SaveImage(sc *scene.Scene, w *scene.World, name string, data []byte) error
	SaveSound(sc *scene.Scene, w *scene.World, name string, data []byte) error

	// Locate describes where the named adventure is stored.
	Locate(name string) string
}

// baseRules builds the scene-shaped table of engine commands.
func baseRules(store Store) *scene.Scene {
	base := scene.New("default", `For help and instructions, type ":help".`)
	add := func(pat string, a scene.Action) {
		base.AddRule(scene.NewRule(pat, a))
	}
	add("help", action.Print{Text: strings.TrimRight(helpText, "\n")})
	add("helpa", action.Print{Text: strings.TrimRight(helpText, "\n") + "\n" + strings.TrimRight(helpaText, "\n")})
	add("about", action.Print{Text: strings.TrimRight(aboutText, "\n")})
	add("license", action.Print{Text: strings.TrimRight(licenseText, "\n")})
	add("quit", store.QuitAction())
	add("restart", action.Restart{})
	add("change story", store.OpenAction())
	add("new", store.NewAction())
	add("extend", action.Extend{})
	add("remove", action.Remove{})
	add("edit", action.Edit{})
	add("reorder", action.Reorder{})
	add("description", action.ChangeDescription{})
	add("cancel", action.Print{Text: "Nothing to cancel."})
	add("view", action.View{})
	add("import adventure", store.ImportAction())
	add("save", store.SaveAction())
	add("import image", store.ImportImageAction())
	add("import music", store.ImportMusicAction())
	add("clear image", store.ClearImageAction())
	add("clear music", store.ClearMusicAction())
	return base
}
