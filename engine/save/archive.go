// Package save persists adventures as .grow archives: a zip holding an
// adventure.yaml manifest plus the media it references.
package save

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/grow/engine/action"
	"github.com/nathoo/grow/engine/scene"
)

// Extension is the file extension of adventure archives.
const Extension = ".grow"

const (
	manifestName = "adventure.yaml"
	mediaDir     = "media"
)

// Manifest is the YAML layout of adventure.yaml.
type Manifest struct {
	Name    string        `yaml:"name"`
	Start   string        `yaml:"start"`
	Current string        `yaml:"current,omitempty"`
	Scenes  []SceneRecord `yaml:"scenes"`
}

// SceneRecord is one scene in a manifest. Image and Sound are archive
// paths of the scene's media.
type SceneRecord struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Image       string       `yaml:"image,omitempty"`
	Sound       string       `yaml:"sound,omitempty"`
	Rules       []RuleRecord `yaml:"rules,omitempty"`
}

// RuleRecord is one rule in a manifest.
type RuleRecord struct {
	Pattern string        `yaml:"pattern"`
	Actions []action.Spec `yaml:"actions,omitempty"`
}

// MediaName returns a fresh archive path for media with the given
// extension, such as ".png".
func MediaName(ext string) string {
	return path.Join(mediaDir, uuid.NewString()+ext)
}

// Encode packs w into archive bytes. Media without an archive path are
// given one.
func Encode(w *scene.World) ([]byte, error) {
	m := Manifest{
		Name:    w.Name(),
		Start:   w.Start().Name(),
		Current: w.Current().Name(),
	}
	media := map[string][]byte{}

	for _, sc := range w.Scenes() {
		rec := SceneRecord{Name: sc.Name(), Description: sc.Description}
		rec.Image = addMedia(media, sc.Image())
		rec.Sound = addMedia(media, sc.Sound())
		for i, r := range sc.Rules() {
			rr := RuleRecord{Pattern: r.Pattern()}
			for _, a := range r.Actions() {
				spec := action.SpecOf(a)
				if spec.Kind == action.KindCustom {
					return nil, fmt.Errorf("scene %q rule %d: action %T cannot be saved", sc.Name(), i+1, a)
				}
				rr.Actions = append(rr.Actions, spec)
			}
			rec.Rules = append(rec.Rules, rr)
		}
		m.Scenes = append(m.Scenes, rec)
	}

	manifest, err := yaml.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := writeEntry(zw, manifestName, manifest); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(media))
	for name := range media {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeEntry(zw, name, media[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// addMedia records r's data under its archive path and returns that path.
// Resources without data are references only.
func addMedia(media map[string][]byte, r scene.Resource) string {
	if r.Empty() {
		return ""
	}
	name := r.Name
	if name == "" {
		name = MediaName("")
	}
	if len(r.Data) > 0 {
		media[name] = r.Data
	}
	return name
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Decode unpacks archive bytes into a world positioned at its saved
// current scene.
func Decode(data []byte) (*scene.World, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}

	mf, ok := files[manifestName]
	if !ok {
		return nil, fmt.Errorf("archive has no %s", manifestName)
	}
	raw, err := readEntry(mf)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestName, err)
	}
	return Build(&m, func(name string) ([]byte, error) {
		f, ok := files[name]
		if !ok {
			// A reference to media kept outside the archive.
			return nil, nil
		}
		return readEntry(f)
	})
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// Build turns a manifest into a world. readMedia resolves media paths;
// it may be nil when the manifest references no media.
func Build(m *Manifest, readMedia func(name string) ([]byte, error)) (*scene.World, error) {
	if m.Name == "" {
		return nil, errors.New("adventure has no name")
	}
	if len(m.Scenes) == 0 {
		return nil, fmt.Errorf("adventure %q has no scenes", m.Name)
	}

	scenes := make([]*scene.Scene, 0, len(m.Scenes))
	known := map[string]bool{}
	for _, rec := range m.Scenes {
		if known[rec.Name] {
			return nil, fmt.Errorf("duplicate scene %q", rec.Name)
		}
		known[rec.Name] = true
	}

	for _, rec := range m.Scenes {
		sc := scene.New(rec.Name, rec.Description)
		for i, rr := range rec.Rules {
			actions := make([]scene.Action, 0, len(rr.Actions))
			for _, spec := range rr.Actions {
				if spec.Kind == action.KindGoto && !known[spec.Scene] {
					return nil, fmt.Errorf("scene %q rule %d: %w", rec.Name, i+1, &scene.NoSuchSceneError{Name: spec.Scene})
				}
				a, err := action.FromSpec(spec)
				if err != nil {
					return nil, fmt.Errorf("scene %q rule %d: %w", rec.Name, i+1, err)
				}
				actions = append(actions, a)
			}
			sc.AddRule(scene.NewRule(rr.Pattern, actions...))
		}
		img, err := loadMedia(readMedia, rec.Image)
		if err != nil {
			return nil, err
		}
		snd, err := loadMedia(readMedia, rec.Sound)
		if err != nil {
			return nil, err
		}
		sc.SetImage(img)
		sc.SetSound(snd)
		sc.ClearImageChanged()
		sc.ClearSoundChanged()
		scenes = append(scenes, sc)
	}

	w := scene.NewWorld(m.Name, scenes[0])
	for _, sc := range scenes[1:] {
		if err := w.Add(sc); err != nil {
			return nil, err
		}
	}
	if err := w.SetStart(m.Start); err != nil {
		return nil, fmt.Errorf("start scene: %w", err)
	}
	current := m.Current
	if current == "" {
		current = m.Start
	}
	cur, ok := w.Scene(current)
	if !ok {
		return nil, fmt.Errorf("current scene: %w", &scene.NoSuchSceneError{Name: current})
	}
	if err := w.Move(cur); err != nil {
		return nil, err
	}
	return w, nil
}

func loadMedia(readMedia func(string) ([]byte, error), name string) (scene.Resource, error) {
	if name == "" {
		return scene.Resource{}, nil
	}
	if readMedia == nil {
		return scene.Resource{Name: name}, nil
	}
	data, err := readMedia(name)
	if err != nil {
		return scene.Resource{}, err
	}
	return scene.Resource{Name: name, Data: data}, nil
}
