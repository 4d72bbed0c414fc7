package save

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/grow/engine/scene"
)

func newEnv(input string) (*scene.Env, *bytes.Buffer) {
	var out bytes.Buffer
	return &scene.Env{In: scene.NewLineReader(strings.NewReader(input)), Out: &out}, &out
}

func newTestManager(t *testing.T, opts ...ManagerOption) (*Manager, *FileBackend) {
	t.Helper()
	b := NewFileBackend(t.TempDir())
	return NewManager(b, opts...), b
}

func TestManager_InitCreatesDefault(t *testing.T) {
	m, b := newTestManager(t)
	env, out := newEnv("")

	w, err := m.Init(env)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, w.Name())
	assert.Equal(t, StartScene, w.Current().Name())
	assert.Contains(t, out.String(), ":extend")

	names, err := b.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultName}, names)
}

func TestManager_InitOpensStored(t *testing.T) {
	m, _ := newTestManager(t, WithDefault("Sample"))
	require.NoError(t, m.Save(context.Background(), sampleWorld()))

	w, err := m.Init(nil)
	require.NoError(t, err)
	assert.Equal(t, "Sample", w.Name())
	assert.Equal(t, "garden", w.Current().Name())
}

func TestManager_InitFallsBackToFirstStored(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Save(context.Background(), sampleWorld()))

	w, err := m.Init(nil)
	require.NoError(t, err)
	assert.Equal(t, "Sample", w.Name())
}

func TestManager_SaveAction(t *testing.T) {
	m, b := newTestManager(t)
	w := sampleWorld()
	env, out := newEnv("")

	next, err := m.SaveAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Same(t, w.Current(), next)
	assert.Contains(t, out.String(), `Saved "Sample"`)

	_, err = b.Read(context.Background(), "Sample")
	assert.NoError(t, err)
}

func TestManager_QuitAction(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSaved bool
		wantEnd   bool
	}{
		{"save and quit", "yes\n", true, true},
		{"quit without saving", "no\n", false, true},
		{"retry answer", "maybe\ny\n", true, true},
		{"cancel", "cancel\n", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, b := newTestManager(t)
			w := sampleWorld()
			env, out := newEnv(tt.input)

			next, err := m.QuitAction().Act(w.Current(), w, env)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnd, next == nil)

			_, err = b.Read(context.Background(), "Sample")
			assert.Equal(t, tt.wantSaved, err == nil)
			if tt.wantEnd {
				assert.Contains(t, out.String(), "Goodbye.")
			} else {
				assert.Contains(t, out.String(), "Cancelled.")
			}
		})
	}
}

func TestManager_NewAction(t *testing.T) {
	m, b := newTestManager(t)
	w := sampleWorld()
	env, out := newEnv("no\nSecond Story\n")

	next, err := m.NewAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Equal(t, "Second Story", w.Name())
	assert.Same(t, w.Current(), next)
	assert.Equal(t, StartScene, next.Name())
	assert.Contains(t, out.String(), `Now playing "Second Story"`)

	names, _ := b.List(context.Background())
	assert.Equal(t, []string{"Second Story"}, names)
}

func TestManager_NewAction_Existing(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Save(context.Background(), NewWorld("Taken")))
	w := sampleWorld()
	env, out := newEnv("no\nTaken\n")

	next, err := m.NewAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Equal(t, "Sample", w.Name())
	assert.Same(t, w.Current(), next)
	assert.Contains(t, out.String(), "already exists")
}

func TestManager_OpenAction(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, NewWorld("Alpha")))
	require.NoError(t, m.Save(ctx, sampleWorld()))

	w := NewWorld("Alpha")
	env, out := newEnv("2\nno\n")
	next, err := m.OpenAction().Act(w.Current(), w, env)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "  1. Alpha")
	assert.Contains(t, out.String(), "  2. Sample")
	assert.Equal(t, "Sample", w.Name())
	assert.Equal(t, "garden", next.Name())
	require.NoError(t, w.Move(next), "returned scene must belong to the world")
}

func TestManager_OpenAction_Unknown(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Save(context.Background(), NewWorld("Alpha")))
	w := sampleWorld()
	env, out := newEnv("Beta\n")

	next, err := m.OpenAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Same(t, w.Current(), next)
	assert.Contains(t, out.String(), `There is no adventure called "Beta".`)
}

func TestManager_ImportArchive(t *testing.T) {
	m, _ := newTestManager(t)
	data, err := Encode(sampleWorld())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sample.grow")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	w := NewWorld("Old")
	env, _ := newEnv(path + "\nno\n")
	next, err := m.ImportAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Equal(t, "Sample", w.Name())
	assert.Equal(t, "garden", next.Name())
}

func TestManager_ImportScript(t *testing.T) {
	var loaded string
	m, _ := newTestManager(t, WithScriptLoader(func(path string) (*scene.World, error) {
		loaded = path
		return NewWorld("Scripted"), nil
	}))
	w := sampleWorld()
	env, _ := newEnv("story.lua\nno\n")

	_, err := m.ImportAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Equal(t, "story.lua", loaded)
	assert.Equal(t, "Scripted", w.Name())
}

func TestManager_ImportFailures(t *testing.T) {
	m, _ := newTestManager(t)
	w := sampleWorld()

	env, out := newEnv("story.lua\n")
	next, err := m.ImportAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Same(t, w.Current(), next)
	assert.Contains(t, out.String(), "not supported")

	env, out = newEnv(filepath.Join(t.TempDir(), "nope.grow") + "\n")
	_, err = m.ImportAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Could not import")
	assert.Equal(t, "Sample", w.Name())
}

func TestManager_ImportImage(t *testing.T) {
	m, _ := newTestManager(t)
	w := sampleWorld()
	sc := w.Current()
	path := filepath.Join(t.TempDir(), "cat.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o644))

	env, out := newEnv(path + "\n")
	_, err := m.ImportImageAction().Act(sc, w, env)
	require.NoError(t, err)

	assert.True(t, sc.ImageChanged())
	assert.Equal(t, []byte("jpeg"), sc.Image().Data)
	assert.True(t, strings.HasPrefix(sc.Image().Name, "media/"))
	assert.True(t, strings.HasSuffix(sc.Image().Name, ".jpg"))
	assert.Contains(t, out.String(), "Added image cat.jpg")

	reloaded, err := m.Load(context.Background(), "Sample")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), reloaded.Current().Image().Data)
}

func TestManager_ClearMedia(t *testing.T) {
	m, _ := newTestManager(t)
	w := sampleWorld()
	sc := w.Current()
	sc.ClearSoundChanged()

	env, _ := newEnv("")
	_, err := m.ClearMusicAction().Act(sc, w, env)
	require.NoError(t, err)
	assert.True(t, sc.Sound().Empty())
	assert.True(t, sc.SoundChanged())

	_, err = m.ClearImageAction().Act(sc, w, env)
	require.NoError(t, err)
	assert.True(t, sc.ImageChanged())
}

type failingBackend struct{ *FileBackend }

func (failingBackend) Write(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestManager_SaveFailureIsReported(t *testing.T) {
	m := NewManager(failingBackend{NewFileBackend(t.TempDir())})
	w := sampleWorld()
	env, out := newEnv("")

	next, err := m.SaveAction().Act(w.Current(), w, env)
	require.NoError(t, err)
	assert.NotNil(t, next)
	assert.Contains(t, out.String(), "disk full")
}

// flakyBackend fails every read with something other than ErrNotFound.
type flakyBackend struct {
	*FileBackend
	writes int
}

func (*flakyBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (b *flakyBackend) Write(ctx context.Context, name string, data []byte) error {
	b.writes++
	return b.FileBackend.Write(ctx, name, data)
}

func TestManager_ReadErrorIsNotAbsence(t *testing.T) {
	data, err := Encode(sampleWorld())
	require.NoError(t, err)
	archive := filepath.Join(t.TempDir(), "sample.grow")
	require.NoError(t, os.WriteFile(archive, data, 0o644))

	tests := []struct {
		name  string
		act   func(m *Manager) scene.Action
		input string
	}{
		{"new", (*Manager).NewAction, "no\nSecond Story\n"},
		{"import", (*Manager).ImportAction, archive + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &flakyBackend{FileBackend: NewFileBackend(t.TempDir())}
			m := NewManager(b)
			w := NewWorld("Old")
			env, out := newEnv(tt.input)

			next, err := tt.act(m).Act(w.Current(), w, env)
			require.NoError(t, err)
			assert.Same(t, w.Current(), next)
			assert.Equal(t, "Old", w.Name())
			assert.Contains(t, out.String(), "connection refused")
			assert.Zero(t, b.writes, "nothing may be written when the check failed")
		})
	}
}
