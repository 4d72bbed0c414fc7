// Package loader compiles Lua adventure scripts into worlds. Scripts run in
// a sandboxed VM that is discarded once the adventure has been built.
package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/grow/engine/save"
	"github.com/nathoo/grow/engine/scene"
)

// mainFile is executed before the other files of a script directory.
const mainFile = "adventure.lua"

// collector accumulates Lua definitions during file execution.
type collector struct {
	adventure *lua.LTable
	scenes    []rawScene
}

// Option configures Load.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger logs validation warnings to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Load compiles the adventure script at path, a .lua file or a directory
// of them, into a world. Media paths in the script are relative to the
// script's directory.
func Load(path string, opts ...Option) (*scene.World, error) {
	o := options{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	m, dir, ve, err := compileFiles(path)
	if err != nil {
		return nil, err
	}
	for _, w := range ve.Warnings {
		o.log.Warn("adventure script", "path", path, "warning", w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return save.Build(m, func(name string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, fmt.Errorf("reading media: %w", err)
		}
		return data, nil
	})
}

// Check compiles and validates the script at path without reading media.
// The returned ValidationError carries warnings even when err is nil.
func Check(path string) (*ValidationError, error) {
	_, _, ve, err := compileFiles(path)
	if err != nil {
		return nil, err
	}
	if len(ve.Errors) > 0 {
		return ve, ve
	}
	return ve, nil
}

func compileFiles(path string) (*save.Manifest, string, *ValidationError, error) {
	files, dir, err := scriptFiles(path)
	if err != nil {
		return nil, "", nil, err
	}

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(f); err != nil {
			return nil, "", nil, fmt.Errorf("executing %s: %w", filepath.Base(f), err)
		}
	}

	m, err := compile(coll)
	if err != nil {
		return nil, "", nil, fmt.Errorf("compiling adventure: %w", err)
	}
	return m, dir, validate(m), nil
}

// scriptFiles lists the files to execute for path and the directory media
// paths are relative to.
func scriptFiles(path string) ([]string, string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading adventure script: %w", err)
	}
	if !fi.IsDir() {
		return []string{path}, filepath.Dir(path), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading adventure directory %s: %w", path, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, "", errors.New("no .lua files found in " + path)
	}

	files := make([]string, 0, len(names))
	for _, n := range sortedLuaFiles(names) {
		files = append(files, filepath.Join(path, n))
	}
	return files, path, nil
}

// sortedLuaFiles puts adventure.lua first, rest alphabetical.
func sortedLuaFiles(files []string) []string {
	sort.Strings(files)
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f == mainFile {
			out = append(out, f)
		}
	}
	for _, f := range files {
		if f != mainFile {
			out = append(out, f)
		}
	}
	return out
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Scripts build the same adventure every time.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("random", lua.LNil)
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
