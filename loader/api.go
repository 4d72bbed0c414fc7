package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/grow/engine/action"
)

// ruleMarker tags tables built by Rule.
const ruleMarker = "__rule"

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerActions(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Adventure { name = "...", start = "..." }
	L.SetGlobal("Adventure", L.NewFunction(func(L *lua.LState) int {
		coll.adventure = L.CheckTable(1)
		return 0
	}))

	// Scene "id" { ... }: Scene("id") returns a function that takes a table.
	L.SetGlobal("Scene", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		line := L.Where(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.scenes = append(coll.scenes, rawScene{id: id, table: tbl, where: line})
			return 0
		}))
		return 1
	}))

	// Rule("pattern", action1, action2, ...)
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		pat := L.CheckString(1)
		actions := L.NewTable()
		for i := 2; i <= L.GetTop(); i++ {
			actions.Append(L.CheckTable(i))
		}
		tbl := L.NewTable()
		tbl.RawSetString(ruleMarker, lua.LTrue)
		tbl.RawSetString("pattern", lua.LString(pat))
		tbl.RawSetString("actions", actions)
		L.Push(tbl)
		return 1
	}))
}

func registerActions(L *lua.LState) {
	// Print "text"
	L.SetGlobal("Print", L.NewFunction(func(L *lua.LState) int {
		L.Push(actionTable(L, action.KindPrint, "text", L.CheckString(1)))
		return 1
	}))

	// Goto "scene"
	L.SetGlobal("Goto", L.NewFunction(func(L *lua.LState) int {
		L.Push(actionTable(L, action.KindGoto, "scene", L.CheckString(1)))
		return 1
	}))

	// End "text" or End()
	L.SetGlobal("End", L.NewFunction(func(L *lua.LState) int {
		L.Push(actionTable(L, action.KindEnd, "text", L.OptString(1, "")))
		return 1
	}))

	// Argument-free actions.
	for name, kind := range map[string]string{
		"Restart":  action.KindRestart,
		"View":     action.KindView,
		"Extend":   action.KindExtend,
		"Remove":   action.KindRemove,
		"Edit":     action.KindEdit,
		"Reorder":  action.KindReorder,
		"Describe": action.KindDescription,
	} {
		kind := kind
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(actionTable(L, kind, "", ""))
			return 1
		}))
	}
}

func actionTable(L *lua.LState, kind, key, value string) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("kind", lua.LString(kind))
	if key != "" {
		tbl.RawSetString(key, lua.LString(value))
	}
	return tbl
}
