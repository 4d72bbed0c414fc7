package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/grow/engine/action"
	"github.com/nathoo/grow/engine/save"
)

// rawScene holds a scene table before compilation.
type rawScene struct {
	id    string
	table *lua.LTable
	where string
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// compile converts collected Lua tables into a manifest, keeping scenes in
// source order.
func compile(coll *collector) (*save.Manifest, error) {
	m := &save.Manifest{}
	if coll.adventure != nil {
		m.Name = getString(coll.adventure, "name")
		m.Start = getString(coll.adventure, "start")
	}
	if m.Start == "" && len(coll.scenes) > 0 {
		m.Start = coll.scenes[0].id
	}

	for _, rs := range coll.scenes {
		sc, err := compileScene(rs)
		if err != nil {
			return nil, err
		}
		m.Scenes = append(m.Scenes, sc)
	}
	return m, nil
}

func compileScene(rs rawScene) (save.SceneRecord, error) {
	sc := save.SceneRecord{
		Name:        rs.id,
		Description: getString(rs.table, "description"),
		Image:       getString(rs.table, "image"),
		Sound:       getString(rs.table, "sound"),
	}

	rules := getTable(rs.table, "rules")
	if rules == nil {
		return sc, nil
	}
	for i := 1; i <= rules.Len(); i++ {
		tbl, ok := rules.RawGetInt(i).(*lua.LTable)
		if !ok || tbl.RawGetString(ruleMarker) != lua.LTrue {
			return sc, fmt.Errorf("%s scene %q: rules[%d] is not a Rule", rs.where, rs.id, i)
		}
		rule, err := compileRule(tbl)
		if err != nil {
			return sc, fmt.Errorf("%s scene %q rule %d: %w", rs.where, rs.id, i, err)
		}
		sc.Rules = append(sc.Rules, rule)
	}
	return sc, nil
}

func compileRule(tbl *lua.LTable) (save.RuleRecord, error) {
	r := save.RuleRecord{Pattern: getString(tbl, "pattern")}
	actions := getTable(tbl, "actions")
	if actions == nil {
		return r, nil
	}
	for i := 1; i <= actions.Len(); i++ {
		at, ok := actions.RawGetInt(i).(*lua.LTable)
		if !ok {
			return r, fmt.Errorf("action %d is not a table", i)
		}
		kind := getString(at, "kind")
		if kind == "" {
			return r, fmt.Errorf("action %d has no kind", i)
		}
		r.Actions = append(r.Actions, action.Spec{
			Kind:  kind,
			Text:  getString(at, "text"),
			Scene: getString(at, "scene"),
		})
	}
	return r, nil
}
