package selection

import (
	"rollcall/internal/roster"
)

// Group is the records sharing one group key, in record list order.
type Group struct {
	Key     string
	Records []roster.Record
}

// IDs returns the ids of the group's records.
func (g Group) IDs() []string {
	return roster.IDs(g.Records)
}

// View is a list of groups ordered by the first appearance of each key in
// the record list.
type View []Group

// Keys returns the group keys in order.
func (v View) Keys() []string {
	keys := make([]string, len(v))
	for i, g := range v {
		keys[i] = g.Key
	}
	return keys
}

// Group returns the group with the given key.
func (v View) Group(key string) (Group, bool) {
	for _, g := range v {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// ByKey maps each group key to its record ids.
func (v View) ByKey() map[string][]string {
	m := make(map[string][]string, len(v))
	for _, g := range v {
		m[g.Key] = g.IDs()
	}
	return m
}

// Len returns the number of records across all groups.
func (v View) Len() int {
	n := 0
	for _, g := range v {
		n += len(g.Records)
	}
	return n
}

// Display is the derived partition the UI renders.
type Display struct {
	Selected   View
	Unselected View
}

// Partition splits records into selected and unselected views grouped by
// field. When matches is non-empty, records whose id is not in matches are
// left out of both views; an empty matches means no search filter. Within a
// group records keep their list order, so the result depends only on the
// inputs.
func Partition(records []roster.Record, selected Set, matches []string, field roster.GroupField) Display {
	var filter map[string]struct{}
	if len(matches) > 0 {
		filter = make(map[string]struct{}, len(matches))
		for _, id := range matches {
			filter[id] = struct{}{}
		}
	}
	chosen := selected.index()

	var sel, unsel grouper
	for _, r := range records {
		if filter != nil {
			if _, ok := filter[r.ID]; !ok {
				continue
			}
		}
		key := field.Key(r)
		if _, ok := chosen[r.ID]; ok {
			sel.add(key, r)
		} else {
			unsel.add(key, r)
		}
	}
	return Display{Selected: sel.view, Unselected: unsel.view}
}

type grouper struct {
	view View
	pos  map[string]int
}

func (g *grouper) add(key string, r roster.Record) {
	if g.pos == nil {
		g.pos = make(map[string]int)
	}
	i, ok := g.pos[key]
	if !ok {
		i = len(g.view)
		g.pos[key] = i
		g.view = append(g.view, Group{Key: key})
	}
	g.view[i].Records = append(g.view[i].Records, r)
}
