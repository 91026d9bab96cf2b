package pool

import (
	"maps"
	"slices"

	"github.com/google/btree"
)

// idTable maps stable ids to slot indexes. It is only consulted when a handle
// cache is stale, on Release and on lookups by id.
type idTable interface {
	get(id Id) (int, bool)
	set(id Id, index int)
	remove(id Id) bool
	len() int
	reset()
	// ascend visits entries by increasing id until f returns false
	ascend(f func(id Id, index int) bool)
}

func newIdTable(ordered bool, hint int) idTable {
	if ordered {
		return newBTreeTable()
	}
	return newMapTable(hint)
}

// --- Map implementation ---

type mapTable struct {
	entries map[Id]int
}

func newMapTable(hint int) *mapTable {
	return &mapTable{
		entries: make(map[Id]int, max(hint, 0)),
	}
}

func (m *mapTable) get(id Id) (int, bool) {
	index, ok := m.entries[id]
	return index, ok
}

func (m *mapTable) set(id Id, index int) {
	m.entries[id] = index
}

func (m *mapTable) remove(id Id) bool {
	_, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	return ok
}

func (m *mapTable) len() int {
	return len(m.entries)
}

func (m *mapTable) reset() {
	clear(m.entries)
}

func (m *mapTable) ascend(f func(id Id, index int) bool) {
	for _, id := range slices.Sorted(maps.Keys(m.entries)) {
		if !f(id, m.entries[id]) {
			return
		}
	}
}

// --- BTree implementation ---

type tableEntry struct {
	id    Id
	index int
}

type btreeTable struct {
	tree *btree.BTreeG[tableEntry]
}

func newBTreeTable() *btreeTable {
	return &btreeTable{
		tree: btree.NewG(32, func(a, b tableEntry) bool { return a.id < b.id }),
	}
}

func (b *btreeTable) get(id Id) (int, bool) {
	entry, ok := b.tree.Get(tableEntry{id: id})
	return entry.index, ok
}

func (b *btreeTable) set(id Id, index int) {
	b.tree.ReplaceOrInsert(tableEntry{id: id, index: index})
}

func (b *btreeTable) remove(id Id) bool {
	_, ok := b.tree.Delete(tableEntry{id: id})
	return ok
}

func (b *btreeTable) len() int {
	return b.tree.Len()
}

func (b *btreeTable) reset() {
	b.tree.Clear(false)
}

func (b *btreeTable) ascend(f func(id Id, index int) bool) {
	b.tree.Ascend(func(entry tableEntry) bool {
		return f(entry.id, entry.index)
	})
}
