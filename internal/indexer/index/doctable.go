package index

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/hashtable"
)

// DocTable is the bidirectional DocID <-> document name mapping of one index.
type DocTable struct {
	mu     sync.RWMutex
	byID   *hashtable.Table[DocID, string]
	byName *hashtable.Table[string, DocID]
	nextID DocID
}

func NewDocTable() *DocTable {
	return &DocTable{
		byID:   hashtable.New[DocID, string](DocTableBuckets, hashtable.Identity[DocID]),
		byName: hashtable.New[string, DocID](DocTableBuckets, hashtable.HashString),
		nextID: 1,
	}
}

// Add registers name and returns its ID. Adding a name twice returns the ID
// it was first given.
func (d *DocTable) Add(name string) DocID {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.byName.Find(name); ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.byID.Insert(id, name)
	d.byName.Insert(name, id)
	return id
}

func (d *DocTable) Name(id DocID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byID.Find(id)
}

func (d *DocTable) ID(name string) (DocID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byName.Find(name)
}

func (d *DocTable) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byID.Len()
}

// ByID exposes the DocID -> name table for serialization. Callers must not
// modify it or call Add while holding it.
func (d *DocTable) ByID() *hashtable.Table[DocID, string] {
	return d.byID
}
