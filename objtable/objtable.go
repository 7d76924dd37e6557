// Package objtable tracks the client-side view of the shared Wayland object
// table: which ids are live, which type each one implements, and enough
// history about recently destroyed ids to tell "discard, you raced a
// destructor" apart from "this id was never valid" (see the zombie set
// below).
package objtable

import "github.com/waylib/wlcore/proto"

// DisplayID is the object id every Wayland connection reserves for wl_display.
const DisplayID uint32 = 1

// firstClientID is the first id this table ever hands out; 1 is reserved for
// the display object, which the table's owner constructs by hand.
const firstClientID uint32 = 2

// serverIDFloor is the smallest id the server is allowed to allocate for its
// own objects (e.g. globals with no client-side new_id request). The table
// never hands out ids at or above this floor.
const serverIDFloor uint32 = 0xFF000000

// defaultZombieLimit bounds the zombie set so a compositor that never
// acknowledges deletes can't grow client memory without bound.
const defaultZombieLimit = 64

// Entry is one object table record.
type Entry struct {
	ID       uint32
	Type     proto.ObjectType
	Alive    bool
	UserData any
}

// Table is the client-side object table. It is not safe for concurrent use;
// per the connection's single-owner model (see package wlclient), all calls
// are made from whichever goroutine currently owns the Connection.
type Table struct {
	next        uint32
	free        []uint32
	live        map[uint32]*Entry
	zombie      map[uint32]*Entry
	zombieFIFO  []uint32
	zombieLimit int
}

// New creates an empty Table. Object id 1 (wl_display) is expected to be
// registered separately by the caller via Adopt, since it is never
// allocated through Allocate.
func New() *Table {
	return &Table{
		next:        firstClientID,
		live:        make(map[uint32]*Entry),
		zombie:      make(map[uint32]*Entry),
		zombieLimit: defaultZombieLimit,
	}
}

// Adopt registers an id the caller allocated by convention rather than
// through Allocate (wl_display is always id 1; see DisplayID).
func (t *Table) Adopt(id uint32, typ proto.ObjectType) {
	t.live[id] = &Entry{ID: id, Type: typ, Alive: true}
}

// Allocate reserves the next available client id for an object of type typ,
// reusing a released id from the free list when one is available (spec
// invariant 4: an id is never reused before the server has confirmed its
// deletion via delete_id).
func (t *Table) Allocate(typ proto.ObjectType) uint32 {
	id := t.nextID()
	t.live[id] = &Entry{ID: id, Type: typ, Alive: true}
	return id
}

func (t *Table) nextID() uint32 {
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		return id
	}
	id := t.next
	t.next++
	return id
}

// Lookup resolves id against the live and zombie sets. zombie is true when
// id was recently destroyed and is still within the grace window (§9): the
// caller should silently discard the event rather than treat it as an
// error. ok is false only when id has never been seen, or was seen so long
// ago it aged out of the bounded zombie set — a genuine protocol violation.
func (t *Table) Lookup(id uint32) (entry *Entry, zombie bool, ok bool) {
	if e, found := t.live[id]; found {
		return e, false, true
	}
	if e, found := t.zombie[id]; found {
		return e, true, true
	}
	return nil, false, false
}

// MarkDead moves id from the live set into the zombie set, to be discarded
// (not released for reuse) until the server's delete_id event confirms it
// via Release. Calling MarkDead on an id that isn't live is a no-op.
func (t *Table) MarkDead(id uint32) {
	e, ok := t.live[id]
	if !ok {
		return
	}
	delete(t.live, id)
	e.Alive = false
	t.zombie[id] = e
	t.zombieFIFO = append(t.zombieFIFO, id)
	t.evictOldestZombieIfOverLimit()
}

func (t *Table) evictOldestZombieIfOverLimit() {
	for len(t.zombieFIFO) > t.zombieLimit {
		oldest := t.zombieFIFO[0]
		t.zombieFIFO = t.zombieFIFO[1:]
		delete(t.zombie, oldest)
	}
}

// Release handles a delete_id event for id: it removes id from whichever
// set currently holds it (zombie, the expected case once the client has
// already called MarkDead; or live, for objects the server destroys
// without a prior client-side destroy request, e.g. wl_callback) and
// returns the id to the free list for reuse.
func (t *Table) Release(id uint32) {
	if _, ok := t.zombie[id]; ok {
		delete(t.zombie, id)
		t.removeFromZombieFIFO(id)
	} else {
		delete(t.live, id)
	}
	if id >= firstClientID && id < serverIDFloor {
		t.free = append(t.free, id)
	}
}

func (t *Table) removeFromZombieFIFO(id uint32) {
	for i, v := range t.zombieFIFO {
		if v == id {
			t.zombieFIFO = append(t.zombieFIFO[:i], t.zombieFIFO[i+1:]...)
			return
		}
	}
}

// Len reports the number of currently live entries (not counting zombies).
func (t *Table) Len() int { return len(t.live) }
