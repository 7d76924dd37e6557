package objtable

import (
	"testing"

	"github.com/waylib/wlcore/proto"
)

func TestMonotonicAllocationWithoutDelete(t *testing.T) {
	tbl := New()
	var ids []uint32
	for i := 0; i < 4; i++ {
		ids = append(ids, tbl.Allocate(proto.TypeSurface))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not strictly increasing: %v", ids)
		}
	}
}

func TestS5DeleteIDReuse(t *testing.T) {
	tbl := New()
	id2 := tbl.Allocate(proto.TypeSurface)
	id3 := tbl.Allocate(proto.TypeRegion)
	id4 := tbl.Allocate(proto.TypeSurface)
	if id2 != 2 || id3 != 3 || id4 != 4 {
		t.Fatalf("initial allocations = %d,%d,%d, want 2,3,4", id2, id3, id4)
	}

	tbl.Release(3)

	next := tbl.Allocate(proto.TypeBuffer)
	if next != 3 {
		t.Fatalf("allocation after delete_id(3) = %d, want 3", next)
	}
	after := tbl.Allocate(proto.TypeBuffer)
	if after != 5 {
		t.Fatalf("next allocation = %d, want 5", after)
	}
}

func TestReuseOnlyAfterDelete(t *testing.T) {
	tbl := New()
	id := tbl.Allocate(proto.TypeSurface)
	next := tbl.Allocate(proto.TypeSurface)
	if next == id {
		t.Fatalf("allocated %d twice before any delete_id", id)
	}
}

func TestZombieGraceWindow(t *testing.T) {
	tbl := New()
	id := tbl.Allocate(proto.TypeSurface)

	tbl.MarkDead(id)
	_, zombie, ok := tbl.Lookup(id)
	if !ok || !zombie {
		t.Fatalf("Lookup(%d) after MarkDead = (zombie=%v, ok=%v), want (true, true)", id, zombie, ok)
	}

	tbl.Release(id)
	_, _, ok = tbl.Lookup(id)
	if ok {
		t.Fatalf("Lookup(%d) after Release should report unknown", id)
	}
}

func TestUnknownIDNeverSeen(t *testing.T) {
	tbl := New()
	_, zombie, ok := tbl.Lookup(1234)
	if ok || zombie {
		t.Fatalf("Lookup on never-allocated id = (zombie=%v, ok=%v), want (false, false)", zombie, ok)
	}
}

func TestZombieSetIsBounded(t *testing.T) {
	tbl := New()
	var ids []uint32
	for i := 0; i < defaultZombieLimit+10; i++ {
		id := tbl.Allocate(proto.TypeSurface)
		tbl.MarkDead(id)
		ids = append(ids, id)
	}
	if len(tbl.zombieFIFO) != defaultZombieLimit {
		t.Fatalf("zombie set size = %d, want %d", len(tbl.zombieFIFO), defaultZombieLimit)
	}
	// The oldest entries should have aged out of tracking.
	_, _, ok := tbl.Lookup(ids[0])
	if ok {
		t.Fatalf("oldest zombie %d should have aged out of the bounded set", ids[0])
	}
	// The most recent one is still tracked.
	_, zombie, ok := tbl.Lookup(ids[len(ids)-1])
	if !ok || !zombie {
		t.Fatalf("most recent zombie %d should still be tracked", ids[len(ids)-1])
	}
}

func TestAdoptRegistersDisplay(t *testing.T) {
	tbl := New()
	tbl.Adopt(DisplayID, proto.TypeDisplay)
	e, zombie, ok := tbl.Lookup(DisplayID)
	if !ok || zombie {
		t.Fatalf("Lookup(DisplayID) = (zombie=%v, ok=%v), want (false, true)", zombie, ok)
	}
	if e.Type != proto.TypeDisplay {
		t.Fatalf("DisplayID type = %v, want TypeDisplay", e.Type)
	}
}
