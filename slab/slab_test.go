package slab

import (
	"testing"
	"unsafe"
)

type object struct {
	id   uint64
	name string
	tag  byte
}

func TestReuseReturnsSameAddresses(t *testing.T) {
	const n = 8
	a := New[object](n)

	first := map[*object]bool{}
	ptrs := make([]*object, 0, n)
	for range n {
		p := a.Allocate()
		if first[p] {
			t.Fatalf("address %p handed out twice", p)
		}
		first[p] = true
		ptrs = append(ptrs, p)
	}
	for _, p := range ptrs {
		a.Deallocate(p)
	}
	for range n {
		p := a.Allocate()
		if !first[p] {
			t.Fatalf("second round returned new address %p", p)
		}
		delete(first, p)
	}
	if st := a.Stats(); st.Full != 1 || st.Available+st.Recycled != 0 {
		t.Fatalf("stats %+v, want one full slab", st)
	}
}

func inSlab(p *object, base []*object) bool {
	lo, hi := uintptr(unsafe.Pointer(base[0])), uintptr(unsafe.Pointer(base[0]))
	for _, q := range base {
		u := uintptr(unsafe.Pointer(q))
		lo, hi = min(lo, u), max(hi, u)
	}
	u := uintptr(unsafe.Pointer(p))
	return u >= lo && u <= hi
}

func TestFullThenRecycled(t *testing.T) {
	const k = 4
	a := New[object](k)

	firstSlab := make([]*object, 0, k)
	for range k {
		firstSlab = append(firstSlab, a.Allocate())
	}
	if st := a.Stats(); st.Full != 1 || st.Available != 0 {
		t.Fatalf("after %d allocations: %+v", k, st)
	}

	extra := a.Allocate()
	if inSlab(extra, firstSlab) {
		t.Fatal("allocation k+1 came from the full slab")
	}
	if st := a.Stats(); st.Full != 1 || st.Available != 1 || st.InUse != k+1 {
		t.Fatalf("after k+1 allocations: %+v", st)
	}

	freed := firstSlab[2]
	a.Deallocate(freed)
	if st := a.Stats(); st.Recycled != 1 || st.Full != 0 {
		t.Fatalf("after freeing from full slab: %+v", st)
	}

	// fill the current slab; the recycled one must not be touched yet
	for range k - 1 {
		if p := a.Allocate(); inSlab(p, firstSlab) {
			t.Fatal("recycled slab reused before the current slab filled")
		}
	}
	if st := a.Stats(); st.Recycled != 1 || st.Full != 1 || st.Available != 0 {
		t.Fatalf("before promotion: %+v", st)
	}

	p := a.Allocate()
	if p != freed || !inSlab(p, firstSlab) {
		t.Fatalf("got %p, want freed block %p from the first slab", p, freed)
	}
	if st := a.Stats(); st.Full != 2 || st.Recycled != 0 {
		t.Fatalf("after promotion: %+v", st)
	}
}

func TestAllocateIsZeroed(t *testing.T) {
	a := New[object](2)
	p := a.Allocate()
	*p = object{id: 7, name: "x", tag: 1}
	a.Deallocate(p)
	q := a.Allocate()
	if q != p || *q != (object{}) {
		t.Fatalf("reused block not zeroed: %+v", *q)
	}
}

func TestRecycledPromotedWhenAvailableEmpty(t *testing.T) {
	a := New[uint32](3)
	p0, p1, p2 := a.Allocate(), a.Allocate(), a.Allocate()
	a.Deallocate(p1)
	// available is empty, so the recycled slab is promoted and p1 comes back
	if p := a.Allocate(); p != p1 {
		t.Fatalf("got %p want %p", p, p1)
	}
	a.Deallocate(p0)
	a.Deallocate(p2)
	st := a.Stats()
	if st.InUse != 1 || st.Recycled != 1 || st.Available != 0 {
		t.Fatalf("stats %+v", st)
	}
}

func TestSingleBlockSlabs(t *testing.T) {
	a := New[byte](1)
	ps := []*byte{a.Allocate(), a.Allocate(), a.Allocate()}
	for _, p := range ps {
		a.Deallocate(p)
	}
	if st := a.Stats(); st.Recycled != 3 || st.InUse != 0 {
		t.Fatalf("stats %+v", st)
	}
	for range 3 {
		a.Allocate()
	}
	if st := a.Stats(); st.Full != 3 {
		t.Fatalf("stats %+v", st)
	}
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestMisuse(t *testing.T) {
	mustPanic(t, "count 0", func() { New[object](0) })
	mustPanic(t, "count max", func() { New[object](invalidIndex) })

	a := New[object](4)
	p := a.Allocate()
	a.Deallocate(p)
	mustPanic(t, "double free", func() { a.Deallocate(p) })
	mustPanic(t, "nil", func() { a.Deallocate(nil) })

	other := New[object](4)
	q := other.Allocate()
	mustPanic(t, "foreign", func() { a.Deallocate(q) })
}

func TestDeallocateUnownedLeavesMemoryAlone(t *testing.T) {
	a := New[object](4)
	p := a.Allocate()

	loose := make([]object, 2)
	loose[1] = object{id: 9}
	mustPanic(t, "heap object", func() { a.Deallocate(&loose[1]) })
	if loose[1].id != 9 {
		t.Fatalf("unowned object modified: %+v", loose[1])
	}

	// inside a slab but not at a block boundary
	mid := (*object)(unsafe.Add(unsafe.Pointer(p), 8))
	mustPanic(t, "interior", func() { a.Deallocate(mid) })

	a.Deallocate(p)
	if st := a.Stats(); st.InUse != 0 {
		t.Fatalf("stats %+v", st)
	}
}
