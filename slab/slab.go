// Package slab is a fixed-size object pool for types allocated and released
// at high rates, such as bind groups.
//
// Objects live in slabs of count blocks. Each block is the object followed by
// a small blockInfo holding the block's index and the index of the next free
// block, so free lists cost four bytes per block. Allocate is O(1);
// Deallocate finds the owning slab by address in O(log slabs).
//
// Every slab is on exactly one of three lists:
//
//	available  has free blocks; new objects come from its head
//	full       no free blocks
//	recycled   was full and had a block freed
//
// Recycled slabs are moved back to available in one splice only when
// available runs dry, so a single free never displaces the slab currently
// serving allocations.
//
// An Allocator is not safe for concurrent use.
package slab

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"unsafe"
)

const invalidIndex = math.MaxUint16

type blockInfo struct {
	index     uint16
	nextIndex uint16 // free-list link; equals index while allocated
}

type block[T any] struct {
	value T
	info  blockInfo
}

type slab[T any] struct {
	base        uintptr // address of blocks[0]
	blocks      []block[T]
	freeList    *blockInfo
	prev, next  *slab[T]
	blocksInUse uint16
}

// Allocator hands out *T from slabs of a fixed block count.
type Allocator[T any] struct {
	count      uint16
	blockSize  int // stride of block[T] in a slab
	infoOffset int // offset of blockInfo within block[T]

	// sentinel heads; only next is used
	available, full, recycled slab[T]

	// slabs is every slab ever created, sorted by base
	slabs []*slab[T]
}

// New returns an allocator whose slabs hold count objects each. count must
// be in [1, 65534].
func New[T any](count uint16) *Allocator[T] {
	if count == 0 || count == invalidIndex {
		panic(fmt.Sprintf("slab: block count %d out of range [1,%d]", count, invalidIndex-1))
	}
	bt := reflect.TypeFor[block[T]]()
	return &Allocator[T]{
		count:      count,
		blockSize:  int(bt.Size()),
		infoOffset: int(bt.Field(1).Offset),
	}
}

// Allocate returns a pointer to a zeroed T. The pointer stays valid until it
// is passed to Deallocate.
func (a *Allocator[T]) Allocate() *T {
	if a.available.next == nil {
		a.getNewSlab()
	}
	s := a.available.next
	info := a.pop(s)
	if s.blocksInUse == a.count {
		s.splice()
		a.full.prepend(s)
	}
	return a.valueOf(info)
}

// Deallocate zeroes *p and returns its block to the owning slab. It panics
// if p did not come from this allocator or was already freed.
func (a *Allocator[T]) Deallocate(p *T) {
	if p == nil {
		panic("slab: Deallocate(nil)")
	}
	s, i, ok := a.ownerOf(p)
	if !ok {
		panic("slab: pointer not owned by this allocator")
	}
	info := &s.blocks[i].info
	if info.nextIndex != info.index {
		panic("slab: double free")
	}

	var zero T
	*p = zero
	wasFull := s.blocksInUse == a.count
	a.push(s, info)
	if wasFull {
		s.splice()
		a.recycled.prepend(s)
	}
}

func (a *Allocator[T]) getNewSlab() {
	if r := a.recycled.next; r != nil {
		a.recycled.next = nil
		a.available.next = r
		r.prev = &a.available
		return
	}

	s := &slab[T]{blocks: make([]block[T], a.count)}
	s.base = uintptr(unsafe.Pointer(&s.blocks[0]))
	for i := range s.blocks {
		s.blocks[i].info = blockInfo{index: uint16(i), nextIndex: uint16(i + 1)}
	}
	s.blocks[a.count-1].info.nextIndex = invalidIndex
	s.freeList = &s.blocks[0].info
	at, _ := slices.BinarySearchFunc(a.slabs, s.base, searchBase[T])
	a.slabs = slices.Insert(a.slabs, at, s)
	a.available.prepend(s)
}

// ownerOf finds the slab and block index of p from its address alone, so a
// foreign pointer is rejected without reading memory next to it.
func (a *Allocator[T]) ownerOf(p *T) (*slab[T], uint16, bool) {
	addr := uintptr(unsafe.Pointer(p))
	i, found := slices.BinarySearchFunc(a.slabs, addr, searchBase[T])
	if !found {
		i--
	}
	if i < 0 {
		return nil, 0, false
	}
	s := a.slabs[i]
	off, stride := addr-s.base, uintptr(a.blockSize)
	if off >= uintptr(a.count)*stride || off%stride != 0 {
		return nil, 0, false
	}
	return s, uint16(off / stride), true
}

func searchBase[T any](s *slab[T], addr uintptr) int { return cmp.Compare(s.base, addr) }

func (a *Allocator[T]) pop(s *slab[T]) *blockInfo {
	head := s.freeList
	if head.nextIndex == invalidIndex {
		s.freeList = nil
	} else {
		s.freeList = a.offsetFrom(head, int(head.nextIndex)-int(head.index))
	}
	head.nextIndex = head.index
	s.blocksInUse++
	return head
}

func (a *Allocator[T]) push(s *slab[T], info *blockInfo) {
	if s.freeList == nil {
		info.nextIndex = invalidIndex
	} else {
		info.nextIndex = s.freeList.index
	}
	s.freeList = info
	s.blocksInUse--
}

// offsetFrom steps delta blocks from info within the same slab.
func (a *Allocator[T]) offsetFrom(info *blockInfo, delta int) *blockInfo {
	return (*blockInfo)(unsafe.Add(unsafe.Pointer(info), delta*a.blockSize))
}

func (a *Allocator[T]) valueOf(info *blockInfo) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(info), -a.infoOffset))
}

// prepend inserts n after the sentinel s.
func (s *slab[T]) prepend(n *slab[T]) {
	n.prev = s
	n.next = s.next
	if s.next != nil {
		s.next.prev = n
	}
	s.next = n
}

func (s *slab[T]) splice() {
	s.prev.next = s.next
	if s.next != nil {
		s.next.prev = s.prev
	}
	s.prev, s.next = nil, nil
}

// Stats counts slabs per list and live objects.
type Stats struct {
	Available, Full, Recycled int
	InUse                     int
}

func (a *Allocator[T]) Stats() Stats {
	var st Stats
	walk := func(l *slab[T], n *int) {
		for s := l.next; s != nil; s = s.next {
			*n++
			st.InUse += int(s.blocksInUse)
		}
	}
	walk(&a.available, &st.Available)
	walk(&a.full, &st.Full)
	walk(&a.recycled, &st.Recycled)
	return st
}
