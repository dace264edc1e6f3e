package machine

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// Heap owns every heap-allocated Object and runs the tracing mark-and-sweep
// collector over them. It is intentionally independent of Go's own garbage
// collector: a Value never embeds a raw Go pointer (which Go's collector
// could not see through a plain uint64 anyway), only an index into objects,
// so Go's collector only ever has to keep the Heap itself and its objects
// slice alive - tracing liveness *within* that slice is this type's job.
type Heap struct {
	objects []slot
	free    []uint32

	// pinned counts, per object index, how many callers currently hold it
	// live independently of the VM's own stack and frames.
	pinned *swiss.Map[uint32, int]
}

type slot struct {
	obj   Object
	alive bool
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{pinned: swiss.NewMap[uint32, int](0)}
}

// Alloc adds obj to the heap and returns the Value referring to it.
func (h *Heap) Alloc(obj Object) Value {
	if n := len(h.free); n > 0 {
		idx := h.free[n-1]
		h.free = h.free[:n-1]
		h.objects[idx] = slot{obj: obj, alive: true}
		return objectValue(idx)
	}
	idx := uint32(len(h.objects))
	h.objects = append(h.objects, slot{obj: obj, alive: true})
	return objectValue(idx)
}

// Object dereferences a KindObject Value to the Object it refers to.
func (h *Heap) Object(v Value) Object {
	return h.objects[v.ObjectIndex()].obj
}

// Pin marks the object v refers to as a root independent of the VM's own
// stack and frames, until a matching Unpin. Pin a Value you are holding onto
// across an allocation that might trigger a collection before the value is
// itself reachable from the stack (for example, while assembling a list
// literal's elements one at a time).
func (h *Heap) Pin(v Value) {
	if v.Kind() != KindObject {
		return
	}
	idx := v.ObjectIndex()
	n, _ := h.pinned.Get(idx)
	h.pinned.Put(idx, n+1)
}

// Unpin releases a Pin. Entries are never removed from the pinned map, only
// decremented to zero, to avoid depending on a Delete method this
// implementation does not otherwise need from the swiss.Map API; a zero
// count is treated the same as an absent one everywhere this map is read.
func (h *Heap) Unpin(v Value) {
	if v.Kind() != KindObject {
		return
	}
	idx := v.ObjectIndex()
	if n, ok := h.pinned.Get(idx); ok && n > 0 {
		h.pinned.Put(idx, n-1)
	}
}

// Collect runs a full mark-and-sweep pass. roots are the Values currently
// reachable from the VM's live operand stacks, frame locals and upvalues;
// pinned objects are marked in addition to them. The objects already found
// reachable are kept in a swiss.Map rather than a per-object bit, and the
// frontier still to be traced in a slice of object indexes.
func (h *Heap) Collect(roots []Value) {
	marked := swiss.NewMap[uint32, struct{}](uint32(len(h.objects)))
	var gray []uint32

	mark := func(v Value) {
		if v.Kind() != KindObject {
			return
		}
		idx := v.ObjectIndex()
		if idx >= uint32(len(h.objects)) || !h.objects[idx].alive {
			return
		}
		if _, ok := marked.Get(idx); ok {
			return
		}
		marked.Put(idx, struct{}{})
		gray = append(gray, idx)
	}

	for _, r := range roots {
		mark(r)
	}

	// Walk pinned roots in sorted order rather than swiss.Map's unspecified
	// iteration order, so a collection's trace is reproducible between runs
	// of the same program (useful for diffing GC behavior in tests).
	var pins []uint32
	h.pinned.Iter(func(idx uint32, n int) (stop bool) {
		if n > 0 {
			pins = append(pins, idx)
		}
		return false
	})
	slices.Sort(pins)
	for _, idx := range pins {
		mark(objectValue(idx))
	}

	for len(gray) > 0 {
		idx := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		for _, child := range h.objects[idx].obj.children() {
			mark(child)
		}
	}

	for i := range h.objects {
		s := &h.objects[i]
		if _, ok := marked.Get(uint32(i)); s.alive && !ok {
			s.alive = false
			s.obj = nil
			h.free = append(h.free, uint32(i))
		}
	}
}

// Live reports the number of currently-allocated (unswept) objects, for
// tests and diagnostics.
func (h *Heap) Live() int {
	n := 0
	for _, s := range h.objects {
		if s.alive {
			n++
		}
	}
	return n
}
