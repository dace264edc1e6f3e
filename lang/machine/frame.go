package machine

// Frame is one activation record on the call stack: the closure being run,
// its program counter, and the local variable slots the compiler numbered
// for it (parameters first, then each `let`-declared local in declaration
// order).
type Frame struct {
	fn      *FunctionObj
	fnValue Value // boxed form of fn, kept reachable while the frame is live
	locals  []Value

	// openUpvalues tracks, by local slot, the upvalue cell a nested closure
	// captured from this frame while it is still on the call stack. A
	// second closure capturing the same local reuses the same cell so that
	// both observe each other's mutations; Close is called on every open
	// upvalue still in this map when the frame returns.
	openUpvalues map[int]*UpvalueObj
}

func newFrame(fn *FunctionObj, fnValue Value) *Frame {
	locals := make([]Value, fn.Proto.NumLocals)
	for i := range locals {
		locals[i] = Nil
	}
	return &Frame{
		fn:      fn,
		fnValue: fnValue,
		locals:  locals,
	}
}

// upvalueFor returns the (possibly newly created) open upvalue cell for the
// local at slot.
func (fr *Frame) upvalueFor(slot int) *UpvalueObj {
	if fr.openUpvalues == nil {
		fr.openUpvalues = make(map[int]*UpvalueObj)
	}
	if uv, ok := fr.openUpvalues[slot]; ok {
		return uv
	}
	uv := newOpenUpvalue(&fr.locals, slot)
	fr.openUpvalues[slot] = uv
	return uv
}

// close closes every upvalue this frame's nested closures captured, copying
// out their final values before the frame's locals slice is discarded.
func (fr *Frame) close() {
	for _, uv := range fr.openUpvalues {
		uv.Close()
	}
}

// closeFrom closes and forgets every open upvalue at or above slot, for the
// locals a POP opcode is about to drop out of scope. Without this, a
// closure captured inside a loop body would keep aliasing the reused frame
// slot across iterations instead of snapshotting the value it closed over.
func (fr *Frame) closeFrom(slot int) {
	for s, uv := range fr.openUpvalues {
		if s >= slot {
			uv.Close()
			delete(fr.openUpvalues, s)
		}
	}
}
