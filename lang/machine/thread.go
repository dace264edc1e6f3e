package machine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/nenuphar/lang/compiler"
)

// Thread is one independent execution of a compiled program: its own heap,
// call stack and operand stack. A Thread is not safe for concurrent use.
type Thread struct {
	Name   string
	Stdout io.Writer
	Stderr io.Writer

	// MaxSteps bounds the number of bytecode instructions a single
	// RunProgram call may execute before it is cancelled, as a guard
	// against runaway or infinite-looping scripts. Zero means unbounded.
	MaxSteps uint64

	Heap *Heap

	stack  []Value
	frames []*Frame

	prog      *compiler.Program
	constants []Value
	globals   map[string]Value

	steps uint64
}

// NewThread returns a ready-to-use Thread.
func NewThread(name string) *Thread {
	return &Thread{Name: name, Heap: NewHeap()}
}

func (th *Thread) init() {
	if th.Stdout == nil {
		th.Stdout = os.Stdout
	}
	if th.Stderr == nil {
		th.Stderr = os.Stderr
	}
	if th.Heap == nil {
		th.Heap = NewHeap()
	}
}

// RunProgram compiles the program's entry point into a closure and calls it
// with no arguments, returning its result value.
func (th *Thread) RunProgram(ctx context.Context, prog *compiler.Program) (Value, error) {
	th.init()
	th.steps = 0
	th.prog = prog
	th.constants = make([]Value, len(prog.Constants))
	for i, k := range prog.Constants {
		th.constants[i] = th.materialize(k)
	}

	top := &FunctionObj{Proto: prog.Functions[0]}
	topVal := th.Heap.Alloc(top)

	return th.Call(ctx, topVal, nil)
}

func (th *Thread) materialize(k compiler.Constant) Value {
	switch k.Kind {
	case compiler.KNil:
		return Nil
	case compiler.KBool:
		return Bool(k.Bool)
	case compiler.KInt:
		return Int(k.Int)
	case compiler.KReal:
		return Real(k.Real)
	case compiler.KStr:
		return th.Heap.Alloc(&StringObj{S: k.Str})
	default:
		panic(fmt.Sprintf("machine: unhandled constant kind %d", k.Kind))
	}
}

// Call invokes fn (a closure or builtin) with the given arguments.
func (th *Thread) Call(ctx context.Context, fn Value, args []Value) (Value, error) {
	if fn.Kind() != KindObject {
		return Nil, fmt.Errorf("%s is not callable", typeName(th, fn))
	}
	switch callee := th.Heap.Object(fn).(type) {
	case *FunctionObj:
		return th.callFunction(ctx, callee, fn, args)
	case *CFunctionObj:
		return callee.Fn(th, args)
	default:
		return Nil, fmt.Errorf("%s is not callable", typeName(th, fn))
	}
}

func (th *Thread) callFunction(ctx context.Context, fn *FunctionObj, fnValue Value, args []Value) (Value, error) {
	select {
	case <-ctx.Done():
		return Nil, ctx.Err()
	default:
	}

	if len(args) != fn.Proto.NumParams {
		return Nil, fmt.Errorf("machine: arity mismatch calling %s: expected %d argument(s), got %d", fn.Proto.Name, fn.Proto.NumParams, len(args))
	}

	fr := newFrame(fn, fnValue)
	for i := 0; i < fn.Proto.NumParams; i++ {
		fr.locals[i] = args[i]
	}

	th.frames = append(th.frames, fr)
	result, err := th.run(ctx, fr)
	fr.close()
	th.frames = th.frames[:len(th.frames)-1]

	return result, err
}

// gcRoots gathers every Value currently reachable from the thread's live
// state: the shared operand stack, every active frame's locals and
// closure, the materialized constants and the globals.
func (th *Thread) gcRoots() []Value {
	roots := make([]Value, 0, len(th.stack)+len(th.frames)*2)
	roots = append(roots, th.stack...)
	for _, fr := range th.frames {
		roots = append(roots, fr.locals...)
		roots = append(roots, fr.fnValue)
	}
	roots = append(roots, th.constants...)
	for _, v := range th.globals {
		roots = append(roots, v)
	}
	return roots
}

// Collect runs a GC pass over the thread's currently-reachable state. The VM
// loop never calls this automatically mid-program (Somiré scripts are
// short-lived enough that unbounded allocation is an acceptable
// simplification); embedders that run long or memory-sensitive programs can
// call it between top-level statements.
func (th *Thread) Collect() {
	th.Heap.Collect(th.gcRoots())
}
