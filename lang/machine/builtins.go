package machine

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// global resolves a predeclared name (a bare builtin like "log", or a
// qualified one like "list.add") to its runtime value, building the table
// lazily on first use.
func (th *Thread) global(name string) (Value, bool) {
	if th.globals == nil {
		th.globals = th.buildGlobals()
	}
	v, ok := th.globals[name]
	return v, ok
}

func (th *Thread) buildGlobals() map[string]Value {
	g := make(map[string]Value)

	cfunc := func(name string, fn func(th *Thread, args []Value) (Value, error)) Value {
		return th.Heap.Alloc(&CFunctionObj{Name: name, Fn: fn})
	}

	g["log"] = cfunc("log", builtinLog)
	g["repr"] = cfunc("repr", builtinRepr)
	g["write"] = cfunc("write", builtinWrite)
	g["writeLine"] = cfunc("writeLine", builtinWriteLine)
	g["bool"] = cfunc("bool", builtinBool)
	g["list.add"] = cfunc("list.add", builtinListAdd)
	g["list.size"] = cfunc("list.size", builtinListSize)

	members := swiss.NewMap[string, Value](2)
	members.Put("add", g["list.add"])
	members.Put("size", g["list.size"])
	g["list"] = th.Heap.Alloc(&NamespaceObj{Name: "list", Members: members})

	return g
}

func builtinLog(th *Thread, args []Value) (Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(th.Stdout, " ")
		}
		fmt.Fprint(th.Stdout, th.str(a))
	}
	fmt.Fprintln(th.Stdout)
	return Nil, nil
}

func builtinRepr(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, fmt.Errorf("machine: repr wants 1 argument, got %d", len(args))
	}
	return th.Heap.Alloc(&StringObj{S: th.repr(args[0])}), nil
}

func builtinWrite(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, fmt.Errorf("machine: write wants 1 argument, got %d", len(args))
	}
	fmt.Fprint(th.Stdout, th.str(args[0]))
	return Nil, nil
}

func builtinWriteLine(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, fmt.Errorf("machine: writeLine wants 1 argument, got %d", len(args))
	}
	fmt.Fprintln(th.Stdout, th.str(args[0]))
	return Nil, nil
}

func builtinBool(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, fmt.Errorf("machine: bool wants 1 argument, got %d", len(args))
	}
	return Bool(Truth(args[0])), nil
}

// builtinListAdd implements list.add(l, v), which appends v, and
// list.add(l, v, pos), which inserts v before the 1-based position pos (so
// pos ranges over [1, len(l)+1], pos == len(l)+1 being equivalent to a
// plain append) - matching original_source's list.add and its 1-based
// indexing convention.
func builtinListAdd(th *Thread, args []Value) (Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return Nil, fmt.Errorf("machine: list.add wants 2 or 3 arguments, got %d", len(args))
	}
	list, err := asList(th, args[0])
	if err != nil {
		return Nil, err
	}
	if len(args) == 2 {
		list.Elems = append(list.Elems, args[1])
		return Nil, nil
	}
	if args[2].Kind() != KindInt {
		return Nil, fmt.Errorf("machine: list.add position must be an int, got %s", typeName(th, args[2]))
	}
	pos := int(args[2].AsInt())
	if pos < 1 || pos > len(list.Elems)+1 {
		return Nil, fmt.Errorf("machine: list.add position %d out of range (1..%d)", pos, len(list.Elems)+1)
	}
	idx := pos - 1
	list.Elems = append(list.Elems, Nil)
	copy(list.Elems[idx+1:], list.Elems[idx:])
	list.Elems[idx] = args[1]
	return Nil, nil
}

func builtinListSize(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, fmt.Errorf("machine: list.size wants 1 argument, got %d", len(args))
	}
	list, err := asList(th, args[0])
	if err != nil {
		return Nil, err
	}
	return Int(int64(len(list.Elems))), nil
}

func asList(th *Thread, v Value) (*ListObj, error) {
	if v.Kind() == KindObject {
		if list, ok := th.Heap.Object(v).(*ListObj); ok {
			return list, nil
		}
	}
	return nil, fmt.Errorf("machine: expected a list, got %s", typeName(th, v))
}
