package machine

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
	"github.com/mna/nenuphar/lang/compiler"
)

// Object is a heap-allocated value: anything reached through a KindObject
// Value. children reports the Values this object directly holds, so the
// collector can trace through it without type-switching in the GC itself.
type Object interface {
	typeName() string
	children() []Value
}

// StringObj is a heap-allocated string. String literals are allocated once
// per run from the compiled program's constant pool (see
// Thread.materialize), and any string produced at runtime (concatenation,
// repr) allocates one of these.
type StringObj struct{ S string }

func (o *StringObj) typeName() string   { return "str" }
func (o *StringObj) children() []Value  { return nil }
func (o *StringObj) String() string     { return o.S }

// ListObj is a mutable, growable array of Values.
type ListObj struct{ Elems []Value }

func (o *ListObj) typeName() string  { return "list" }
func (o *ListObj) children() []Value { return o.Elems }

// NamespaceObj backs a builtin namespace such as "list": a fixed table of
// named members, looked up the same way a module-level global is.
type NamespaceObj struct {
	Name    string
	Members *swiss.Map[string, Value]
}

func (o *NamespaceObj) typeName() string { return "namespace" }
func (o *NamespaceObj) children() []Value {
	vs := make([]Value, 0, o.Members.Count())
	o.Members.Iter(func(_ string, v Value) (stop bool) {
		vs = append(vs, v)
		return false
	})
	return vs
}

// UpvalueObj is a closure cell. While the frame that declared the captured
// local is still on the call stack, the upvalue is open and reads/writes
// pass through to that frame's locals slice directly, so every closure
// sharing the variable observes the same mutations. Once the owning frame
// returns, the upvalue is closed: it copies the final value into itself and
// stops pointing into the (about to be reused) stack space.
type UpvalueObj struct {
	closed bool
	value  Value
	stack  *[]Value
	slot   int
}

func newOpenUpvalue(stack *[]Value, slot int) *UpvalueObj {
	return &UpvalueObj{stack: stack, slot: slot}
}

func newClosedUpvalue(v Value) *UpvalueObj {
	return &UpvalueObj{closed: true, value: v}
}

// Get returns the upvalue's current value.
func (u *UpvalueObj) Get() Value {
	if u.closed {
		return u.value
	}
	return (*u.stack)[u.slot]
}

// Set updates the upvalue's current value.
func (u *UpvalueObj) Set(v Value) {
	if u.closed {
		u.value = v
		return
	}
	(*u.stack)[u.slot] = v
}

// Close detaches the upvalue from its owning frame's stack, after copying
// out its live value.
func (u *UpvalueObj) Close() {
	if u.closed {
		return
	}
	u.value = (*u.stack)[u.slot]
	u.closed = true
	u.stack = nil
}

// FunctionObj is a closure: a compiled prototype plus the upvalue cells it
// captured at MAKE_FUNC time.
type FunctionObj struct {
	Proto    *compiler.Funcode
	Upvalues []*UpvalueObj
}

func (o *FunctionObj) typeName() string { return "function" }
func (o *FunctionObj) children() []Value {
	vs := make([]Value, len(o.Upvalues))
	for i, uv := range o.Upvalues {
		vs[i] = uv.Get()
	}
	return vs
}

func (o *FunctionObj) Name() string {
	if o.Proto.Name == "" {
		return "<anonymous>"
	}
	return o.Proto.Name
}

// CFunctionObj wraps a Go function as a callable builtin, the way "log",
// "repr" and the "list" namespace functions are implemented.
type CFunctionObj struct {
	Name string
	Fn   func(th *Thread, args []Value) (Value, error)
}

func (o *CFunctionObj) typeName() string  { return "builtin" }
func (o *CFunctionObj) children() []Value { return nil }

// repr formats v for the "repr" builtin, quoting strings; "log", "write"
// and "writeLine" print through str instead.
func (th *Thread) repr(v Value) string {
	switch v.Kind() {
	case KindNil:
		return "nil"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindReal:
		return fmt.Sprintf("%g", v.AsReal())
	case KindObject:
		switch o := th.Heap.Object(v).(type) {
		case *StringObj:
			return fmt.Sprintf("%q", o.S)
		case *ListObj:
			var sb strings.Builder
			sb.WriteByte('[')
			for i, e := range o.Elems {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(th.repr(e))
			}
			sb.WriteByte(']')
			return sb.String()
		case *FunctionObj:
			return fmt.Sprintf("<function %s>", o.Name())
		case *CFunctionObj:
			return fmt.Sprintf("<builtin %s>", o.Name)
		case *NamespaceObj:
			return fmt.Sprintf("<namespace %s>", o.Name)
		default:
			return fmt.Sprintf("<%s>", o.typeName())
		}
	default:
		return "<invalid>"
	}
}

// str formats v for "log", "write" and "writeLine": it is repr's content
// without the quoting a string literal would get.
func (th *Thread) str(v Value) string {
	if v.Kind() == KindObject {
		if s, ok := th.Heap.Object(v).(*StringObj); ok {
			return s.S
		}
	}
	return th.repr(v)
}

func typeName(th *Thread, v Value) string {
	switch v.Kind() {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindObject:
		return th.Heap.Object(v).typeName()
	default:
		return "invalid"
	}
}
