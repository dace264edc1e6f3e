// Much of this loop's shape - a flat switch over opcodes, a shared operand
// stack threaded through the call, explicit error returns instead of
// panicking on a bad program - is adapted from the teacher's own
// lang/machine/machine.go, even though the opcode set and encoding below it
// are entirely different (fixed-width, no varint, no CFG/defer machinery).
package machine

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mna/nenuphar/lang/compiler"
)

// run executes fr's function to completion and returns its result.
func (th *Thread) run(ctx context.Context, fr *Frame) (Value, error) {
	code := fr.fn.Proto.Code
	base := len(th.stack) // this frame's operand stack starts here

	push := func(v Value) { th.stack = append(th.stack, v) }
	pop := func() Value {
		v := th.stack[len(th.stack)-1]
		th.stack = th.stack[:len(th.stack)-1]
		return v
	}

	nextLocal := fr.fn.Proto.NumParams

	pc := 0
	for pc < len(code) {
		th.steps++
		if th.MaxSteps != 0 && th.steps > th.MaxSteps {
			return Nil, fmt.Errorf("machine: exceeded maximum step count (%d)", th.MaxSteps)
		}
		select {
		case <-ctx.Done():
			return Nil, ctx.Err()
		default:
		}

		op := compiler.Opcode(code[pc])
		pc++

		switch op {
		case compiler.IGNORE:
			pop()

		case compiler.CONSTANT:
			idx := readU16(code, pc)
			pc += 2
			push(th.constants[idx])

		case compiler.UNI_MINUS:
			x := pop()
			if !isNumeric(x) {
				return Nil, fmt.Errorf("machine: invalid type for unary -: %s", typeName(th, x))
			}
			if x.Kind() == KindInt {
				push(Int(-x.AsInt()))
			} else {
				push(Real(-x.AsFloat()))
			}

		case compiler.NOT:
			push(Bool(!Truth(pop())))

		case compiler.BIN_PLUS:
			y, x := pop(), pop()
			v, err := th.add(x, y)
			if err != nil {
				return Nil, err
			}
			push(v)

		case compiler.BIN_MINUS:
			y, x := pop(), pop()
			v, err := th.checkedArith("-", x, y, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
			if err != nil {
				return Nil, err
			}
			push(v)

		case compiler.MULTIPLY:
			y, x := pop(), pop()
			v, err := th.checkedArith("*", x, y, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
			if err != nil {
				return Nil, err
			}
			push(v)

		case compiler.DIVIDE:
			y, x := pop(), pop()
			if !isNumeric(x) || !isNumeric(y) {
				return Nil, fmt.Errorf("machine: invalid type for /: %s and %s", typeName(th, x), typeName(th, y))
			}
			if y.AsFloat() == 0 {
				return Nil, fmt.Errorf("machine: division by zero")
			}
			push(Real(x.AsFloat() / y.AsFloat()))

		case compiler.MODULO:
			y, x := pop(), pop()
			if !isNumeric(x) || !isNumeric(y) {
				return Nil, fmt.Errorf("machine: invalid type for %%: %s and %s", typeName(th, x), typeName(th, y))
			}
			if x.Kind() == KindInt && y.Kind() == KindInt {
				if y.AsInt() == 0 {
					return Nil, fmt.Errorf("machine: division by zero")
				}
				push(Int(x.AsInt() % y.AsInt()))
			} else {
				push(Real(math.Mod(x.AsFloat(), y.AsFloat())))
			}

		case compiler.POWER:
			y, x := pop(), pop()
			if !isNumeric(x) || !isNumeric(y) {
				return Nil, fmt.Errorf("machine: invalid type for ^: %s and %s", typeName(th, x), typeName(th, y))
			}
			if x.Kind() == KindInt && y.Kind() == KindInt && y.AsInt() >= 0 {
				push(Int(intPow(x.AsInt(), y.AsInt())))
			} else {
				push(Real(math.Pow(x.AsFloat(), y.AsFloat())))
			}

		case compiler.AND:
			y, x := pop(), pop()
			push(Bool(Truth(x) && Truth(y)))

		case compiler.OR:
			y, x := pop(), pop()
			push(Bool(Truth(x) || Truth(y)))

		case compiler.EQUALS:
			y, x := pop(), pop()
			push(Bool(th.equal(x, y)))

		case compiler.LESS:
			y, x := pop(), pop()
			less, err := th.less(x, y)
			if err != nil {
				return Nil, err
			}
			push(Bool(less))

		case compiler.LESS_OR_EQ:
			y, x := pop(), pop()
			gt, err := th.less(y, x)
			if err != nil {
				return Nil, err
			}
			push(Bool(!gt))

		case compiler.INDEX:
			i, x := pop(), pop()
			v, err := th.index(x, i)
			if err != nil {
				return Nil, err
			}
			push(v)

		case compiler.LET:
			fr.locals[nextLocal] = pop()
			nextLocal++

		case compiler.POP:
			n := int(readU16(code, pc))
			pc += 2
			nextLocal -= n
			fr.closeFrom(nextLocal)

		case compiler.SET_LOCAL:
			idx := readI16(code, pc)
			pc += 2
			v := pop()
			if idx >= 0 {
				fr.locals[idx] = v
			} else {
				fr.fn.Upvalues[-idx-1].Set(v)
			}

		case compiler.LOCAL:
			idx := readI16(code, pc)
			pc += 2
			if idx >= 0 {
				push(fr.locals[idx])
			} else {
				push(fr.fn.Upvalues[-idx-1].Get())
			}

		case compiler.GLOBAL:
			idx := readU16(code, pc)
			pc += 2
			name := th.prog.Constants[idx].Str
			v, ok := th.global(name)
			if !ok {
				return Nil, fmt.Errorf("machine: undefined global %q", name)
			}
			push(v)

		case compiler.JUMP_IF_NOT:
			rel := readI16(code, pc)
			pc += 2
			if !Truth(pop()) {
				pc += rel
			}

		case compiler.JUMP:
			rel := readI16(code, pc)
			pc += 2
			pc += rel

		case compiler.CALL:
			argc := int(readU16(code, pc))
			pc += 2
			args := append([]Value(nil), th.stack[len(th.stack)-argc:]...)
			th.stack = th.stack[:len(th.stack)-argc]
			fn := pop()
			result, err := th.Call(ctx, fn, args)
			if err != nil {
				return Nil, err
			}
			push(result)

		case compiler.RETURN:
			result := pop()
			th.stack = th.stack[:base]
			return result, nil

		case compiler.MAKE_FUNC:
			protoIdx := readU16(code, pc)
			pc += 2
			argc := readU16(code, pc)
			pc += 2
			upvalueCount := int(readU16(code, pc))
			pc += 2

			upvalues := make([]*UpvalueObj, upvalueCount)
			for i := 0; i < upvalueCount; i++ {
				srcIdx := readI16(code, pc)
				pc += 2
				if srcIdx >= 0 {
					upvalues[i] = fr.upvalueFor(srcIdx)
				} else {
					upvalues[i] = fr.fn.Upvalues[-srcIdx-1]
				}
			}
			_ = argc // the callee's own Proto.NumParams governs argument binding

			fn := &FunctionObj{Proto: th.prog.Functions[protoIdx], Upvalues: upvalues}
			push(th.Heap.Alloc(fn))

		case compiler.MAKE_LIST:
			n := int(readU16(code, pc))
			pc += 2
			elems := append([]Value(nil), th.stack[len(th.stack)-n:]...)
			th.stack = th.stack[:len(th.stack)-n]
			push(th.Heap.Alloc(&ListObj{Elems: elems}))

		default:
			return Nil, fmt.Errorf("machine: unimplemented opcode %s", op)
		}
	}

	// A well-formed program always ends every function body in RETURN (the
	// compiler appends an implicit `return nil` to every function), so
	// falling off the end of code is a compiler or deserialization bug.
	return Nil, fmt.Errorf("machine: function %q fell off the end of its bytecode", fr.fn.Name())
}

func readU16(code []byte, pc int) int {
	return int(binary.LittleEndian.Uint16(code[pc:]))
}

func readI16(code []byte, pc int) int {
	return int(int16(binary.LittleEndian.Uint16(code[pc:])))
}

func arith(x, y Value, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) Value {
	if x.Kind() == KindInt && y.Kind() == KindInt {
		return Int(intOp(x.AsInt(), y.AsInt()))
	}
	return Real(floatOp(x.AsFloat(), y.AsFloat()))
}

// checkedArith is arith guarded by a runtime isNumeric check, for the
// binary operators whose operands may reach the VM with only a static
// types.Any guarantee (any parameter, since every parameter is typed Any)
// rather than a proven-numeric one.
func (th *Thread) checkedArith(op string, x, y Value, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) (Value, error) {
	if !isNumeric(x) || !isNumeric(y) {
		return Nil, fmt.Errorf("machine: invalid type for %s: %s and %s", op, typeName(th, x), typeName(th, y))
	}
	return arith(x, y, intOp, floatOp), nil
}

// intPow computes base raised to a nonnegative exp by repeated squaring,
// matching original_source's Value::power integer fast path.
func intPow(base, exp int64) int64 {
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func (th *Thread) add(x, y Value) (Value, error) {
	if x.Kind() == KindObject && y.Kind() == KindObject {
		xs, xok := th.Heap.Object(x).(*StringObj)
		ys, yok := th.Heap.Object(y).(*StringObj)
		if xok && yok {
			return th.Heap.Alloc(&StringObj{S: xs.S + ys.S}), nil
		}
	}
	if !isNumeric(x) || !isNumeric(y) {
		return Nil, fmt.Errorf("machine: cannot add %s and %s", typeName(th, x), typeName(th, y))
	}
	return arith(x, y, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }), nil
}

func isNumeric(v Value) bool { return v.Kind() == KindInt || v.Kind() == KindReal }

func (th *Thread) less(x, y Value) (bool, error) {
	if !isNumeric(x) || !isNumeric(y) {
		return false, fmt.Errorf("machine: cannot compare %s and %s", typeName(th, x), typeName(th, y))
	}
	if x.Kind() == KindInt && y.Kind() == KindInt {
		return x.AsInt() < y.AsInt(), nil
	}
	return x.AsFloat() < y.AsFloat(), nil
}

func (th *Thread) equal(x, y Value) bool {
	if isNumeric(x) && isNumeric(y) {
		if x.Kind() == KindInt && y.Kind() == KindInt {
			return x.AsInt() == y.AsInt()
		}
		return x.AsFloat() == y.AsFloat()
	}
	if x.Kind() != y.Kind() {
		return false
	}
	switch x.Kind() {
	case KindNil:
		return true
	case KindBool:
		return x.AsBool() == y.AsBool()
	case KindObject:
		xo, yo := th.Heap.Object(x), th.Heap.Object(y)
		if xs, ok := xo.(*StringObj); ok {
			ys, ok := yo.(*StringObj)
			return ok && xs.S == ys.S
		}
		if xl, ok := xo.(*ListObj); ok {
			yl, ok := yo.(*ListObj)
			if !ok || len(xl.Elems) != len(yl.Elems) {
				return false
			}
			for i := range xl.Elems {
				if !th.equal(xl.Elems[i], yl.Elems[i]) {
					return false
				}
			}
			return true
		}
		return x == y // reference identity for functions/namespaces
	default:
		return false
	}
}

// index implements list[i]. Somiré list indices are 1-based, matching
// original_source's own VM INDEX opcode (l[1] is the first element).
func (th *Thread) index(x, i Value) (Value, error) {
	if x.Kind() != KindObject {
		return Nil, fmt.Errorf("machine: %s is not indexable", typeName(th, x))
	}
	list, ok := th.Heap.Object(x).(*ListObj)
	if !ok {
		return Nil, fmt.Errorf("machine: %s is not indexable", typeName(th, x))
	}
	if i.Kind() != KindInt {
		return Nil, fmt.Errorf("machine: list index must be an int, got %s", typeName(th, i))
	}
	idx := i.AsInt()
	if idx < 1 || idx > int64(len(list.Elems)) {
		return Nil, fmt.Errorf("machine: list index %d out of range (1..%d)", idx, len(list.Elems))
	}
	return list.Elems[idx-1], nil
}
