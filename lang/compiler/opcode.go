package compiler

import "fmt"

// Version numbers the bytecode format. It is not written into .sbf files
// (MagicBytes ends in a fixed literal byte), so changing it does not by
// itself invalidate saved bytecode files.
const Version = 1

// Opcode is a single fixed-width bytecode instruction. Unlike the
// teacher's Starlark-derived variable-width, CFG-linearized encoding,
// Somiré's bytecode is a flat byte stream with fixed-width immediates:
// every instruction is one opcode byte followed by zero, two or more
// operand bytes (never varint-encoded), so a function's code can be
// disassembled or jumped into without first decoding everything before it.
type Opcode uint8

// "x OP y" stack pictures describe the operand stack before and after
// execution; OP<n> denotes a fixed-width immediate operand following the
// opcode byte (u16 unless noted otherwise).
const ( //nolint:revive
	IGNORE Opcode = iota // value IGNORE -                 (discard an expression statement's result)

	CONSTANT // - CONSTANT<u16 constIdx> value

	UNI_MINUS // x UNI_MINUS -x
	NOT       // x NOT       !x

	BIN_PLUS     // a b BIN_PLUS     a+b
	BIN_MINUS    // a b BIN_MINUS    a-b
	MULTIPLY     // a b MULTIPLY     a*b
	DIVIDE       // a b DIVIDE       a/b
	MODULO       // a b MODULO       a%b
	POWER        // a b POWER        a^b
	AND          // a b AND          a and b
	OR           // a b OR           a or b
	EQUALS       // a b EQUALS       a==b
	LESS         // a b LESS         a<b
	LESS_OR_EQ   // a b LESS_OR_EQ   a<=b
	INDEX        // a i INDEX        a[i]

	LET // value LET - (declare the next local slot from the top of stack)
	POP // - POP<u16 n> - (pop n values off the operand stack, for dropped block locals)

	SET_LOCAL // value SET_LOCAL<i16 idx> - (idx<0 addresses an upvalue)
	LOCAL     // - LOCAL<i16 idx>    value (idx<0 addresses an upvalue)
	GLOBAL    // - GLOBAL<u16 nameConstIdx> value (predeclared builtin lookup)

	JUMP_IF_NOT // cond JUMP_IF_NOT<i16 rel> - (pops cond; rel is relative to the byte after the immediate)
	JUMP        // - JUMP<i16 rel>       -

	CALL // fn arg1..argN CALL<u16 argc> result

	RETURN // value RETURN - (also marks end of function bytecode)

	// MAKE_FUNC<u16 protoIdx><u16 argc><u16 upvalueCount>
	// followed by upvalueCount x i16 signed source indices (idx<0: parent
	// upvalue, idx>=0: parent local slot) builds a closure over the
	// function prototype at protoIdx.
	MAKE_FUNC

	MAKE_LIST // x1..xn MAKE_LIST<u16 n> list

	opcodeMax = MAKE_LIST
)

var opcodeNames = [...]string{
	IGNORE:      "ignore",
	CONSTANT:    "constant",
	UNI_MINUS:   "uni_minus",
	NOT:         "not",
	BIN_PLUS:    "bin_plus",
	BIN_MINUS:   "bin_minus",
	MULTIPLY:    "multiply",
	DIVIDE:      "divide",
	MODULO:      "modulo",
	POWER:       "power",
	AND:         "and",
	OR:          "or",
	EQUALS:      "equals",
	LESS:        "less",
	LESS_OR_EQ:  "less_or_eq",
	INDEX:       "index",
	LET:         "let",
	POP:         "pop",
	SET_LOCAL:   "set_local",
	LOCAL:       "local",
	GLOBAL:      "global",
	JUMP_IF_NOT: "jump_if_not",
	JUMP:        "jump",
	CALL:        "call",
	RETURN:      "return",
	MAKE_FUNC:   "make_func",
	MAKE_LIST:   "make_list",
}

func (op Opcode) String() string {
	if op <= opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// operandWidth reports how many immediate bytes follow the opcode byte in
// the instruction stream, not counting MAKE_FUNC's trailing upvalue-index
// list (which has a variable length derived from its own third immediate).
func operandWidth(op Opcode) int {
	switch op {
	case IGNORE, UNI_MINUS, NOT,
		BIN_PLUS, BIN_MINUS, MULTIPLY, DIVIDE, MODULO, POWER, AND, OR, EQUALS, LESS, LESS_OR_EQ, INDEX,
		LET, RETURN:
		return 0
	case CONSTANT, POP, GLOBAL, CALL, MAKE_LIST:
		return 2
	case SET_LOCAL, LOCAL, JUMP_IF_NOT, JUMP:
		return 2
	case MAKE_FUNC:
		return 6
	default:
		return 0
	}
}

// OperandWidth exposes operandWidth to other packages (namely lang/machine's
// decoder), which must walk the same instruction stream the compiler emits.
func OperandWidth(op Opcode) int { return operandWidth(op) }

// HasSignedOperand reports whether op's u16 immediate is interpreted as a
// signed relative offset or local/upvalue index, rather than an unsigned
// index into a table.
func HasSignedOperand(op Opcode) bool {
	switch op {
	case SET_LOCAL, LOCAL, JUMP_IF_NOT, JUMP:
		return true
	default:
		return false
	}
}
