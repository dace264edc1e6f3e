package compiler

import (
	"fmt"

	"github.com/mna/nenuphar/lang/token"
)

// ConstantKind tags the dynamic kind of a compiled Constant.
type ConstantKind uint8

//nolint:revive
const (
	KNil ConstantKind = iota
	KBool
	KInt
	KReal
	KStr
)

// Constant is a compile-time literal value, or a name referenced by a
// GLOBAL instruction. It intentionally does not import lang/machine: the
// machine's Value representation is built from a compiled Program, not the
// other way around, and a compiler-local type avoids the import cycle that
// would otherwise result.
type Constant struct {
	Kind ConstantKind
	Bool bool
	Int  int64
	Real float64
	Str  string
}

func (c Constant) String() string {
	switch c.Kind {
	case KNil:
		return "nil"
	case KBool:
		return fmt.Sprint(c.Bool)
	case KInt:
		return fmt.Sprint(c.Int)
	case KReal:
		return fmt.Sprint(c.Real)
	case KStr:
		return fmt.Sprintf("%q", c.Str)
	default:
		return "<bad constant>"
	}
}

// UpvalueDesc tells a closure how to populate one of its upvalue cells when
// MAKE_FUNC runs: Index >= 0 captures the enclosing function's local at that
// slot, Index < 0 captures the enclosing function's own upvalue number
// -Index-1 (i.e. it is itself a re-export of a grandparent's variable).
type UpvalueDesc struct {
	Index int
	Name  string // for disassembly only
}

// Funcode is the compiled code of a single function literal, or of the
// top-level chunk (always Functions[0] in its Program).
type Funcode struct {
	Prog      *Program
	Name      string // "<toplevel>" for the entry point, else the bound or anonymous name
	Pos       token.Pos
	Code      []byte
	NumParams int
	NumLocals int // total local slots ever live at once, params included
	Upvalues  []UpvalueDesc
}

// Program is a fully compiled Somiré unit: a constant pool shared by every
// function it contains, and the list of function prototypes. Functions[0]
// is always the entry point (the compiled top-level chunk).
type Program struct {
	Filename  string
	Constants []Constant
	Functions []*Funcode
}
