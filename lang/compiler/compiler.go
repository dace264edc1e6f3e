// Much of the compiler package's structure (the separation between
// whole-program and per-function compile state, and the pcomp/fcomp
// naming) is adapted from the Starlark source code:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler takes a parsed Somiré chunk and compiles it directly to
// bytecode, checking static types and resolving every variable reference to
// a local slot, an upvalue, or a predeclared global along the way. Unlike a
// two-pass resolve-then-compile pipeline, there is no separate resolver:
// scope and type information is built up incrementally as each function is
// compiled, depth-first, the same way original_source's single-pass
// Compiler does it.
package compiler

import (
	"fmt"
	"math"

	"github.com/mna/nenuphar/lang/ast"
	"github.com/mna/nenuphar/lang/token"
	"github.com/mna/nenuphar/lang/types"
)

// CompileFile compiles a single parsed chunk into a Program. The chunk must
// already be free of parse errors; compilation does not re-validate syntax,
// only static types, variable resolution and control flow. The resulting
// Program's Functions[0] is always the compiled top-level chunk.
func CompileFile(filename string, ch *ast.Chunk) (*Program, error) {
	prog := &Program{Filename: filename}
	c := &compiling{prog: prog}
	if _, _, err := c.compileFunctionLit(nil, "<toplevel>", ch.Block.Start, nil, ch.Block); err != nil {
		return nil, err
	}
	return prog, nil
}

// compiling holds whole-program state: the constant pool, shared and
// deduplicated across every function compiled into prog.
type compiling struct {
	prog      *Program
	constants map[Constant]int
}

func (c *compiling) constIndex(k Constant) int {
	if c.constants == nil {
		c.constants = make(map[Constant]int)
	}
	if i, ok := c.constants[k]; ok {
		return i
	}
	i := len(c.prog.Constants)
	c.prog.Constants = append(c.prog.Constants, k)
	c.constants[k] = i
	return i
}

func (c *compiling) nameConst(name string) int {
	return c.constIndex(Constant{Kind: KStr, Str: name})
}

func (c *compiling) posStr(p token.Pos) string {
	return token.FormatPos(token.PosFull, c.prog.Filename, p)
}

// localVar is one declared local variable, in declaration (== stack slot)
// order.
type localVar struct {
	name string
	typ  types.Type
}

// upvalue is a variable a function had to reach into an enclosing function
// for. index uses the same signed convention as LOCAL's operand: >= 0
// addresses a local slot of the parent, < 0 addresses upvalue -index-1 of
// the parent (a re-export of a grandparent's variable).
type upvalue struct {
	name  string
	typ   types.Type
	index int
}

// scope holds the compile state of a single function: its locals, the
// upvalues it has had to materialize, the bytecode emitted so far, and the
// type its return statements have been unified to.
type scope struct {
	parent     *scope
	locals     []localVar
	maxLocals  int
	upvalues   []upvalue
	code       []byte
	resultType types.Type
}

// resolve looks up name as a local of sc first, then (recursively) as an
// upvalue reaching into sc.parent, materializing and deduplicating upvalue
// entries along the way. This is the same recursive algorithm as
// original_source's Context::getVariable.
func (sc *scope) resolve(name string) (index int, typ types.Type, ok bool) {
	for i := len(sc.locals) - 1; i >= 0; i-- {
		if sc.locals[i].name == name {
			return i, sc.locals[i].typ, true
		}
	}
	if sc.parent == nil {
		return 0, nil, false
	}
	parentIdx, parentTyp, ok := sc.parent.resolve(name)
	if !ok {
		return 0, nil, false
	}
	for i, uv := range sc.upvalues {
		if uv.name == name && uv.index == parentIdx {
			return -(i + 1), uv.typ, true
		}
	}
	sc.upvalues = append(sc.upvalues, upvalue{name: name, typ: parentTyp, index: parentIdx})
	return -len(sc.upvalues), parentTyp, true
}

func (sc *scope) define(name string, typ types.Type) int {
	sc.locals = append(sc.locals, localVar{name: name, typ: typ})
	if len(sc.locals) > sc.maxLocals {
		sc.maxLocals = len(sc.locals)
	}
	return len(sc.locals) - 1
}

func (sc *scope) emit(op Opcode) { sc.code = append(sc.code, byte(op)) }

func (sc *scope) emitU16(op Opcode, n int) {
	sc.code = append(sc.code, byte(op), byte(n), byte(n>>8))
}

func (sc *scope) emitI16(op Opcode, n int) {
	v := int16(n)
	sc.code = append(sc.code, byte(op), byte(v), byte(v>>8))
}

// emitJumpPlaceholder emits op with a zero placeholder offset and returns
// its position, to be back-patched once the jump target is known.
func (sc *scope) emitJumpPlaceholder(op Opcode) int {
	pos := len(sc.code)
	sc.code = append(sc.code, byte(op), 0, 0)
	return pos
}

// patchJumpHere back-patches the jump instruction at pos to land on the
// current end of the code buffer. The offset is relative to the byte
// immediately following the two-byte immediate.
func (sc *scope) patchJumpHere(pos int) error {
	rel := len(sc.code) - (pos + 3)
	if rel < math.MinInt16 || rel > math.MaxInt16 {
		return fmt.Errorf("jump target out of range (%d)", rel)
	}
	v := int16(rel)
	sc.code[pos+1] = byte(v)
	sc.code[pos+2] = byte(v >> 8)
	return nil
}

// emitJumpTo emits a jump to a target that is already known, such as a
// while loop's condition (a backward jump).
func (sc *scope) emitJumpTo(op Opcode, target int) error {
	pos := len(sc.code)
	rel := target - (pos + 3)
	if rel < math.MinInt16 || rel > math.MaxInt16 {
		return fmt.Errorf("jump target out of range (%d)", rel)
	}
	v := int16(rel)
	sc.code = append(sc.code, byte(op), byte(v), byte(v>>8))
	return nil
}

func (sc *scope) emitMakeFunc(protoIdx, argc int, upvalues []UpvalueDesc) {
	sc.code = append(sc.code, byte(MAKE_FUNC),
		byte(protoIdx), byte(protoIdx>>8),
		byte(argc), byte(argc>>8),
		byte(len(upvalues)), byte(len(upvalues)>>8))
	for _, uv := range upvalues {
		v := int16(uv.Index)
		sc.code = append(sc.code, byte(v), byte(v>>8))
	}
}

// assignable is the permissive form of Type.CanBeAssignedTo used at call
// and assignment sites: an Any on either side always succeeds, since a
// parameter or local with no usable inferred type (no annotation syntax
// exists) defaults to Any and is checked against its declared type
// dynamically by the machine instead.
func assignable(from, to types.Type) bool {
	if from == types.Any || to == types.Any {
		return true
	}
	return from.CanBeAssignedTo(to)
}

// unifyType widens two types observed for the same slot (a function's
// several return statements, or a list literal's elements) to their common
// type, falling back to Any when neither is assignable to the other.
func unifyType(a, b types.Type) types.Type {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a == b:
		return a
	case a.CanBeAssignedTo(b):
		return b
	case b.CanBeAssignedTo(a):
		return a
	default:
		return types.Any
	}
}

func isNumeric(t types.Type) bool { return t == types.Int || t == types.Real || t == types.Any }

// compileFunctionLit compiles params/body as a new Funcode appended to
// prog.Functions and returns its index together with its inferred
// FunctionType. parent is nil only for the top-level chunk.
func (c *compiling) compileFunctionLit(parent *scope, name string, pos token.Pos, params []*ast.Param, body *ast.Block) (int, *types.FunctionType, error) {
	fn := &Funcode{Prog: c.prog, Name: name, Pos: pos, NumParams: len(params)}
	idx := len(c.prog.Functions)
	c.prog.Functions = append(c.prog.Functions, fn)

	sc := &scope{parent: parent}
	argTypes := make([]types.Type, len(params))
	for i, p := range params {
		sc.define(p.Name, types.Any)
		argTypes[i] = types.Any
	}

	for _, stmt := range body.Stmts {
		if err := c.compileStmt(sc, stmt); err != nil {
			return 0, nil, err
		}
	}

	// Somiré functions implicitly return nil when control falls off the end
	// of the body; this tail is unreachable whenever every path already
	// returned explicitly.
	sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KNil}))
	sc.emit(RETURN)

	resultType := sc.resultType
	if resultType == nil {
		resultType = types.Nil
	}

	fn.Code = sc.code
	fn.NumLocals = sc.maxLocals
	fn.Upvalues = make([]UpvalueDesc, len(sc.upvalues))
	for i, uv := range sc.upvalues {
		fn.Upvalues[i] = UpvalueDesc{Index: uv.index, Name: uv.name}
	}

	return idx, types.NewFunctionType(argTypes, resultType), nil
}

func (c *compiling) compileStmt(sc *scope, stmt ast.Stmt) error {
	switch n := stmt.(type) {
	case *ast.LetStmt:
		return c.compileLetStmt(sc, n)
	case *ast.SetStmt:
		return c.compileSetStmt(sc, n)
	case *ast.ExprStmt:
		if _, err := c.compileExpr(sc, n.X); err != nil {
			return err
		}
		sc.emit(IGNORE)
		return nil
	case *ast.IfStmt:
		return c.compileIfStmt(sc, n)
	case *ast.WhileStmt:
		return c.compileWhileStmt(sc, n)
	case *ast.ReturnStmt:
		return c.compileReturnStmt(sc, n)
	default:
		return fmt.Errorf("compiler: unhandled statement %T", stmt)
	}
}

// compileLetStmt pre-declares the bound name before compiling a function
// literal initializer, so the function body can resolve its own name as an
// upvalue and call itself recursively; a non-function initializer is
// compiled first since it can never meaningfully observe its own binding.
func (c *compiling) compileLetStmt(sc *scope, n *ast.LetStmt) error {
	if fe, ok := n.Value.(*ast.FuncExpr); ok {
		idx := sc.define(n.Name, types.Any)
		funcIdx, ft, err := c.compileFunctionLit(sc, n.Name, fe.FunPos, fe.Params, fe.Body)
		if err != nil {
			return err
		}
		sc.locals[idx].typ = ft
		sc.emitMakeFunc(funcIdx, len(fe.Params), c.prog.Functions[funcIdx].Upvalues)
		sc.emit(LET)
		return nil
	}

	typ, err := c.compileExpr(sc, n.Value)
	if err != nil {
		return err
	}
	sc.define(n.Name, typ)
	sc.emit(LET)
	return nil
}

// compileSetStmt assigns to an existing local or upvalue. Somiré has no
// mutable globals and no opcode for assigning into a list element or a
// namespace member, so only a plain variable target is accepted.
func (c *compiling) compileSetStmt(sc *scope, n *ast.SetStmt) error {
	ident, ok := n.Left.(*ast.IdentExpr)
	if !ok {
		start, _ := n.Left.Span()
		return fmt.Errorf("%s: only a plain variable may be assigned to", c.posStr(start))
	}
	idx, declTyp, ok := sc.resolve(ident.Name)
	if !ok {
		return fmt.Errorf("%s: undefined variable %q", c.posStr(ident.NamePos), ident.Name)
	}
	valTyp, err := c.compileExpr(sc, n.Right)
	if err != nil {
		return err
	}
	if !assignable(valTyp, declTyp) {
		return fmt.Errorf("%s: cannot assign %s to %s", c.posStr(ident.NamePos), valTyp, declTyp)
	}
	sc.emitI16(SET_LOCAL, idx)
	return nil
}

// compileBlockBody compiles a nested if/while block: locals declared inside
// it are popped off the stack on exit, since unlike a function body, a
// block does not tear down a whole call frame when it ends.
func (c *compiling) compileBlockBody(sc *scope, block *ast.Block) error {
	mark := len(sc.locals)
	for _, stmt := range block.Stmts {
		if err := c.compileStmt(sc, stmt); err != nil {
			return err
		}
	}
	if n := len(sc.locals) - mark; n > 0 {
		sc.emitU16(POP, n)
	}
	sc.locals = sc.locals[:mark]
	return nil
}

func (c *compiling) compileIfStmt(sc *scope, n *ast.IfStmt) error {
	condTyp, err := c.compileExpr(sc, n.Cond)
	if err != nil {
		return err
	}
	if !assignable(condTyp, types.Bool) {
		return fmt.Errorf("%s: if condition must be bool, got %s", c.posStr(n.IfPos), condTyp)
	}

	jmpFalse := sc.emitJumpPlaceholder(JUMP_IF_NOT)
	if err := c.compileBlockBody(sc, n.Then); err != nil {
		return err
	}

	switch {
	case n.Elif != nil:
		jmpEnd := sc.emitJumpPlaceholder(JUMP)
		if err := sc.patchJumpHere(jmpFalse); err != nil {
			return err
		}
		if err := c.compileIfStmt(sc, n.Elif); err != nil {
			return err
		}
		return sc.patchJumpHere(jmpEnd)
	case n.Else != nil:
		jmpEnd := sc.emitJumpPlaceholder(JUMP)
		if err := sc.patchJumpHere(jmpFalse); err != nil {
			return err
		}
		if err := c.compileBlockBody(sc, n.Else); err != nil {
			return err
		}
		return sc.patchJumpHere(jmpEnd)
	default:
		return sc.patchJumpHere(jmpFalse)
	}
}

func (c *compiling) compileWhileStmt(sc *scope, n *ast.WhileStmt) error {
	loopStart := len(sc.code)
	condTyp, err := c.compileExpr(sc, n.Cond)
	if err != nil {
		return err
	}
	if !assignable(condTyp, types.Bool) {
		return fmt.Errorf("%s: while condition must be bool, got %s", c.posStr(n.WhilePos), condTyp)
	}

	jmpEnd := sc.emitJumpPlaceholder(JUMP_IF_NOT)
	if err := c.compileBlockBody(sc, n.Body); err != nil {
		return err
	}
	if err := sc.emitJumpTo(JUMP, loopStart); err != nil {
		return err
	}
	return sc.patchJumpHere(jmpEnd)
}

func (c *compiling) compileReturnStmt(sc *scope, n *ast.ReturnStmt) error {
	typ := types.Nil
	if n.Value != nil {
		t, err := c.compileExpr(sc, n.Value)
		if err != nil {
			return err
		}
		typ = t
	} else {
		sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KNil}))
	}
	sc.resultType = unifyType(sc.resultType, typ)
	sc.emit(RETURN)
	return nil
}

func (c *compiling) compileExpr(sc *scope, expr ast.Expr) (types.Type, error) {
	switch n := expr.(type) {
	case *ast.IntExpr:
		sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KInt, Int: int64(n.Value)}))
		return types.Int, nil
	case *ast.RealExpr:
		sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KReal, Real: n.Value}))
		return types.Real, nil
	case *ast.StringExpr:
		sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KStr, Str: n.Value}))
		return types.Str, nil
	case *ast.SymbolExpr:
		return c.compileSymbolExpr(sc, n)
	case *ast.IdentExpr:
		return c.compileIdentExpr(sc, n)
	case *ast.UnaryExpr:
		return c.compileUnaryExpr(sc, n)
	case *ast.BinaryExpr:
		return c.compileBinaryExpr(sc, n)
	case *ast.IndexExpr:
		return c.compileIndexExpr(sc, n)
	case *ast.ListExpr:
		return c.compileListExpr(sc, n)
	case *ast.FuncExpr:
		return c.compileFuncExpr(sc, n)
	case *ast.CallExpr:
		return c.compileCallExpr(sc, n)
	case *ast.DotExpr:
		return c.compileDotExpr(sc, n)
	default:
		return nil, fmt.Errorf("compiler: unhandled expression %T", expr)
	}
}

func (c *compiling) compileSymbolExpr(sc *scope, n *ast.SymbolExpr) (types.Type, error) {
	switch n.Tok {
	case token.NIL:
		sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KNil}))
		return types.Nil, nil
	case token.TRUE:
		sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KBool, Bool: true}))
		return types.Bool, nil
	case token.FALSE:
		sc.emitU16(CONSTANT, c.constIndex(Constant{Kind: KBool, Bool: false}))
		return types.Bool, nil
	default:
		return nil, fmt.Errorf("%s: unhandled symbol %s", c.posStr(n.TokPos), n.Tok)
	}
}

func (c *compiling) compileIdentExpr(sc *scope, n *ast.IdentExpr) (types.Type, error) {
	if idx, typ, ok := sc.resolve(n.Name); ok {
		sc.emitI16(LOCAL, idx)
		return typ, nil
	}
	if typ, ok := predeclared[n.Name]; ok {
		sc.emitU16(GLOBAL, c.nameConst(n.Name))
		return typ, nil
	}
	return nil, fmt.Errorf("%s: undefined name %q", c.posStr(n.NamePos), n.Name)
}

func (c *compiling) compileUnaryExpr(sc *scope, n *ast.UnaryExpr) (types.Type, error) {
	typ, err := c.compileExpr(sc, n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.MINUS:
		if !isNumeric(typ) {
			return nil, fmt.Errorf("%s: unary - requires a number, got %s", c.posStr(n.OpPos), typ)
		}
		sc.emit(UNI_MINUS)
		return typ, nil
	case token.PLUS:
		// Unary + has no runtime effect beyond validating its operand; no
		// opcode is emitted, the value is left as-is on the stack.
		if !isNumeric(typ) {
			return nil, fmt.Errorf("%s: unary + requires a number, got %s", c.posStr(n.OpPos), typ)
		}
		return typ, nil
	case token.NOT:
		sc.emit(NOT)
		return types.Bool, nil
	default:
		return nil, fmt.Errorf("%s: unhandled unary operator %s", c.posStr(n.OpPos), n.Op)
	}
}

// compileBinaryExpr compiles and/or separately (they operate on bool
// operands only) and otherwise emits one of the comparison/arithmetic
// opcodes. > and >= and != have no dedicated opcode: per
// original_source's binaryOps table, "a > b" compiles to "a <= b" negated,
// "a >= b" to "a < b" negated, and "a != b" to "a == b" negated.
func (c *compiling) compileBinaryExpr(sc *scope, n *ast.BinaryExpr) (types.Type, error) {
	if n.Op == token.AND || n.Op == token.OR {
		return c.compileLogicalExpr(sc, n)
	}

	leftTyp, err := c.compileExpr(sc, n.Left)
	if err != nil {
		return nil, err
	}
	rightTyp, err := c.compileExpr(sc, n.Right)
	if err != nil {
		return nil, err
	}

	op, negate := n.Op, false
	switch op {
	case token.GT:
		op, negate = token.LE, true
	case token.GE:
		op, negate = token.LT, true
	case token.NEQ:
		op, negate = token.EQL, true
	}

	resultTyp, emitOp, err := binOpResult(op, leftTyp, rightTyp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.posStr(n.OpPos), err)
	}
	sc.emit(emitOp)
	if negate {
		sc.emit(NOT)
	}
	return resultTyp, nil
}

func binOpResult(op token.Token, l, r types.Type) (types.Type, Opcode, error) {
	switch op {
	case token.PLUS:
		if l == types.Str && r == types.Str {
			return types.Str, BIN_PLUS, nil
		}
		return numericResult(op, l, r, BIN_PLUS)
	case token.MINUS:
		return numericResult(op, l, r, BIN_MINUS)
	case token.STAR:
		return numericResult(op, l, r, MULTIPLY)
	case token.PCT:
		return numericResult(op, l, r, MODULO)
	case token.SLASH:
		if !isNumeric(l) || !isNumeric(r) {
			return nil, 0, fmt.Errorf("/ requires two numbers, got %s and %s", l, r)
		}
		return types.Real, DIVIDE, nil
	case token.CARET:
		// static type follows the same int-preserving convention as the other
		// arithmetic operators; the POWER opcode falls back to a real result
		// at runtime for a negative int exponent, same as original_source's
		// Value::power.
		return numericResult(op, l, r, POWER)
	case token.EQL:
		return types.Bool, EQUALS, nil
	case token.LT:
		if !isNumeric(l) || !isNumeric(r) {
			return nil, 0, fmt.Errorf("< requires two numbers, got %s and %s", l, r)
		}
		return types.Bool, LESS, nil
	case token.LE:
		if !isNumeric(l) || !isNumeric(r) {
			return nil, 0, fmt.Errorf("<= requires two numbers, got %s and %s", l, r)
		}
		return types.Bool, LESS_OR_EQ, nil
	default:
		return nil, 0, fmt.Errorf("unhandled binary operator %s", op)
	}
}

func numericResult(op token.Token, l, r types.Type, emitOp Opcode) (types.Type, Opcode, error) {
	if !isNumeric(l) || !isNumeric(r) {
		return nil, 0, fmt.Errorf("%s requires two numbers, got %s and %s", op, l, r)
	}
	if l == types.Real || r == types.Real {
		return types.Real, emitOp, nil
	}
	return types.Int, emitOp, nil
}

func (c *compiling) compileLogicalExpr(sc *scope, n *ast.BinaryExpr) (types.Type, error) {
	leftTyp, err := c.compileExpr(sc, n.Left)
	if err != nil {
		return nil, err
	}
	if !assignable(leftTyp, types.Bool) {
		return nil, fmt.Errorf("%s: %s requires bool operands, got %s", c.posStr(n.OpPos), n.Op, leftTyp)
	}
	rightTyp, err := c.compileExpr(sc, n.Right)
	if err != nil {
		return nil, err
	}
	if !assignable(rightTyp, types.Bool) {
		return nil, fmt.Errorf("%s: %s requires bool operands, got %s", c.posStr(n.OpPos), n.Op, rightTyp)
	}
	if n.Op == token.AND {
		sc.emit(AND)
	} else {
		sc.emit(OR)
	}
	return types.Bool, nil
}

func (c *compiling) compileIndexExpr(sc *scope, n *ast.IndexExpr) (types.Type, error) {
	leftTyp, err := c.compileExpr(sc, n.Left)
	if err != nil {
		return nil, err
	}
	lt, isList := leftTyp.(*types.ListType)
	if !isList && leftTyp != types.Any {
		return nil, fmt.Errorf("%s: cannot index into %s", c.posStr(n.Lbrack), leftTyp)
	}
	idxTyp, err := c.compileExpr(sc, n.Index)
	if err != nil {
		return nil, err
	}
	if !assignable(idxTyp, types.Int) {
		return nil, fmt.Errorf("%s: list index must be int, got %s", c.posStr(n.Lbrack), idxTyp)
	}
	sc.emit(INDEX)
	if isList && lt.Elem != types.Bottom {
		return lt.Elem, nil
	}
	return types.Any, nil
}

func (c *compiling) compileListExpr(sc *scope, n *ast.ListExpr) (types.Type, error) {
	var elemTyp types.Type
	for _, e := range n.Elems {
		t, err := c.compileExpr(sc, e)
		if err != nil {
			return nil, err
		}
		elemTyp = unifyType(elemTyp, t)
	}
	if elemTyp == nil {
		elemTyp = types.Bottom
	}
	sc.emitU16(MAKE_LIST, len(n.Elems))
	return types.NewListType(elemTyp), nil
}

func (c *compiling) compileFuncExpr(sc *scope, n *ast.FuncExpr) (types.Type, error) {
	funcIdx, ft, err := c.compileFunctionLit(sc, "<anonymous>", n.FunPos, n.Params, n.Body)
	if err != nil {
		return nil, err
	}
	sc.emitMakeFunc(funcIdx, len(n.Params), c.prog.Functions[funcIdx].Upvalues)
	return ft, nil
}

func (c *compiling) compileCallExpr(sc *scope, n *ast.CallExpr) (types.Type, error) {
	fnTyp, err := c.compileExpr(sc, n.Fn)
	if err != nil {
		return nil, err
	}

	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		t, err := c.compileExpr(sc, a)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}

	switch ft := fnTyp.(type) {
	case *types.FunctionType:
		if len(ft.Args) != len(argTypes) {
			return nil, fmt.Errorf("%s: expected %d argument(s), got %d", c.posStr(n.Lparen), len(ft.Args), len(argTypes))
		}
		for i, at := range argTypes {
			if !assignable(at, ft.Args[i]) {
				return nil, fmt.Errorf("%s: argument %d: cannot use %s as %s", c.posStr(n.Lparen), i+1, at, ft.Args[i])
			}
		}
		sc.emitU16(CALL, len(argTypes))
		return ft.Result, nil
	default:
		if fnTyp == types.Macro || fnTyp == types.Any {
			// Macro builtins (log, list.add) and calls through an Any-typed
			// value bypass argument checking; the machine enforces arity and
			// argument kinds itself at call time.
			sc.emitU16(CALL, len(argTypes))
			return types.Any, nil
		}
		return nil, fmt.Errorf("%s: %s is not callable", c.posStr(n.Lparen), fnTyp)
	}
}

// compileDotExpr resolves x.y. Somiré has no general object-property
// mechanism (original_source's compiler has no AST case for it at all): a
// dotted name is only meaningful when its left side is a bare identifier
// naming a predeclared namespace, such as list.add, and it resolves
// directly to that qualified global at compile time.
func (c *compiling) compileDotExpr(sc *scope, n *ast.DotExpr) (types.Type, error) {
	root, ok := n.Left.(*ast.IdentExpr)
	if !ok {
		start, _ := n.Left.Span()
		return nil, fmt.Errorf("%s: property access is only supported on a namespace name", c.posStr(start))
	}
	qualified := root.Name + "." + n.Name
	typ, ok := predeclared[qualified]
	if !ok {
		return nil, fmt.Errorf("%s: undefined name %q", c.posStr(n.NamePos), qualified)
	}
	sc.emitU16(GLOBAL, c.nameConst(qualified))
	return typ, nil
}
