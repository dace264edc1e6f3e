package compiler

import "github.com/mna/nenuphar/lang/types"

// predeclared lists the names every program can reach without a binding of
// its own. Dotted names are namespace members (e.g. list.add) and are only
// reachable through a DotExpr whose left side is the matching namespace
// identifier (see compileDotExpr); they are never valid as a bare
// identifier or as a local/upvalue name.
//
// list.add and log are declared Macro rather than a FunctionType because
// they are arity-overloaded (list.add's optional insert position) or
// varargs (log): a FunctionType has a fixed argument count, so neither can
// be expressed by one. list.size, repr, write, writeLine and bool all have
// a fixed arity and are declared as ordinary FunctionTypes instead: write
// and writeLine take a str, and the other three take Any, standing in for
// "accepts a value of any type" since there is no
// variance rule that would otherwise let e.g. list.size accept both
// [int] and [string].
var predeclared = map[string]types.Type{
	"log":       types.Macro,
	"repr":      types.NewFunctionType([]types.Type{types.Any}, types.Str),
	"write":     types.NewFunctionType([]types.Type{types.Str}, types.Nil),
	"writeLine": types.NewFunctionType([]types.Type{types.Str}, types.Nil),
	"bool":      types.NewFunctionType([]types.Type{types.Any}, types.Bool),

	"list.add":  types.Macro,
	"list.size": types.NewFunctionType([]types.Type{types.Any}, types.Int),
}
