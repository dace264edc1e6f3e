// Package types implements the small nominal type lattice used by the
// Somiré compiler's type checker, grounded on the shape of
// original_source/src/compiler/types.{hpp,cpp}.
package types

import "fmt"

// Type is the common interface for every member of the lattice. The
// compiler's only real operation against it is CanBeAssignedTo; everything
// else exists for diagnostics.
type Type interface {
	fmt.Stringer

	// CanBeAssignedTo reports whether a value of this type may be used where
	// target is expected.
	CanBeAssignedTo(target Type) bool
}

// named is the base implementation shared by the primitive types: it is
// assignable only to itself and to Any.
type named struct {
	name string
}

func (t *named) String() string { return t.name }

func (t *named) CanBeAssignedTo(target Type) bool {
	if target == Any {
		return true
	}
	return target == Type(t)
}

// Primitive types. nil/bool/string/list/function are direct children of
// Any; int is a Subtype of real (see Int below).
var (
	Any    Type = &anyType{named{"any"}}
	Nil    Type = &named{"nil"}
	Bool   Type = &named{"bool"}
	Real   Type = &named{"real"}
	Str    Type = &named{"string"}
	// Macro is the escape-hatch type for arity-overloaded/varargs builtins
	// (log, list.add): a call through it skips argument checking entirely.
	Macro Type = &macroType{named{"macro"}}
)

// Int is a nominal Subtype of Real.
var Int Type = &Subtype{named: named{"int"}, Parent: Real}

type anyType struct{ named }

// CanBeAssignedTo: Any is assignable only to itself (it is the top of the
// lattice, nothing above it to widen into).
func (t *anyType) CanBeAssignedTo(target Type) bool { return target == Type(t) }

type macroType struct{ named }

// CanBeAssignedTo: macro is never assignable anywhere but itself; it exists
// purely as the declared type of built-ins whose calls bypass checking.
func (t *macroType) CanBeAssignedTo(target Type) bool { return target == Type(t) }

// Subtype is a nominal type with a single parent in the lattice; it is
// assignable to itself, to its parent (transitively), and to Any.
type Subtype struct {
	named
	Parent Type
}

func (t *Subtype) CanBeAssignedTo(target Type) bool {
	if target == Any || target == Type(t) {
		return true
	}
	return t.Parent.CanBeAssignedTo(target)
}

// FunctionType describes a callable's argument and result types. It is
// contravariant in its arguments and covariant in its result: a function
// type is assignable to another if its arguments accept at least as much
// (the target's argument types can be assigned to its own) and its result
// is assignable to the target's result.
type FunctionType struct {
	Args   []Type
	Result Type
}

func (t *FunctionType) String() string {
	s := "fun("
	for i, a := range t.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ") -> " + t.Result.String()
}

func (t *FunctionType) CanBeAssignedTo(target Type) bool {
	if target == Any {
		return true
	}
	ft, ok := target.(*FunctionType)
	if !ok {
		return false
	}
	if len(t.Args) != len(ft.Args) {
		return false
	}
	for i, a := range t.Args {
		// contravariant: the target's argument type must be acceptable where
		// this function expects its own argument type.
		if !ft.Args[i].CanBeAssignedTo(a) {
			return false
		}
	}
	return t.Result.CanBeAssignedTo(ft.Result)
}

// Bottom is the element type of an empty-list literal: ListType(Bottom) is
// assignable to any ListType(T), per spec, with no retroactive constraint
// once merged into a concretely typed list.
var Bottom Type = &named{"⊥"}

// ListType describes a homogeneous list. It is invariant in its element
// type except that ListType(Bottom) (the empty list literal) is assignable
// to any other ListType.
type ListType struct {
	Elem Type
}

func (t *ListType) String() string { return "[" + t.Elem.String() + "]" }

func (t *ListType) CanBeAssignedTo(target Type) bool {
	if target == Any {
		return true
	}
	lt, ok := target.(*ListType)
	if !ok {
		return false
	}
	if t.Elem == Bottom {
		return true
	}
	return t.Elem == lt.Elem
}

// NewListType is a convenience constructor.
func NewListType(elem Type) *ListType { return &ListType{Elem: elem} }

// NewFunctionType is a convenience constructor.
func NewFunctionType(args []Type, result Type) *FunctionType {
	return &FunctionType{Args: args, Result: result}
}
