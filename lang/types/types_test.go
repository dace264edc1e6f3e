package types_test

import (
	"testing"

	"github.com/mna/nenuphar/lang/types"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveLattice(t *testing.T) {
	require.True(t, types.Int.CanBeAssignedTo(types.Real))
	require.True(t, types.Int.CanBeAssignedTo(types.Any))
	require.True(t, types.Real.CanBeAssignedTo(types.Any))
	require.False(t, types.Real.CanBeAssignedTo(types.Int))
	require.False(t, types.Str.CanBeAssignedTo(types.Real))
	require.True(t, types.Str.CanBeAssignedTo(types.Any))
}

func TestFunctionTypeVariance(t *testing.T) {
	// fun(real) -> int is assignable to fun(int) -> real: contravariant args,
	// covariant result.
	src := types.NewFunctionType([]types.Type{types.Real}, types.Int)
	dst := types.NewFunctionType([]types.Type{types.Int}, types.Real)
	require.True(t, src.CanBeAssignedTo(dst))

	// the reverse does not hold: src's callers may pass a real, which dst's
	// int parameter does not accept, nor can dst's result (real) narrow to int.
	require.False(t, dst.CanBeAssignedTo(src))
}

func TestListTypeInvariance(t *testing.T) {
	ints := types.NewListType(types.Int)
	reals := types.NewListType(types.Real)
	require.False(t, ints.CanBeAssignedTo(reals))

	empty := types.NewListType(types.Bottom)
	require.True(t, empty.CanBeAssignedTo(ints))
	require.True(t, empty.CanBeAssignedTo(reals))
}

func TestMacroType(t *testing.T) {
	require.True(t, types.Macro.CanBeAssignedTo(types.Macro))
	require.False(t, types.Macro.CanBeAssignedTo(types.Any))
}
