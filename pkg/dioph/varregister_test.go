package dioph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarRegisterAddVarDedup(t *testing.T) {
	v := NewVarRegister()
	j1 := v.AddVar(ColumnID(5))
	j2 := v.AddVar(ColumnID(5))
	assert.Equal(t, j1, j2)

	lj, ok := v.ExternalToLocal(ColumnID(5))
	require.True(t, ok)
	assert.Equal(t, j1, lj)
	assert.Equal(t, ColumnID(5), v.LocalToExternal(j1))
}

func TestVarRegisterFreshNeverDedups(t *testing.T) {
	v := NewVarRegister()
	a := v.AddVar(NoColumn)
	b := v.AddVar(NoColumn)
	assert.NotEqual(t, a, b)
	assert.True(t, v.IsFresh(a))
	assert.True(t, v.IsFresh(b))
}

func TestVarRegisterShrink(t *testing.T) {
	v := NewVarRegister()
	v.AddVar(ColumnID(1))
	v.AddVar(ColumnID(2))
	v.AddVar(ColumnID(3))
	v.Shrink(1)

	assert.Equal(t, 1, v.NumLocals())
	assert.False(t, v.ExternalIsUsed(ColumnID(2)))
	assert.False(t, v.ExternalIsUsed(ColumnID(3)))
	assert.True(t, v.ExternalIsUsed(ColumnID(1)))
}
