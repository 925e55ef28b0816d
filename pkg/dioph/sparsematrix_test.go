package dioph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseMatrixAddAndGet(t *testing.T) {
	m := NewSparseMatrix()
	i := m.AddRow()
	m.AddColumnsUpTo(2)
	m.AddNewElement(i, 0, FromInt64(2))
	m.AddNewElement(i, 2, FromInt64(-5))

	assert.True(t, m.Get(i, 0).Equal(FromInt64(2)))
	assert.True(t, m.Get(i, 1).IsZero())
	assert.True(t, m.Get(i, 2).Equal(FromInt64(-5)))
	require.NoError(t, m.checkBackIndexing())
}

func TestSparseMatrixRemoveElement(t *testing.T) {
	m := NewSparseMatrix()
	i := m.AddRow()
	m.AddColumnsUpTo(2)
	m.AddNewElement(i, 0, FromInt64(1))
	m.AddNewElement(i, 1, FromInt64(2))
	m.AddNewElement(i, 2, FromInt64(3))

	m.RemoveElementAt(i, 1)
	require.NoError(t, m.checkBackIndexing())
	assert.True(t, m.Get(i, 1).IsZero())
	assert.True(t, m.Get(i, 0).Equal(FromInt64(1)))
	assert.True(t, m.Get(i, 2).Equal(FromInt64(3)))
	assert.Len(t, m.Row(i), 2)
}

func TestSparseMatrixAddRows(t *testing.T) {
	m := NewSparseMatrix()
	src := m.AddRow()
	dst := m.AddRow()
	m.AddColumnsUpTo(1)
	m.AddNewElement(src, 0, FromInt64(2))
	m.AddNewElement(src, 1, FromInt64(3))
	m.AddNewElement(dst, 0, FromInt64(-2))

	m.AddRows(One(), src, dst)
	require.NoError(t, m.checkBackIndexing())

	assert.True(t, m.Get(dst, 0).IsZero(), "column that cancels exactly must be dropped")
	assert.True(t, m.Get(dst, 1).Equal(FromInt64(3)))
}

func TestSparseMatrixTransposeRows(t *testing.T) {
	m := NewSparseMatrix()
	a := m.AddRow()
	b := m.AddRow()
	m.AddColumnsUpTo(0)
	m.AddNewElement(a, 0, FromInt64(7))

	m.TransposeRows(a, b)
	require.NoError(t, m.checkBackIndexing())
	assert.True(t, m.Get(a, 0).IsZero())
	assert.True(t, m.Get(b, 0).Equal(FromInt64(7)))
}

func TestSparseMatrixRemoveLastRow(t *testing.T) {
	m := NewSparseMatrix()
	i := m.AddRow()
	m.AddColumnsUpTo(0)
	m.AddNewElement(i, 0, FromInt64(1))
	m.ClearRow(i)
	m.RemoveLastRow()
	assert.Equal(t, 0, m.RowCount())
}
