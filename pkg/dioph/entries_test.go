package dioph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryStoreAppendAndMove(t *testing.T) {
	es := NewEntryStore()
	i := es.AppendEntry(StatusF, FromInt64(3))
	assert.Equal(t, []int{i}, es.F())
	assert.Empty(t, es.S())

	es.MoveFToS(i, 7)
	assert.Empty(t, es.F())
	assert.Equal(t, []int{i}, es.S())

	k, ok := es.K2S(7)
	require.True(t, ok)
	assert.Equal(t, i, k)
	assert.Equal(t, StatusS, es.Entry(i).Status)
}

func TestEntryStoreMoveSToFClearsK2S(t *testing.T) {
	es := NewEntryStore()
	i := es.AppendEntry(StatusF, Zero())
	es.MoveFToS(i, 2)
	es.MoveSToF(i)

	_, ok := es.K2S(2)
	assert.False(t, ok)
	assert.Equal(t, StatusF, es.Entry(i).Status)
	assert.Equal(t, []int{i}, es.F())
}

func TestEntryStoreBindTerm(t *testing.T) {
	es := NewEntryStore()
	i := es.AppendEntry(StatusF, Zero())
	es.BindTerm(i, TermID(42))

	tid, ok := es.TermOfEntry(i)
	require.True(t, ok)
	assert.Equal(t, TermID(42), tid)

	back, ok := es.EntryOfTerm(42)
	require.True(t, ok)
	assert.Equal(t, i, back)

	es.UnbindTerm(i)
	_, ok = es.TermOfEntry(i)
	assert.False(t, ok)
}

func TestEntryStoreRemapRowIndex(t *testing.T) {
	es := NewEntryStore()
	a := es.AppendEntry(StatusF, FromInt64(1))
	b := es.AppendEntry(StatusS, FromInt64(2))
	es.SetK2S(9, b)
	es.BindTerm(a, TermID(1))
	es.BindTerm(b, TermID(2))

	es.RemapRowIndex(a, b)

	assert.Equal(t, FromInt64(2), es.Entry(a).Const)
	assert.Equal(t, FromInt64(1), es.Entry(b).Const)

	k, ok := es.K2S(9)
	require.True(t, ok)
	assert.Equal(t, a, k, "k2s must follow the entry's new row index")

	tid, ok := es.TermOfEntry(a)
	require.True(t, ok)
	assert.Equal(t, TermID(2), tid)
	tid, ok = es.TermOfEntry(b)
	require.True(t, ok)
	assert.Equal(t, TermID(1), tid)
}

func TestEntryStoreDropLastEntry(t *testing.T) {
	es := NewEntryStore()
	a := es.AppendEntry(StatusF, Zero())
	es.AppendEntry(StatusS, Zero())
	es.SetK2S(4, 1)
	es.BindTerm(1, TermID(10))

	es.DropLastEntry()

	assert.Equal(t, 1, es.Len())
	assert.Equal(t, []int{a}, es.F())
	assert.Empty(t, es.S())
	_, ok := es.K2S(4)
	assert.False(t, ok)
	_, ok = es.EntryOfTerm(10)
	assert.False(t, ok)
}
