package dioph

// cell is one non-zero entry of a SparseMatrix. It is shared between its
// row's slice and its column's slice; rowPos/colPos record its current
// offset in each so that removal is O(1) (swap with the slice's last
// element, then fix up the moved element's stored offset).
type cell struct {
	row, col int
	val      Q
	rowPos   int
	colPos   int
}

// SparseMatrix is a row/column doubly-indexed sparse matrix over Q. Every
// cell appears exactly once in its row's list and once in its column's
// list, with mutually consistent back-offsets — that invariant is checked
// by checkBackIndexing, which checkInvariants and the tests call. Matrix E (equation
// coefficients) and matrix L (provenance combinations) are both
// SparseMatrix values.
type SparseMatrix struct {
	rows [][]*cell
	cols [][]*cell
}

// NewSparseMatrix returns an empty matrix.
func NewSparseMatrix() *SparseMatrix {
	return &SparseMatrix{}
}

// RowCount returns the number of rows.
func (m *SparseMatrix) RowCount() int { return len(m.rows) }

// ColCount returns the number of columns.
func (m *SparseMatrix) ColCount() int { return len(m.cols) }

// AddRow appends a new, empty row and returns its index.
func (m *SparseMatrix) AddRow() int {
	m.rows = append(m.rows, nil)
	return len(m.rows) - 1
}

// AddColumn appends a new, empty column and returns its index.
func (m *SparseMatrix) AddColumn() int {
	m.cols = append(m.cols, nil)
	return len(m.cols) - 1
}

// AddColumnsUpTo ensures the matrix has at least j+1 columns.
func (m *SparseMatrix) AddColumnsUpTo(j int) {
	for len(m.cols) <= j {
		m.cols = append(m.cols, nil)
	}
}

// Row returns the cells of row i; callers must not mutate the slice.
func (m *SparseMatrix) Row(i int) []*cell { return m.rows[i] }

// RowCoeffs returns row i as a map from column index to coefficient.
func (m *SparseMatrix) RowCoeffs(i int) map[int]Q {
	out := make(map[int]Q, len(m.rows[i]))
	for _, c := range m.rows[i] {
		out[c.col] = c.val
	}
	return out
}

// Get returns the coefficient at (i,j), or the zero rational if absent.
func (m *SparseMatrix) Get(i, j int) Q {
	if c := m.findInRow(i, j); c != nil {
		return c.val
	}
	return Zero()
}

func (m *SparseMatrix) findInRow(i, j int) *cell {
	for _, c := range m.rows[i] {
		if c.col == j {
			return c
		}
	}
	return nil
}

// AddNewElement inserts (i,j,v), assuming (i,j) is currently absent and v
// is non-zero.
func (m *SparseMatrix) AddNewElement(i, j int, v Q) {
	c := &cell{row: i, col: j, val: v}
	c.rowPos = len(m.rows[i])
	m.rows[i] = append(m.rows[i], c)
	c.colPos = len(m.cols[j])
	m.cols[j] = append(m.cols[j], c)
}

// removeFromRow removes the cell at rows[i][pos] via swap-with-last.
func (m *SparseMatrix) removeFromRow(i, pos int) {
	row := m.rows[i]
	last := len(row) - 1
	row[pos] = row[last]
	row[pos].rowPos = pos
	m.rows[i] = row[:last]
}

// removeFromCol removes the cell at cols[j][pos] via swap-with-last.
func (m *SparseMatrix) removeFromCol(j, pos int) {
	col := m.cols[j]
	last := len(col) - 1
	col[pos] = col[last]
	col[pos].colPos = pos
	m.cols[j] = col[:last]
}

// RemoveElement removes the cell currently at rows[row][posInRow] from
// both its row and its column.
func (m *SparseMatrix) RemoveElement(row, posInRow int) {
	c := m.rows[row][posInRow]
	m.removeFromCol(c.col, c.colPos)
	m.removeFromRow(row, posInRow)
}

// RemoveElementAt removes the cell at (i,j) if present; no-op otherwise.
func (m *SparseMatrix) RemoveElementAt(i, j int) {
	for pos, c := range m.rows[i] {
		if c.col == j {
			m.RemoveElement(i, pos)
			return
		}
	}
}

// RemoveLastRow drops the last row, first removing any cells it still
// holds from their columns.
func (m *SparseMatrix) RemoveLastRow() {
	last := len(m.rows) - 1
	for len(m.rows[last]) > 0 {
		m.RemoveElement(last, len(m.rows[last])-1)
	}
	m.rows = m.rows[:last]
}

// TrimEmptyTrailingColumns drops trailing columns that have become empty.
func (m *SparseMatrix) TrimEmptyTrailingColumns() {
	for len(m.cols) > 0 && len(m.cols[len(m.cols)-1]) == 0 {
		m.cols = m.cols[:len(m.cols)-1]
	}
}

// ClearRow removes every cell of row i, leaving it empty.
func (m *SparseMatrix) ClearRow(i int) {
	for len(m.rows[i]) > 0 {
		m.RemoveElement(i, len(m.rows[i])-1)
	}
}

// MultiplyRow scales every cell of row i by k. k must be non-zero.
func (m *SparseMatrix) MultiplyRow(i int, k Q) {
	for _, c := range m.rows[i] {
		c.val = c.val.Mul(k)
	}
}

// DivideRow divides every cell of row i by k. k must be non-zero.
func (m *SparseMatrix) DivideRow(i int, k Q) {
	for _, c := range m.rows[i] {
		c.val = c.val.Div(k)
	}
}

// TransposeRows swaps rows i and k in their entirety, including every
// affected cell's row-side bookkeeping. Used to move a row to the tail
// before erasing it, the O(1)-erase-of-a-middle-element pattern.
func (m *SparseMatrix) TransposeRows(i, k int) {
	if i == k {
		return
	}
	m.rows[i], m.rows[k] = m.rows[k], m.rows[i]
	for _, c := range m.rows[i] {
		c.row = i
	}
	for _, c := range m.rows[k] {
		c.row = k
	}
}

// AddRows performs dst <- dst + factor*src in place, dropping any cell
// that cancels exactly to zero.
func (m *SparseMatrix) AddRows(factor Q, src, dst int) {
	if factor.IsZero() {
		return
	}
	// Snapshot src's cells first: src and dst may later be the same row's
	// peers in a column we're about to touch, but src itself is read-only
	// here.
	srcCells := make([]*cell, len(m.rows[src]))
	copy(srcCells, m.rows[src])
	for _, sc := range srcCells {
		j := sc.col
		add := sc.val.Mul(factor)
		if dc := m.findInRow(dst, j); dc != nil {
			newVal := dc.val.Add(add)
			if newVal.IsZero() {
				m.RemoveElementAt(dst, j)
			} else {
				dc.val = newVal
			}
		} else {
			m.AddColumnsUpTo(j)
			m.AddNewElement(dst, j, add)
		}
	}
}

// PivotRowToRowGivenCell subtracts the right multiple of src from dst so
// that dst's coefficient at column j becomes zero, given that src has a
// (generally non-unit) coefficient at j. It is the unsigned convenience
// wrapper around AddRows used when the caller already knows both
// coefficients are compatible (dst[j] is an exact multiple of src[j]).
func (m *SparseMatrix) PivotRowToRowGivenCell(src, dst, j int) {
	dstCoeff := m.Get(dst, j)
	if dstCoeff.IsZero() {
		return
	}
	srcCoeff := m.Get(src, j)
	factor := dstCoeff.Div(srcCoeff).Neg()
	m.AddRows(factor, src, dst)
}

// PivotRowToRowGivenCellSigned is PivotRowToRowGivenCell's signed variant:
// it adds -s*dst[j] times src to dst, which zeroes dst[j] only when
// src[j] == s. It has no callers in the package.
func (m *SparseMatrix) PivotRowToRowGivenCellSigned(src, dst, j int, s int) {
	dstCoeff := m.Get(dst, j)
	if dstCoeff.IsZero() {
		return
	}
	factor := dstCoeff.Mul(FromInt64(int64(s))).Neg()
	m.AddRows(factor, src, dst)
}

// checkBackIndexing asserts that every cell's stored row/col offsets agree
// with its actual position in the peer slices.
func (m *SparseMatrix) checkBackIndexing() error {
	for i, row := range m.rows {
		for pos, c := range row {
			if c.row != i || c.rowPos != pos {
				return errInvariant("sparse matrix row back-index mismatch at row %d pos %d", i, pos)
			}
		}
	}
	for j, col := range m.cols {
		for pos, c := range col {
			if c.col != j || c.colPos != pos {
				return errInvariant("sparse matrix col back-index mismatch at col %d pos %d", j, pos)
			}
		}
	}
	return nil
}
