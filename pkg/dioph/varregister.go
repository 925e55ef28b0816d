package dioph

// ColumnID identifies a column owned by the external LRA solver. NoColumn
// marks a local (internal) variable that has no LRA backing — a "fresh"
// variable introduced by the elimination core's Case-fresh step.
type ColumnID int

// NoColumn is the sentinel external id of a fresh, LRA-unbacked variable.
const NoColumn ColumnID = -1

// VarRegister is the bijection between external (LRA) column ids and
// internal (local) indices used throughout matrix E and matrix L. Adding
// the same external twice is a no-op that returns the existing local
// index.
type VarRegister struct {
	localToExternal []ColumnID
	externalToLocal map[ColumnID]int
}

// NewVarRegister returns an empty register.
func NewVarRegister() *VarRegister {
	return &VarRegister{externalToLocal: make(map[ColumnID]int)}
}

// AddVar inserts external if absent and returns its local index. Passing
// NoColumn always allocates a brand new fresh local (fresh variables are
// never looked up by external id, so there is nothing to deduplicate).
func (v *VarRegister) AddVar(external ColumnID) int {
	if external != NoColumn {
		if lj, ok := v.externalToLocal[external]; ok {
			return lj
		}
	}
	lj := len(v.localToExternal)
	v.localToExternal = append(v.localToExternal, external)
	if external != NoColumn {
		v.externalToLocal[external] = lj
	}
	return lj
}

// LocalToExternal returns the external column backing local j, or
// NoColumn if j is fresh.
func (v *VarRegister) LocalToExternal(j int) ColumnID {
	return v.localToExternal[j]
}

// ExternalToLocal returns the local index of external, and whether it is
// registered at all.
func (v *VarRegister) ExternalToLocal(external ColumnID) (int, bool) {
	lj, ok := v.externalToLocal[external]
	return lj, ok
}

// ExternalIsUsed reports whether external is currently mapped to a local
// index.
func (v *VarRegister) ExternalIsUsed(external ColumnID) bool {
	_, ok := v.externalToLocal[external]
	return ok
}

// IsFresh reports whether local j has no LRA backing.
func (v *VarRegister) IsFresh(j int) bool {
	return v.localToExternal[j] == NoColumn
}

// NumLocals returns the number of registered locals (backed and fresh).
func (v *VarRegister) NumLocals() int { return len(v.localToExternal) }

// Shrink truncates the register to its first n locals, dropping the
// external mapping of anything beyond that.
func (v *VarRegister) Shrink(n int) {
	for j := n; j < len(v.localToExternal); j++ {
		if e := v.localToExternal[j]; e != NoColumn {
			delete(v.externalToLocal, e)
		}
	}
	v.localToExternal = v.localToExternal[:n]
}
