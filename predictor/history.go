package predictor

// HistoryRegister is a fixed-capacity sliding window over recent branch
// events, ordered most-recent-first. Pushing a value evicts the oldest
// entry; the register always holds exactly its capacity in entries.
//
// The same type backs both history registers: the global register stores
// outcomes encoded as +1/-1, the path register stores the low nibble of
// each branch address.
type HistoryRegister struct {
	entries []int32
}

// NewHistoryRegister creates a register of the given length with all
// entries zeroed.
func NewHistoryRegister(length uint32) *HistoryRegister {
	return &HistoryRegister{
		entries: make([]int32, length),
	}
}

// Push inserts v as the most recent entry and evicts the oldest.
func (r *HistoryRegister) Push(v int32) {
	copy(r.entries[1:], r.entries)
	r.entries[0] = v
}

// At returns the entry at position i, where 0 is the most recent.
func (r *HistoryRegister) At(i int) int32 {
	return r.entries[i]
}

// Len returns the register length.
func (r *HistoryRegister) Len() int {
	return len(r.entries)
}

// Clear zeroes every entry.
func (r *HistoryRegister) Clear() {
	for i := range r.entries {
		r.entries[i] = 0
	}
}

// Snapshot returns a copy of the register contents, most-recent-first.
func (r *HistoryRegister) Snapshot() []int32 {
	out := make([]int32, len(r.entries))
	copy(out, r.entries)
	return out
}
