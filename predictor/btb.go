package predictor

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// btbAssociativity is the number of ways per BTB set.
const btbAssociativity = 4

// btbBlockSize is the granularity of a BTB entry. One instruction word:
// each conditional branch gets its own entry.
const btbBlockSize = 4

// TargetBufferStats holds hit/miss counters for the target buffer.
type TargetBufferStats struct {
	TargetHits   uint64
	TargetMisses uint64
}

// HitRate returns the target hit rate as a percentage.
func (s TargetBufferStats) HitRate() float64 {
	total := s.TargetHits + s.TargetMisses
	if total == 0 {
		return 0
	}
	return float64(s.TargetHits) / float64(total) * 100
}

// TargetBuffer is a set-associative branch target buffer. The Akita cache
// directory handles tag matching and LRU victim selection; the targets
// themselves live in a side array indexed by (set, way).
//
// The direction predictor does not depend on it: it only serves traces that
// carry target addresses.
type TargetBuffer struct {
	directory *akitacache.DirectoryImpl
	targets   []uint32
	stats     TargetBufferStats
}

// NewTargetBuffer creates a target buffer with the given entry count.
// Size must be a power of 2; 0 selects the default of 256. Sizes below the
// associativity round up to one full set so the directory never ends up
// with zero sets.
func NewTargetBuffer(size uint32) *TargetBuffer {
	if size == 0 {
		size = 256
	}
	if size < btbAssociativity {
		size = btbAssociativity
	}

	numSets := int(size) / btbAssociativity
	return &TargetBuffer{
		directory: akitacache.NewDirectory(
			numSets,
			btbAssociativity,
			btbBlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		targets: make([]uint32, size),
	}
}

// blockAddr aligns a branch address to the BTB entry granularity. The
// directory expects block-aligned lookups; the tag stores this aligned
// address.
func blockAddr(address uint32) uint64 {
	return uint64(address) &^ (btbBlockSize - 1)
}

// entryIndex computes the index into the target side array for a block.
func (t *TargetBuffer) entryIndex(block *akitacache.Block) int {
	return block.SetID*btbAssociativity + block.WayID
}

// Lookup returns the cached target for a branch address, if any.
func (t *TargetBuffer) Lookup(address uint32) (target uint32, ok bool) {
	block := t.directory.Lookup(0, blockAddr(address))
	if block == nil || !block.IsValid {
		t.stats.TargetMisses++
		return 0, false
	}

	t.stats.TargetHits++
	t.directory.Visit(block)
	return t.targets[t.entryIndex(block)], true
}

// Update caches the target for a taken branch, evicting the LRU entry of
// the set if necessary.
func (t *TargetBuffer) Update(address, target uint32) {
	block := t.directory.Lookup(0, blockAddr(address))
	if block == nil || !block.IsValid {
		block = t.directory.FindVictim(blockAddr(address))
		if block == nil {
			return
		}
		block.Tag = blockAddr(address)
		block.IsValid = true
	}

	t.targets[t.entryIndex(block)] = target
	t.directory.Visit(block)
}

// Stats returns a snapshot of the target buffer statistics.
func (t *TargetBuffer) Stats() TargetBufferStats {
	return t.stats
}

// Reset invalidates all entries and clears statistics.
func (t *TargetBuffer) Reset() {
	t.directory.Reset()
	for i := range t.targets {
		t.targets[i] = 0
	}
	t.stats = TargetBufferStats{}
}
