package predictor

// Bimodal is a 2-bit saturating counter predictor. It serves as the
// baseline the perceptron is measured against in the accuracy regressions.
//
// Counter states: 0=Strongly Not Taken, 1=Weakly Not Taken,
// 2=Weakly Taken, 3=Strongly Taken.
type Bimodal struct {
	counters []uint8
	size     uint32
	stats    Statistics
}

// NewBimodal creates a bimodal predictor with the given table size.
// Size must be a power of 2; 0 selects the default of 1024. Counters start
// at weakly taken.
func NewBimodal(size uint32) *Bimodal {
	if size == 0 {
		size = 1024
	}

	b := &Bimodal{
		counters: make([]uint8, size),
		size:     size,
	}
	for i := range b.counters {
		b.counters[i] = 2
	}
	return b
}

// counterIndex uses the low address bits, excluding the alignment bits.
func (b *Bimodal) counterIndex(address uint32) uint32 {
	return (address >> 2) & (b.size - 1)
}

// Predict returns the predicted direction for the given branch address.
func (b *Bimodal) Predict(address uint32) bool {
	return b.counters[b.counterIndex(address)] >= 2
}

// RecordOutcome classifies the prediction and moves the counter one step
// toward the actual outcome.
func (b *Bimodal) RecordOutcome(address uint32, taken bool) {
	index := b.counterIndex(address)
	counter := b.counters[index]

	b.stats.TotalPredictions++
	if (counter >= 2) == taken {
		b.stats.CorrectPredictions++
	} else {
		b.stats.Mispredictions++
	}

	if taken {
		if counter < 3 {
			b.counters[index] = counter + 1
		}
	} else {
		if counter > 0 {
			b.counters[index] = counter - 1
		}
	}
}

// Stats returns a snapshot of the baseline statistics.
func (b *Bimodal) Stats() Statistics {
	return b.stats
}

// Reset restores the weakly-taken initial state and clears statistics.
func (b *Bimodal) Reset() {
	for i := range b.counters {
		b.counters[i] = 2
	}
	b.stats = Statistics{}
}
