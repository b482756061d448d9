// Package predictor implements a hashed perceptron branch predictor driven
// by global outcome history and path history.
package predictor

const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619

	// pathHistoryMask selects the low nibble of a branch address for the
	// path history register.
	pathHistoryMask uint32 = 0xF

	// invalidTag marks a slot that has never been claimed by a branch.
	// Real tags are address >> 2, so the top two bits are always clear.
	invalidTag uint32 = 0xFFFFFFFF
)

// perceptron is one table slot: a learned weight vector plus the tag of the
// branch that owns it. weights[0] is the bias term; weights[1..H] pair with
// history positions 0..H-1, most-recent-first.
type perceptron struct {
	weights        []int32
	tag            uint32
	lastUpdateTime uint32
	timesAccessed  uint32
}

// Prediction is the result of a table lookup for one branch.
type Prediction struct {
	// Taken is the predicted direction.
	Taken bool
	// Output is the raw weighted sum. Training needs the magnitude, not
	// just the direction.
	Output int32
	// Confidence is |Output| divided by the training threshold.
	Confidence float64
	// TableMiss reports that the slot belonged to a different branch
	// (or to no branch) and the prediction is the not-taken default.
	TableMiss bool
}

// Predictor is a hashed perceptron branch predictor. It owns the perceptron
// table, both history registers, and the statistics; all state is mutated
// only through Predict, RecordOutcome, and Reset.
type Predictor struct {
	config Config
	theta  int32

	table  []perceptron
	global *HistoryRegister
	path   *HistoryRegister

	stats Statistics
	clock uint32

	observer Observer

	// Pending prediction carried from Predict to RecordOutcome so that
	// training sees the exact weighted sum the prediction used.
	pendingValid bool
	pendingAddr  uint32
	pending      Prediction
}

// New creates a predictor for the given configuration. The table and both
// history registers are allocated once here; prediction and training never
// allocate.
func New(config Config) (*Predictor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	h := config.HistoryLength
	table := make([]perceptron, config.NumPerceptrons)
	for i := range table {
		table[i].weights = make([]int32, h+1)
		table[i].tag = invalidTag
	}

	return &Predictor{
		config: config,
		theta:  int32(2.14*float64(h) + 20.58),
		table:  table,
		global: NewHistoryRegister(h),
		path:   NewHistoryRegister(h),
	}, nil
}

// SetObserver installs an observer for diagnostic events. Passing nil
// removes it.
func (p *Predictor) SetObserver(o Observer) {
	p.observer = o
}

// Config returns the predictor configuration.
func (p *Predictor) Config() Config {
	return p.config
}

// Theta returns the training threshold derived from the history length.
func (p *Predictor) Theta() int32 {
	return p.theta
}

// Stats returns a snapshot of the predictor statistics.
func (p *Predictor) Stats() Statistics {
	return p.stats
}

// index maps a branch address to a table slot. FNV-1a variant: the two
// always-zero alignment bits are dropped before mixing, and an extra
// shift-XOR spreads the high bits before masking.
func (p *Predictor) index(address uint32) uint32 {
	hash := fnvOffsetBasis
	hash ^= address >> 2
	hash *= fnvPrime
	hash ^= hash >> 17
	return hash & (p.config.NumPerceptrons - 1)
}

// Predict makes a prediction for the given branch address.
//
// On a tag miss the slot is re-tagged for this branch, its usage counter is
// cleared, and the not-taken default is returned; the previous owner's
// weights are kept (direct-mapped, no replacement policy beyond the tag
// overwrite). On a tag hit the weighted sum over both histories decides the
// direction, and the confidence telemetry is updated.
func (p *Predictor) Predict(address uint32) Prediction {
	index := p.index(address)
	pred := p.lookup(index, address, true)

	p.pendingValid = true
	p.pendingAddr = address
	p.pending = pred

	if p.observer != nil {
		p.observer.OnPrediction(PredictionEvent{
			Address:    address,
			Index:      index,
			Output:     pred.Output,
			Confidence: pred.Confidence,
			Taken:      pred.Taken,
			TableMiss:  pred.TableMiss,
		})
	}

	return pred
}

// lookup performs the table access shared by Predict and RecordOutcome.
// Tag handling (miss counting and re-tagging) always happens; the
// confidence statistics, access counter, and clock tick only happen when
// telemetry is requested, i.e. for real predictions.
func (p *Predictor) lookup(index, address uint32, telemetry bool) Prediction {
	slot := &p.table[index]

	if slot.tag != address>>2 {
		p.stats.BTBMisses++
		slot.tag = address >> 2
		slot.timesAccessed = 0
		return Prediction{TableMiss: true}
	}

	if telemetry {
		slot.timesAccessed++
		p.clock++
	}

	y := slot.weights[0]
	for j := 1; j <= int(p.config.HistoryLength); j++ {
		y += slot.weights[j] * (p.global.At(j-1) + (p.path.At(j-1) & 1))
	}

	confidence := float64(abs32(y)) / float64(p.theta)
	if telemetry {
		p.updateConfidenceStats(confidence)
	}

	return Prediction{
		Taken:      y >= 0,
		Output:     y,
		Confidence: confidence,
	}
}

func (p *Predictor) updateConfidenceStats(confidence float64) {
	if confidence >= 1.0 {
		p.stats.StrongPredictions++
	} else {
		p.stats.WeakPredictions++
	}

	n := float64(p.stats.TotalPredictions)
	p.stats.AvgConfidence = (p.stats.AvgConfidence*n + confidence) / (n + 1)
}

// RecordOutcome resolves one branch event: it classifies the prediction
// against the actual outcome, trains the perceptron, and shifts both
// history registers. It must be called exactly once per event, after
// Predict. If Predict was skipped for this address, the lookup is redone
// without the confidence telemetry.
func (p *Predictor) RecordOutcome(address uint32, taken bool) {
	pred := p.pending
	if !p.pendingValid || p.pendingAddr != address {
		pred = p.lookup(p.index(address), address, false)
	}
	p.pendingValid = false

	actual := int32(-1)
	if taken {
		actual = 1
	}

	p.stats.TotalPredictions++
	if pred.Taken == taken {
		p.stats.CorrectPredictions++
	} else {
		p.stats.Mispredictions++
	}

	p.train(address, actual, pred.Output)

	p.global.Push(actual)
	p.path.Push(int32(address & pathHistoryMask))
}

// train applies the perceptron learning rule. The update only fires when
// the prediction direction was wrong or the magnitude was at or below
// theta; correct, confident predictions leave the weights alone.
func (p *Predictor) train(address uint32, actual, y int32) {
	predicted := int32(-1)
	if y >= 0 {
		predicted = 1
	}
	if predicted == actual && abs32(y) > p.theta {
		return
	}

	index := p.index(address)
	slot := &p.table[index]
	p.stats.TrainingEvents++

	for j := 0; j <= int(p.config.HistoryLength); j++ {
		h := int32(1)
		if j > 0 {
			h = p.global.At(j-1) + (p.path.At(j-1) & 1)
		}

		w := slot.weights[j] + actual*h
		if w > p.config.MaxWeight {
			w = p.config.MaxWeight
		} else if w < p.config.MinWeight {
			w = p.config.MinWeight
		}
		slot.weights[j] = w
	}
	slot.lastUpdateTime = p.clock

	if p.observer != nil {
		p.observer.OnTraining(TrainingEvent{
			Address:    address,
			Index:      index,
			Taken:      actual > 0,
			Output:     y,
			BiasWeight: slot.weights[0],
		})
	}
}

// Reset clears the table, both history registers, the statistics, and the
// logical clock.
func (p *Predictor) Reset() {
	for i := range p.table {
		for j := range p.table[i].weights {
			p.table[i].weights[j] = 0
		}
		p.table[i].tag = invalidTag
		p.table[i].lastUpdateTime = 0
		p.table[i].timesAccessed = 0
	}
	p.global.Clear()
	p.path.Clear()
	p.stats = Statistics{}
	p.clock = 0
	p.pendingValid = false
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
