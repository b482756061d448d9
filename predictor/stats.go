package predictor

// Statistics holds running counters for the perceptron predictor. All
// counters are derived from processed events; there is no other mutation
// path.
type Statistics struct {
	// TotalPredictions is the number of branch events processed.
	TotalPredictions uint64
	// CorrectPredictions is the number of correctly predicted branches.
	CorrectPredictions uint64
	// Mispredictions is the number of incorrectly predicted branches.
	Mispredictions uint64
	// BTBMisses is the number of table lookups whose slot tag did not
	// match the branch address (first-seen or aliased branches).
	BTBMisses uint64
	// TrainingEvents is the number of training invocations that actually
	// updated weights.
	TrainingEvents uint64
	// StrongPredictions is the number of tag-hit predictions with
	// confidence >= 1.
	StrongPredictions uint64
	// WeakPredictions is the number of tag-hit predictions with
	// confidence < 1.
	WeakPredictions uint64
	// AvgConfidence is the running average confidence over tag-hit
	// predictions.
	AvgConfidence float64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Statistics) Accuracy() float64 {
	if s.TotalPredictions == 0 {
		return 0
	}
	return float64(s.CorrectPredictions) / float64(s.TotalPredictions) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Statistics) MispredictionRate() float64 {
	if s.TotalPredictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.TotalPredictions) * 100
}

// MPKI returns the number of mispredictions per thousand branches.
func (s Statistics) MPKI() float64 {
	if s.TotalPredictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.TotalPredictions) * 1000
}
