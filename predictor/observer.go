package predictor

// PredictionEvent describes one completed prediction.
type PredictionEvent struct {
	// Address is the branch address that was predicted.
	Address uint32
	// Index is the perceptron table slot the address hashed to.
	Index uint32
	// Output is the raw weighted sum (0 on a tag miss).
	Output int32
	// Confidence is |Output| / theta (0 on a tag miss).
	Confidence float64
	// Taken is the predicted direction.
	Taken bool
	// TableMiss reports whether the slot tag did not match the address.
	TableMiss bool
}

// TrainingEvent describes one weight update.
type TrainingEvent struct {
	// Address is the branch address being trained.
	Address uint32
	// Index is the perceptron table slot that was updated.
	Index uint32
	// Taken is the actual branch outcome.
	Taken bool
	// Output is the weighted sum the prediction produced.
	Output int32
	// BiasWeight is the bias weight after the update.
	BiasWeight int32
}

// An Observer receives structured events from the predictor. It exists for
// diagnostics only; the predictor's behavior does not depend on it. A nil
// observer costs nothing.
type Observer interface {
	OnPrediction(e PredictionEvent)
	OnTraining(e TrainingEvent)
}
