// Package benchmarks provides synthetic branch patterns for predictor
// accuracy regression tests.
package benchmarks

import (
	"math/rand"

	"github.com/sarchlab/percsim/trace"
)

// Pattern is a named synthetic branch event sequence.
type Pattern struct {
	Name        string
	Description string
	Events      []trace.Event
}

// GetPatterns returns the standard set of synthetic patterns used by the
// accuracy regressions. Each pattern targets a specific predictor behavior.
func GetPatterns() []Pattern {
	return []Pattern{
		alwaysTaken(),
		neverTaken(),
		alternating(),
		loopNest(),
		biasedRandom(),
	}
}

// 1. Always taken - the trivially learnable case.
func alwaysTaken() Pattern {
	events := make([]trace.Event, 500)
	for i := range events {
		events[i] = trace.Event{Address: 0x1000, Taken: true}
	}
	return Pattern{
		Name:        "always_taken",
		Description: "single branch taken every time",
		Events:      events,
	}
}

// 2. Never taken - the other trivial case, exercises the not-taken default.
func neverTaken() Pattern {
	events := make([]trace.Event, 500)
	for i := range events {
		events[i] = trace.Event{Address: 0x1004, Taken: false}
	}
	return Pattern{
		Name:        "never_taken",
		Description: "single branch never taken",
		Events:      events,
	}
}

// 3. Alternating taken/not-taken - defeats a bimodal counter, which
// oscillates between its weak states, but is trivially history-predictable.
func alternating() Pattern {
	events := make([]trace.Event, 500)
	for i := range events {
		events[i] = trace.Event{Address: 0x2000, Taken: i%2 == 0}
	}
	return Pattern{
		Name:        "alternating",
		Description: "single branch alternating T/N every event",
		Events:      events,
	}
}

// 4. Loop nest - an inner loop branch taken 7 times then not taken once,
// interleaved with an outer loop branch. The inner exit is periodic in the
// history, so a history-based predictor can learn it.
func loopNest() Pattern {
	var events []trace.Event
	for outer := 0; outer < 80; outer++ {
		for inner := 0; inner < 8; inner++ {
			events = append(events, trace.Event{
				Address: 0x3000,
				Taken:   inner < 7,
			})
		}
		events = append(events, trace.Event{
			Address: 0x3040,
			Taken:   outer < 79,
		})
	}
	return Pattern{
		Name:        "loop_nest",
		Description: "8-iteration inner loop inside an 80-iteration outer loop",
		Events:      events,
	}
}

// 5. Biased random - 90% taken with a fixed seed. No history correlation;
// both predictors should settle near the bias rate.
func biasedRandom() Pattern {
	rng := rand.New(rand.NewSource(42))
	events := make([]trace.Event, 1000)
	for i := range events {
		events[i] = trace.Event{
			Address: 0x4000,
			Taken:   rng.Intn(10) < 9,
		}
	}
	return Pattern{
		Name:        "biased_random",
		Description: "90% taken with no history correlation, seed 42",
		Events:      events,
	}
}
