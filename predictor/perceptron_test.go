package predictor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/percsim/predictor"
)

// recordingObserver collects the events the predictor emits.
type recordingObserver struct {
	predictions []predictor.PredictionEvent
	trainings   []predictor.TrainingEvent
}

func (o *recordingObserver) OnPrediction(e predictor.PredictionEvent) {
	o.predictions = append(o.predictions, e)
}

func (o *recordingObserver) OnTraining(e predictor.TrainingEvent) {
	o.trainings = append(o.trainings, e)
}

var _ = Describe("Predictor", func() {
	var p *predictor.Predictor

	BeforeEach(func() {
		var err error
		p, err = predictor.New(predictor.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("should reject a non-power-of-two table size", func() {
			config := predictor.DefaultConfig()
			config.NumPerceptrons = 1000
			_, err := predictor.New(config)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a zero table size", func() {
			config := predictor.DefaultConfig()
			config.NumPerceptrons = 0
			_, err := predictor.New(config)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a zero history length", func() {
			config := predictor.DefaultConfig()
			config.HistoryLength = 0
			_, err := predictor.New(config)
			Expect(err).To(HaveOccurred())
		})

		It("should reject inverted weight bounds", func() {
			config := predictor.DefaultConfig()
			config.MinWeight = 127
			config.MaxWeight = -128
			_, err := predictor.New(config)
			Expect(err).To(HaveOccurred())
		})

		It("should derive theta from the history length", func() {
			// floor(2.14*64 + 20.58) = 157
			Expect(p.Theta()).To(Equal(int32(157)))
		})
	})

	Describe("Tag miss", func() {
		It("should default to not-taken with zero confidence", func() {
			pred := p.Predict(0x1000)
			Expect(pred.TableMiss).To(BeTrue())
			Expect(pred.Taken).To(BeFalse())
			Expect(pred.Output).To(Equal(int32(0)))
			Expect(pred.Confidence).To(Equal(0.0))
		})

		It("should count exactly one BTB miss", func() {
			p.Predict(0x1000)
			Expect(p.Stats().BTBMisses).To(Equal(uint64(1)))
		})

		It("should not touch the confidence telemetry", func() {
			p.Predict(0x1000)
			stats := p.Stats()
			Expect(stats.StrongPredictions).To(Equal(uint64(0)))
			Expect(stats.WeakPredictions).To(Equal(uint64(0)))
			Expect(stats.AvgConfidence).To(Equal(0.0))
		})

		It("should claim the slot so the next prediction is a hit", func() {
			p.Predict(0x1000)
			p.RecordOutcome(0x1000, true)
			pred := p.Predict(0x1000)
			Expect(pred.TableMiss).To(BeFalse())
			Expect(p.Stats().BTBMisses).To(Equal(uint64(1)))
		})
	})

	Describe("First event scenario", func() {
		It("should mispredict a taken branch and train", func() {
			pred := p.Predict(0x1000)
			Expect(pred.Taken).To(BeFalse())

			p.RecordOutcome(0x1000, true)

			stats := p.Stats()
			Expect(stats.TotalPredictions).To(Equal(uint64(1)))
			Expect(stats.BTBMisses).To(Equal(uint64(1)))
			Expect(stats.Mispredictions).To(Equal(uint64(1)))
			Expect(stats.CorrectPredictions).To(Equal(uint64(0)))
			Expect(stats.TrainingEvents).To(Equal(uint64(1)))
		})
	})

	Describe("Learning", func() {
		It("should learn an always-taken branch", func() {
			for i := 0; i < 20; i++ {
				p.Predict(0x1000)
				p.RecordOutcome(0x1000, true)
			}

			pred := p.Predict(0x1000)
			Expect(pred.Taken).To(BeTrue())
			Expect(pred.Output).To(BeNumerically(">", 0))
		})

		It("should learn an always-not-taken branch", func() {
			for i := 0; i < 20; i++ {
				p.Predict(0x1000)
				p.RecordOutcome(0x1000, false)
			}

			pred := p.Predict(0x1000)
			Expect(pred.Taken).To(BeFalse())
		})

		It("should stop training once confident and correct", func() {
			for i := 0; i < 50; i++ {
				p.Predict(0x1000)
				p.RecordOutcome(0x1000, true)
			}

			stats := p.Stats()
			// Training stops as soon as |y| exceeds theta on a correct
			// prediction, long before 50 events.
			Expect(stats.TrainingEvents).To(BeNumerically("<", uint64(20)))
		})

		It("should learn an alternating branch better than chance", func() {
			for i := 0; i < 200; i++ {
				p.Predict(0x2000)
				p.RecordOutcome(0x2000, i%2 == 0)
			}

			stats := p.Stats()
			Expect(stats.CorrectPredictions).To(BeNumerically(">", uint64(150)))
			Expect(stats.AvgConfidence).To(BeNumerically(">", 0.0))
		})
	})

	Describe("Confidence", func() {
		It("should classify confident predictions as strong", func() {
			for i := 0; i < 30; i++ {
				p.Predict(0x1000)
				p.RecordOutcome(0x1000, true)
			}

			stats := p.Stats()
			Expect(stats.StrongPredictions).To(BeNumerically(">", uint64(0)))
			Expect(stats.StrongPredictions + stats.WeakPredictions).
				To(Equal(uint64(29))) // every tag hit is one or the other
		})
	})

	Describe("Statistics consistency", func() {
		It("should keep correct + mispredicted == total", func() {
			addresses := []uint32{0x1000, 0x2000, 0x3000, 0x1000, 0x2000}
			for i := 0; i < 300; i++ {
				addr := addresses[i%len(addresses)]
				p.Predict(addr)
				p.RecordOutcome(addr, i%3 != 0)
			}

			stats := p.Stats()
			Expect(stats.CorrectPredictions + stats.Mispredictions).
				To(Equal(stats.TotalPredictions))
		})

		It("should train exactly when wrong or under threshold", func() {
			var expected uint64
			for i := 0; i < 300; i++ {
				taken := i%5 != 0
				pred := p.Predict(0x1000)
				if pred.Taken != taken || abs32(pred.Output) <= p.Theta() {
					expected++
				}
				p.RecordOutcome(0x1000, taken)
			}

			Expect(p.Stats().TrainingEvents).To(Equal(expected))
		})
	})

	Describe("Unaligned addresses", func() {
		It("should map them to the same slot as their aligned form", func() {
			for i := 0; i < 20; i++ {
				p.Predict(0x1000)
				p.RecordOutcome(0x1000, true)
			}
			missesBefore := p.Stats().BTBMisses

			// 0x1003 >> 2 == 0x1000 >> 2: same slot, same tag.
			pred := p.Predict(0x1003)
			Expect(pred.TableMiss).To(BeFalse())
			Expect(pred.Taken).To(BeTrue())
			Expect(p.Stats().BTBMisses).To(Equal(missesBefore))
		})
	})

	Describe("RecordOutcome without Predict", func() {
		It("should still classify and train", func() {
			p.RecordOutcome(0x1000, true)

			stats := p.Stats()
			Expect(stats.TotalPredictions).To(Equal(uint64(1)))
			Expect(stats.Mispredictions).To(Equal(uint64(1)))
			Expect(stats.TrainingEvents).To(Equal(uint64(1)))
		})

		It("should not update the confidence telemetry", func() {
			p.RecordOutcome(0x1000, true)
			p.RecordOutcome(0x1000, true)

			stats := p.Stats()
			Expect(stats.StrongPredictions).To(Equal(uint64(0)))
			Expect(stats.WeakPredictions).To(Equal(uint64(0)))
		})
	})

	Describe("Determinism", func() {
		It("should produce identical statistics across runs", func() {
			run := func() predictor.Statistics {
				q, err := predictor.New(predictor.DefaultConfig())
				Expect(err).NotTo(HaveOccurred())
				for i := 0; i < 500; i++ {
					addr := uint32(0x1000 + (i%7)*0x40)
					q.Predict(addr)
					q.RecordOutcome(addr, i%3 == 0)
				}
				return q.Stats()
			}

			Expect(run()).To(Equal(run()))
		})
	})

	Describe("Observer", func() {
		It("should deliver prediction and training events", func() {
			observer := &recordingObserver{}
			p.SetObserver(observer)

			p.Predict(0x1000)
			p.RecordOutcome(0x1000, true)

			Expect(observer.predictions).To(HaveLen(1))
			Expect(observer.predictions[0].Address).To(Equal(uint32(0x1000)))
			Expect(observer.predictions[0].TableMiss).To(BeTrue())
			Expect(observer.trainings).To(HaveLen(1))
			Expect(observer.trainings[0].Taken).To(BeTrue())
		})

		It("should be removable", func() {
			observer := &recordingObserver{}
			p.SetObserver(observer)
			p.SetObserver(nil)

			p.Predict(0x1000)
			p.RecordOutcome(0x1000, true)

			Expect(observer.predictions).To(BeEmpty())
		})
	})

	Describe("Reset", func() {
		It("should clear all state", func() {
			for i := 0; i < 20; i++ {
				p.Predict(0x1000)
				p.RecordOutcome(0x1000, true)
			}

			p.Reset()

			Expect(p.Stats()).To(Equal(predictor.Statistics{}))

			pred := p.Predict(0x1000)
			Expect(pred.TableMiss).To(BeTrue())
		})
	})
})

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
