// Package main provides the PercSim command-line interface.
// PercSim is a trace-driven hashed perceptron branch predictor simulator.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/percsim/predictor"
	"github.com/sarchlab/percsim/trace"
)

var (
	configPath = flag.String("config", "", "Path to predictor configuration JSON file")
	debug      = flag.Bool("debug", false, "Write per-event debug log to a file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: percsim [options] <trace-file>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	tracePath := flag.Arg(0)

	config := predictor.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = predictor.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	events, err := trace.Load(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trace: %v\n", err)
		os.Exit(1)
	}

	p, err := predictor.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating predictor: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		observer, closeLog, err := newDebugObserver()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating debug log: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
		p.SetObserver(observer)
	}

	btb := predictor.NewTargetBuffer(config.BTBSize)
	hasTargets := run(p, btb, events)

	if *verbose {
		fmt.Printf("Trace: %s\n", tracePath)
		fmt.Printf("Events: %d\n", len(events))
	}

	printStatistics(os.Stdout, p.Stats())
	if hasTargets {
		printTargetStatistics(os.Stdout, btb.Stats())
	}
}

// run drives the predictor through the trace: predict, resolve, and (for
// traces that carry targets) exercise the target buffer.
func run(p *predictor.Predictor, btb *predictor.TargetBuffer, events []trace.Event) bool {
	hasTargets := false

	for _, e := range events {
		p.Predict(e.Address)
		p.RecordOutcome(e.Address, e.Taken)

		if e.HasTarget {
			hasTargets = true
			btb.Lookup(e.Address)
			if e.Taken {
				btb.Update(e.Address, e.Target)
			}
		}
	}

	return hasTargets
}

// printStatistics prints the predictor statistics report.
func printStatistics(w io.Writer, stats predictor.Statistics) {
	fmt.Fprintf(w, "\n\t────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "\t           Branch Predictor Statistics           \n")
	fmt.Fprintf(w, "\t────────────────────────────┬───────────────────\n")
	fmt.Fprintf(w, "\t Total Branches             │ %13d \n", stats.TotalPredictions)
	fmt.Fprintf(w, "\t Correct Predictions        │ %13d \n", stats.CorrectPredictions)
	fmt.Fprintf(w, "\t Mispredictions             │ %13d \n", stats.Mispredictions)
	fmt.Fprintf(w, "\t BTB Misses                 │ %13d \n", stats.BTBMisses)
	fmt.Fprintf(w, "\t Training Events            │ %13d \n", stats.TrainingEvents)
	fmt.Fprintf(w, "\t Strong Predictions         │ %13d \n", stats.StrongPredictions)
	fmt.Fprintf(w, "\t Weak Predictions           │ %13d \n", stats.WeakPredictions)
	fmt.Fprintf(w, "\t────────────────────────────┼───────────────────\n")
	fmt.Fprintf(w, "\t Prediction Accuracy        │ %16.2f%%\n", stats.Accuracy())
	fmt.Fprintf(w, "\t Mispredictions per 1K      │ %16.2f \n", stats.MPKI())
	fmt.Fprintf(w, "\t Average Confidence         │ %16.2f \n", stats.AvgConfidence)
	fmt.Fprintf(w, "\t────────────────────────────┴───────────────────\n\n")
}

// printTargetStatistics prints the target buffer report for traces that
// carried target addresses. It forms its own table; the predictor report
// above has already closed its box.
func printTargetStatistics(w io.Writer, stats predictor.TargetBufferStats) {
	fmt.Fprintf(w, "\t────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "\t            Target Buffer Statistics             \n")
	fmt.Fprintf(w, "\t────────────────────────────┬───────────────────\n")
	fmt.Fprintf(w, "\t Target Buffer Hits         │ %13d \n", stats.TargetHits)
	fmt.Fprintf(w, "\t Target Buffer Misses       │ %13d \n", stats.TargetMisses)
	fmt.Fprintf(w, "\t────────────────────────────┼───────────────────\n")
	fmt.Fprintf(w, "\t Target Hit Rate            │ %16.2f%%\n", stats.HitRate())
	fmt.Fprintf(w, "\t────────────────────────────┴───────────────────\n\n")
}

// debugObserver writes per-event log lines to a file, one timestamped line
// per prediction or training event.
type debugObserver struct {
	f *os.File
}

func newDebugObserver() (*debugObserver, func(), error) {
	name := fmt.Sprintf("percsim_%s.log", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}

	o := &debugObserver{f: f}
	closeLog := func() { _ = f.Close() }
	return o, closeLog, nil
}

func (o *debugObserver) OnPrediction(e predictor.PredictionEvent) {
	if e.TableMiss {
		fmt.Fprintf(o.f, "[%s] btb miss for address 0x%x\n", o.timestamp(), e.Address)
		return
	}
	fmt.Fprintf(o.f, "[%s] prediction for 0x%x: y=%d, confidence=%.2f\n",
		o.timestamp(), e.Address, e.Output, e.Confidence)
}

func (o *debugObserver) OnTraining(e predictor.TrainingEvent) {
	fmt.Fprintf(o.f, "[%s] trained perceptron[%d] for 0x%x: taken=%t, bias=%d\n",
		o.timestamp(), e.Index, e.Address, e.Taken, e.BiasWeight)
}

func (o *debugObserver) timestamp() string {
	return time.Now().Format("20060102_150405")
}
