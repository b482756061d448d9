// Package main provides the entry point for PercSim.
// PercSim is a trace-driven hashed perceptron branch predictor simulator.
//
// For the full CLI, use: go run ./cmd/percsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("PercSim - Perceptron Branch Predictor Simulator")
	fmt.Println("")
	fmt.Println("Usage: percsim [options] <trace-file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to predictor configuration JSON file")
	fmt.Println("  -debug     Write per-event debug log to a file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/percsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/percsim' instead.")
	}
}
