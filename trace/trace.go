// Package trace provides branch trace file reading.
//
// A trace is a text file with one branch record per line:
//
//	<hex address> <outcome> [<hex target>]
//
// where outcome is 1 for taken and 0 for not-taken, and the optional target
// is the destination of a taken branch. Blank lines, comment lines starting
// with '#', and malformed records are skipped; the predictor core only ever
// sees complete events.
package trace

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Event is one branch record from a trace.
type Event struct {
	// Address is the branch instruction address.
	Address uint32
	// Taken is the actual branch outcome.
	Taken bool
	// Target is the branch target address, if the trace recorded one.
	Target uint32
	// HasTarget reports whether the record carried a target column.
	HasTarget bool
}

// Load reads all branch events from a trace file.
func Load(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open trace file")
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		event, ok := parseRecord(scanner.Text())
		if !ok {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read trace file")
	}

	return events, nil
}

// parseRecord parses one trace line. The second return value is false for
// blank, comment, or malformed lines.
func parseRecord(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Event{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return Event{}, false
	}

	address, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 32)
	if err != nil {
		return Event{}, false
	}

	outcome, err := strconv.Atoi(fields[1])
	if err != nil || (outcome != 0 && outcome != 1) {
		return Event{}, false
	}

	event := Event{
		Address: uint32(address),
		Taken:   outcome == 1,
	}

	if len(fields) == 3 {
		target, err := strconv.ParseUint(strings.TrimPrefix(fields[2], "0x"), 16, 32)
		if err != nil {
			return Event{}, false
		}
		event.Target = uint32(target)
		event.HasTarget = true
	}

	return event, true
}
