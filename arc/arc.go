// Package arc models the five-act narrative progression of a story as an
// explicit stage table keyed by segment count. The table is derived once from
// the act lengths, so the total story length has a single source of truth.
package arc

import "fmt"

// Phase is one of the Freytag-pyramid narrative stages.
type Phase int

const (
	Exposition Phase = iota
	RisingAction
	Climax
	FallingAction
	Resolution
)

func (p Phase) String() string {
	switch p {
	case Exposition:
		return "exposition"
	case RisingAction:
		return "rising_action"
	case Climax:
		return "climax"
	case FallingAction:
		return "falling_action"
	case Resolution:
		return "resolution"
	}
	return "unknown"
}

// actLengths holds how many segments each act spans, in story order.
var actLengths = [...]int{5, 40, 5, 7, 4}

type stage struct {
	phase Phase
	start int
	end   int // exclusive
}

var stages = buildStages()

func buildStages() []stage {
	table := make([]stage, 0, len(actLengths))
	start := 0
	for i, length := range actLengths {
		table = append(table, stage{phase: Phase(i), start: start, end: start + length})
		start += length
	}
	return table
}

// MaxSegments is the total number of segments a finished story holds.
func MaxSegments() int {
	total := 0
	for _, length := range actLengths {
		total += length
	}
	return total
}

// TerminalCount is the segment count at which the next generation produces
// the final segment. After that generation the story is permanently ended.
func TerminalCount() int {
	return MaxSegments() - 1
}

// Step describes what the next generation call should do given the current
// segment count (the count before generating the next segment).
type Step struct {
	Phase Phase
	// NewPhase is true only at the exact act boundary counts; every other
	// count reuses the generic continuation directive.
	NewPhase bool
	// Terminal is true when the next segment is the story's last one.
	Terminal bool
}

// Length returns how many segments the given phase spans.
func Length(p Phase) int {
	return actLengths[p]
}

// Next resolves the step for the given segment count. Counts at or past the
// story's end are rejected: a finished story never advances again.
func Next(count int) (Step, error) {
	if count < 0 || count > TerminalCount() {
		return Step{}, fmt.Errorf("segment count %d is outside the story arc", count)
	}
	if count == TerminalCount() {
		return Step{Phase: Resolution, Terminal: true}, nil
	}
	for _, s := range stages {
		if count < s.start || count >= s.end {
			continue
		}
		return Step{Phase: s.phase, NewPhase: count == s.start}, nil
	}
	return Step{}, fmt.Errorf("segment count %d matched no stage", count)
}
