package engine

import "time"

// Statistics mirrors original_source/src/engine/Statistics.cpp's
// counters (pivots, splits, pops, restorations) plus SoI rounds, maximum
// stack depth and recorded valid splits. Time is kept as one overall
// Elapsed duration; there is no per-phase timing. Formatting and
// periodic printing are out of scope, but the counters themselves are
// part of this rewrite's ambient stack.
type Statistics struct {
	Pivots               int
	Splits               int
	Pops                 int
	Restorations          int
	SoIRounds            int
	MaxStackDepth        int
	ValidSplitsRecorded  int

	start   time.Time
	Elapsed time.Duration
}

// NewStatistics returns a zeroed Statistics with its clock started.
func NewStatistics() *Statistics {
	return &Statistics{start: time.Now()}
}

func (s *Statistics) recordPivot()            { s.Pivots++ }
func (s *Statistics) recordPop()              { s.Pops++ }
func (s *Statistics) recordRestoration()      { s.Restorations++ }
func (s *Statistics) recordSoIRound()         { s.SoIRounds++ }
func (s *Statistics) recordValidSplit()       { s.ValidSplitsRecorded++ }

func (s *Statistics) recordSplit(depth int) {
	s.Splits++
	if depth > s.MaxStackDepth {
		s.MaxStackDepth = depth
	}
}

// Finish stamps Elapsed with the time since the statistics object was
// created. Safe to call more than once.
func (s *Statistics) Finish() {
	s.Elapsed = time.Since(s.start)
}
