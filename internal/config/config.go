// Package config defines the injected configuration used across the
// solver. There is no process-wide configuration object: every
// component that needs options receives a *Config by reference, in the
// same style as pkg/minikanren's SolverConfig.
package config

import "time"

// LPSolverType selects the LP back-end used by the engine.
type LPSolverType int

const (
	// LPNative uses the in-process revised-simplex engine.
	LPNative LPSolverType = iota
	// LPExternalMILP delegates to the external MILP back-end (internal/milp).
	LPExternalMILP
)

// SymbolicBoundTighteningType selects the NLR propagation mode.
type SymbolicBoundTighteningType int

const (
	SymbolicNone SymbolicBoundTighteningType = iota
	SymbolicInterval
	SymbolicDeepPoly
)

// MILPBoundTighteningType selects how the external MILP back-end is used
// for auxiliary bound tightening, independent of LPSolverType.
type MILPBoundTighteningType int

const (
	MILPTighteningNone MILPBoundTighteningType = iota
	MILPTighteningLPRelaxation
	MILPTighteningLPRelaxationIncremental
	MILPTighteningEncoding
	MILPTighteningEncodingIncremental
	MILPTighteningIterativePropagation
	MILPTighteningBackwardOnce
	MILPTighteningBackwardConverge
)

// DivideStrategy selects the branching heuristic used by the search core.
type DivideStrategy int

const (
	DivideAuto DivideStrategy = iota
	DividePseudoImpact
	DivideBaBSR
	DividePolarity
	DivideEarliestReLU
	DivideLargestInterval
)

// DeepPolyTangentPoint selects the tangent-point heuristic used by the
// Sigmoid/Exponential DeepPoly envelopes. Open question #2 in DESIGN.md:
// these are hyperparameters, not invariants.
type DeepPolyTangentPoint int

const (
	TangentMidpoint DeepPolyTangentPoint = iota
	TangentShiftedMidpoint
)

// Config collects every enumerated option from spec.md §6. It is
// constructed once per solver instance (or once per worker in
// internal/splitconquer) and passed by reference; nothing here is a
// package-level global.
type Config struct {
	LPSolverType                LPSolverType
	SymbolicBoundTighteningType SymbolicBoundTighteningType
	MILPBoundTighteningType     MILPBoundTighteningType
	DivideStrategy              DivideStrategy
	UseDeepSoILocalSearch       bool
	PerformLPTighteningAfterSplit bool
	NumWorkers                  int
	Seed                        int64
	Verbosity                   int

	SigmoidTangent     DeepPolyTangentPoint
	ExponentialTangent DeepPolyTangentPoint

	DefaultEpsilonForComparisons       float64
	AcceptableSimplexPivotThreshold    float64
	GaussianEliminationPivotThreshold  float64
	DegradationThreshold               float64
	MaxRoundsOfBackwardAnalysis        int
	BoundTighteningOnMatrixFrequency   int
	MaxIterationsWithoutProgress       int
	IntervalSplittingThreshold         float64
	PolarityCandidatesThreshold        int
	BaBSRCandidatesThreshold           int

	// Timeout is checked once per outer-loop iteration against a
	// monotonic clock (spec.md §5). Zero means no timeout.
	Timeout time.Duration

	// ProofProduction enables Contradiction emission (internal/proof).
	ProofProduction bool
}

// Default returns the configuration used when a caller does not
// override individual fields, mirroring the numeric thresholds named in
// spec.md §6.
func Default() *Config {
	return &Config{
		LPSolverType:                LPNative,
		SymbolicBoundTighteningType: SymbolicDeepPoly,
		MILPBoundTighteningType:     MILPTighteningNone,
		DivideStrategy:              DivideAuto,
		UseDeepSoILocalSearch:       true,
		PerformLPTighteningAfterSplit: true,
		NumWorkers:                  1,
		Seed:                        0,
		Verbosity:                   0,

		SigmoidTangent:     TangentMidpoint,
		ExponentialTangent: TangentMidpoint,

		DefaultEpsilonForComparisons:      1e-10,
		AcceptableSimplexPivotThreshold:   1e-6,
		GaussianEliminationPivotThreshold: 0.1,
		DegradationThreshold:              1e-8,
		MaxRoundsOfBackwardAnalysis:       4,
		BoundTighteningOnMatrixFrequency:  100,
		MaxIterationsWithoutProgress:      500,
		IntervalSplittingThreshold:        0.1,
		PolarityCandidatesThreshold:       5,
		BaBSRCandidatesThreshold:          5,

		Timeout:         0,
		ProofProduction: false,
	}
}

// LooseEpsilon is the widened tolerance for deciding a variable is
// "almost fixed" (spec.md Design Notes §9: "document every call site
// where the looser value is used"). It has no call sites: preprocessing
// and the engine compare with DefaultEpsilonForComparisons only. It is
// derived from, not independent of, DefaultEpsilonForComparisons so the
// two never drift out of the documented ratio.
func (c *Config) LooseEpsilon() float64 {
	return c.DefaultEpsilonForComparisons * 1e4
}
