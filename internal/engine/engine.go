// Package engine implements the outer-loop state machine that drives
// the revised-simplex engine, the piecewise-linear case-split search
// core, and the DeepPoly network-level reasoner to a SAT/UNSAT answer
// for one query.Query (spec.md §4.6, §7). Grounded on
// pkg/minikanren/fd_solver.go's Solve orchestration shape: construct a
// store from the constraint set, drive it to a fixed point, extract a
// solution, wrapping every internal failure with fmt.Errorf("...: %w").
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitrdm/veriplex/internal/boundmgr"
	"github.com/gitrdm/veriplex/internal/config"
	"github.com/gitrdm/veriplex/internal/milp"
	"github.com/gitrdm/veriplex/internal/nlr"
	"github.com/gitrdm/veriplex/internal/numeric"
	"github.com/gitrdm/veriplex/internal/proof"
	"github.com/gitrdm/veriplex/internal/pwl"
	"github.com/gitrdm/veriplex/internal/search"
	"github.com/gitrdm/veriplex/internal/tableau"
	"github.com/gitrdm/veriplex/internal/telemetry"
	"github.com/gitrdm/veriplex/pkg/query"
)

// State is the outer-loop's current phase (spec.md §4.6's state
// table): Init -> Preprocessed -> Solving -> {Splitting, Restoring,
// Sat, Unsat, Timeout, Error}. Splitting and Restoring are transient
// sub-states folded into Solving here since nothing external observes
// them mid-iteration; they still appear in Statistics as counters.
type State int

const (
	StateInit State = iota
	StatePreprocessed
	StateSolving
	StateSat
	StateUnsat
	StateTimeout
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StatePreprocessed:
		return "Preprocessed"
	case StateSolving:
		return "Solving"
	case StateSat:
		return "Sat"
	case StateUnsat:
		return "Unsat"
	case StateTimeout:
		return "Timeout"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// tabView adapts the tableau's current assignment to pwl.Assignment.
type tabView struct{ tab *tableau.Tableau }

func (v tabView) Value(variable int) float64 { return v.tab.Assignment(variable) }

// zeroImpact is the PseudoImpactSource used when SoI is disabled, so
// the PseudoImpact heuristic degrades to "no information" rather than
// needing a nil check at every call site.
type zeroImpact struct{}

func (zeroImpact) PseudoImpact(pwl.Constraint) float64 { return 0 }

// Engine holds one query's entire solver state: the tableau and its
// simplex engine, the bound manager, the split stack, the optional
// network-level reasoner, and run statistics. Not safe for concurrent
// use by multiple goroutines; internal/splitconquer gives each
// goroutine its own Engine instead of sharing one.
type Engine struct {
	id     string
	cfg    *config.Config
	logger *zap.SugaredLogger
	stats  *Statistics
	state  State

	bm         *boundmgr.BoundManager
	tab        *tableau.Tableau
	eliminator *tableau.MarkowitzEliminator
	simplex    *tableau.Engine
	scanner    *boundmgr.RowTightener
	restorer   *restorer
	installer  *rowInstaller

	constraints    []pwl.Constraint
	splitStack     *search.SplitStack
	heuristic      search.Heuristic
	violations     *search.ViolationTracker
	soi            *search.SoI
	pseudoImpact   search.PseudoImpactSource
	inputVariables []int

	graph      *nlr.LayerGraph
	propagator *nlr.Propagator
	simulator  *nlr.Simulator

	milpBackend milp.Backend

	objective  []tableau.Addend
	optimizing bool

	numOriginal int
	m, n        int
	denseA      []float64
	groundLB    []float64
	groundUB    []float64

	pivotsSinceSplit                int
	consecutiveRestorationFailures   int
	iterationsSinceNLR               int

	// groundInfeasible marks a query whose ground box is already
	// inconsistent (lb > ub once propagated through BoundManager).
	// Detected and recorded by New(), which skips building the tableau
	// and simplex engine in that case; Solve reports StateUnsat for it
	// immediately rather than entering the outer loop (spec.md §7: this
	// is a terminal UNSAT result, not a construction-time failure).
	groundInfeasible bool

	proofEvents []*proof.Node
	Certificate *proof.Certificate
}

// New builds an Engine ready to solve q under cfg. cfg may be nil, in
// which case config.Default() is used.
func New(cfg *config.Config, q *query.Query) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	eps := cfg.DefaultEpsilonForComparisons
	logger := telemetry.NewLogger(cfg.Verbosity)

	if cfg.SymbolicBoundTighteningType == config.SymbolicDeepPoly && q.Network == nil {
		// spec.md §7 "NetworkLevelReasonerUnavailable": fatal for that
		// heuristic alone, not for the whole query. Fall back to no
		// symbolic bound tightening rather than aborting construction.
		downgraded := *cfg
		downgraded.SymbolicBoundTighteningType = config.SymbolicNone
		cfg = &downgraded
		logger.Warnw("DeepPoly requested with no layer graph, falling back to no symbolic bound tightening", "variables", q.NumVariables)
	}
	if cfg.MILPBoundTighteningType != config.MILPTighteningNone {
		return nil, fmt.Errorf("engine: MILP bound tightening mode %d requires a real MILP backend: %w", cfg.MILPBoundTighteningType, ErrFeatureNotSupported)
	}

	p, err := preprocess(q, eps)
	if err != nil {
		return nil, err
	}

	bm := boundmgr.New(p.n, eps)
	for v := 0; v < p.n; v++ {
		bm.SetLowerBound(v, p.lb[v])
		bm.SetUpperBound(v, p.ub[v])
	}
	if bm.AnyInconsistent() {
		// spec.md §7: a ground box with lb > ub is a terminal UNSAT
		// result, not a construction-time failure. Skip building the
		// tableau/simplex engine entirely; Solve reports StateUnsat for
		// this Engine on its very first call.
		logger.Debugw("ground bounds already inconsistent, query is unsat by construction")
		return &Engine{
			id:               uuid.New().String(),
			cfg:              cfg,
			logger:           logger,
			stats:            NewStatistics(),
			state:            StatePreprocessed,
			bm:               bm,
			groundInfeasible: true,
			numOriginal:      p.NumOriginal,
			n:                p.n,
			groundLB:         append([]float64(nil), p.lb...),
			groundUB:         append([]float64(nil), p.ub...),
		}, nil
	}

	m := len(p.rows)
	tab := tableau.NewTableau(m, p.n, bm, eps)
	for i, row := range p.rows {
		if err := tab.SetEquationRow(i, row); err != nil {
			return nil, fmt.Errorf("engine: installing row %d: %w", i, err)
		}
	}

	denseA := make([]float64, m*p.n)
	for i, row := range p.rows {
		for _, a := range row.Addends {
			denseA[i*p.n+a.Variable] = a.Coefficient
		}
	}

	eliminator := tableau.NewMarkowitzEliminator(cfg.GaussianEliminationPivotThreshold, eps)

	analyser := boundmgr.NewMatrixAnalyser(denseA, m, p.n, cfg.GaussianEliminationPivotThreshold, eps)
	analyser.Analyze()
	basis := analyser.IndependentColumns()
	if len(basis) != m {
		return nil, fmt.Errorf("engine: constraint matrix has %d redundant row(s): %w", m-len(basis), ErrFeatureNotSupported)
	}
	if err := tab.SetBasis(basis, eliminator); err != nil {
		return nil, fmt.Errorf("engine: initial basis: %w", err)
	}
	if err := tab.ComputeAssignment(); err != nil {
		return nil, fmt.Errorf("engine: initial assignment: %w", err)
	}

	simplexEngine := tableau.NewEngine(tab, eliminator, eps, cfg.AcceptableSimplexPivotThreshold)
	scanner := boundmgr.NewRowTightener(bm)
	rest := newRestorer(tab, eliminator, denseA, m, p.n, cfg.GaussianEliminationPivotThreshold, eps)

	installer := newRowInstaller(bm, eps)
	for key, rr := range p.reserved {
		installer.reserve(key, rr.row, rr.aux)
	}

	for _, c := range q.Constraints {
		tab.AddWatcher(c)
		bm.AddWatcher(c)
	}

	splitStack := search.NewSplitStack(bm)
	var soi *search.SoI
	var impactSource search.PseudoImpactSource = zeroImpact{}
	if cfg.UseDeepSoILocalSearch {
		const soiTemperature = 1.0
		soi = search.NewSoI(simplexEngine, cfg.Seed, soiTemperature)
		impactSource = soi
	}

	heuristic := selectHeuristic(cfg, splitStack)

	var graph *nlr.LayerGraph
	var propagator *nlr.Propagator
	var simulator *nlr.Simulator
	if q.Network != nil {
		graph = q.Network
		if cfg.SymbolicBoundTighteningType == config.SymbolicDeepPoly {
			inputLB, inputUB := inputBox(q, graph.InputSize)
			propagator = nlr.NewPropagator(graph, inputLB, inputUB, cfg.SigmoidTangent, cfg.ExponentialTangent)
		}
		simulator = nlr.NewSimulator(graph, cfg.Seed)
	}

	e := &Engine{
		id:             uuid.New().String(),
		cfg:            cfg,
		logger:         logger,
		stats:          NewStatistics(),
		state:          StatePreprocessed,
		bm:             bm,
		tab:            tab,
		eliminator:     eliminator,
		simplex:        simplexEngine,
		scanner:        scanner,
		restorer:       rest,
		installer:      installer,
		constraints:    q.Constraints,
		splitStack:     splitStack,
		heuristic:      heuristic,
		violations:     search.NewViolationTracker(),
		soi:            soi,
		pseudoImpact:   impactSource,
		inputVariables: q.InputVariables,
		graph:          graph,
		propagator:     propagator,
		simulator:      simulator,
		milpBackend:    milp.NoopBackend{},
		objective:      q.Objective,
		numOriginal:    p.NumOriginal,
		m:              m,
		n:              p.n,
		denseA:         denseA,
		groundLB:       append([]float64(nil), p.lb...),
		groundUB:       append([]float64(nil), p.ub...),
	}

	if err := e.installAllPhaseFixed(); err != nil {
		return nil, err
	}
	if e.bm.AnyInconsistent() {
		// Phase-fixed constraints installed at construction time (e.g. a
		// ReLU whose bounds already fix its phase) can themselves
		// conflict with the ground box. Same spec.md §7 terminal-UNSAT
		// treatment as the ground-box check above: report it through
		// Solve rather than failing New().
		e.logger.Debugw("phase-fixed installation made ground bounds inconsistent, query is unsat by construction", "id", e.id)
		e.groundInfeasible = true
		return e, nil
	}

	e.logger.Debugw("engine constructed", "id", e.id, "rows", m, "columns", p.n, "constraints", len(q.Constraints))
	return e, nil
}

func selectHeuristic(cfg *config.Config, stack *search.SplitStack) search.Heuristic {
	switch cfg.DivideStrategy {
	case config.DividePseudoImpact:
		return search.PseudoImpactHeuristic{}
	case config.DivideBaBSR:
		return search.BaBSRHeuristic{}
	case config.DividePolarity:
		return search.PolarityHeuristic{}
	case config.DivideEarliestReLU:
		return search.EarliestReLUHeuristic{}
	case config.DivideLargestInterval:
		return search.LargestIntervalHeuristic{}
	default:
		const shallowDepthThreshold = 5
		return search.NewAutoHeuristic(shallowDepthThreshold, stack.Depth)
	}
}

// inputBox extracts the ground box for a layer graph's input layer
// from the query, defaulting to the widest possible box for any input
// neuron the query left unbounded.
func inputBox(q *query.Query, size int) ([]float64, []float64) {
	lb := make([]float64, size)
	ub := make([]float64, size)
	for i := 0; i < size; i++ {
		lb[i] = numeric.NegativeInfinity
		ub[i] = numeric.Infinity
		if i < len(q.LowerBounds) {
			lb[i] = q.LowerBounds[i]
			ub[i] = q.UpperBounds[i]
		}
	}
	return lb, ub
}

// ID returns this run's correlation identifier, suitable for
// correlating Statistics and log lines across a distributed
// split-and-conquer batch.
func (e *Engine) ID() string { return e.id }

// Stats returns the run's accumulated Statistics. Safe to call at any
// point; Elapsed is only stamped once Solve returns.
func (e *Engine) Stats() *Statistics { return e.stats }

// Solve drives the outer loop to SAT, UNSAT, timeout, or a fatal
// error (spec.md §4.6). ctx is sampled once per outer iteration for
// cooperative cancellation.
func (e *Engine) Solve(ctx context.Context) (*query.Solution, State, error) {
	e.state = StateSolving

	if e.groundInfeasible {
		e.state = StateUnsat
		if e.cfg.ProofProduction {
			e.recordContradiction()
			e.Certificate = e.buildCertificate()
		}
		e.stats.Finish()
		return nil, e.state, nil
	}

	var deadline time.Time
	hasDeadline := e.cfg.Timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(e.cfg.Timeout)
	}

	for {
		select {
		case <-ctx.Done():
			e.state = StateTimeout
			e.stats.Finish()
			return nil, e.state, ctx.Err()
		default:
		}
		if hasDeadline && time.Now().After(deadline) {
			e.state = StateTimeout
			e.stats.Finish()
			return nil, e.state, nil
		}

		done, sol, err := e.step()
		if err != nil {
			e.state = StateError
			e.stats.Finish()
			return nil, e.state, fmt.Errorf("engine: %w", err)
		}
		if !done {
			continue
		}

		e.stats.Finish()
		if sol != nil {
			e.state = StateSat
			return sol, e.state, nil
		}
		e.state = StateUnsat
		if e.cfg.ProofProduction {
			e.Certificate = e.buildCertificate()
		}
		return nil, e.state, nil
	}
}

// step runs one outer-loop iteration: a single simplex step, bound
// propagation (row scanner, constraint-entailed, and NLR), then a
// decision based on the simplex outcome. Returns done=true once the
// query is fully resolved (sol non-nil on SAT, nil on UNSAT).
func (e *Engine) step() (bool, *query.Solution, error) {
	outcome, _, err := e.simplex.PerformSimplexStep(e.scanner)
	if err != nil {
		return e.handleMalformedBasis(err)
	}
	e.bm.FlushPending()

	e.propagateEntailedTightenings()
	if err := e.installAllPhaseFixed(); err != nil {
		return false, nil, err
	}
	if e.bm.AnyInconsistent() {
		return e.backtrackOrUnsat()
	}

	switch outcome {
	case tableau.Progressed:
		e.stats.recordPivot()
		if e.optimizing {
			e.simplex.CostFunctionManager().ComputeGivenCostFunction(e.objective)
		}
		if err := e.maybeRestore(); err != nil {
			return false, nil, err
		}
		return false, nil, nil

	case tableau.OptimalReached:
		if e.optimizing && !e.allBasicsWithinBounds() {
			// spec.md §7 "VariableOutOfBoundDuringOptimisation": drifted
			// out of bounds while minimising the user objective. Recover
			// by disabling optimisation and resuming feasibility-seeking
			// rather than treating this as infeasibility.
			e.optimizing = false
			e.simplex.ToggleOptimization(false)
			return false, nil, nil
		}
		if !e.allBasicsWithinBounds() {
			return e.backtrackOrUnsat()
		}
		return e.handleFeasiblePoint()

	case tableau.InfeasibleDetected:
		if e.allBasicsWithinBounds() {
			// The pricing rule found nothing improving because the
			// infeasibility cost is already zero, not because the
			// query is infeasible: this point is LP-feasible.
			return e.handleFeasiblePoint()
		}
		return e.backtrackOrUnsat()
	}
	return false, nil, nil
}

func (e *Engine) handleMalformedBasis(cause error) (bool, *query.Solution, error) {
	if err := e.restorer.restoreInPlace(); err != nil {
		e.consecutiveRestorationFailures++
		if e.consecutiveRestorationFailures >= 2 {
			return false, nil, fmt.Errorf("%w: %v (originally %v)", ErrRestorationFailed, err, cause)
		}
		return false, nil, nil
	}
	e.consecutiveRestorationFailures = 0
	e.stats.recordRestoration()
	return false, nil, nil
}

// maybeRestore applies spec.md §9's two precision-restoration
// triggers: a residual past DegradationThreshold (cheap, in-place
// refactorization) or a run of pivots past MaxIterationsWithoutProgress
// since the last split/backtrack (a fresh from-scratch basis, on the
// suspicion the current basis itself is cycling).
func (e *Engine) maybeRestore() error {
	e.pivotsSinceSplit++
	if e.pivotsSinceSplit > e.cfg.MaxIterationsWithoutProgress {
		if err := e.restorer.restoreFromScratch(); err != nil {
			return err
		}
		e.pivotsSinceSplit = 0
		e.stats.recordRestoration()
		return nil
	}

	residual, err := e.tab.Residual()
	if err != nil {
		return nil
	}
	if residual > e.cfg.DegradationThreshold {
		if err := e.restorer.restoreInPlace(); err != nil {
			return err
		}
		e.stats.recordRestoration()
	}
	return nil
}

func (e *Engine) allBasicsWithinBounds() bool {
	eps := e.cfg.DefaultEpsilonForComparisons
	for _, v := range e.tab.BasicVariables() {
		val := e.tab.Assignment(v)
		if numeric.LT(val, e.bm.LowerBound(v), eps) || numeric.GT(val, e.bm.UpperBound(v), eps) {
			return false
		}
	}
	return true
}

// propagateEntailedTightenings applies every constraint's own derived
// bound consequences (spec.md §4.4's "entailed tightenings"): for most
// variants this is empty once unfixed, but internal/pwl.Bilinear uses
// it continuously for its McCormick-envelope bounds, since it never
// reports PhaseFixed and so never goes through installAllPhaseFixed.
func (e *Engine) propagateEntailedTightenings() {
	for _, c := range e.constraints {
		for _, t := range c.GetEntailedTightenings() {
			e.bm.Tighten(t)
		}
	}
	e.bm.FlushPending()
}

// installAllPhaseFixed re-applies every currently phase-fixed
// constraint's valid case split. Idempotent and cheap for the small
// constraint sets this solver targets, so it simply runs every
// iteration rather than tracking which constraints newly became fixed.
func (e *Engine) installAllPhaseFixed() error {
	for _, c := range e.constraints {
		if !c.PhaseFixed() {
			continue
		}
		split := c.GetValidCaseSplit()
		for _, t := range split.Tightenings {
			e.bm.Tighten(t)
		}
		e.bm.FlushPending()
		for _, eq := range split.Equations {
			if err := e.installer.InstallEquation(eq); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) propagateNLR() error {
	if e.propagator == nil {
		return nil
	}
	e.iterationsSinceNLR++
	if e.iterationsSinceNLR < e.cfg.BoundTighteningOnMatrixFrequency {
		return nil
	}
	e.iterationsSinceNLR = 0

	if err := e.propagator.PropagateForward(); err != nil {
		return fmt.Errorf("network-level reasoner: %w", err)
	}
	for i := 0; i < e.graph.NumLayers(); i++ {
		for _, t := range e.propagator.TighteningsFor(e.graph.Layer(i)) {
			e.bm.Tighten(t)
		}
	}
	e.bm.FlushPending()
	return nil
}

func (e *Engine) violatedConstraints() []pwl.Constraint {
	view := tabView{e.tab}
	var violated []pwl.Constraint
	for _, c := range e.constraints {
		if !c.Satisfied(view) {
			violated = append(violated, c)
		}
	}
	return violated
}

// handleFeasiblePoint is reached once the LP relaxation is feasible at
// the current node: every basic variable is within its bounds. From
// here the engine checks the network-level reasoner, the piecewise-
// linear constraints, and (if a user objective is set) whether it is
// time to start minimising it.
func (e *Engine) handleFeasiblePoint() (bool, *query.Solution, error) {
	if err := e.propagateNLR(); err != nil {
		return false, nil, err
	}
	if e.bm.AnyInconsistent() {
		return e.backtrackOrUnsat()
	}

	violated := e.violatedConstraints()
	if len(violated) == 0 {
		if e.objective != nil && !e.optimizing {
			e.optimizing = true
			e.simplex.ToggleOptimization(true)
			e.simplex.CostFunctionManager().ComputeGivenCostFunction(e.objective)
			return false, nil, nil
		}
		return true, e.extractSolution(), nil
	}

	for _, c := range violated {
		e.violations.ReportViolatedConstraint(c)
	}

	if e.soi != nil {
		pattern := e.soi.InitialPattern(e.constraints)
		result, err := e.soi.RunRound(e.constraints, e.scanner, e.n, pattern)
		if err != nil {
			return false, nil, err
		}
		e.bm.FlushPending()
		e.stats.recordSoIRound()
		// SoI always leaves the tableau in optimising mode; restore the
		// engine's own notion of mode before the next outer iteration.
		e.simplex.ToggleOptimization(e.optimizing)
		if e.optimizing {
			e.simplex.CostFunctionManager().ComputeGivenCostFunction(e.objective)
		}
		if result.Satisfied {
			return false, nil, nil
		}
		// A round that completes without satisfying every constraint
		// has exhausted local search's ability to make further progress
		// on its own; fall through to a real branching decision instead
		// of looping on SoI forever.
		return e.performSplit(violated)
	}

	return e.performSplit(violated)
}

func (e *Engine) performSplit(violated []pwl.Constraint) (bool, *query.Solution, error) {
	ctx := &search.DivideContext{
		Constraints:    e.constraints,
		Bounds:         e.bm,
		PseudoImpact:   e.pseudoImpact,
		InputVariables: e.inputVariables,
	}

	alternatives, ok := e.heuristic.SelectSplit(ctx)
	if !ok {
		return e.fixViolatedConstraintDirectly(violated)
	}

	if e.cfg.ProofProduction {
		e.proofEvents = nil // a fresh decision invalidates the flattened log below it
	}

	if err := e.splitStack.PerformSplit(alternatives, e.installer); err != nil {
		return false, nil, err
	}
	e.pivotsSinceSplit = 0
	e.stats.recordSplit(e.splitStack.Depth())
	return false, nil, nil
}

// fixViolatedConstraintDirectly handles the case where no heuristic
// could find a branch (e.g. every constraint is either satisfied or
// phase-fixed already, yet Satisfied still reports a violation due to
// numeric drift): nudge the most-reported violated constraint's
// non-basic input to one of its own suggested fixes.
func (e *Engine) fixViolatedConstraintDirectly(violated []pwl.Constraint) (bool, *query.Solution, error) {
	target := e.violations.ChooseViolatedConstraintForFixing(violated)
	if target == nil {
		return false, nil, fmt.Errorf("no branch or fix available for a violated constraint")
	}
	fixes := target.GetPossibleFixes(tabView{e.tab})
	if len(fixes) == 0 {
		return false, nil, fmt.Errorf("violated constraint offered no fix")
	}
	e.tab.SetNonBasicAssignment(fixes[0].Variable, fixes[0].Value)
	return false, nil, nil
}

func (e *Engine) backtrackOrUnsat() (bool, *query.Solution, error) {
	if e.cfg.ProofProduction {
		e.recordContradiction()
	}

	ok, err := e.splitStack.PopSplit(e.installer)
	if err != nil {
		return false, nil, err
	}
	e.stats.recordPop()

	if !ok {
		return true, nil, nil
	}

	e.pivotsSinceSplit = 0
	if e.optimizing {
		e.optimizing = false
		e.simplex.ToggleOptimization(false)
	}
	e.simplex.CostFunctionManager().Invalidate()
	if err := e.tab.ComputeAssignment(); err != nil {
		return false, nil, err
	}
	return false, nil, nil
}

func (e *Engine) recordContradiction() {
	variable := -1
	for v := 0; v < e.bm.NumVariables(); v++ {
		if e.bm.Inconsistent(v) {
			variable = v
			break
		}
	}
	leaf := proof.NewLeaf(proof.Contradiction{
		Variable:    variable,
		Explanation: proof.Explanation{Coefficients: map[int]float64{}},
	})
	e.proofEvents = append(e.proofEvents, leaf)
}

// buildCertificate assembles the flattened contradiction log collected
// during search into a Certificate. A full split-tree-shaped
// certificate (one child per alternative actually explored) is not
// reconstructed here since nothing downstream checks a certificate's
// shape (proof-certificate checking is an explicit Non-goal); each
// recorded contradiction is attached as a direct child of a synthetic
// root instead.
func (e *Engine) buildCertificate() *proof.Certificate {
	root := proof.NewSplitNode("contradictions encountered during search")
	for _, leaf := range e.proofEvents {
		root.AddChild(leaf)
	}
	return proof.NewCertificate(e.denseA, e.m, e.n, e.groundLB, e.groundUB, root)
}

func (e *Engine) extractSolution() *query.Solution {
	values := make(map[int]float64, e.numOriginal)
	for v := 0; v < e.numOriginal; v++ {
		values[v] = e.tab.Assignment(v)
	}
	return &query.Solution{Values: values}
}
