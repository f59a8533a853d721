// Package main demonstrates the veriplex verification engine against a
// handful of the scenarios internal/engine's own test suite covers
// (spec.md §8). A parser or CLI front end is out of scope (spec.md §6
// Non-goals); this walkthrough builds queries directly against
// pkg/query.
package main

import (
	"context"
	"fmt"

	"github.com/gitrdm/veriplex/internal/config"
	eng "github.com/gitrdm/veriplex/internal/engine"
	"github.com/gitrdm/veriplex/internal/pwl"
	"github.com/gitrdm/veriplex/internal/tableau"
	"github.com/gitrdm/veriplex/pkg/query"
)

func main() {
	fmt.Println("=== veriplex walkthrough ===")
	fmt.Println()

	twoReLUSatisfiable()
	twoReLUUnsatisfiable()
	lpOptimisation()
}

// twoReLUSatisfiable builds the two-ReLU network from spec.md §8
// scenario 1 and solves it.
func twoReLUSatisfiable() {
	fmt.Println("1. Two-ReLU network, satisfiable:")

	q := query.New(6)
	q.SetBounds(0, 0, 1)
	q.SetBounds(5, 0.5, 1)

	addEq(q, tableau.EQ, 0, add(1, 0), add(-1, 1))
	addEq(q, tableau.EQ, 0, add(1, 0), add(1, 3))
	addEq(q, tableau.EQ, 0, add(1, 2), add(1, 4), add(-1, 5))

	q.AddConstraint(pwl.NewReLU(1, 2))
	q.AddConstraint(pwl.NewReLU(3, 4))

	solve(q, config.Default())
	fmt.Println()
}

// twoReLUUnsatisfiable is the same network with the output bound
// tightened past what the ReLUs can produce.
func twoReLUUnsatisfiable() {
	fmt.Println("2. Two-ReLU network, unsatisfiable:")

	q := query.New(6)
	q.SetBounds(0, 0, 1)
	q.SetBounds(5, 2, 2)

	addEq(q, tableau.EQ, 0, add(1, 0), add(-1, 1))
	addEq(q, tableau.EQ, 0, add(1, 0), add(1, 3))
	addEq(q, tableau.EQ, 0, add(1, 2), add(1, 4), add(-1, 5))

	q.AddConstraint(pwl.NewReLU(1, 2))
	q.AddConstraint(pwl.NewReLU(3, 4))

	solve(q, config.Default())
	fmt.Println()
}

// lpOptimisation shows spec.md §8 scenario 5: a purely linear query
// solved once per objective.
func lpOptimisation() {
	fmt.Println("3. LP optimisation over a fixed feasible region:")

	build := func() *query.Query {
		q := query.New(4)
		for v := 0; v < 4; v++ {
			q.SetBounds(v, 0, 1)
		}
		addEq(q, tableau.LE, 0.5, add(1, 0), add(1, 1))
		addEq(q, tableau.GE, 0.5, add(1, 1), add(1, 2), add(1, 3))
		addEq(q, tableau.GE, 0, add(1, 1), add(-1, 2))
		addEq(q, tableau.GE, 0, add(1, 1), add(-1, 3))
		return q
	}

	q1 := build()
	q1.Objective = []tableau.Addend{add(1, 0), add(-1, 1)}
	solve(q1, config.Default())

	q2 := build()
	q2.Objective = []tableau.Addend{add(-2, 0), add(1, 1), add(2, 3)}
	solve(q2, config.Default())
	fmt.Println()
}

func solve(q *query.Query, cfg *config.Config) {
	engine, err := eng.New(cfg, q)
	if err != nil {
		fmt.Printf("   construction failed: %v\n", err)
		return
	}

	sol, state, err := engine.Solve(context.Background())
	if err != nil {
		fmt.Printf("   solve error: %v\n", err)
		return
	}

	fmt.Printf("   result: %s (engine %s, %d pivots, %d splits)\n",
		state, engine.ID(), engine.Stats().Pivots, engine.Stats().Splits)
	if sol != nil {
		for v := 0; v < q.NumVariables; v++ {
			fmt.Printf("   x%d = %.4f\n", v, sol.Value(v))
		}
	}
}

func add(coeff float64, v int) tableau.Addend {
	return tableau.Addend{Coefficient: coeff, Variable: v}
}

func addEq(q *query.Query, t tableau.EquationType, scalar float64, addends ...tableau.Addend) {
	e := tableau.NewEquation(t)
	for _, a := range addends {
		e.AddAddend(a.Coefficient, a.Variable)
	}
	e.Scalar = scalar
	q.AddEquation(e)
}
