/*
 * Copyright 2024 The Prodrule Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package evaluator implements per-tuple rule scheduling and firing: the
// mutex/fire-once/salience-ordered pass the engine driver runs once for
// every candidate tuple the plan produces.
package evaluator

import (
	"reflect"
	"sort"
	"time"

	"prodrule/factspace"
	"prodrule/rulebase"
	"prodrule/types"
)

// Outcome reports what happened after firing (or skipping) one tuple, and
// tells the engine driver what to do next.
type Outcome struct {
	Skipped bool // selector was invalidated before this tuple could fire

	ModificationsOccurred bool
	InsertionsOccurred    bool

	Exhausted         bool // evaluation/time budget exceeded mid-tuple
	MaxViolations     bool // max-violations budget exceeded mid-tuple
}

// TupleEvaluator evaluates and fires rules for a single tuple, enforcing
// mutex, fire-once, and salience ordering, against one session's shared
// mutable state (results, fire-once set, started clock).
type TupleEvaluator struct {
	rb         *rulebase.RuleBase
	fs         *factspace.FactSpace
	namespaces []string
	cfg        types.Config
	results    *types.EvaluationResults
	started    time.Time
	run        types.RunContext

	fireOnce map[string]map[types.IdentityKey]bool

	cachedSig   types.Signature
	cachedRules []types.Rule
	haveCache   bool
}

// New returns a TupleEvaluator that shares results/run-state with the
// engine driver for the duration of one Evaluate call.
func New(rb *rulebase.RuleBase, fs *factspace.FactSpace, namespaces []string, cfg types.Config, results *types.EvaluationResults, started time.Time, run types.RunContext) *TupleEvaluator {
	return &TupleEvaluator{
		rb:         rb,
		fs:         fs,
		namespaces: namespaces,
		cfg:        cfg,
		results:    results,
		started:    started,
		run:        run,
		fireOnce:   make(map[string]map[types.IdentityKey]bool),
	}
}

func (te *TupleEvaluator) budgetExceeded() bool {
	if te.results.TotalEvaluated > te.cfg.MaxEvaluations {
		return true
	}
	if te.cfg.MaxDuration > 0 && time.Since(te.started) > te.cfg.MaxDuration {
		return true
	}
	return false
}

func (te *TupleEvaluator) maxViolationsExceeded() bool {
	if te.cfg.MaxViolations <= 0 {
		return false
	}
	return te.results.ViolationCount() > te.cfg.MaxViolations
}

func (te *TupleEvaluator) hasFiredOnce(ruleName string, key types.IdentityKey) bool {
	seen, ok := te.fireOnce[ruleName]
	if !ok {
		return false
	}
	return seen[key]
}

func (te *TupleEvaluator) markFiredOnce(ruleName string, key types.IdentityKey) {
	seen, ok := te.fireOnce[ruleName]
	if !ok {
		seen = make(map[types.IdentityKey]bool)
		te.fireOnce[ruleName] = seen
	}
	seen[key] = true
}

func (te *TupleEvaluator) rulesFor(sig types.Signature, factTypes []reflect.Type) []types.Rule {
	if te.haveCache && te.cachedSig == sig {
		return te.cachedRules
	}
	rules := te.rb.FindRules(factTypes, te.namespaces)
	te.cachedSig = sig
	te.cachedRules = rules
	te.haveCache = true
	return rules
}

// Fire evaluates and fires rules for one tuple. factTypes is the tuple's
// resolved fact types (same order as tuple), used both for rule lookup and
// for identity-key construction via selectors. listener is notified at
// rule boundaries; listener errors/panics never abort evaluation. An error
// returned from a rule's Fire is returned wrapped in *types.EngineError
// (naming the rule), and evaluation stops immediately; the engine driver
// unwraps it before returning it from Evaluate.
func (te *TupleEvaluator) Fire(sig types.Signature, selectors []types.Selector, tuple types.Tuple, factTypes []reflect.Type, listener types.Listener) (Outcome, error) {
	if tuple.Empty() {
		return Outcome{Skipped: true}, nil
	}

	safeListener{listener}.BeginTuple(tuple)
	defer safeListener{listener}.EndTuple(tuple)

	ids := make([]types.Identity, len(selectors))
	for i, sel := range selectors {
		id, ok := te.fs.IdentityOf(sel)
		if !ok {
			return Outcome{Skipped: true}, nil
		}
		ids[i] = id
	}
	idKey := types.NewIdentityKey(ids)

	candidates := te.rulesFor(sig, factTypes)
	now := time.Now()

	var fireable []types.Rule
	for _, r := range candidates {
		if te.budgetExceeded() {
			break
		}
		te.results.TotalEvaluated++

		if !r.Inception().IsZero() && now.Before(r.Inception()) {
			safeListener{listener}.Debug("rule %s not yet in effect, skipping", r.Name())
			continue
		}
		if !r.Expiration().IsZero() && now.After(r.Expiration()) {
			safeListener{listener}.Debug("rule %s expired, skipping", r.Name())
			continue
		}
		if mutex := r.Mutex(); mutex != "" {
			if _, claimed := te.results.MutexWinners[mutex]; claimed {
				safeListener{listener}.Debug("rule %s skipped, mutex %s already claimed", r.Name(), mutex)
				continue
			}
		}
		if r.FiresOnce() && te.hasFiredOnce(r.Name(), idKey) {
			safeListener{listener}.Debug("rule %s skipped, already fired once for this identity", r.Name())
			continue
		}
		if !r.Evaluate(tuple) {
			safeListener{listener}.Debug("rule %s did not match tuple", r.Name())
			continue
		}
		fireable = append(fireable, r)
	}

	sort.SliceStable(fireable, func(i, j int) bool {
		return fireable[i].Salience() > fireable[j].Salience()
	})

	var outcome Outcome
	for _, r := range fireable {
		if mutex := r.Mutex(); mutex != "" {
			if _, claimed := te.results.MutexWinners[mutex]; claimed {
				continue
			}
		}

		te.run.ResetModifications()
		if mutex := r.Mutex(); mutex != "" {
			te.results.MutexWinners[mutex] = r.Name()
		}
		te.run.SetCurrentRule(r.Name())

		safeListener{listener}.Firing(r)
		te.results.TotalFired++
		err := r.Fire(tuple)

		if r.FiresOnce() {
			te.markFiredOnce(r.Name(), idKey)
		}
		te.results.FiredRules[r.Name()]++

		modified := te.run.ModificationsOccurred()
		inserted := te.run.InsertionsOccurred()
		safeListener{listener}.Fired(r, modified || inserted)

		if err != nil {
			// The engine driver unwraps this and returns the rule's own
			// error from Evaluate.
			return outcome, types.NewEngineError(r.Name(), tuple, err)
		}

		outcome.ModificationsOccurred = outcome.ModificationsOccurred || modified
		outcome.InsertionsOccurred = outcome.InsertionsOccurred || inserted

		if te.maxViolationsExceeded() {
			outcome.MaxViolations = true
			break
		}
		if te.budgetExceeded() {
			outcome.Exhausted = true
			break
		}
		if modified || inserted {
			break
		}
	}

	// The per-rule loop above only marks Exhausted/MaxViolations when a
	// rule actually reached the firing loop. A tuple whose candidates are
	// all rejected during filtering (mutex already claimed, fire-once
	// already fired, or the filtering loop's own budget check breaking
	// before any candidate survives) still advances TotalEvaluated/
	// ViolationCount, so the budget must be checked again here
	// independently of whether anything fired this tuple.
	if !outcome.Exhausted && te.budgetExceeded() {
		outcome.Exhausted = true
	}
	if !outcome.MaxViolations && te.maxViolationsExceeded() {
		outcome.MaxViolations = true
	}

	return outcome, nil
}

// safeListener wraps every Listener call so a panicking or misbehaving
// Listener implementation can never abort evaluation (spec §4.7/§9).
type safeListener struct {
	types.Listener
}

func (s safeListener) BeginTuple(tuple types.Tuple) {
	defer func() { recover() }()
	s.Listener.BeginTuple(tuple)
}

func (s safeListener) EndTuple(tuple types.Tuple) {
	defer func() { recover() }()
	s.Listener.EndTuple(tuple)
}

func (s safeListener) Firing(r types.Rule) {
	defer func() { recover() }()
	s.Listener.Firing(r)
}

func (s safeListener) Fired(r types.Rule, modified bool) {
	defer func() { recover() }()
	s.Listener.Fired(r, modified)
}

func (s safeListener) Debug(template string, args ...interface{}) {
	defer func() { recover() }()
	s.Listener.Debug(template, args...)
}
