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

package engine

import (
	"errors"
	"reflect"
	"time"

	"prodrule/evaluator"
	"prodrule/factspace"
	"prodrule/plan"
	"prodrule/rulebase"
	"prodrule/types"
)

// Engine drives the plan-evaluator loop against one sealed RuleBase. An
// Engine is safe for concurrent use across goroutines: each Evaluate call
// builds its own FactSpace, EvaluationPlan, TupleEvaluator, and Context, and
// the underlying RuleBase is read-only once sealed.
type Engine struct {
	rb *rulebase.RuleBase
}

// New returns an Engine over rb, sealing it if it is not already sealed.
func New(rb *rulebase.RuleBase) *Engine {
	rb.Seal()
	return &Engine{rb: rb}
}

// Evaluate runs one session to completion: it loads facts into a fresh
// FactSpace, repeatedly asks the plan for the next candidate tuple, fires
// applicable rules for it, and replans whenever firing inserted or modified
// facts. It returns partial results even when it returns a non-nil error,
// so callers can always inspect what happened up to the failure.
//
// The returned error is, in order of precedence: a hard error raised while
// loading facts or firing a rule (propagated unwrapped, per contract); else
// types.ErrExhausted if the evaluation/time/violations budget was blown;
// else types.ErrNoRulesEvaluated if cfg.ThrowOnNoRules is set and no rule
// was ever evaluated; else types.ErrViolationsExist if
// cfg.ThrowOnValidation is set and at least one violation event fired.
func (e *Engine) Evaluate(cfg types.Config, facts []types.Fact, opts ...SessionOption) (results *types.EvaluationResults, err error) {
	fs := factspace.New()
	results = types.NewEvaluationResults()
	ctx := NewContext(fs, results)
	for _, opt := range opts {
		opt(ctx)
	}

	listener := cfg.Listener
	if listener == nil {
		listener = types.NoopListener{}
	}

	started := time.Now()
	results.Started = started
	exhausted := false

	publish(ctx)
	defer func() {
		results.Completed = time.Now()
		safeBeginEnd{listener}.EndEvaluation()
		clear()

		recordMetrics(results, err, exhausted, results.Duration().Seconds())

		if err != nil {
			return
		}
		switch {
		case exhausted:
			err = types.ErrExhausted
		case results.TotalEvaluated == 0 && cfg.ThrowOnNoRules:
			err = types.ErrNoRulesEvaluated
		case results.ViolationCount() > 0 && cfg.ThrowOnValidation:
			err = types.ErrViolationsExist
		}
	}()

	for _, fact := range facts {
		if _, addErr := fs.Add(fact); addErr != nil {
			return results, addErr
		}
	}

	safeBeginEnd{listener}.BeginEvaluation()

	p := plan.New(fs, e.rb, cfg.Namespaces)
	te := evaluator.New(e.rb, fs, cfg.Namespaces, cfg, results, started, ctx)

	for {
		item, ok := p.Next()
		if !ok {
			break
		}

		tuple := fs.TupleOf(item.Selectors)
		factTypes := resolveTypes(fs, item.Signature)

		ctx.setCurrent(tuple, item.Selectors)
		outcome, fireErr := te.Fire(item.Signature, item.Selectors, tuple, factTypes, listener)
		if fireErr != nil {
			var engErr *types.EngineError
			if errors.As(fireErr, &engErr) {
				return results, engErr.Err
			}
			return results, fireErr
		}
		if outcome.Exhausted || outcome.MaxViolations {
			exhausted = true
			break
		}
		if outcome.ModificationsOccurred || outcome.InsertionsOccurred {
			safeDebug{listener}.Debug("replanning after tuple %v (modified=%v inserted=%v)", item.Selectors, outcome.ModificationsOccurred, outcome.InsertionsOccurred)
			p.Rebuild()
		}
	}

	return results, nil
}

func resolveTypes(fs *factspace.FactSpace, sig types.Signature) []reflect.Type {
	slots := sig.Types()
	out := make([]reflect.Type, len(slots))
	for i, slot := range slots {
		rt, _ := fs.Index().TypeOf(slot)
		out[i] = rt
	}
	return out
}

// SessionOption configures a single Evaluate call's Context before the
// session begins, e.g. preloading Lookup tables.
type SessionOption func(*Context)

// WithLookupTable preloads a named table consequences can read via
// EvaluationContext.Lookup during this session.
func WithLookupTable(name string, table map[string]interface{}) SessionOption {
	return func(c *Context) { c.RegisterLookup(name, table) }
}

// safeBeginEnd wraps the two whole-evaluation Listener hooks so a
// misbehaving Listener can never abort a session.
type safeBeginEnd struct {
	types.Listener
}

func (s safeBeginEnd) BeginEvaluation() {
	defer func() { recover() }()
	s.Listener.BeginEvaluation()
}

func (s safeBeginEnd) EndEvaluation() {
	defer func() { recover() }()
	s.Listener.EndEvaluation()
}

// safeDebug wraps the driver-level Debug hook (invoked on replan, outside
// the per-tuple evaluator) so a misbehaving Listener can never abort
// evaluation.
type safeDebug struct {
	types.Listener
}

func (s safeDebug) Debug(template string, args ...interface{}) {
	defer func() { recover() }()
	s.Listener.Debug(template, args...)
}
