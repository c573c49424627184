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

package types

// EvaluationContext is what a firing rule's consequence sees, reached via
// ambient (goroutine-local) storage rather than a parameter on Fire/
// Evaluate — see the engine package's internal/gls-backed implementation.
// Insert/Modify/Retract are the only path by which the engine observes
// fact-graph changes; mutating a fact's fields without calling one of
// these will not trigger re-planning, by contract.
type EvaluationContext interface {
	// Insert admits fact as a brand-new fact. If fact is already part of
	// the currently firing tuple, behavior is equivalent to a no-op
	// (facts are idempotent by reference).
	Insert(fact Fact) error
	// Modify signals that fact (which must be part of the currently
	// firing tuple) has been mutated in place; it invalidates the
	// tuple's current selector and mints a new one for the same
	// identity. A fact not in the current tuple is silently ignored.
	Modify(fact Fact) error
	// Retract removes fact (which must be part of the currently firing
	// tuple) from the live fact space. A fact not in the current tuple
	// is silently ignored.
	Retract(fact Fact) error
	// Event formats and deduplicates a RuleEvent for the currently
	// firing rule.
	Event(category Category, group, template string, args ...interface{}) error
	// Affirm/Veto adjust the session score.
	Affirm(n int)
	Veto(n int)
	// Lookup reads a caller-preloaded table. The zero-value/false result
	// is returned (not an error) so callers can choose whether a miss is
	// fatal; a rule that requires the key to exist should treat a false
	// ok as ErrLookupMissing.
	Lookup(name, key string) (interface{}, bool)
	// Shared is free-form scratch state visible to every rule in this
	// session.
	Shared() map[string]interface{}
}

// RunContext is the minimal surface the evaluator package needs from the
// engine's live EvaluationContext, kept here (rather than in engine) so
// evaluator does not need to import engine.
type RunContext interface {
	// SetCurrentRule records which rule is presently firing, so that
	// EvaluationContext.Event attributes its events to that rule.
	SetCurrentRule(name string)
	// ResetModifications clears the per-rule modification/insertion
	// flags before a rule fires.
	ResetModifications()
	// ModificationsOccurred reports whether Modify or Retract was called
	// during the most recent Fire.
	ModificationsOccurred() bool
	// InsertionsOccurred reports whether Insert was called during the
	// most recent Fire.
	InsertionsOccurred() bool
}
