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

import "errors"

// Sentinel error kinds surfaced to callers. Use errors.Is to test for a
// specific kind; the engine returns these values as they are, without
// wrapping them.
var (
	// ErrCapacityExceeded means more than MaxActiveSelectors facts were
	// concurrently active in one session. Fatal; aborts evaluation.
	ErrCapacityExceeded = errors.New("prodrule: capacity exceeded")

	// ErrExhausted means the evaluation-count or wall-clock budget was
	// exceeded. Surfaced at the end of Evaluate; partial results are still
	// returned alongside the error.
	ErrExhausted = errors.New("prodrule: evaluation exhausted")

	// ErrNoRulesEvaluated means the rule base had nothing to evaluate for
	// the supplied fact types/namespaces, and the caller asked to be told.
	ErrNoRulesEvaluated = errors.New("prodrule: no rules evaluated")

	// ErrViolationsExist means at least one Violation-category event was
	// recorded, and the caller asked to be told.
	ErrViolationsExist = errors.New("prodrule: violations exist")

	// ErrLookupMissing means a rule consequence asked for a lookup key or
	// table name that was never registered. Propagates out of Fire and
	// aborts evaluation.
	ErrLookupMissing = errors.New("prodrule: lookup missing")

	// ErrInvalidArgument covers null facts, empty templates, and other
	// caller errors that are not recoverable.
	ErrInvalidArgument = errors.New("prodrule: invalid argument")
)

// EngineError wraps an error raised while evaluating a specific tuple,
// carrying enough context to diagnose which rule and facts were involved.
type EngineError struct {
	RuleName string
	Tuple    Tuple
	Err      error
}

func (e *EngineError) Error() string {
	return "prodrule: rule " + e.RuleName + ": " + e.Err.Error()
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewEngineError builds an EngineError for the given rule/tuple/cause.
func NewEngineError(ruleName string, tuple Tuple, err error) *EngineError {
	return &EngineError{RuleName: ruleName, Tuple: tuple, Err: err}
}
