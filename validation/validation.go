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

// Package validation specializes the engine for validation workloads: rules
// that never mutate the fact graph, only raise Info/Warning/Violation
// events, with results reshaped for "is this batch of facts valid" callers.
package validation

import (
	"prodrule/engine"
	"prodrule/types"
)

// ValidationResult summarizes a validation run: whether it passed, and its
// events grouped by the group the firing rule assigned them to.
type ValidationResult struct {
	IsValid           bool
	ViolationsByGroup map[string][]types.RuleEvent
	WarningsByGroup   map[string][]types.RuleEvent
	InfoByGroup       map[string][]types.RuleEvent
	Results           *types.EvaluationResults
}

// Validator runs a RuleSet in validation mode: ThrowOnValidation is always
// disabled internally (a caller validating a batch wants every violation
// collected, not just the first), and the result is reshaped into
// ValidationResult instead of requiring the caller to walk EventSet.
type Validator struct {
	rs *engine.RuleSet
}

// NewValidator wraps rs for validation use.
func NewValidator(rs *engine.RuleSet) *Validator {
	return &Validator{rs: rs}
}

// Validate runs facts through the wrapped RuleSet and groups the resulting
// events by category and group. A hard error from the underlying Evaluate
// (anything other than the violations-exist condition, which this package
// always suppresses) still propagates.
func (v *Validator) Validate(facts []types.Fact, opts ...engine.SessionOption) (ValidationResult, error) {
	results, err := v.rs.Validate(facts, opts...)
	if err != nil {
		return ValidationResult{}, err
	}

	out := ValidationResult{
		IsValid:           true,
		ViolationsByGroup: make(map[string][]types.RuleEvent),
		WarningsByGroup:   make(map[string][]types.RuleEvent),
		InfoByGroup:       make(map[string][]types.RuleEvent),
		Results:           results,
	}
	for _, ev := range results.Events.Slice() {
		switch ev.Category {
		case types.CategoryViolation:
			out.IsValid = false
			out.ViolationsByGroup[ev.Group] = append(out.ViolationsByGroup[ev.Group], ev)
		case types.CategoryWarning:
			out.WarningsByGroup[ev.Group] = append(out.WarningsByGroup[ev.Group], ev)
		default:
			out.InfoByGroup[ev.Group] = append(out.InfoByGroup[ev.Group], ev)
		}
	}
	return out, nil
}
