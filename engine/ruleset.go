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
	"prodrule/rulebase"
	"prodrule/types"
)

// RuleSet is the everyday entry point: a named, reusable bundle of rules
// and default Config, sealed once and shared across every Evaluate call it
// serves.
type RuleSet struct {
	name   string
	rb     *rulebase.RuleBase
	engine *Engine
	base   types.Config
}

// NewRuleSet builds a RuleSet named name from rules, applying base as the
// default Config for every Evaluate call (individual calls may still
// override it).
func NewRuleSet(name string, base types.Config, rules ...types.Rule) *RuleSet {
	rb := rulebase.New()
	rb.AddRules(rules...)
	rb.Seal()
	return &RuleSet{
		name:   name,
		rb:     rb,
		engine: New(rb),
		base:   base,
	}
}

// Name returns the RuleSet's name.
func (rs *RuleSet) Name() string { return rs.name }

// Evaluate runs one session against facts using the RuleSet's default
// Config with ThrowOnNoRules forced off, per spec.md §6: this convenience
// never raises ErrNoRulesEvaluated, even if the RuleSet's base Config asked
// for it.
func (rs *RuleSet) Evaluate(facts []types.Fact, opts ...SessionOption) (*types.EvaluationResults, error) {
	cfg := rs.base
	cfg.ThrowOnNoRules = false
	return rs.engine.Evaluate(cfg, facts, opts...)
}

// EvaluateWith runs one session using an explicit Config instead of the
// RuleSet's default.
func (rs *RuleSet) EvaluateWith(cfg types.Config, facts []types.Fact, opts ...SessionOption) (*types.EvaluationResults, error) {
	return rs.engine.Evaluate(cfg, facts, opts...)
}

// Validate runs facts through the RuleSet with ThrowOnValidation disabled
// (violations are collected, never raised as an error) and returns the
// session's EvaluationResults. It is the convenience entry point the
// validation package's Validator builds on to produce a ValidationResult.
func (rs *RuleSet) Validate(facts []types.Fact, opts ...SessionOption) (*types.EvaluationResults, error) {
	cfg := rs.base
	cfg.ThrowOnValidation = false
	return rs.engine.Evaluate(cfg, facts, opts...)
}
