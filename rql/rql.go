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

// Package rql is a small resource-query filter DSL used to pre-select
// which facts a rule should even be offered: a compile-once,
// evaluate-many boolean expression over a fact's fields, the same shape
// as a rule's Evaluate but expressible as a string instead of Go code
// (e.g. for rules whose condition is configured at runtime rather than
// compiled in).
package rql

import (
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/fatih/structs"

	"prodrule/types"
)

// Predicate is a compiled boolean expression over a flattened fact.
type Predicate struct {
	source  string
	program *vm.Program
}

// Compile compiles source into a reusable Predicate. source must evaluate
// to a boolean; field access is by struct field name (facts are flattened
// with github.com/fatih/structs), e.g. "Temperature > 50 && Zone == 'A'".
// Undefined variables are permitted at compile time and evaluate to nil, so
// the same predicate compiles for facts of different shapes; an operation
// on such a nil value (e.g. comparing it to a number) makes Match return an
// error.
func Compile(source string) (*Predicate, error) {
	program, err := expr.Compile(source, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return &Predicate{source: source, program: program}, nil
}

// Source returns the expression text the Predicate was compiled from.
func (p *Predicate) Source() string { return p.source }

// Match evaluates the predicate against fact. Non-struct facts (maps,
// scalars) are passed through as-is under the "value" key.
func (p *Predicate) Match(fact types.Fact) (bool, error) {
	env := flatten(fact)
	out, err := vm.Run(p.program, env)
	if err != nil {
		return false, err
	}
	result, ok := out.(bool)
	if !ok {
		return false, types.ErrInvalidArgument
	}
	return result, nil
}

// Filter returns the subset of facts for which Match is true. Facts that
// fail to evaluate (type mismatch against the expression) are treated as
// non-matching rather than aborting the scan.
func (p *Predicate) Filter(facts []types.Fact) []types.Fact {
	var out []types.Fact
	for _, f := range facts {
		if ok, err := p.Match(f); err == nil && ok {
			out = append(out, f)
		}
	}
	return out
}

// flatten produces the expr evaluation environment for fact: struct (or
// pointer-to-struct) facts are flattened field-by-field via
// github.com/fatih/structs; map facts are used directly; anything else is
// exposed under a single "value" key.
func flatten(fact types.Fact) map[string]interface{} {
	if fact == nil {
		return map[string]interface{}{}
	}
	if m, ok := fact.(map[string]interface{}); ok {
		return m
	}

	rv := reflect.ValueOf(fact)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return map[string]interface{}{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		return structs.Map(rv.Interface())
	}
	return map[string]interface{}{"value": fact}
}
