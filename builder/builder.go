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

// Package builder is a fluent surface for constructing types.Rule values
// without hand-writing a struct for every rule: NewRule(name).For(types...)
// .When(cond).Then(fire).Build(). It lowers directly to types.Rule; the
// engine never knows a rule was built this way.
package builder

import (
	"errors"
	"reflect"
	"time"

	"prodrule/types"
)

// Builder accumulates a rule's declaration via chained calls, then
// produces a types.Rule with Build.
type Builder struct {
	name       string
	namespace  string
	salience   int
	mutex      string
	firesOnce  bool
	inception  time.Time
	expiration time.Time
	factTypes  []reflect.Type
	evaluate   func(types.Tuple) bool
	fire       func(types.Tuple) error
	buildErr   error
}

// NewRule starts a Builder for a rule named name.
func NewRule(name string) *Builder {
	return &Builder{name: name, evaluate: func(types.Tuple) bool { return true }}
}

// Namespace sets the rule's namespace; the default is "".
func (b *Builder) Namespace(ns string) *Builder {
	b.namespace = ns
	return b
}

// For declares the fact types this rule matches against, in order. Each
// type may be a concrete struct/pointer type or an interface type; the
// rule base matches polymorphically via reflect.Type.AssignableTo.
func (b *Builder) For(factTypes ...reflect.Type) *Builder {
	b.factTypes = factTypes
	return b
}

// Salience sets the rule's firing priority; higher fires first among
// rules matched on the same tuple. Default is 0.
func (b *Builder) Salience(n int) *Builder {
	b.salience = n
	return b
}

// Mutex names a mutual-exclusion group; at most one rule sharing a mutex
// name fires per session.
func (b *Builder) Mutex(name string) *Builder {
	b.mutex = name
	return b
}

// FiresOnce marks the rule as eligible to fire at most once per distinct
// tuple identity per session.
func (b *Builder) FiresOnce() *Builder {
	b.firesOnce = true
	return b
}

// Between bounds when the rule is eligible to fire. A zero time for either
// bound means unbounded on that side.
func (b *Builder) Between(inception, expiration time.Time) *Builder {
	b.inception = inception
	b.expiration = expiration
	return b
}

// When sets the rule's condition predicate. The default condition, if When
// is never called, always matches.
func (b *Builder) When(cond func(types.Tuple) bool) *Builder {
	b.evaluate = cond
	return b
}

// Then sets the rule's consequence.
func (b *Builder) Then(fire func(types.Tuple) error) *Builder {
	b.fire = fire
	return b
}

// Build validates the accumulated declaration and returns a types.Rule.
func (b *Builder) Build() (types.Rule, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	if b.name == "" {
		return nil, errors.New("prodrule: rule built with no name")
	}
	arity := len(b.factTypes)
	if arity < 1 || arity > types.MaxArity {
		return nil, errors.New("prodrule: rule " + b.name + " must declare 1-4 fact types, got " + itoa(arity))
	}
	if b.fire == nil {
		return nil, errors.New("prodrule: rule " + b.name + " has no consequence (call Then)")
	}
	return &rule{
		name:       b.name,
		namespace:  b.namespace,
		salience:   b.salience,
		mutex:      b.mutex,
		firesOnce:  b.firesOnce,
		inception:  b.inception,
		expiration: b.expiration,
		factTypes:  append([]reflect.Type(nil), b.factTypes...),
		evaluate:   b.evaluate,
		fire:       b.fire,
	}, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// rule is the concrete types.Rule a Builder produces.
type rule struct {
	name       string
	namespace  string
	salience   int
	mutex      string
	firesOnce  bool
	inception  time.Time
	expiration time.Time
	factTypes  []reflect.Type
	evaluate   func(types.Tuple) bool
	fire       func(types.Tuple) error
}

func (r *rule) Name() string                   { return r.name }
func (r *rule) Namespace() string              { return r.namespace }
func (r *rule) Salience() int                  { return r.salience }
func (r *rule) Mutex() string                  { return r.mutex }
func (r *rule) FiresOnce() bool                { return r.firesOnce }
func (r *rule) Inception() time.Time           { return r.inception }
func (r *rule) Expiration() time.Time          { return r.expiration }
func (r *rule) Arity() int                     { return len(r.factTypes) }
func (r *rule) FactTypes() []reflect.Type      { return r.factTypes }
func (r *rule) Evaluate(tuple types.Tuple) bool { return r.evaluate(tuple) }
func (r *rule) Fire(tuple types.Tuple) error   { return r.fire(tuple) }

var _ types.Rule = (*rule)(nil)
