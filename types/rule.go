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

import (
	"reflect"
	"time"
)

// Rule is the opaque contract the engine consumes. The fluent
// condition/consequence builder (see the builder package) is a thin
// surface that lowers to this interface; the engine never introspects a
// Rule beyond these methods.
type Rule interface {
	// Name uniquely identifies the rule within its Namespace.
	Name() string
	// Namespace groups rules for optional filtering; "" is the default
	// namespace.
	Namespace() string
	// Salience is the firing priority. Higher values fire earlier among
	// rules matched on the same tuple (see evaluator package).
	Salience() int
	// Mutex names a mutual-exclusion group; "" means the rule is not
	// mutexed. At most one rule per mutex name may fire per session.
	Mutex() string
	// FiresOnce reports whether the rule may fire at most once per
	// (rule, identity of the tuple it matched).
	FiresOnce() bool
	// Inception and Expiration bound when the rule is eligible to fire.
	// A zero time means unbounded.
	Inception() time.Time
	Expiration() time.Time
	// Arity is len(FactTypes()); declared explicitly so callers don't need
	// to allocate a slice just to learn the count.
	Arity() int
	// FactTypes returns the ordered, declared fact types the rule matches
	// against. Matching is polymorphic: a tuple position matches if its
	// concrete type is assignable to the declared type (see rulebase).
	FactTypes() []reflect.Type
	// Evaluate is a pure predicate over the bound tuple; it may read
	// lookup tables and shared state but must not mutate the fact space.
	Evaluate(tuple Tuple) bool
	// Fire executes the rule's consequence. It may call Insert/Modify/
	// Retract/Event/Affirm/Veto through the ambient EvaluationContext
	// (see the engine package), which is what makes forward chaining
	// possible.
	Fire(tuple Tuple) error
}

// Category classifies a RuleEvent.
type Category string

const (
	CategoryInfo      Category = "Info"
	CategoryWarning   Category = "Warning"
	CategoryViolation Category = "Violation"
)

// RuleEvent is a record produced by a rule's consequence. Events are
// deduplicated by (Category, RuleName, Group, Template); FormattedMessage
// is carried alongside but is not part of identity.
type RuleEvent struct {
	Category         Category
	Group            string
	RuleName         string
	Template         string
	FormattedMessage string
}

// dedupKey is the identity tuple events are deduplicated by.
type dedupKey struct {
	category Category
	ruleName string
	group    string
	template string
}

func (e RuleEvent) key() dedupKey {
	return dedupKey{e.Category, e.RuleName, e.Group, e.Template}
}

// EventSet is a set of RuleEvents keyed by their dedup identity. Order of
// emission is not part of the contract; iterate via Slice for a stable,
// insertion-ordered view.
type EventSet struct {
	order []dedupKey
	byKey map[dedupKey]RuleEvent
}

// NewEventSet returns an empty EventSet.
func NewEventSet() *EventSet {
	return &EventSet{byKey: make(map[dedupKey]RuleEvent)}
}

// Add inserts e if no event with the same dedup identity is already
// present. Returns true if the event was newly added.
func (s *EventSet) Add(e RuleEvent) bool {
	k := e.key()
	if _, exists := s.byKey[k]; exists {
		return false
	}
	s.byKey[k] = e
	s.order = append(s.order, k)
	return true
}

// Len reports the number of distinct events recorded.
func (s *EventSet) Len() int { return len(s.order) }

// Slice returns the events in insertion order.
func (s *EventSet) Slice() []RuleEvent {
	out := make([]RuleEvent, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// CountByCategory reports how many recorded events carry the given
// category.
func (s *EventSet) CountByCategory(c Category) int {
	n := 0
	for _, k := range s.order {
		if s.byKey[k].Category == c {
			n++
		}
	}
	return n
}
