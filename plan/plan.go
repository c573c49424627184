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

// Package plan enumerates candidate tuples over the current fact space as
// prioritized work items: variations with repetition over active
// type-slots, filtered by rule-base applicability, expanded into the
// cartesian product of matching facts, and queued arity-ascending.
package plan

import (
	"reflect"

	"prodrule/factspace"
	"prodrule/rulebase"
	"prodrule/types"
)

// WorkItem is one candidate tuple awaiting evaluation: its shape
// (Signature) and the selectors bound to each position, in order.
type WorkItem struct {
	Signature types.Signature
	Selectors []types.Selector
}

// issuedKey is the (signature, selector-encoding) pair that work-item
// uniqueness is keyed on (spec's "Work uniqueness" property).
type issuedKey struct {
	sig types.Signature
	enc factspace.Encoding
}

// EvaluationPlan enumerates and queues candidate tuples. Rebuild is
// additive: a persistent issued-selector-encoding set means only new work
// is ever enqueued, so replanning after a fact mutation never re-issues
// already-seen tuples.
type EvaluationPlan struct {
	fs         *factspace.FactSpace
	rb         *rulebase.RuleBase
	namespaces []string

	issued  map[issuedKey]struct{}
	buckets [types.MaxArity + 1][]WorkItem
}

// New builds a plan over fs/rb restricted to namespaces (empty means all
// namespaces) and performs the initial enumeration.
func New(fs *factspace.FactSpace, rb *rulebase.RuleBase, namespaces []string) *EvaluationPlan {
	p := &EvaluationPlan{
		fs:         fs,
		rb:         rb,
		namespaces: namespaces,
		issued:     make(map[issuedKey]struct{}),
	}
	p.Rebuild()
	return p
}

// Rebuild re-runs the enumeration algorithm over the fact space's current
// type index. Only work items not already issued this session are
// enqueued.
func (p *EvaluationPlan) Rebuild() {
	maxArity := p.rb.MaxArity()
	if maxArity > types.MaxArity {
		maxArity = types.MaxArity
	}
	activeSlots := p.fs.Types()
	if len(activeSlots) == 0 || maxArity == 0 {
		return
	}

	for k := 1; k <= maxArity; k++ {
		p.enumerateArity(activeSlots, k)
	}
}

// enumerateArity generates every variation-with-repetition of length k over
// activeSlots (in activeSlots' order, which is deterministic: type-slot
// assignment order), skips shapes the rule base has nothing for, and
// expands the rest into their cartesian product of bound selectors.
func (p *EvaluationPlan) enumerateArity(activeSlots []types.TypeSlot, k int) {
	combo := make([]types.TypeSlot, k)
	var recurse func(pos int)
	recurse = func(pos int) {
		if pos == k {
			p.considerShape(combo)
			return
		}
		for _, slot := range activeSlots {
			combo[pos] = slot
			recurse(pos + 1)
		}
	}
	recurse(0)
}

// considerShape checks whether the rule base has anything for the given
// type-slot sequence and, if so, enqueues the cartesian product of bound
// selectors for that shape.
func (p *EvaluationPlan) considerShape(slots []types.TypeSlot) {
	factTypes := make([]reflect.Type, len(slots))
	for i, slot := range slots {
		rt, ok := p.fs.Index().TypeOf(slot)
		if !ok {
			return
		}
		factTypes[i] = rt
	}
	if !p.rb.HasRules(factTypes, p.namespaces) {
		return
	}

	sig := types.NewSignature(slots...)
	selLists := make([][]types.Selector, len(slots))
	for i, slot := range slots {
		selLists[i] = p.fs.SelectorsOf(slot)
		if len(selLists[i]) == 0 {
			return
		}
	}

	arity := len(slots)
	combo := make([]types.Selector, arity)
	var recurse func(pos int)
	recurse = func(pos int) {
		if pos == arity {
			p.issue(sig, combo)
			return
		}
		for _, sel := range selLists[pos] {
			combo[pos] = sel
			recurse(pos + 1)
		}
	}
	recurse(0)
}

func (p *EvaluationPlan) issue(sig types.Signature, selectors []types.Selector) {
	enc := factspace.Encode(selectors)
	key := issuedKey{sig: sig, enc: enc}
	if _, seen := p.issued[key]; seen {
		return
	}
	p.issued[key] = struct{}{}

	owned := append([]types.Selector(nil), selectors...)
	item := WorkItem{Signature: sig, Selectors: owned}
	arity := sig.Arity()
	p.buckets[arity] = append(p.buckets[arity], item)
}

// Next dequeues the next work item in priority order: lower arity before
// higher, enumeration order within an arity. Returns ok == false when the
// plan is drained.
func (p *EvaluationPlan) Next() (WorkItem, bool) {
	for arity := 1; arity <= types.MaxArity; arity++ {
		if len(p.buckets[arity]) == 0 {
			continue
		}
		item := p.buckets[arity][0]
		p.buckets[arity] = p.buckets[arity][1:]
		return item, true
	}
	return WorkItem{}, false
}

// Drained reports whether every bucket is currently empty.
func (p *EvaluationPlan) Drained() bool {
	for arity := 1; arity <= types.MaxArity; arity++ {
		if len(p.buckets[arity]) > 0 {
			return false
		}
	}
	return true
}
