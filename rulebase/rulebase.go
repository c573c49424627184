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

// Package rulebase implements the indexed rule catalogue: a two-phase
// (mutable, then sealed) store mapping fact-type signatures to the rules
// that might fire on them, with polymorphic (assignability-based) type
// matching.
package rulebase

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"prodrule/types"
)

// RuleBase is mutable while rules are added via AddRules, and sealed
// exactly once via Seal. After sealing, every read path is immutable and
// safe to share across concurrent Evaluate calls (the only component in
// this repository with that property).
type RuleBase struct {
	mu    sync.Mutex
	rules []types.Rule

	sealOnce sync.Once
	sealed   atomic.Bool

	byArity  [types.MaxArity + 1][]types.Rule
	maxArity int

	cacheMu sync.RWMutex
	cache   map[cacheKey][]types.Rule
}

// New returns an empty, mutable RuleBase.
func New() *RuleBase {
	return &RuleBase{cache: make(map[cacheKey][]types.Rule)}
}

// AddRules registers rules under their own declared (namespace, fact_types)
// key. AddRules panics if called after Seal, since the catalogue is
// immutable from that point on.
func (rb *RuleBase) AddRules(rules ...types.Rule) {
	if rb.sealed.Load() {
		panic("prodrule: AddRules called after Seal")
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for _, r := range rules {
		arity := r.Arity()
		if arity < 1 || arity > types.MaxArity {
			panic("prodrule: rule arity must be in [1,4]: " + r.Name())
		}
		rb.rules = append(rb.rules, r)
	}
}

// Seal builds the acceleration structures (per-arity rule buckets, in
// insertion order) and makes the catalogue read-only. Seal is idempotent
// and safe to call concurrently from multiple goroutines (double-checked
// publish via sync.Once + atomic.Bool, mirroring the teacher's
// hot-swap-publish idiom at a coarser, one-shot grain).
func (rb *RuleBase) Seal() {
	rb.sealOnce.Do(func() {
		rb.mu.Lock()
		defer rb.mu.Unlock()
		for _, r := range rb.rules {
			a := r.Arity()
			rb.byArity[a] = append(rb.byArity[a], r)
			if a > rb.maxArity {
				rb.maxArity = a
			}
		}
		rb.sealed.Store(true)
	})
}

// MaxArity reports the highest arity among registered rules (0..4).
func (rb *RuleBase) MaxArity() int {
	return rb.maxArity
}

type cacheKey struct {
	types string
	ns    string
}

func signatureKey(factTypes []reflect.Type) string {
	var b strings.Builder
	for i, t := range factTypes {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(t.PkgPath())
		b.WriteByte('.')
		b.WriteString(t.String())
	}
	return b.String()
}

func namespaceKey(namespaces []string) string {
	if len(namespaces) == 0 {
		return ""
	}
	sorted := append([]string(nil), namespaces...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// FindRules returns every rule whose declared fact types polymorphically
// match factTypes (same arity; each position's declared type is
// AssignableTo by the concrete position type) and whose namespace is
// included in namespaces (an empty namespaces slice means "all
// namespaces"). Results are cached by (signature, namespaces) so repeated
// lookups for a contiguous run of same-shape tuples cost one map read.
func (rb *RuleBase) FindRules(factTypes []reflect.Type, namespaces []string) []types.Rule {
	key := cacheKey{types: signatureKey(factTypes), ns: namespaceKey(namespaces)}

	rb.cacheMu.RLock()
	if cached, ok := rb.cache[key]; ok {
		rb.cacheMu.RUnlock()
		return cached
	}
	rb.cacheMu.RUnlock()

	arity := len(factTypes)
	var matched []types.Rule
	if arity >= 0 && arity <= types.MaxArity {
		candidates := rb.byArity[arity]
		for _, r := range candidates {
			if !namespaceAllowed(r.Namespace(), namespaces) {
				continue
			}
			if typesMatch(r.FactTypes(), factTypes) {
				matched = append(matched, r)
			}
		}
	}

	rb.cacheMu.Lock()
	rb.cache[key] = matched
	rb.cacheMu.Unlock()

	return matched
}

// HasRules is a fast-path existence check used by the planner to prune
// signatures with no applicable rules before doing any enumeration work.
func (rb *RuleBase) HasRules(factTypes []reflect.Type, namespaces []string) bool {
	return len(rb.FindRules(factTypes, namespaces)) > 0
}

func namespaceAllowed(ns string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == ns {
			return true
		}
	}
	return false
}

func typesMatch(declared, concrete []reflect.Type) bool {
	if len(declared) != len(concrete) {
		return false
	}
	for i := range declared {
		if concrete[i] == nil || !concrete[i].AssignableTo(declared[i]) {
			return false
		}
	}
	return true
}
