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

// Package types defines the core contracts of the rule engine: facts,
// rules, events, results, the listener protocol, and engine configuration.
// Nothing in this package depends on the engine, plan, or evaluator
// packages — those consume types defined here.
package types

import "reflect"

// Fact is an opaque, caller-owned value under evaluation. The engine never
// copies a fact; it is stored and compared by reference identity.
type Fact = interface{}

// Identity is the dense integer assigned to a fact the moment it is added
// to a FactSpace. Identity is never reused within a session and survives
// retraction, so correlating events with a long-retracted fact stays
// possible.
type Identity uint32

// Selector is the dense integer assigned to an active binding of a fact.
// Modify invalidates the current selector and mints a new one for the same
// identity; retract simply removes the selector from the live mapping.
// Selector is 16 bits wide so four of them pack into a 64-bit
// SelectorEncoding (see factspace.Encode).
type Selector uint16

// InvalidSelector is never assigned to a real binding; it is returned by
// lookups that found nothing live.
const InvalidSelector Selector = 0

// MaxActiveSelectors is the hard cap on concurrently active selectors in a
// single session (spec: "At most 65,535 active selectors per session").
const MaxActiveSelectors = 65535

// TypeSlot is the dense index (0..255) a FactSpace's TypeIndex assigns the
// first time it observes a given fact type. It appears, in order, inside a
// Signature.
type TypeSlot uint8

// MaxArity bounds how many facts a single rule may match against at once.
const MaxArity = 4

// Signature packs the type-slots of a candidate tuple, in positional order,
// together with the arity actually populated (slot 0 is a legitimate
// type-slot, so arity cannot be inferred from a zero-value sentinel). Two
// tuples with the same shape share a Signature and therefore a cached rule
// set. Signature is a plain comparable value, safe to use as a map key.
type Signature struct {
	Slots [MaxArity]TypeSlot
	N     int
}

// NewSignature builds a Signature from the given type-slots, in order.
func NewSignature(slots ...TypeSlot) Signature {
	var sig Signature
	sig.N = len(slots)
	copy(sig.Slots[:], slots)
	return sig
}

// Arity reports how many positions of the signature are populated.
func (s Signature) Arity() int { return s.N }

// Types returns the populated type-slots, in positional order.
func (s Signature) Types() []TypeSlot { return s.Slots[:s.N] }

// IdentityKey is a fixed-size, comparable key built from a tuple's
// underlying identities (not selectors — identities survive Modify, which
// is exactly what makes fire-once tracking by identity meaningful: a
// fire-once rule must not re-fire on the same logical fact binding just
// because it was modified and re-planned under a new selector).
type IdentityKey [MaxArity]Identity

// NewIdentityKey builds an IdentityKey from the given identities, in
// order. Unused trailing positions are zero, which is safe because
// identity numbering starts at 1.
func NewIdentityKey(ids []Identity) IdentityKey {
	var k IdentityKey
	copy(k[:], ids)
	return k
}

// Tuple is an ordered binding of live facts matching a rule's declared
// arity. An empty Tuple (len == 0) is the sentinel FactSpace returns when
// one of the selectors behind the tuple has since been invalidated; callers
// must treat it as "skip this work item".
type Tuple []Fact

// Empty reports whether t is the empty-tuple sentinel.
func (t Tuple) Empty() bool { return len(t) == 0 }

// typeOf resolves the reflect.Type used for type-slot assignment and
// polymorphic matching. Facts are always concrete values or pointers;
// reflect.TypeOf(nil) is never a valid fact.
func typeOf(fact Fact) reflect.Type {
	return reflect.TypeOf(fact)
}

// TypeOf is the exported form of typeOf, used by packages outside types
// that need to resolve a fact's reflect.Type the same way the FactSpace
// does (the rule base's polymorphic matching, for instance).
func TypeOf(fact Fact) reflect.Type {
	return typeOf(fact)
}
