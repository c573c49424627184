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

package factspace

import (
	"reflect"

	"prodrule/types"
)

// bucket is the ordered sequence of active selectors currently bound to
// facts of one type.
type bucket struct {
	slot      types.TypeSlot
	selectors []types.Selector
	pos       map[types.Selector]int
}

func newBucket(slot types.TypeSlot) *bucket {
	return &bucket{slot: slot, pos: make(map[types.Selector]int)}
}

func (b *bucket) append(sel types.Selector) {
	b.pos[sel] = len(b.selectors)
	b.selectors = append(b.selectors, sel)
}

// replace swaps the selector at oldSel's position for newSel, preserving
// the fact's place in the bucket. This is the mechanism by which Modify
// invalidates a selector without disturbing enumeration order.
func (b *bucket) replace(oldSel, newSel types.Selector) bool {
	i, ok := b.pos[oldSel]
	if !ok {
		return false
	}
	b.selectors[i] = newSel
	delete(b.pos, oldSel)
	b.pos[newSel] = i
	return true
}

func (b *bucket) remove(sel types.Selector) bool {
	i, ok := b.pos[sel]
	if !ok {
		return false
	}
	last := len(b.selectors) - 1
	b.selectors[i] = b.selectors[last]
	b.pos[b.selectors[i]] = i
	b.selectors = b.selectors[:last]
	delete(b.pos, sel)
	return true
}

// TypeIndex assigns a dense type-slot (0..255) the first time it observes a
// reflect.Type, and tracks the ordered set of active selectors per slot.
type TypeIndex struct {
	slotOf  map[reflect.Type]types.TypeSlot
	typeOf  map[types.TypeSlot]reflect.Type
	buckets map[types.TypeSlot]*bucket
	next    int
}

// NewTypeIndex returns an empty TypeIndex.
func NewTypeIndex() *TypeIndex {
	return &TypeIndex{
		slotOf:  make(map[reflect.Type]types.TypeSlot),
		typeOf:  make(map[types.TypeSlot]reflect.Type),
		buckets: make(map[types.TypeSlot]*bucket),
	}
}

// SlotFor returns the type-slot for rt, assigning a new one if rt has never
// been observed. Returns an error if the index would overflow 256 slots.
func (ti *TypeIndex) SlotFor(rt reflect.Type) (types.TypeSlot, error) {
	if slot, ok := ti.slotOf[rt]; ok {
		return slot, nil
	}
	if ti.next > 255 {
		return 0, errTooManyTypes
	}
	slot := types.TypeSlot(ti.next)
	ti.next++
	ti.slotOf[rt] = slot
	ti.typeOf[slot] = rt
	ti.buckets[slot] = newBucket(slot)
	return slot, nil
}

// LookupSlot returns the type-slot for rt without assigning a new one.
func (ti *TypeIndex) LookupSlot(rt reflect.Type) (types.TypeSlot, bool) {
	slot, ok := ti.slotOf[rt]
	return slot, ok
}

// TypeOf returns the reflect.Type registered at slot.
func (ti *TypeIndex) TypeOf(slot types.TypeSlot) (reflect.Type, bool) {
	rt, ok := ti.typeOf[slot]
	return rt, ok
}

// Add registers sel as an active binding of type-slot slot.
func (ti *TypeIndex) Add(slot types.TypeSlot, sel types.Selector) {
	ti.buckets[slot].append(sel)
}

// Replace moves a binding from oldSel to newSel within slot's bucket,
// preserving enumeration order (used by Modify).
func (ti *TypeIndex) Replace(slot types.TypeSlot, oldSel, newSel types.Selector) {
	ti.buckets[slot].replace(oldSel, newSel)
}

// Remove drops sel from slot's bucket (used by Retract).
func (ti *TypeIndex) Remove(slot types.TypeSlot, sel types.Selector) {
	ti.buckets[slot].remove(sel)
}

// Selectors returns the ordered, active selectors currently bound to
// slot's type. The returned slice must not be mutated by the caller.
func (ti *TypeIndex) Selectors(slot types.TypeSlot) []types.Selector {
	b, ok := ti.buckets[slot]
	if !ok {
		return nil
	}
	return b.selectors
}

// Slots returns every type-slot that has ever been observed, in assignment
// order (ascending). A slot with zero active selectors is still returned;
// callers that only want live work should check len(Selectors(slot)) > 0.
func (ti *TypeIndex) Slots() []types.TypeSlot {
	out := make([]types.TypeSlot, ti.next)
	for slot := range out {
		out[slot] = types.TypeSlot(slot)
	}
	return out
}

var errTooManyTypes = &tooManyTypesError{}

type tooManyTypesError struct{}

func (*tooManyTypesError) Error() string {
	return "prodrule: fact space observed more than 256 distinct fact types"
}
