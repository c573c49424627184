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
	"sync"

	"prodrule/types"
)

// FactSpace holds inserted facts, assigns stable identities, and indexes
// live bindings by type. It is owned by exactly one evaluation session and
// must not be shared across sessions (see engine.Context).
type FactSpace struct {
	mu sync.RWMutex

	index *TypeIndex

	// byIdentity retains every fact ever added, indexed by its identity,
	// so retracted facts remain correlatable (spec: "its underlying object
	// remains in an identity-keyed list").
	byIdentity map[types.Identity]types.Fact
	slotOf     map[types.Identity]types.TypeSlot

	// identityOf maps a fact back to the identity it was assigned, by
	// reference; facts must therefore be comparable (pointers, in
	// practice, matching the spec's "equal only if the same object").
	identityOf map[types.Fact]types.Identity

	// selectorToIdentity is the live selector -> identity map. A selector
	// present here is active; invalidated selectors are removed.
	selectorToIdentity map[types.Selector]types.Identity
	// identityToSelector is the inverse, giving the one live selector (if
	// any) for a given identity.
	identityToSelector map[types.Identity]types.Selector

	nextIdentity  types.Identity
	nextSelector  types.Selector
	activeCount   int
}

// New returns an empty FactSpace.
func New() *FactSpace {
	return &FactSpace{
		index:              NewTypeIndex(),
		byIdentity:         make(map[types.Identity]types.Fact),
		slotOf:             make(map[types.Identity]types.TypeSlot),
		identityOf:         make(map[types.Fact]types.Identity),
		selectorToIdentity: make(map[types.Selector]types.Identity),
		identityToSelector: make(map[types.Identity]types.Selector),
	}
}

// Add inserts fact, idempotent by reference identity: re-adding a fact
// already present returns its existing (current) selector. Returns
// types.ErrCapacityExceeded if doing so would exceed
// types.MaxActiveSelectors active selectors.
func (fs *FactSpace) Add(fact types.Fact) (types.Selector, error) {
	if fact == nil {
		return types.InvalidSelector, types.ErrInvalidArgument
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if id, ok := fs.identityOf[fact]; ok {
		if sel, ok := fs.identityToSelector[id]; ok {
			return sel, nil
		}
	}
	if fs.activeCount >= types.MaxActiveSelectors {
		return types.InvalidSelector, types.ErrCapacityExceeded
	}

	slot, err := fs.index.SlotFor(types.TypeOf(fact))
	if err != nil {
		return types.InvalidSelector, err
	}

	fs.nextIdentity++
	id := fs.nextIdentity
	fs.nextSelector++
	sel := fs.nextSelector

	fs.byIdentity[id] = fact
	fs.slotOf[id] = slot
	fs.identityOf[fact] = id
	fs.selectorToIdentity[sel] = id
	fs.identityToSelector[id] = sel
	fs.index.Add(slot, sel)
	fs.activeCount++

	return sel, nil
}

// Modify invalidates sel and mints a fresh selector for the same identity,
// preserving the fact's position in its type bucket. Returns
// types.InvalidSelector if sel is not currently active.
func (fs *FactSpace) Modify(sel types.Selector) (types.Selector, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	id, ok := fs.selectorToIdentity[sel]
	if !ok {
		return types.InvalidSelector, types.ErrInvalidArgument
	}
	slot := fs.slotOf[id]

	fs.nextSelector++
	newSel := fs.nextSelector

	delete(fs.selectorToIdentity, sel)
	fs.selectorToIdentity[newSel] = id
	fs.identityToSelector[id] = newSel
	fs.index.Replace(slot, sel, newSel)

	return newSel, nil
}

// Retract removes sel from the live selector map. The fact's identity
// entry is retained for correlation; it simply has no live selector
// afterward.
func (fs *FactSpace) Retract(sel types.Selector) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	id, ok := fs.selectorToIdentity[sel]
	if !ok {
		return types.ErrInvalidArgument
	}
	slot := fs.slotOf[id]

	delete(fs.selectorToIdentity, sel)
	delete(fs.identityToSelector, id)
	fs.index.Remove(slot, sel)
	fs.activeCount--

	return nil
}

// TupleOf resolves selectors to their bound facts. If any selector has
// since been invalidated, TupleOf returns the empty-tuple sentinel telling
// the caller to skip this work item.
func (fs *FactSpace) TupleOf(selectors []types.Selector) types.Tuple {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make(types.Tuple, 0, len(selectors))
	for _, sel := range selectors {
		id, ok := fs.selectorToIdentity[sel]
		if !ok {
			return types.Tuple{}
		}
		out = append(out, fs.byIdentity[id])
	}
	return out
}

// IdentityOf returns the identity a live selector is currently bound to.
func (fs *FactSpace) IdentityOf(sel types.Selector) (types.Identity, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	id, ok := fs.selectorToIdentity[sel]
	return id, ok
}

// SelectorOf returns the fact's current live selector, and whether the
// fact is known to this FactSpace at all (by reference).
func (fs *FactSpace) SelectorOf(fact types.Fact) (types.Selector, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	id, ok := fs.identityOf[fact]
	if !ok {
		return types.InvalidSelector, false
	}
	sel, ok := fs.identityToSelector[id]
	return sel, ok
}

// Types returns every type-slot that currently has at least one active
// selector, in assignment order.
func (fs *FactSpace) Types() []types.TypeSlot {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	var out []types.TypeSlot
	for _, slot := range fs.index.Slots() {
		if len(fs.index.Selectors(slot)) > 0 {
			out = append(out, slot)
		}
	}
	return out
}

// SelectorsOf returns the ordered, active selectors currently bound to
// slot's type.
func (fs *FactSpace) SelectorsOf(slot types.TypeSlot) []types.Selector {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	src := fs.index.Selectors(slot)
	out := make([]types.Selector, len(src))
	copy(out, src)
	return out
}

// Index exposes the underlying TypeIndex for components (the rule base)
// that need to resolve reflect.Type <-> TypeSlot without duplicating that
// bookkeeping.
func (fs *FactSpace) Index() *TypeIndex { return fs.index }

// ActiveCount reports the number of currently active selectors.
func (fs *FactSpace) ActiveCount() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.activeCount
}
