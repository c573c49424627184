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

// Package engine implements the evaluation driver: the plan-evaluator loop
// (Engine), the live EvaluationContext rule consequences see, and the
// RuleSet convenience surface callers use.
package engine

import (
	"fmt"

	"prodrule/factspace"
	"prodrule/internal/gls"
	"prodrule/types"
)

// Context is the concrete, per-session types.EvaluationContext /
// types.RunContext implementation. One Context is created per Evaluate
// call and published to the calling goroutine's ambient slot for the
// duration of that call (see internal/gls).
type Context struct {
	fs      *factspace.FactSpace
	results *types.EvaluationResults
	lookups map[string]map[string]interface{}

	currentTuple     types.Tuple
	currentSelectors []types.Selector
	currentRuleName  string

	modificationsOccurred bool
	insertionsOccurred    bool
}

// NewContext returns a Context bound to fs/results for one session.
func NewContext(fs *factspace.FactSpace, results *types.EvaluationResults) *Context {
	return &Context{
		fs:      fs,
		results: results,
		lookups: make(map[string]map[string]interface{}),
	}
}

// RegisterLookup preloads a named table consequences can read via Lookup.
// Must be called before Evaluate begins.
func (c *Context) RegisterLookup(name string, table map[string]interface{}) {
	c.lookups[name] = table
}

// setCurrent is called by the engine driver before handing a tuple to the
// TupleEvaluator, so Insert/Modify/Retract can resolve against the
// currently firing tuple.
func (c *Context) setCurrent(tuple types.Tuple, selectors []types.Selector) {
	c.currentTuple = tuple
	c.currentSelectors = selectors
}

func (c *Context) indexOf(fact types.Fact) (int, bool) {
	for i, f := range c.currentTuple {
		if f == fact {
			return i, true
		}
	}
	return 0, false
}

// Insert admits fact as a new fact (idempotent by reference identity; see
// factspace.FactSpace.Add). Inserting a fact that is already live is a
// no-op and does not count as an insertion.
func (c *Context) Insert(fact types.Fact) error {
	if fact == nil {
		return types.ErrInvalidArgument
	}
	if _, live := c.fs.SelectorOf(fact); live {
		return nil
	}
	if _, err := c.fs.Add(fact); err != nil {
		return err
	}
	c.insertionsOccurred = true
	return nil
}

// Modify signals that fact, which must be part of the currently firing
// tuple, was mutated in place. A fact not in the current tuple is silently
// ignored, per contract.
func (c *Context) Modify(fact types.Fact) error {
	i, ok := c.indexOf(fact)
	if !ok {
		return nil
	}
	newSel, err := c.fs.Modify(c.currentSelectors[i])
	if err != nil {
		return err
	}
	c.currentSelectors[i] = newSel
	c.modificationsOccurred = true
	return nil
}

// Retract removes fact, which must be part of the currently firing tuple,
// from the live fact space. A fact not in the current tuple is silently
// ignored, per contract.
func (c *Context) Retract(fact types.Fact) error {
	i, ok := c.indexOf(fact)
	if !ok {
		return nil
	}
	if err := c.fs.Retract(c.currentSelectors[i]); err != nil {
		return err
	}
	c.modificationsOccurred = true
	return nil
}

// Event formats and deduplicates a RuleEvent attributed to the currently
// firing rule.
func (c *Context) Event(category types.Category, group, template string, args ...interface{}) error {
	if template == "" {
		return types.ErrInvalidArgument
	}
	formatted := fmt.Sprintf(template, args...)
	if formatted == "" {
		formatted = template
	}
	c.results.Events.Add(types.RuleEvent{
		Category:         category,
		Group:            group,
		RuleName:         c.currentRuleName,
		Template:         template,
		FormattedMessage: formatted,
	})
	return nil
}

// Affirm adds n to the session's affirmation count.
func (c *Context) Affirm(n int) { c.results.Affirmations += n }

// Veto adds n to the session's veto count.
func (c *Context) Veto(n int) { c.results.Vetos += n }

// Lookup reads a caller-preloaded table. A missing table or key returns
// ok == false; callers that require the key to exist should map that to
// types.ErrLookupMissing.
func (c *Context) Lookup(name, key string) (interface{}, bool) {
	table, ok := c.lookups[name]
	if !ok {
		return nil, false
	}
	v, ok := table[key]
	return v, ok
}

// Shared returns the session's free-form scratch map.
func (c *Context) Shared() map[string]interface{} { return c.results.Shared }

// SetCurrentRule records the name of the rule presently firing.
func (c *Context) SetCurrentRule(name string) { c.currentRuleName = name }

// ResetModifications clears the per-rule modification/insertion flags.
func (c *Context) ResetModifications() {
	c.modificationsOccurred = false
	c.insertionsOccurred = false
}

// ModificationsOccurred reports whether Modify or Retract was called
// during the rule presently (or most recently) firing.
func (c *Context) ModificationsOccurred() bool { return c.modificationsOccurred }

// InsertionsOccurred reports whether Insert was called during the rule
// presently (or most recently) firing.
func (c *Context) InsertionsOccurred() bool { return c.insertionsOccurred }

var (
	_ types.EvaluationContext = (*Context)(nil)
	_ types.RunContext        = (*Context)(nil)
)

// Current returns the ambient EvaluationContext for the calling goroutine.
// Rule consequences built by the builder package call this from inside
// Fire to reach Insert/Modify/Retract/Event/Affirm/Veto/Lookup/Shared.
func Current() (types.EvaluationContext, bool) {
	v, ok := gls.Get()
	if !ok {
		return nil, false
	}
	ctx, ok := v.(*Context)
	return ctx, ok
}

// publish stores ctx in the calling goroutine's ambient slot for the
// duration of one Evaluate call.
func publish(ctx *Context) {
	gls.Set(ctx)
}

func clear() {
	gls.Clear()
}
