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

package engine_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodrule/builder"
	"prodrule/engine"
	"prodrule/rulebase"
	"prodrule/types"
)

type order struct {
	Total     float64
	Expedited bool
}

type lineItem struct {
	SKU string
}

type counter struct{ N int }

func buildEngine(t *testing.T, rules ...types.Rule) *engine.Engine {
	t.Helper()
	rb := rulebase.New()
	rb.AddRules(rules...)
	return engine.New(rb)
}

func TestEvaluateFiresSingleFactRule(t *testing.T) {
	orderType := reflect.TypeOf(order{})
	r, err := builder.NewRule("high-value-order").
		For(orderType).
		When(func(tuple types.Tuple) bool { return tuple[0].(order).Total > 1000 }).
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			require.True(t, ok)
			ctx.Affirm(1)
			return nil
		}).Build()
	require.NoError(t, err)

	e := buildEngine(t, r)
	results, err := e.Evaluate(types.NewConfig(), []types.Fact{order{Total: 2500}})
	require.NoError(t, err)
	assert.Equal(t, 1, results.Score())
	assert.Equal(t, 1, results.FiredRules["high-value-order"])
}

func TestEvaluateMutexAllowsOnlyOneShippingRuleToFire(t *testing.T) {
	orderType := reflect.TypeOf(order{})
	winners := map[string]bool{}

	a, err := builder.NewRule("expedite-a").For(orderType).Salience(900).Mutex("shipping").
		When(func(tuple types.Tuple) bool { return tuple[0].(order).Expedited }).
		Then(func(types.Tuple) error { winners["a"] = true; return nil }).Build()
	require.NoError(t, err)

	b, err := builder.NewRule("expedite-b").For(orderType).Salience(500).Mutex("shipping").
		When(func(tuple types.Tuple) bool { return tuple[0].(order).Expedited }).
		Then(func(types.Tuple) error { winners["b"] = true; return nil }).Build()
	require.NoError(t, err)

	e := buildEngine(t, a, b)
	results, err := e.Evaluate(types.NewConfig(), []types.Fact{order{Expedited: true}})
	require.NoError(t, err)

	assert.True(t, winners["a"])
	assert.False(t, winners["b"])
	assert.Equal(t, "expedite-a", results.MutexWinners["shipping"])
}

func TestEvaluateCascadeInsertTriggersReplan(t *testing.T) {
	orderType := reflect.TypeOf(order{})
	lineItemType := reflect.TypeOf(lineItem{})

	expand, err := builder.NewRule("expand-order").For(orderType).FiresOnce().
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			require.True(t, ok)
			return ctx.Insert(lineItem{SKU: "abc"})
		}).Build()
	require.NoError(t, err)

	observe, err := builder.NewRule("observe-line-item").For(lineItemType).FiresOnce().
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			require.True(t, ok)
			ctx.Affirm(1)
			return nil
		}).Build()
	require.NoError(t, err)

	e := buildEngine(t, expand, observe)
	results, err := e.Evaluate(types.NewConfig(), []types.Fact{order{Total: 1}})
	require.NoError(t, err)

	assert.Equal(t, 1, results.Score())
	assert.Equal(t, 1, results.FiredRules["expand-order"])
	assert.Equal(t, 1, results.FiredRules["observe-line-item"])
}

func TestEvaluateBudgetExhaustionReturnsErrExhausted(t *testing.T) {
	counterType := reflect.TypeOf(&counter{})

	bump, err := builder.NewRule("bump").For(counterType).
		Then(func(tuple types.Tuple) error {
			c := tuple[0].(*counter)
			c.N++
			ctx, ok := engine.Current()
			require.True(t, ok)
			return ctx.Modify(c)
		}).Build()
	require.NoError(t, err)

	e := buildEngine(t, bump)
	cfg := types.NewConfig(types.WithMaxEvaluations(5))
	results, err := e.Evaluate(cfg, []types.Fact{&counter{}})

	require.ErrorIs(t, err, types.ErrExhausted)
	assert.NotNil(t, results)
	assert.Greater(t, results.TotalFired, 0)
}

func TestEvaluateThrowOnValidationReturnsErrViolationsExist(t *testing.T) {
	orderType := reflect.TypeOf(order{})

	r, err := builder.NewRule("missing-total").For(orderType).
		When(func(tuple types.Tuple) bool { return tuple[0].(order).Total == 0 }).
		Then(func(tuple types.Tuple) error {
			ctx, ok := engine.Current()
			require.True(t, ok)
			return ctx.Event(types.CategoryViolation, "orders", "order total is zero")
		}).Build()
	require.NoError(t, err)

	e := buildEngine(t, r)
	cfg := types.NewConfig(types.WithThrowOnValidation(true))
	results, err := e.Evaluate(cfg, []types.Fact{order{}})

	require.ErrorIs(t, err, types.ErrViolationsExist)
	assert.Equal(t, 1, results.ViolationCount())
}

func TestEvaluateHardErrorPropagatesUnwrapped(t *testing.T) {
	orderType := reflect.TypeOf(order{})
	boom := errors.New("consequence exploded")

	r, err := builder.NewRule("explodes").For(orderType).
		Then(func(types.Tuple) error { return boom }).Build()
	require.NoError(t, err)

	e := buildEngine(t, r)
	results, err := e.Evaluate(types.NewConfig(), []types.Fact{order{}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.NotNil(t, results, "partial results are always returned, even on hard error")
}

func TestEvaluateNoRulesEvaluatedReturnsErrNoRulesEvaluated(t *testing.T) {
	lineItemType := reflect.TypeOf(lineItem{})
	r, err := builder.NewRule("never-matches").For(lineItemType).
		Then(func(types.Tuple) error { return nil }).Build()
	require.NoError(t, err)

	e := buildEngine(t, r)
	cfg := types.NewConfig(types.WithThrowOnNoRules(true))
	results, err := e.Evaluate(cfg, []types.Fact{order{}})

	require.ErrorIs(t, err, types.ErrNoRulesEvaluated)
	assert.Equal(t, 0, results.TotalEvaluated)
}
