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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodrule/builder"
	"prodrule/engine"
	"prodrule/types"
)

func TestRuleSetEvaluateSuppressesThrowOnNoRules(t *testing.T) {
	lineItemType := reflect.TypeOf(lineItem{})
	r, err := builder.NewRule("never-matches").For(lineItemType).
		Then(func(types.Tuple) error { return nil }).Build()
	require.NoError(t, err)

	// The RuleSet's own default Config asks for ThrowOnNoRules, but
	// RuleSet.Evaluate must suppress it regardless (spec.md §6).
	cfg := types.NewConfig(types.WithThrowOnNoRules(true))
	rs := engine.NewRuleSet("rs", cfg, r)

	results, err := rs.Evaluate([]types.Fact{order{}})
	require.NoError(t, err)
	assert.Equal(t, 0, results.TotalEvaluated)
}

func TestRuleSetEvaluateWithHonorsExplicitConfig(t *testing.T) {
	lineItemType := reflect.TypeOf(lineItem{})
	r, err := builder.NewRule("never-matches").For(lineItemType).
		Then(func(types.Tuple) error { return nil }).Build()
	require.NoError(t, err)

	rs := engine.NewRuleSet("rs", types.NewConfig(), r)

	cfg := types.NewConfig(types.WithThrowOnNoRules(true))
	_, err = rs.EvaluateWith(cfg, []types.Fact{order{}})
	require.ErrorIs(t, err, types.ErrNoRulesEvaluated)
}
