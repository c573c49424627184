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

package rulebase

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodrule/types"
)

type animal interface{ Speak() string }

type dog struct{}

func (dog) Speak() string { return "woof" }

// stubRule is a minimal types.Rule for rulebase-only tests.
type stubRule struct {
	name      string
	namespace string
	factTypes []reflect.Type
}

func (r stubRule) Name() string               { return r.name }
func (r stubRule) Namespace() string          { return r.namespace }
func (r stubRule) Salience() int              { return 0 }
func (r stubRule) Mutex() string              { return "" }
func (r stubRule) FiresOnce() bool            { return false }
func (r stubRule) Inception() time.Time       { return time.Time{} }
func (r stubRule) Expiration() time.Time      { return time.Time{} }
func (r stubRule) Arity() int                 { return len(r.factTypes) }
func (r stubRule) FactTypes() []reflect.Type  { return r.factTypes }
func (r stubRule) Evaluate(types.Tuple) bool  { return true }
func (r stubRule) Fire(types.Tuple) error     { return nil }

func newStub(name, ns string, factTypes ...reflect.Type) types.Rule {
	return stubRule{name: name, namespace: ns, factTypes: factTypes}
}

func TestAddRulesPanicsAfterSeal(t *testing.T) {
	rb := New()
	rb.Seal()
	assert.Panics(t, func() {
		rb.AddRules(newStub("r1", "", reflect.TypeOf(dog{})))
	})
}

func TestFindRulesMatchesPolymorphically(t *testing.T) {
	rb := New()
	animalType := reflect.TypeOf((*animal)(nil)).Elem()
	rb.AddRules(newStub("speaks", "", animalType))
	rb.Seal()

	found := rb.FindRules([]reflect.Type{reflect.TypeOf(dog{})}, nil)
	require.Len(t, found, 1)
	assert.Equal(t, "speaks", found[0].Name())
}

func TestFindRulesFiltersByNamespace(t *testing.T) {
	rb := New()
	rb.AddRules(newStub("r-a", "alpha", reflect.TypeOf(dog{})))
	rb.AddRules(newStub("r-b", "beta", reflect.TypeOf(dog{})))
	rb.Seal()

	found := rb.FindRules([]reflect.Type{reflect.TypeOf(dog{})}, []string{"alpha"})
	require.Len(t, found, 1)
	assert.Equal(t, "r-a", found[0].Name())

	all := rb.FindRules([]reflect.Type{reflect.TypeOf(dog{})}, nil)
	assert.Len(t, all, 2)
}

func TestHasRulesFastPath(t *testing.T) {
	rb := New()
	rb.AddRules(newStub("r1", "", reflect.TypeOf(dog{})))
	rb.Seal()

	assert.True(t, rb.HasRules([]reflect.Type{reflect.TypeOf(dog{})}, nil))
	assert.False(t, rb.HasRules([]reflect.Type{reflect.TypeOf(0)}, nil))
}

func TestMaxArityTracksHighestRegisteredArity(t *testing.T) {
	rb := New()
	rb.AddRules(newStub("r1", "", reflect.TypeOf(dog{})))
	rb.AddRules(newStub("r2", "", reflect.TypeOf(dog{}), reflect.TypeOf(dog{})))
	rb.Seal()

	assert.Equal(t, 2, rb.MaxArity())
}
