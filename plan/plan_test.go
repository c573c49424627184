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

package plan

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodrule/factspace"
	"prodrule/rulebase"
	"prodrule/types"
)

type widget struct{ N int }

type pairRule struct{ factTypes []reflect.Type }

func (r pairRule) Name() string              { return "pair-rule" }
func (r pairRule) Namespace() string         { return "" }
func (r pairRule) Salience() int             { return 0 }
func (r pairRule) Mutex() string             { return "" }
func (r pairRule) FiresOnce() bool           { return false }
func (r pairRule) Inception() time.Time      { return time.Time{} }
func (r pairRule) Expiration() time.Time     { return time.Time{} }
func (r pairRule) Arity() int                { return len(r.factTypes) }
func (r pairRule) FactTypes() []reflect.Type { return r.factTypes }
func (r pairRule) Evaluate(types.Tuple) bool { return true }
func (r pairRule) Fire(types.Tuple) error    { return nil }

func TestPlanEnumeratesLowerArityBeforeHigher(t *testing.T) {
	fs := factspace.New()
	rb := rulebase.New()
	wt := reflect.TypeOf(&widget{})
	rb.AddRules(pairRule{factTypes: []reflect.Type{wt}})
	rb.AddRules(pairRule{factTypes: []reflect.Type{wt, wt}})
	rb.Seal()

	_, err := fs.Add(&widget{N: 1})
	require.NoError(t, err)
	_, err = fs.Add(&widget{N: 2})
	require.NoError(t, err)

	p := New(fs, rb, nil)

	var arities []int
	for {
		item, ok := p.Next()
		if !ok {
			break
		}
		arities = append(arities, item.Signature.Arity())
	}

	require.NotEmpty(t, arities)
	for i := 1; i < len(arities); i++ {
		assert.LessOrEqual(t, arities[i-1], arities[i], "arity-1 work must be fully drained before arity-2")
	}
}

func TestPlanRebuildIsAdditiveAndDoesNotReissueWork(t *testing.T) {
	fs := factspace.New()
	rb := rulebase.New()
	wt := reflect.TypeOf(&widget{})
	rb.AddRules(pairRule{factTypes: []reflect.Type{wt}})
	rb.Seal()

	_, err := fs.Add(&widget{N: 1})
	require.NoError(t, err)

	p := New(fs, rb, nil)
	first := countAll(p)
	assert.Equal(t, 1, first)

	// Nothing changed: rebuilding must not reissue the same work item.
	p.Rebuild()
	assert.True(t, p.Drained())

	_, err = fs.Add(&widget{N: 2})
	require.NoError(t, err)
	p.Rebuild()
	second := countAll(p)
	assert.Equal(t, 1, second, "only the new widget's work item should be enqueued")
}

func countAll(p *EvaluationPlan) int {
	n := 0
	for {
		if _, ok := p.Next(); !ok {
			break
		}
		n++
	}
	return n
}
