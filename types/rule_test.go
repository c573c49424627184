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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSetDeduplicatesByIdentityTuple(t *testing.T) {
	s := NewEventSet()
	e1 := RuleEvent{Category: CategoryInfo, RuleName: "r1", Group: "g", Template: "t", FormattedMessage: "first"}
	e2 := RuleEvent{Category: CategoryInfo, RuleName: "r1", Group: "g", Template: "t", FormattedMessage: "second"}

	assert.True(t, s.Add(e1))
	assert.False(t, s.Add(e2), "same (category,rule,group,template) must dedupe even with a different message")
	assert.Equal(t, 1, s.Len())
}

func TestEventSetCountByCategory(t *testing.T) {
	s := NewEventSet()
	s.Add(RuleEvent{Category: CategoryViolation, RuleName: "r1", Group: "g", Template: "a"})
	s.Add(RuleEvent{Category: CategoryViolation, RuleName: "r2", Group: "g", Template: "b"})
	s.Add(RuleEvent{Category: CategoryInfo, RuleName: "r3", Group: "g", Template: "c"})

	assert.Equal(t, 2, s.CountByCategory(CategoryViolation))
	assert.Equal(t, 1, s.CountByCategory(CategoryInfo))
}

func TestEventSetSliceIsInsertionOrdered(t *testing.T) {
	s := NewEventSet()
	s.Add(RuleEvent{Category: CategoryInfo, RuleName: "r1", Template: "a"})
	s.Add(RuleEvent{Category: CategoryInfo, RuleName: "r2", Template: "b"})

	got := s.Slice()
	assert.Equal(t, "r1", got[0].RuleName)
	assert.Equal(t, "r2", got[1].RuleName)
}
