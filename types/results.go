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
	"time"

	"github.com/gofrs/uuid/v5"
)

// EvaluationResults is a session's output: counters, timing, the
// deduplicated event set, scoring, and free-form scratch state populated by
// rule consequences.
type EvaluationResults struct {
	// SessionID correlates this run with external logs/traces.
	SessionID uuid.UUID

	TotalEvaluated int
	TotalFired     int
	Started        time.Time
	Completed      time.Time

	Events         *EventSet
	Affirmations   int
	Vetos          int
	FiredRules     map[string]int
	MutexWinners   map[string]string
	Shared         map[string]interface{}
}

// NewEvaluationResults returns a zero-valued, ready-to-use
// EvaluationResults with a freshly minted SessionID.
func NewEvaluationResults() *EvaluationResults {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Nil
	}
	return &EvaluationResults{
		SessionID:    id,
		Started:      time.Now(),
		Events:       NewEventSet(),
		FiredRules:   make(map[string]int),
		MutexWinners: make(map[string]string),
		Shared:       make(map[string]interface{}),
	}
}

// Duration reports how long the session ran. Zero before Completed is
// stamped.
func (r *EvaluationResults) Duration() time.Duration {
	if r.Completed.IsZero() {
		return 0
	}
	return r.Completed.Sub(r.Started)
}

// Score is affirmations minus vetos.
func (r *EvaluationResults) Score() int { return r.Affirmations - r.Vetos }

// ViolationCount reports how many Violation-category events were recorded.
func (r *EvaluationResults) ViolationCount() int {
	return r.Events.CountByCategory(CategoryViolation)
}
