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

import "time"

// Default budgets, per spec: 500,000 evaluations, 10 second wall clock,
// unbounded violations.
const (
	DefaultMaxEvaluations = 500000
	DefaultMaxDuration    = 10 * time.Second
)

// Config holds session-wide configuration for an evaluation: budgets,
// throw-on-* toggles, namespace filtering, the listener, and the logger.
// Build one with NewConfig(opts ...Option).
type Config struct {
	// MaxEvaluations bounds how many rule evaluations (not firings) a
	// single session may perform before EXHAUSTED is raised.
	MaxEvaluations int
	// MaxDuration bounds wall-clock time (measured via a monotonic clock)
	// a single session may spend before EXHAUSTED is raised.
	MaxDuration time.Duration
	// MaxViolations bounds how many Violation-category events may be
	// recorded before the session exhausts early. Zero means unbounded.
	MaxViolations int
	// ThrowOnValidation, when true, causes Evaluate to return
	// ErrViolationsExist if any Violation event was recorded.
	ThrowOnValidation bool
	// ThrowOnNoRules, when true, causes Evaluate to return
	// ErrNoRulesEvaluated if TotalEvaluated ended up zero.
	ThrowOnNoRules bool
	// Namespaces restricts which rule namespaces participate in this
	// session. Empty means all namespaces.
	Namespaces []string
	// Listener receives tracing callbacks; defaults to NoopListener.
	Listener Listener
	// Logger receives structured log output; defaults to DefaultLogger().
	Logger Logger
}

// Option configures a Config. Options compose via NewConfig(opts...).
type Option func(*Config)

// NewConfig builds a Config with the documented defaults and applies opts
// in order.
func NewConfig(opts ...Option) Config {
	c := Config{
		MaxEvaluations: DefaultMaxEvaluations,
		MaxDuration:    DefaultMaxDuration,
		Listener:       NoopListener{},
		Logger:         DefaultLogger(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
