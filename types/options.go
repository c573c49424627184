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

// WithMaxEvaluations overrides the evaluation-count budget.
func WithMaxEvaluations(n int) Option {
	return func(c *Config) { c.MaxEvaluations = n }
}

// WithMaxDuration overrides the wall-clock budget.
func WithMaxDuration(d time.Duration) Option {
	return func(c *Config) { c.MaxDuration = d }
}

// WithMaxViolations bounds how many violation events may be recorded
// before the session exhausts early.
func WithMaxViolations(n int) Option {
	return func(c *Config) { c.MaxViolations = n }
}

// WithThrowOnValidation toggles returning ErrViolationsExist when a
// Violation event was recorded.
func WithThrowOnValidation(throw bool) Option {
	return func(c *Config) { c.ThrowOnValidation = throw }
}

// WithThrowOnNoRules toggles returning ErrNoRulesEvaluated when nothing was
// evaluated.
func WithThrowOnNoRules(throw bool) Option {
	return func(c *Config) { c.ThrowOnNoRules = throw }
}

// WithNamespaces restricts the session to the given rule namespaces.
func WithNamespaces(namespaces ...string) Option {
	return func(c *Config) { c.Namespaces = namespaces }
}

// WithListener sets the tracing Listener.
func WithListener(listener Listener) Option {
	return func(c *Config) { c.Listener = listener }
}

// WithLogger sets the structured Logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) { c.Logger = logger }
}
