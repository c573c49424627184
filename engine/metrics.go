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

package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"prodrule/types"
)

// Metrics mirrors the teacher's ChainEngine metrics: one counter vector for
// terminal outcomes and one histogram for wall-clock duration, both labeled
// by outcome so a dashboard can separate healthy evaluations from exhausted
// or errored ones, plus a counter of rule firings labeled by rule name.
var (
	evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prodrule_evaluations_total",
		Help: "Total number of Engine.Evaluate calls, labeled by terminal outcome.",
	}, []string{"outcome"})

	evaluationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prodrule_evaluation_duration_seconds",
		Help:    "Wall-clock duration of Engine.Evaluate calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	rulesFiredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prodrule_rules_fired_total",
		Help: "Total number of individual rule firings, labeled by rule name.",
	}, []string{"rule"})
)

func init() {
	prometheus.MustRegister(evaluationsTotal, evaluationDuration, rulesFiredTotal)
}

// outcomeLabel classifies a completed Evaluate call for metrics purposes.
func outcomeLabel(err error, exhausted bool) string {
	switch {
	case err != nil:
		return "error"
	case exhausted:
		return "exhausted"
	default:
		return "ok"
	}
}

func recordMetrics(results *types.EvaluationResults, err error, exhausted bool, durationSeconds float64) {
	label := outcomeLabel(err, exhausted)
	evaluationsTotal.WithLabelValues(label).Inc()
	evaluationDuration.WithLabelValues(label).Observe(durationSeconds)
	for name, count := range results.FiredRules {
		rulesFiredTotal.WithLabelValues(name).Add(float64(count))
	}
}
