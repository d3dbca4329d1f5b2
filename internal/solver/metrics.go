/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package solver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the resolver does. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	markedTotal    *prometheus.CounterVec
	backtrackTotal prometheus.Counter
	errorTotal     *prometheus.CounterVec
	duration       prometheus.Histogram
}

// NewMetrics creates the resolver metrics and registers them with reg
// when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		markedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgsolve_packages_marked_total",
				Help: "Number of packages put on the install set, by mark.",
			},
			[]string{"mark"},
		),
		backtrackTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pkgsolve_backtracks_total",
				Help: "Number of rollbacks after a dead end.",
			},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pkgsolve_errors_total",
				Help: "Number of resolution errors recorded, by code.",
			},
			[]string{"code"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pkgsolve_resolve_duration_seconds",
				Help:    "Time taken to resolve a transaction.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.markedTotal, m.backtrackTotal, m.errorTotal, m.duration)
	}
	return m
}

func markLabel(mark MarkFlag) string {
	switch {
	case mark&MarkHand != 0:
		return "hand"
	case mark&MarkDep != 0:
		return "dep"
	}
	return "internal"
}

func (m *Metrics) marked(mark MarkFlag) {
	if m == nil {
		return
	}
	m.markedTotal.WithLabelValues(markLabel(mark)).Inc()
}

func (m *Metrics) backtrack() {
	if m == nil {
		return
	}
	m.backtrackTotal.Inc()
}

func (m *Metrics) error(code ErrorCode) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(code.String()).Inc()
}

func (m *Metrics) observe(start time.Time) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
}
