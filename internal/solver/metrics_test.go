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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.marked(MarkHand | MarkInternal)
	m.marked(MarkDep)
	m.marked(MarkDep | MarkInternal)
	m.error(ErrConflict)
	m.backtrack()
	m.observe(time.Now())

	is := assert.New(t)
	is.Equal(float64(1), testutil.ToFloat64(m.markedTotal.WithLabelValues("hand")))
	is.Equal(float64(2), testutil.ToFloat64(m.markedTotal.WithLabelValues("dep")))
	is.Equal(float64(1), testutil.ToFloat64(m.errorTotal.WithLabelValues("conflict")))
	is.Equal(float64(1), testutil.ToFloat64(m.backtrackTotal))

	n, err := testutil.GatherAndCount(reg)
	is.NoError(err)
	is.Equal(5, n)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.marked(MarkDep)
		m.error(ErrNotFound)
		m.backtrack()
		m.observe(time.Now())
	})
}

func TestMarkLabel(t *testing.T) {
	assert.Equal(t, "hand", markLabel(MarkHand|MarkInternal))
	assert.Equal(t, "dep", markLabel(MarkDep))
	assert.Equal(t, "internal", markLabel(MarkInternal))
}
