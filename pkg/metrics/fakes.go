// Copyright 2020 Anapaya Systems
// Copyright 2026 The fabric Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sort"
	"strings"
	"sync"
)

// TestCounter implements a counter for use in tests. Children created with
// With share their parent's storage, keyed by the full label set.
type TestCounter struct {
	*store
	lvs []string
}

// NewTestCounter creates a new counter for use in tests.
func NewTestCounter() *TestCounter {
	return &TestCounter{store: newStore()}
}

// With returns the child counter for the given labels.
func (c *TestCounter) With(labelValues ...string) Counter {
	return &TestCounter{store: c.store, lvs: append(append([]string(nil), c.lvs...),
		labelValues...)}
}

// Add increases the counter. It panics on negative deltas.
func (c *TestCounter) Add(delta float64) {
	if delta < 0 {
		panic("counter increment value is < 0")
	}
	c.add(c.lvs, delta)
}

// TestGauge implements a gauge for use in tests.
type TestGauge struct {
	*store
	lvs []string
}

// NewTestGauge creates a new gauge for use in tests.
func NewTestGauge() *TestGauge {
	return &TestGauge{store: newStore()}
}

// With returns the child gauge for the given labels.
func (g *TestGauge) With(labelValues ...string) Gauge {
	return &TestGauge{store: g.store, lvs: append(append([]string(nil), g.lvs...),
		labelValues...)}
}

// Set sets the gauge value.
func (g *TestGauge) Set(v float64) {
	g.set(g.lvs, v)
}

// Add changes the gauge value by delta.
func (g *TestGauge) Add(delta float64) {
	g.add(g.lvs, delta)
}

// TestHistogram implements a histogram for use in tests. It records the sum
// and the number of observations.
type TestHistogram struct {
	sum   *store
	count *store
	lvs   []string
}

// NewTestHistogram creates a new histogram for use in tests.
func NewTestHistogram() *TestHistogram {
	return &TestHistogram{sum: newStore(), count: newStore()}
}

// With returns the child histogram for the given labels.
func (h *TestHistogram) With(labelValues ...string) Histogram {
	return &TestHistogram{sum: h.sum, count: h.count,
		lvs: append(append([]string(nil), h.lvs...), labelValues...)}
}

// Observe records an observation.
func (h *TestHistogram) Observe(v float64) {
	h.sum.add(h.lvs, v)
	h.count.add(h.lvs, 1)
}

// CounterValue extracts the value out of a TestCounter. If the argument is not
// a *TestCounter, CounterValue will panic.
func CounterValue(c Counter) float64 {
	tc := c.(*TestCounter)
	return tc.value(tc.lvs)
}

// GaugeValue extracts the value out of a TestGauge. If the argument is not a
// *TestGauge, GaugeValue will panic.
func GaugeValue(g Gauge) float64 {
	tg := g.(*TestGauge)
	return tg.value(tg.lvs)
}

// HistogramCount returns the number of observations of a TestHistogram.
func HistogramCount(h Histogram) float64 {
	th := h.(*TestHistogram)
	return th.count.value(th.lvs)
}

// HistogramSum returns the sum of observations of a TestHistogram.
func HistogramSum(h Histogram) float64 {
	th := h.(*TestHistogram)
	return th.sum.value(th.lvs)
}

type store struct {
	mtx    sync.Mutex
	values map[string]float64
}

func newStore() *store {
	return &store{values: make(map[string]float64)}
}

func key(lvs []string) string {
	pairs := make([]string, 0, len(lvs)/2)
	for i := 0; i+1 < len(lvs); i += 2 {
		pairs = append(pairs, lvs[i]+"="+lvs[i+1])
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (s *store) add(lvs []string, delta float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.values[key(lvs)] += delta
}

func (s *store) set(lvs []string, v float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.values[key(lvs)] = v
}

func (s *store) value(lvs []string) float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.values[key(lvs)]
}
