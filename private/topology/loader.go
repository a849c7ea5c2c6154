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

package topology

import (
	"context"
	"sync"

	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/metrics"
	"github.com/sdnlab/fabric/pkg/private/serrors"
)

// Validator checks whether a reloaded topology may replace the current one.
type Validator interface {
	// Validate is called with the current topology and the candidate. On the
	// initial load, old is nil.
	Validate(old, new *Topology) error
}

// LoaderMetrics are the metrics of the loader. Nil counters are ignored.
type LoaderMetrics struct {
	ReadErrors       metrics.Counter
	ValidationErrors metrics.Counter
	Updates          metrics.Counter
}

type LoaderCfg struct {
	// File is the location of the topology file or URL.
	File string
	// Reload triggers a reload of the topology file.
	Reload <-chan struct{}
	// Validator additionally validates reloaded topologies. Optional.
	Validator Validator
	Metrics   LoaderMetrics
}

// Loader serves the topology file as discovery source. It is safe for
// concurrent use.
type Loader struct {
	cfg LoaderCfg

	mtx         sync.Mutex
	topo        *Topology
	subscribers []chan struct{}
}

// NewLoader loads the initial topology. It fails if the file cannot be read
// or is invalid.
func NewLoader(cfg LoaderCfg) (*Loader, error) {
	l := &Loader{cfg: cfg}
	topo, err := l.load(nil)
	if err != nil {
		return nil, err
	}
	l.topo = topo
	return l, nil
}

// NewStatic returns a loader that serves topo. It has no file to reload
// from; use Set to replace the topology.
func NewStatic(topo *Topology) *Loader {
	return &Loader{topo: topo.Clone()}
}

// Set replaces the served topology and notifies subscribers. The topology is
// not validated.
func (l *Loader) Set(topo *Topology) {
	l.mtx.Lock()
	l.topo = topo.Clone()
	subscribers := l.subscribers
	l.mtx.Unlock()
	notify(subscribers)
}

// Run handles reload requests until ctx is done. A reload that fails to read
// or validate leaves the current topology in place.
func (l *Loader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.cfg.Reload:
			l.reload()
		}
	}
}

func (l *Loader) reload() {
	l.mtx.Lock()
	old := l.topo
	l.mtx.Unlock()

	topo, err := l.load(old)
	if err != nil {
		log.Error("Failed to reload topology", "file", l.cfg.File, "err", err)
		return
	}
	l.mtx.Lock()
	l.topo = topo
	subscribers := l.subscribers
	l.mtx.Unlock()

	log.Info("Reloaded topology", "file", l.cfg.File,
		"switches", len(topo.Switches), "links", len(topo.Links), "hosts", len(topo.Hosts))
	metrics.CounterInc(l.cfg.Metrics.Updates)
	notify(subscribers)
}

func notify(subscribers []chan struct{}) {
	for _, ch := range subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (l *Loader) load(old *Topology) (*Topology, error) {
	l.mtx.Lock()
	file := l.cfg.File
	l.mtx.Unlock()

	topo, err := Load(file)
	if err != nil {
		metrics.CounterInc(l.cfg.Metrics.ReadErrors)
		return nil, err
	}
	if l.cfg.Validator != nil {
		if err := l.cfg.Validator.Validate(old, topo); err != nil {
			metrics.CounterInc(l.cfg.Metrics.ValidationErrors)
			return nil, serrors.Wrap("validating topology", err)
		}
	}
	return topo, nil
}

// Subscribe returns a channel that receives a notification after every
// successful reload. Notifications are coalesced when the receiver lags.
func (l *Loader) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// Get returns a copy of the current topology.
func (l *Loader) Get() *Topology {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.topo.Clone()
}

func (l *Loader) Switches() []fabric.Switch {
	return l.Get().Switches
}

func (l *Loader) Links() []fabric.Link {
	return l.Get().Links
}

func (l *Loader) Hosts() []fabric.Host {
	return l.Get().Hosts
}
