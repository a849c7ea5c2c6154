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

package topology_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sdnlab/fabric/pkg/metrics/mock_metrics"
	"github.com/sdnlab/fabric/pkg/private/xtest"
	"github.com/sdnlab/fabric/private/topology"
	"github.com/sdnlab/fabric/private/topology/mock_topology"
	"github.com/sdnlab/fabric/private/topology/topotest"
)

func TestLoader(t *testing.T) {
	testBasicTopo := func(t *testing.T, l *topology.Loader) {
		t.Helper()
		assert.Len(t, l.Switches(), 4)
		assert.Len(t, l.Links(), 8)
		assert.Len(t, l.Hosts(), 4)
	}
	modifiedTopo := func(t *testing.T, mod func(*topology.JSON)) string {
		t.Helper()
		j := loadJSON(t)
		mod(&j)
		raw, err := json.MarshalIndent(j, "", "  ")
		require.NoError(t, err)
		f := filepath.Join(t.TempDir(), "topology.json")
		require.NoError(t, os.WriteFile(f, append(raw, '\n'), 0o644))
		return f
	}
	run := func(t *testing.T, l *topology.Loader) {
		ctx, cancelF := context.WithCancel(context.Background())
		g, errCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return l.Run(errCtx)
		})
		t.Cleanup(func() {
			cancelF()
			assert.NoError(t, g.Wait())
		})
	}

	t.Run("constructor fails on invalid topo", func(t *testing.T) {
		l, err := topology.NewLoader(topology.LoaderCfg{File: "non-existing"})
		assert.Nil(t, l)
		assert.Error(t, err)
	})
	t.Run("run exits once context is cancelled", func(t *testing.T) {
		l, err := topology.NewLoader(topology.LoaderCfg{File: "testdata/leafspine.json"})
		require.NoError(t, err)
		ctx, cancelF := context.WithCancel(context.Background())
		g, errCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return l.Run(errCtx)
		})
		cancelF()
		assert.NoError(t, g.Wait())
	})
	t.Run("unreadable reload is ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockCtr := mock_metrics.NewMockCounter(ctrl)
		reloadCh := make(chan struct{})
		l, err := topology.NewLoader(topology.LoaderCfg{
			File:    "testdata/leafspine.json",
			Reload:  reloadCh,
			Metrics: topology.LoaderMetrics{ReadErrors: mockCtr},
		})
		require.NoError(t, err)
		run(t, l)

		readErrCh := make(chan struct{})
		mockCtr.EXPECT().Add(float64(1)).Do(func(float64) {
			close(readErrCh)
		})
		topology.SetFile(l, "non-existing")
		reloadCh <- struct{}{}
		xtest.AssertReadReturnsBefore(t, readErrCh, time.Second)
		testBasicTopo(t, l)
	})
	t.Run("invalid reload is ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockCtr := mock_metrics.NewMockCounter(ctrl)
		mockValidator := mock_topology.NewMockValidator(ctrl)
		// initial load passes
		mockValidator.EXPECT().Validate(nil, gomock.Any())
		// the reload is rejected
		mockValidator.EXPECT().Validate(gomock.Not(gomock.Nil()), gomock.Any()).
			Return(errors.New("validation error"))
		reloadCh := make(chan struct{})
		l, err := topology.NewLoader(topology.LoaderCfg{
			File:      "testdata/leafspine.json",
			Reload:    reloadCh,
			Validator: mockValidator,
			Metrics:   topology.LoaderMetrics{ValidationErrors: mockCtr},
		})
		require.NoError(t, err)
		run(t, l)

		validationErrCh := make(chan struct{})
		mockCtr.EXPECT().Add(float64(1)).Do(func(float64) {
			close(validationErrCh)
		})
		reloadCh <- struct{}{}
		xtest.AssertReadReturnsBefore(t, validationErrCh, time.Second)
		testBasicTopo(t, l)
	})
	t.Run("valid reload is executed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockCtr := mock_metrics.NewMockCounter(ctrl)
		reloadCh := make(chan struct{})
		l, err := topology.NewLoader(topology.LoaderCfg{
			File:    "testdata/leafspine.json",
			Reload:  reloadCh,
			Metrics: topology.LoaderMetrics{Updates: mockCtr},
		})
		require.NoError(t, err)
		updates := l.Subscribe()
		run(t, l)
		testBasicTopo(t, l)

		mockCtr.EXPECT().Add(float64(1))
		file := modifiedTopo(t, func(j *topology.JSON) {
			j.Links = j.Links[:3]
		})
		topology.SetFile(l, file)
		reloadCh <- struct{}{}
		xtest.AssertReadReturnsBefore(t, updates, time.Second)
		assert.Len(t, l.Links(), 6)
	})
}

func TestStaticLoader(t *testing.T) {
	topo := topotest.Line(3)
	l := topology.NewStatic(topo)
	updates := l.Subscribe()
	assert.Len(t, l.Switches(), 3)
	assert.Len(t, l.Links(), 4)

	l.Set(topotest.LeafSpine())
	xtest.AssertReadReturnsBefore(t, updates, time.Second)
	assert.Len(t, l.Switches(), 4)
	assert.Len(t, l.Links(), 8)
	assert.Len(t, l.Hosts(), 4)
}

func TestLeafSpineMatchesFile(t *testing.T) {
	topo, err := topology.Load("testdata/leafspine.json")
	require.NoError(t, err)
	expected := topotest.LeafSpine()
	require.NoError(t, expected.Validate())
	assert.ElementsMatch(t, expected.Switches, topo.Switches)
	assert.ElementsMatch(t, expected.Links, topo.Links)
	assert.ElementsMatch(t, expected.Hosts, topo.Hosts)
}
