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

// The controller daemon serves the leaf-spine fabric described by the
// topology file in its configuration directory.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/sdnlab/fabric/controller"
	"github.com/sdnlab/fabric/controller/config"
	"github.com/sdnlab/fabric/controller/mgmtapi"
	"github.com/sdnlab/fabric/controller/replay"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/metrics"
	"github.com/sdnlab/fabric/pkg/private/serrors"
	"github.com/sdnlab/fabric/private/app/launcher"
	libconfig "github.com/sdnlab/fabric/private/config"
	"github.com/sdnlab/fabric/private/topology"
)

// eventQueueSize bounds the events waiting for the controller.
const eventQueueSize = 256

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "Fabric Controller",
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	reload := make(chan struct{}, 1)
	loader, err := topology.NewLoader(topology.LoaderCfg{
		File:    globalCfg.General.Topology(),
		Reload:  reload,
		Metrics: newLoaderMetrics(),
	})
	if err != nil {
		return serrors.Wrap("loading topology", err)
	}
	attachments, err := globalCfg.Replay.Attachments()
	if err != nil {
		return err
	}

	// No switch session layer is wired into this process: submitted
	// messages end up in the journal, which the management API exposes.
	journal := &southbound.Journal{}
	ctrl, err := controller.New(controller.Config{
		Discovery:    loader,
		Transport:    journal,
		Metrics:      controller.NewMetrics(),
		Priority:     globalCfg.Controller.FlowPriority,
		IdleTimeout:  globalCfg.Controller.IdleTimeout.Duration,
		HardTimeout:  globalCfg.Controller.HardTimeout.Duration,
		ARPStaleness: globalCfg.Controller.ARPStaleness.Duration,
	})
	if err != nil {
		return serrors.Wrap("creating controller", err)
	}

	g, errCtx := errgroup.WithContext(ctx)
	events := make(chan controller.Event, eventQueueSize)

	g.Go(func() error {
		defer log.HandlePanic()
		forwardSignals(errCtx, reload)
		return nil
	})
	g.Go(func() error {
		defer log.HandlePanic()
		return loader.Run(errCtx)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		return ctrl.Run(errCtx, events)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		updates := loader.Subscribe()
		for {
			select {
			case <-errCtx.Done():
				return nil
			case <-updates:
				if !send(errCtx, events, controller.LinkUpdate{}) {
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		defer log.HandlePanic()
		for _, sw := range loader.Switches() {
			if !send(errCtx, events, controller.SwitchUp{Switch: sw}) {
				return nil
			}
		}
		if globalCfg.Replay.Capture == "" {
			return nil
		}
		r := replay.Replayer{
			Interfaces: attachments,
			Realtime:   globalCfg.Replay.Realtime,
		}
		stats, err := r.ReplayFile(errCtx, globalCfg.Replay.Capture, events)
		if err != nil {
			return err
		}
		log.Info("Replayed capture", "file", globalCfg.Replay.Capture,
			"sent", stats.Sent, "skipped", stats.Skipped)
		return nil
	})
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.ServePrometheus(errCtx)
	})

	if globalCfg.API.Enabled() {
		info, err := instanceInfo()
		if err != nil {
			return err
		}
		server := mgmtapi.Server{
			Controller: ctrl,
			Flows:      journal,
			Info:       info,
		}
		mgmtServer := &http.Server{
			Addr:    globalCfg.API.Addr,
			Handler: server.Handler(),
		}
		log.Info("Exposing API", "addr", globalCfg.API.Addr)
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			return mgmtServer.Close()
		})
		g.Go(func() error {
			defer log.HandlePanic()
			err := mgmtServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving management API", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// forwardSignals turns SIGHUP into topology reload requests until ctx is
// done.
func forwardSignals(ctx context.Context, reload chan<- struct{}) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	defer signal.Stop(sig)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			log.Info("Received SIGHUP, reloading topology")
			select {
			case reload <- struct{}{}:
			default:
			}
		}
	}
}

func send(ctx context.Context, events chan<- controller.Event, e controller.Event) bool {
	select {
	case events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

func instanceInfo() (mgmtapi.Info, error) {
	digest, err := libconfig.Digest(&globalCfg)
	if err != nil {
		return mgmtapi.Info{}, serrors.Wrap("computing config digest", err)
	}
	info := mgmtapi.Info{
		ID:           globalCfg.General.ID,
		ConfigDigest: hex.EncodeToString(digest),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Version = bi.Main.Version
	}
	return info, nil
}

func newLoaderMetrics() topology.LoaderMetrics {
	results := metrics.NewPromCounter(promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_loads_total",
			Help: "Total number of topology file loads by result.",
		},
		[]string{"result"},
	))
	return topology.LoaderMetrics{
		ReadErrors:       results.With("result", "err_read"),
		ValidationErrors: results.With("result", "err_validate"),
		Updates:          results.With("result", "ok"),
	}
}
