// Copyright 2018 ETH Zurich, Anapaya Systems
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

// Package env contains configuration blocks and start up helpers shared by
// the fabric processes. Anything specific to one process belongs into that
// process' own packages.
package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/private/serrors"
	"github.com/sdnlab/fabric/private/config"
)

const (
	// TopologyFile is the file name of the static topology description.
	TopologyFile = "topology.json"

	// ShutdownGraceInterval is the time processes wait after issuing a
	// clean shutdown, before forcefully tearing down.
	ShutdownGraceInterval = 5 * time.Second

	// HandlerTimeout is the time after which the metrics handler gives up on
	// a request and returns an error instead.
	HandlerTimeout = time.Minute

	// DefaultAPIAddress is the default listen address of the management API.
	DefaultAPIAddress = "127.0.0.1:8080"
)

var _ config.Config = (*General)(nil)

type General struct {
	// ID is the identifier of the controller instance. It is used in logs
	// and reported by the management API.
	ID string `toml:"id,omitempty"`
	// ConfigDir is the directory that holds the topology file.
	ConfigDir string `toml:"config_dir,omitempty"`
}

func (cfg *General) InitDefaults() {}

func (cfg *General) Validate() error {
	if cfg.ID == "" {
		return serrors.New("no instance id specified")
	}
	return cfg.checkDir()
}

func (cfg *General) checkDir() error {
	if cfg.ConfigDir == "" {
		return nil
	}
	info, err := os.Stat(cfg.ConfigDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return serrors.New("config_dir is not a directory", "dir", cfg.ConfigDir)
	}
	return nil
}

func (cfg *General) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteString(dst, fmt.Sprintf(generalSample, ctx[config.ID]))
}

func (cfg *General) ConfigName() string {
	return "general"
}

// Topology returns the path to the topology file.
func (cfg *General) Topology() string {
	return filepath.Join(cfg.ConfigDir, TopologyFile)
}

var _ config.Config = (*Metrics)(nil)

type Metrics struct {
	config.NoDefaulter
	config.NoValidator
	// Prometheus contains the address to export prometheus metrics on. If
	// not set, metrics are not exported.
	Prometheus string `toml:"prometheus,omitempty"`
}

func (cfg *Metrics) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}

// ServePrometheus serves /metrics on the configured address until ctx is
// done. It returns immediately if no address is configured.
func (cfg *Metrics) ServePrometheus(ctx context.Context) error {
	if cfg.Prometheus == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{Timeout: HandlerTimeout},
		),
	))
	log.Info("Exporting prometheus metrics", "addr", cfg.Prometheus)

	server := &http.Server{Addr: cfg.Prometheus, Handler: mux}
	go func() {
		defer log.HandlePanic()
		<-ctx.Done()
		server.Close()
	}()
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return serrors.Wrap("serving prometheus metrics", err)
	}
	return nil
}

var _ config.Config = (*API)(nil)

// API is the configuration of the management API.
type API struct {
	// Addr is the listen address. An empty value after defaulting is not
	// possible; set it to "off" to disable the API.
	Addr string `toml:"addr,omitempty"`
}

func (cfg *API) InitDefaults() {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAPIAddress
	}
}

func (cfg *API) Validate() error {
	if !cfg.Enabled() {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return serrors.Wrap("invalid api address", err, "addr", cfg.Addr)
	}
	return nil
}

// Enabled reports whether the API should be served.
func (cfg *API) Enabled() bool {
	return cfg.Addr != "off"
}

func (cfg *API) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, apiSample)
}

func (cfg *API) ConfigName() string {
	return "api"
}

// LogAppStarted should be called by processes as soon as logging is
// initialized.
func LogAppStarted(name, id string) error {
	info := fmt.Sprintf("=====================> Service started %s %s\n"+
		"%s  %s\n  %s\n",
		name,
		id,
		VersionInfo(),
		fmt.Sprintf("pid:           %d", os.Getpid()),
		fmt.Sprintf("cmd line:      %q", os.Args),
	)
	log.Info(info)
	return nil
}

func LogAppStopped(name, id string) {
	log.Info(fmt.Sprintf("=====================> Service stopped %s %s", name, id))
}

// VersionInfo returns the build information of the running binary.
func VersionInfo() string {
	version, goVersion := "(devel)", "unknown"
	if bi, ok := debug.ReadBuildInfo(); ok {
		goVersion = bi.GoVersion
		if bi.Main.Version != "" {
			version = bi.Main.Version
		}
	}
	return fmt.Sprintf("  %s\n  %s\n",
		fmt.Sprintf("Version:       %s", version),
		fmt.Sprintf("Go version:    %s", goVersion),
	)
}
