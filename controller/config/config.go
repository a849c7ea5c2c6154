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

// Package config describes the configuration of the fabric controller.
package config

import (
	"io"
	"strings"
	"time"

	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/private/serrors"
	"github.com/sdnlab/fabric/pkg/private/util"
	"github.com/sdnlab/fabric/private/config"
	"github.com/sdnlab/fabric/private/env"
)

const (
	// DefaultFlowPriority is the priority of path rules, above the
	// table-miss rule.
	DefaultFlowPriority = 1
	// MaxFlowTimeout is the largest flow timeout OpenFlow can express.
	MaxFlowTimeout = 0xffff * time.Second
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of the controller daemon.
type Config struct {
	General    env.General `toml:"general,omitempty"`
	Logging    env.Logging `toml:"log,omitempty"`
	Metrics    env.Metrics `toml:"metrics,omitempty"`
	API        env.API     `toml:"api,omitempty"`
	Controller Controller  `toml:"controller,omitempty"`
	Replay     Replay      `toml:"replay,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Controller,
		&cfg.Replay,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Controller,
		&cfg.Replay,
	)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	if ctx[config.ID] == "" {
		ctx = config.CtxMap{config.ID: "controller"}
	}
	config.WriteSample(dst, path, ctx,
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Controller,
		&cfg.Replay,
	)
}

// Controller holds the forwarding behavior of the controller.
type Controller struct {
	// FlowPriority is the priority of installed path rules.
	FlowPriority uint16 `toml:"flow_priority,omitempty"`
	// IdleTimeout and HardTimeout of path rules. Zero disables expiry.
	IdleTimeout util.DurWrap `toml:"idle_timeout,omitempty"`
	HardTimeout util.DurWrap `toml:"hard_timeout,omitempty"`
	// ARPStaleness is the maximum age of ARP cache entries. Zero means
	// entries never expire.
	ARPStaleness util.DurWrap `toml:"arp_staleness,omitempty"`
}

func (cfg *Controller) InitDefaults() {
	if cfg.FlowPriority == 0 {
		cfg.FlowPriority = DefaultFlowPriority
	}
}

func (cfg *Controller) Validate() error {
	for name, d := range map[string]time.Duration{
		"idle_timeout": cfg.IdleTimeout.Duration,
		"hard_timeout": cfg.HardTimeout.Duration,
	} {
		if d < 0 || d > MaxFlowTimeout {
			return serrors.New("flow timeout out of range", "key", name, "value", d,
				"max", MaxFlowTimeout)
		}
		if d > 0 && d < time.Second {
			return serrors.New("flow timeout below one second", "key", name, "value", d)
		}
	}
	if cfg.ARPStaleness.Duration < 0 {
		return serrors.New("negative arp_staleness", "value", cfg.ARPStaleness)
	}
	return nil
}

func (cfg *Controller) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, controllerSample)
}

func (cfg *Controller) ConfigName() string {
	return "controller"
}

// Replay configures the replay of a packet capture as packet-ins.
type Replay struct {
	config.NoDefaulter
	// Capture is the pcapng file to replay at startup. Empty disables
	// replay.
	Capture string `toml:"capture,omitempty"`
	// Realtime replays frames with the gaps recorded in the capture.
	Realtime bool `toml:"realtime,omitempty"`
	// Interfaces maps capture interfaces, by name or index, to attachment
	// points in "<dpid>:<port>" notation.
	Interfaces map[string]string `toml:"interfaces,omitempty"`
}

func (cfg *Replay) Validate() error {
	_, err := cfg.Attachments()
	return err
}

// Attachments returns the parsed interface mapping.
func (cfg *Replay) Attachments() (map[string]fabric.Attachment, error) {
	attachments := make(map[string]fabric.Attachment, len(cfg.Interfaces))
	for iface, raw := range cfg.Interfaces {
		at, err := fabric.ParseAttachment(raw)
		if err != nil {
			return nil, serrors.Wrap("invalid replay interface mapping", err,
				"interface", iface)
		}
		attachments[iface] = at
	}
	return attachments, nil
}

func (cfg *Replay) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, replaySample)
	config.WriteString(dst, "\n["+strings.Join(path.Extend("interfaces"), ".")+"]")
	config.WriteString(dst, replayInterfacesSample)
}

func (cfg *Replay) ConfigName() string {
	return "replay"
}
