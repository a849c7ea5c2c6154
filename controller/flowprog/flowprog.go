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

// Package flowprog compiles paths into per-switch flow rules and submits
// them to the switches.
package flowprog

import (
	"context"
	"net"
	"slices"

	"github.com/gopacket/gopacket/layers"

	"github.com/sdnlab/fabric/controller/pathfinder"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/metrics"
	"github.com/sdnlab/fabric/pkg/private/serrors"
)

const (
	// DefaultPriority is the priority of path rules, above the table-miss
	// rule.
	DefaultPriority uint16 = 1
	// TableMissPriority is the priority of the table-miss rule.
	TableMissPriority uint16 = 0
)

// Options control the compiled rules.
type Options struct {
	// Priority of the rules. DefaultPriority if zero.
	Priority uint16
	// Buffer is the packet buffered by the switch that raised the packet-in.
	// Nil if the packet was not buffered.
	Buffer *Buffer
	// IdleTimeout and HardTimeout in seconds, 0 means no expiry.
	IdleTimeout uint16
	HardTimeout uint16
}

// Buffer identifies a packet buffered on a switch. Buffer ids are local to
// the switch, so the id is only attached to the rule of that switch.
type Buffer struct {
	Switch fabric.DPID
	ID     uint32
}

// NewBuffer returns the buffer reference of a packet-in, or nil if id is
// southbound.NoBuffer.
func NewBuffer(sw fabric.DPID, id uint32) *Buffer {
	if id == southbound.NoBuffer {
		return nil
	}
	return &Buffer{Switch: sw, ID: id}
}

func (o Options) priority() uint16 {
	if o.Priority == 0 {
		return DefaultPriority
	}
	return o.Priority
}

// Compile returns one rule per hop of p, matching IPv4 traffic from src to
// dst entering the hop's switch on the hop's in port and sending it out of
// the hop's out port. Rules are ordered tail to head, so rules downstream
// exist before the head of the path releases traffic.
func Compile(p pathfinder.Path, src, dst net.HardwareAddr, opts Options) []southbound.FlowMod {
	rules := make([]southbound.FlowMod, 0, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		rules = append(rules, rule(p[i].Switch, p[i].InPort, p[i].OutPort, src, dst, opts))
	}
	return rules
}

// Direct returns the single rule for hosts attached to the same switch.
func Direct(sw fabric.DPID, inPort, outPort fabric.PortNo, src, dst net.HardwareAddr,
	opts Options) []southbound.FlowMod {

	return []southbound.FlowMod{rule(sw, inPort, outPort, src, dst, opts)}
}

func rule(sw fabric.DPID, inPort, outPort fabric.PortNo, src, dst net.HardwareAddr,
	opts Options) southbound.FlowMod {

	bufferID := southbound.NoBuffer
	if b := opts.Buffer; b != nil && b.Switch == sw {
		bufferID = b.ID
	}
	return southbound.FlowMod{
		Switch:   sw,
		Priority: opts.priority(),
		Match: southbound.Match{
			InPort:  inPort,
			EthSrc:  slices.Clone(src),
			EthDst:  slices.Clone(dst),
			EthType: layers.EthernetTypeIPv4,
		},
		Actions:     []southbound.Action{southbound.Output(outPort)},
		BufferID:    bufferID,
		IdleTimeout: opts.IdleTimeout,
		HardTimeout: opts.HardTimeout,
	}
}

// TableMiss returns the rule that sends every unmatched packet to the
// controller in full.
func TableMiss(dpid fabric.DPID) southbound.FlowMod {
	return southbound.FlowMod{
		Switch:   dpid,
		Priority: TableMissPriority,
		Actions:  []southbound.Action{southbound.ToController()},
		BufferID: southbound.NoBuffer,
	}
}

// PacketOut returns the packet-out that forwards a frame that was not
// buffered, received at ingress, along p. It returns false if the frame was
// buffered, since the buffered rule releases it, or if the ingress switch is
// not on p.
func PacketOut(p pathfinder.Path, ingress fabric.Attachment, bufferID uint32,
	data []byte) (southbound.PacketOut, bool) {

	if bufferID != southbound.NoBuffer {
		return southbound.PacketOut{}, false
	}
	for _, hop := range p {
		if hop.Switch != ingress.Switch {
			continue
		}
		return southbound.PacketOut{
			Switch:   hop.Switch,
			InPort:   ingress.Port,
			BufferID: southbound.NoBuffer,
			Actions:  []southbound.Action{southbound.Output(hop.OutPort)},
			Data:     slices.Clone(data),
		}, true
	}
	return southbound.PacketOut{}, false
}

// Installer submits rules to a transport.
type Installer struct {
	Transport southbound.Transport
	// Results counts submissions by result label ("ok" or "error"). Optional.
	Results metrics.Counter
}

// Install submits rules in order. Submission is fire-and-forget: failures
// are logged and counted but not retried, and the remaining rules are still
// submitted. It returns the number of successfully submitted rules.
func (i Installer) Install(ctx context.Context, rules []southbound.FlowMod) int {
	logger := log.FromCtx(ctx)
	var ok int
	for _, r := range rules {
		if err := i.Transport.InstallFlow(ctx, r); err != nil {
			logger.Error("Failed to submit flow rule",
				"err", serrors.Wrap("installing flow", err, "dpid", r.Switch), "rule", r.String())
			metrics.CounterInc(metrics.CounterWith(i.Results, "result", "error"))
			continue
		}
		ok++
		metrics.CounterInc(metrics.CounterWith(i.Results, "result", "ok"))
	}
	return ok
}

// Install submits rules to t. See Installer.Install.
func Install(ctx context.Context, t southbound.Transport, rules []southbound.FlowMod) int {
	return Installer{Transport: t}.Install(ctx, rules)
}
