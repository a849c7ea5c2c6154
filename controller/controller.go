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

// Package controller implements the packet-in dispatcher of the fabric
// controller.
//
// The controller consumes switch events. Packet-ins carrying ARP are handed
// to the ARP proxy. Packet-ins carrying IPv4 between known hosts cause the
// shortest path between the hosts to be computed and a flow program to be
// installed along it. Everything else is dropped and counted.
//
// All state is guarded by a single mutex that covers the whole per-event
// critical section. Messages to switches are submitted after the mutex is
// released.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/sdnlab/fabric/controller/arpproxy"
	"github.com/sdnlab/fabric/controller/flowprog"
	"github.com/sdnlab/fabric/controller/pathfinder"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/controller/topology"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/metrics"
	"github.com/sdnlab/fabric/pkg/private/serrors"
)

// ErrUnknownHost is returned by Plan if an address is not in the host table.
var ErrUnknownHost = errors.New("unknown host")

// Drop reasons.
const (
	reasonTruncated     = "truncated"
	reasonMalformed     = "malformed"
	reasonLLDP          = "lldp"
	reasonIPv6          = "ipv6"
	reasonUnsupported   = "unsupported_ethertype"
	reasonUnknownDst    = "unknown_destination"
	reasonSamePort      = "same_port"
	reasonNoPath        = "no_path"
	reasonARPUnroutable = "arp_unroutable"
	reasonARPIgnored    = "arp_ignored"
)

// Config configures a controller.
type Config struct {
	// Discovery enumerates switches, links and hosts. Required.
	Discovery topology.Discovery
	// Transport delivers messages to switches. Required.
	Transport southbound.Transport
	// Metrics of the controller. Optional.
	Metrics Metrics
	// Priority of installed path rules, flowprog.DefaultPriority if zero.
	Priority uint16
	// IdleTimeout and HardTimeout of path rules, zero means no expiry.
	IdleTimeout time.Duration
	HardTimeout time.Duration
	// ARPStaleness bounds the age of ARP cache entries, zero means entries
	// never expire.
	ARPStaleness time.Duration
}

// Controller dispatches switch events. It is safe for concurrent use.
type Controller struct {
	discovery topology.Discovery
	transport southbound.Transport
	installer flowprog.Installer
	metrics   Metrics
	opts      flowprog.Options

	mtx   sync.Mutex
	graph *topology.Graph
	proxy *arpproxy.Proxy
}

// New creates a controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Discovery == nil {
		return nil, serrors.New("discovery must be set")
	}
	if cfg.Transport == nil {
		return nil, serrors.New("transport must be set")
	}
	idle, err := timeoutSeconds(cfg.IdleTimeout)
	if err != nil {
		return nil, serrors.Wrap("invalid idle timeout", err)
	}
	hard, err := timeoutSeconds(cfg.HardTimeout)
	if err != nil {
		return nil, serrors.Wrap("invalid hard timeout", err)
	}
	return &Controller{
		discovery: cfg.Discovery,
		transport: cfg.Transport,
		installer: flowprog.Installer{
			Transport: cfg.Transport,
			Results:   cfg.Metrics.FlowsInstalled,
		},
		metrics: cfg.Metrics,
		opts: flowprog.Options{
			Priority:    cfg.Priority,
			IdleTimeout: idle,
			HardTimeout: hard,
		},
		graph: topology.NewGraph(),
		proxy: arpproxy.New(cfg.ARPStaleness),
	}, nil
}

// timeoutSeconds converts d to the whole seconds of a flow timeout. Zero
// disables expiry, so non-zero timeouts below one second are rejected.
func timeoutSeconds(d time.Duration) (uint16, error) {
	if d < 0 {
		return 0, serrors.New("negative timeout", "timeout", d)
	}
	if d > 0 && d < time.Second {
		return 0, serrors.New("timeout below one second", "timeout", d)
	}
	s := d / time.Second
	if s > 0xffff {
		return 0, serrors.New("timeout too large", "timeout", d, "max", 0xffff*time.Second)
	}
	return uint16(s), nil
}

// Run handles the events of the channel until it is closed or ctx is done.
// Errors of individual events are logged.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	logger := log.FromCtx(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := c.Handle(ctx, e); err != nil {
				logger.Error("Failed to handle event", "event", fmt.Sprint(e), "err", err)
			}
		}
	}
}

// Handle dispatches a single event.
func (c *Controller) Handle(ctx context.Context, e Event) error {
	switch e := e.(type) {
	case SwitchUp:
		return c.handleSwitchUp(ctx, e)
	case SwitchDown:
		c.handleSwitchDown(ctx, e)
		return nil
	case PacketIn:
		return c.HandlePacketIn(ctx, e)
	case LinkUpdate:
		c.mtx.Lock()
		c.refresh()
		c.mtx.Unlock()
		return nil
	default:
		return serrors.New("unknown event", "type", fmt.Sprintf("%T", e))
	}
}

func (c *Controller) handleSwitchUp(ctx context.Context, e SwitchUp) error {
	c.mtx.Lock()
	c.graph.SwitchUp(e.Switch.DPID)
	c.refresh()
	c.mtx.Unlock()

	log.FromCtx(ctx).Info("Switch connected", "dpid", e.Switch.DPID, "ports", len(e.Switch.Ports))
	if c.installer.Install(ctx, []southbound.FlowMod{flowprog.TableMiss(e.Switch.DPID)}) != 1 {
		return serrors.New("table-miss rule not submitted", "dpid", e.Switch.DPID)
	}
	return nil
}

func (c *Controller) handleSwitchDown(ctx context.Context, e SwitchDown) {
	c.mtx.Lock()
	c.graph.SwitchDown(e.DPID)
	c.updateGraphMetrics()
	c.mtx.Unlock()

	if f, ok := c.transport.(interface{ ForgetSwitch(fabric.DPID) }); ok {
		f.ForgetSwitch(e.DPID)
	}
	log.FromCtx(ctx).Info("Switch disconnected", "dpid", e.DPID)
}

// HandlePacketIn handles a frame sent to the controller. Frames that cannot
// be acted upon are dropped without an error.
func (c *Controller) HandlePacketIn(ctx context.Context, pi PacketIn) error {
	logger := log.FromCtx(ctx)
	if len(pi.Data) < pi.TotalLen {
		logger.Debug("Packet truncated", "dpid", pi.DPID, "in_port", pi.InPort,
			"len", len(pi.Data), "total_len", pi.TotalLen)
		c.drop(reasonTruncated)
		return nil
	}
	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(pi.Data, gopacket.NilDecodeFeedback); err != nil {
		c.countPacketIn("malformed")
		c.drop(reasonMalformed)
		return nil
	}
	switch eth.EthernetType {
	case layers.EthernetTypeARP:
		c.countPacketIn("arp")
		return c.handleARP(ctx, pi, eth.Payload)
	case layers.EthernetTypeIPv4:
		c.countPacketIn("ipv4")
		var ip layers.IPv4
		if err := ip.DecodeFromBytes(eth.Payload, gopacket.NilDecodeFeedback); err != nil {
			c.drop(reasonMalformed)
			return nil
		}
		c.handleIPv4(ctx, pi, eth.SrcMAC, eth.DstMAC)
		return nil
	case layers.EthernetTypeLinkLayerDiscovery:
		c.countPacketIn("lldp")
		c.drop(reasonLLDP)
	case layers.EthernetTypeIPv6:
		c.countPacketIn("ipv6")
		c.drop(reasonIPv6)
	default:
		c.countPacketIn("other")
		c.drop(reasonUnsupported)
	}
	return nil
}

func (c *Controller) handleARP(ctx context.Context, pi PacketIn, payload []byte) error {
	var a layers.ARP
	if err := a.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
		c.drop(reasonMalformed)
		return nil
	}
	ingress := fabric.Attachment{Switch: pi.DPID, Port: pi.InPort}

	c.mtx.Lock()
	c.refresh()
	hosts := fabric.NewHostTable(c.discovery.Hosts())
	d, err := c.proxy.Handle(arpproxy.Packet{Ingress: ingress, Frame: pi.Data, ARP: &a},
		hosts, c.graph)
	metrics.GaugeSet(c.metrics.ARPCacheEntries, float64(c.proxy.Len()))
	c.mtx.Unlock()

	if err != nil {
		return serrors.Wrap("handling ARP", err, "ingress", ingress)
	}
	switch d.Outcome {
	case arpproxy.Unroutable:
		log.FromCtx(ctx).Info("Dropping ARP reply to unreachable host", "ingress", ingress,
			"target_mac", net.HardwareAddr(a.DstHwAddress))
		c.drop(reasonARPUnroutable)
	case arpproxy.Ignored:
		c.drop(reasonARPIgnored)
	}
	c.sendPacketOuts(ctx, "arp_"+string(d.Outcome), d.Out)
	return nil
}

func (c *Controller) handleIPv4(ctx context.Context, pi PacketIn, srcMAC, dstMAC net.HardwareAddr) {
	logger := log.FromCtx(ctx)
	ingress := fabric.Attachment{Switch: pi.DPID, Port: pi.InPort}
	opts := c.opts
	opts.Buffer = flowprog.NewBuffer(pi.DPID, pi.BufferID)

	c.mtx.Lock()
	hosts := fabric.NewHostTable(c.discovery.Hosts())
	dst, ok := hosts.ByMAC(dstMAC)
	if !ok {
		c.mtx.Unlock()
		logger.Debug("Destination unknown", "ingress", ingress, "dst", dstMAC)
		c.drop(reasonUnknownDst)
		return
	}
	src := ingress
	if h, ok := hosts.ByMAC(srcMAC); ok {
		src = h.Attachment
	}
	c.refresh()
	if !c.graph.HasSwitch(dst.Attachment.Switch) {
		c.mtx.Unlock()
		logger.Info("Destination switch not connected", "dst", dst.Attachment, "dst_mac", dstMAC)
		c.drop(reasonNoPath)
		return
	}
	var path pathfinder.Path
	var rules []southbound.FlowMod
	if src.Switch == dst.Attachment.Switch {
		if src.Port == dst.Attachment.Port {
			c.mtx.Unlock()
			logger.Debug("Source and destination share a port", "at", src, "dst", dstMAC)
			c.drop(reasonSamePort)
			return
		}
		path = pathfinder.Path{{Switch: src.Switch, InPort: src.Port, OutPort: dst.Attachment.Port}}
		rules = flowprog.Direct(src.Switch, src.Port, dst.Attachment.Port, srcMAC, dstMAC, opts)
	} else {
		var err error
		path, err = pathfinder.ShortestPath(c.graph, src, dst.Attachment)
		if err != nil {
			c.mtx.Unlock()
			logger.Info("No path between hosts", "src", src, "dst", dst.Attachment,
				"src_mac", srcMAC, "dst_mac", dstMAC, "err", err)
			c.drop(reasonNoPath)
			return
		}
		rules = flowprog.Compile(path, srcMAC, dstMAC, opts)
	}
	c.mtx.Unlock()

	metrics.HistogramObserve(c.metrics.PathLength, float64(path.Len()))
	logger.Debug("Installing path", "src_mac", srcMAC, "dst_mac", dstMAC, "path", path.String())
	c.installer.Install(ctx, rules)
	if out, ok := flowprog.PacketOut(path, ingress, pi.BufferID, pi.Data); ok {
		c.sendPacketOuts(ctx, "forward", []southbound.PacketOut{out})
	}
}

func (c *Controller) sendPacketOuts(ctx context.Context, kind string, outs []southbound.PacketOut) {
	for _, out := range outs {
		result := "ok"
		if err := c.transport.PacketOut(ctx, out); err != nil {
			log.FromCtx(ctx).Error("Failed to submit packet-out",
				"err", serrors.Wrap("sending packet-out", err, "dpid", out.Switch),
				"packet_out", out.String())
			result = "error"
		}
		metrics.CounterInc(metrics.CounterWith(c.metrics.PacketOuts, "kind", kind, "result", result))
	}
}

// refresh rebuilds the graph. The caller must hold the lock.
func (c *Controller) refresh() {
	c.graph.Refresh(c.discovery)
	c.updateGraphMetrics()
}

func (c *Controller) updateGraphMetrics() {
	metrics.GaugeSet(c.metrics.GraphSwitches, float64(len(c.graph.Switches())))
	metrics.GaugeSet(c.metrics.GraphEdges, float64(c.graph.EdgeCount()))
}

func (c *Controller) countPacketIn(typ string) {
	metrics.CounterInc(metrics.CounterWith(c.metrics.PacketIns, "type", typ))
}

func (c *Controller) drop(reason string) {
	metrics.CounterInc(metrics.CounterWith(c.metrics.Dropped, "reason", reason))
}
