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

package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sdnlab/fabric/pkg/metrics"
)

// Metrics are the metrics of the controller. Nil fields are ignored.
type Metrics struct {
	// PacketIns counts packet-in events by "type" (arp, ipv4, ipv6, lldp,
	// other, malformed).
	PacketIns metrics.Counter
	// Dropped counts frames the controller did not act on, by "reason".
	Dropped metrics.Counter
	// FlowsInstalled counts flow rule submissions by "result".
	FlowsInstalled metrics.Counter
	// PacketOuts counts packet-out submissions by "kind" and "result".
	PacketOuts metrics.Counter
	// ARPCacheEntries is the number of cached ARP mappings.
	ARPCacheEntries metrics.Gauge
	// PathLength observes the hop count of computed paths.
	PathLength metrics.Histogram
	// GraphSwitches and GraphEdges describe the adjacency view.
	GraphSwitches metrics.Gauge
	GraphEdges    metrics.Gauge
}

// NewMetrics creates the controller metrics and registers them with the
// default registry. It must only be called once per process.
func NewMetrics() Metrics {
	return Metrics{
		PacketIns: metrics.NewPromCounter(promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controller_packet_in_total",
				Help: "Total number of packet-in events by frame type.",
			},
			[]string{"type"},
		)),
		Dropped: metrics.NewPromCounter(promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controller_dropped_packets_total",
				Help: "Total number of packet-in frames dropped by the controller.",
			},
			[]string{"reason"},
		)),
		FlowsInstalled: metrics.NewPromCounter(promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controller_flows_installed_total",
				Help: "Total number of flow rules submitted to switches.",
			},
			[]string{"result"},
		)),
		PacketOuts: metrics.NewPromCounter(promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "controller_packet_out_total",
				Help: "Total number of packet-out messages submitted to switches.",
			},
			[]string{"kind", "result"},
		)),
		ARPCacheEntries: metrics.NewPromGauge(promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "controller_arp_cache_entries",
				Help: "Number of IPv4 to MAC mappings in the ARP proxy cache.",
			},
			[]string{},
		)),
		PathLength: metrics.NewPromHistogram(promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "controller_path_length_hops",
				Help:    "Number of switches on computed forwarding paths.",
				Buckets: prometheus.LinearBuckets(1, 1, 8),
			},
			[]string{},
		)),
		GraphSwitches: metrics.NewPromGauge(promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "controller_graph_switches",
				Help: "Number of switches in the topology graph.",
			},
			[]string{},
		)),
		GraphEdges: metrics.NewPromGauge(promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "controller_graph_edges",
				Help: "Number of directed inter-switch edges in the topology graph.",
			},
			[]string{},
		)),
	}
}
