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

// Package topology maintains the controller's adjacency view of the switched
// network. The view is a read-through cache over a discovery source: Refresh
// rebuilds it from the switches and links the source currently reports.
//
// A Graph is not safe for concurrent use.
package topology

import (
	"cmp"
	"slices"

	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/log"
)

// Discovery enumerates the current state of the network.
type Discovery interface {
	Switches() []fabric.Switch
	Links() []fabric.Link
	Hosts() []fabric.Host
}

// Adjacency is an outgoing edge of a switch.
type Adjacency struct {
	Neighbor   fabric.DPID
	LocalPort  fabric.PortNo
	RemotePort fabric.PortNo
}

func compareAdjacency(a, b Adjacency) int {
	switch {
	case a.LocalPort != b.LocalPort:
		return cmp.Compare(a.LocalPort, b.LocalPort)
	case a.Neighbor != b.Neighbor:
		return cmp.Compare(a.Neighbor, b.Neighbor)
	default:
		return cmp.Compare(a.RemotePort, b.RemotePort)
	}
}

// Graph is the adjacency view.
type Graph struct {
	switches map[fabric.DPID]fabric.Switch
	adj      map[fabric.DPID][]Adjacency
	// down holds switches whose control session ended. They are excluded
	// from refreshes until they come back up.
	down  map[fabric.DPID]struct{}
	edges int
}

func NewGraph() *Graph {
	return &Graph{
		switches: make(map[fabric.DPID]fabric.Switch),
		adj:      make(map[fabric.DPID][]Adjacency),
		down:     make(map[fabric.DPID]struct{}),
	}
}

// Refresh replaces the view with the switches and links reported by d.
// Links that are loops, duplicates, or that reference an unknown or down
// switch are dropped. Refreshing twice from the same state yields the same
// view.
func (g *Graph) Refresh(d Discovery) {
	switches := make(map[fabric.DPID]fabric.Switch)
	for _, sw := range d.Switches() {
		if _, down := g.down[sw.DPID]; down {
			continue
		}
		switches[sw.DPID] = fabric.Switch{DPID: sw.DPID, Ports: slices.Clone(sw.Ports)}
	}

	adj := make(map[fabric.DPID][]Adjacency, len(switches))
	seen := make(map[fabric.Link]struct{})
	var rejected int
	for _, l := range d.Links() {
		_, srcOK := switches[l.Src.Switch]
		_, dstOK := switches[l.Dst.Switch]
		if _, dup := seen[l]; dup || l.IsLoop() || !srcOK || !dstOK {
			rejected++
			continue
		}
		seen[l] = struct{}{}
		adj[l.Src.Switch] = append(adj[l.Src.Switch], Adjacency{
			Neighbor:   l.Dst.Switch,
			LocalPort:  l.Src.Port,
			RemotePort: l.Dst.Port,
		})
	}
	for _, edges := range adj {
		slices.SortFunc(edges, compareAdjacency)
	}
	if rejected > 0 {
		log.Debug("Dropped links on topology refresh", "rejected", rejected)
	}
	g.switches = switches
	g.adj = adj
	g.edges = len(seen)
}

// Neighbors returns the outgoing edges of dpid, ordered by local port,
// neighbor and remote port. The result must not be modified.
func (g *Graph) Neighbors(dpid fabric.DPID) []Adjacency {
	return g.adj[dpid]
}

// HasSwitch reports whether dpid is part of the view.
func (g *Graph) HasSwitch(dpid fabric.DPID) bool {
	_, ok := g.switches[dpid]
	return ok
}

// Switches returns the switches of the view ordered by datapath id.
func (g *Graph) Switches() []fabric.Switch {
	switches := make([]fabric.Switch, 0, len(g.switches))
	for _, sw := range g.switches {
		switches = append(switches, sw)
	}
	slices.SortFunc(switches, func(a, b fabric.Switch) int {
		return cmp.Compare(a.DPID, b.DPID)
	})
	return switches
}

// IsInterSwitchPort reports whether a is the local end of an edge.
func (g *Graph) IsInterSwitchPort(a fabric.Attachment) bool {
	for _, e := range g.adj[a.Switch] {
		if e.LocalPort == a.Port {
			return true
		}
	}
	return false
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// SwitchDown removes dpid and all edges from or to it. The switch stays
// excluded from refreshes until SwitchUp is called.
func (g *Graph) SwitchDown(dpid fabric.DPID) {
	g.down[dpid] = struct{}{}
	if _, ok := g.switches[dpid]; !ok {
		return
	}
	delete(g.switches, dpid)
	g.edges -= len(g.adj[dpid])
	delete(g.adj, dpid)
	for src, edges := range g.adj {
		kept := edges[:0]
		for _, e := range edges {
			if e.Neighbor != dpid {
				kept = append(kept, e)
			}
		}
		g.edges -= len(edges) - len(kept)
		if len(kept) == 0 {
			delete(g.adj, src)
			continue
		}
		g.adj[src] = kept
	}
}

// SwitchUp lifts the exclusion of dpid. The switch becomes part of the view
// on the next refresh.
func (g *Graph) SwitchUp(dpid fabric.DPID) {
	delete(g.down, dpid)
}

// Snapshot is a copy of the view.
type Snapshot struct {
	Switches []fabric.Switch
	Links    []fabric.Link
}

// Snapshot copies the view. Links are ordered by source switch and then in
// adjacency order.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{Switches: g.Switches()}
	for i, sw := range s.Switches {
		s.Switches[i].Ports = slices.Clone(sw.Ports)
		for _, e := range g.adj[sw.DPID] {
			s.Links = append(s.Links, fabric.Link{
				Src: fabric.Attachment{Switch: sw.DPID, Port: e.LocalPort},
				Dst: fabric.Attachment{Switch: e.Neighbor, Port: e.RemotePort},
			})
		}
	}
	return s
}
