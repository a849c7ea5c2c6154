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

// Package pathfinder computes minimum hop paths between attachment points.
//
// The search is a breadth-first search over switches. Each switch is visited
// at most once and the first edge that reaches a switch is kept, so among
// equal length paths the one discovered first wins. With a graph that
// enumerates neighbors in a stable order, results are deterministic.
package pathfinder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sdnlab/fabric/controller/topology"
	"github.com/sdnlab/fabric/pkg/fabric"
)

// ErrNoPath is returned if the destination is not reachable from the
// source.
var ErrNoPath = errors.New("no path")

// Graph is the adjacency view the search runs on.
type Graph interface {
	HasSwitch(dpid fabric.DPID) bool
	Neighbors(dpid fabric.DPID) []topology.Adjacency
}

// Hop is the traversal of one switch.
type Hop struct {
	Switch  fabric.DPID
	InPort  fabric.PortNo
	OutPort fabric.PortNo
}

func (h Hop) String() string {
	return fmt.Sprintf("%s[%s->%s]", h.Switch, h.InPort, h.OutPort)
}

// Path is a sequence of hops. Consecutive hops are joined by a link.
type Path []Hop

// Len returns the number of hops.
func (p Path) Len() int {
	return len(p)
}

func (p Path) String() string {
	hops := make([]string, 0, len(p))
	for _, h := range p {
		hops = append(hops, h.String())
	}
	return strings.Join(hops, " ")
}

// pred is the edge through which a switch was first reached.
type pred struct {
	from    fabric.DPID
	outPort fabric.PortNo
	inPort  fabric.PortNo
}

// ShortestPath returns a minimum hop path from src to dst. If both are on
// the same switch, the path has a single hop from src.Port to dst.Port.
// ErrNoPath is returned if dst is unreachable or src is not in the graph.
func ShortestPath(g Graph, src, dst fabric.Attachment) (Path, error) {
	if src.Switch == dst.Switch {
		return Path{{Switch: src.Switch, InPort: src.Port, OutPort: dst.Port}}, nil
	}
	if !g.HasSwitch(src.Switch) || !g.HasSwitch(dst.Switch) {
		return nil, ErrNoPath
	}
	preds := map[fabric.DPID]pred{}
	visited := map[fabric.DPID]struct{}{src.Switch: {}}
	queue := []fabric.DPID{src.Switch}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Neighbors(cur) {
			if _, ok := visited[e.Neighbor]; ok {
				continue
			}
			visited[e.Neighbor] = struct{}{}
			preds[e.Neighbor] = pred{from: cur, outPort: e.LocalPort, inPort: e.RemotePort}
			if e.Neighbor == dst.Switch {
				return buildPath(preds, src, dst), nil
			}
			queue = append(queue, e.Neighbor)
		}
	}
	return nil, ErrNoPath
}

// buildPath walks the predecessors back from dst and returns the hops in
// forward order.
func buildPath(preds map[fabric.DPID]pred, src, dst fabric.Attachment) Path {
	var rev Path
	cur := dst.Switch
	out := dst.Port
	for cur != src.Switch {
		p := preds[cur]
		rev = append(rev, Hop{Switch: cur, InPort: p.inPort, OutPort: out})
		cur, out = p.from, p.outPort
	}
	rev = append(rev, Hop{Switch: src.Switch, InPort: src.Port, OutPort: out})
	path := make(Path, len(rev))
	for i, h := range rev {
		path[len(rev)-1-i] = h
	}
	return path
}
