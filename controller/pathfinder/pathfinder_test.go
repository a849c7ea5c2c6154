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

package pathfinder_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnlab/fabric/controller/pathfinder"
	"github.com/sdnlab/fabric/controller/topology"
	"github.com/sdnlab/fabric/pkg/fabric"
	statictopo "github.com/sdnlab/fabric/private/topology"
	"github.com/sdnlab/fabric/private/topology/topotest"
)

func at(dpid fabric.DPID, port fabric.PortNo) fabric.Attachment {
	return fabric.Attachment{Switch: dpid, Port: port}
}

func graphOf(topo *statictopo.Topology) *topology.Graph {
	g := topology.NewGraph()
	g.Refresh(statictopo.NewStatic(topo))
	return g
}

func TestShortestPath(t *testing.T) {
	testCases := map[string]struct {
		topo      *statictopo.Topology
		src, dst  fabric.Attachment
		expected  pathfinder.Path
		assertErr assert.ErrorAssertionFunc
	}{
		"same switch": {
			topo:      topotest.LeafSpine(),
			src:       at(1, 3),
			dst:       at(1, 4),
			expected:  pathfinder.Path{{Switch: 1, InPort: 3, OutPort: 4}},
			assertErr: assert.NoError,
		},
		"leaf to leaf takes the lowest port spine": {
			topo: topotest.LeafSpine(),
			src:  at(1, 3),
			dst:  at(2, 4),
			expected: pathfinder.Path{
				{Switch: 1, InPort: 3, OutPort: 1},
				{Switch: 3, InPort: 1, OutPort: 2},
				{Switch: 2, InPort: 1, OutPort: 4},
			},
			assertErr: assert.NoError,
		},
		"line": {
			topo: topotest.Line(4),
			src:  at(4, 3),
			dst:  at(1, 3),
			expected: pathfinder.Path{
				{Switch: 4, InPort: 3, OutPort: 1},
				{Switch: 3, InPort: 2, OutPort: 1},
				{Switch: 2, InPort: 2, OutPort: 1},
				{Switch: 1, InPort: 2, OutPort: 3},
			},
			assertErr: assert.NoError,
		},
		"unknown source": {
			topo:      topotest.Line(2),
			src:       at(9, 1),
			dst:       at(1, 3),
			assertErr: assert.Error,
		},
		"unknown destination": {
			topo:      topotest.Line(2),
			src:       at(1, 3),
			dst:       at(9, 1),
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			p, err := pathfinder.ShortestPath(graphOf(tc.topo), tc.src, tc.dst)
			tc.assertErr(t, err)
			if err != nil {
				assert.ErrorIs(t, err, pathfinder.ErrNoPath)
				return
			}
			if diff := cmp.Diff(tc.expected, p); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShortestPathPartitioned(t *testing.T) {
	topo := topotest.Line(4)
	// cut the link between 2 and 3
	topo.Links = append(topo.Links[:2], topo.Links[4:]...)
	g := graphOf(topo)
	_, err := pathfinder.ShortestPath(g, at(1, 3), at(4, 3))
	assert.True(t, errors.Is(err, pathfinder.ErrNoPath))
}

func TestShortestPathAvoidsDownSwitch(t *testing.T) {
	d := statictopo.NewStatic(topotest.LeafSpine())
	g := topology.NewGraph()
	g.Refresh(d)
	g.SwitchDown(topotest.S3)
	g.Refresh(d)

	p, err := pathfinder.ShortestPath(g, at(1, 3), at(2, 3))
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.Equal(t, topotest.S4, p[1].Switch)
}

// TestShortestPathRandom compares hop counts with a reference breadth-first
// search on random graphs and checks that every path is connected.
func TestShortestPathRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for iter := 0; iter < 50; iter++ {
		n := 2 + rng.IntN(12)
		topo, adj := randomTopology(rng, n)
		g := graphOf(topo)
		for src := 1; src <= n; src++ {
			dist := referenceBFS(adj, src)
			for dst := 1; dst <= n; dst++ {
				p, err := pathfinder.ShortestPath(g,
					at(fabric.DPID(src), 100), at(fabric.DPID(dst), 101))
				d, reachable := dist[dst]
				if !reachable {
					assert.ErrorIs(t, err, pathfinder.ErrNoPath)
					continue
				}
				require.NoError(t, err)
				require.Equal(t, d+1, p.Len(), "src=%d dst=%d", src, dst)
				assert.Equal(t, fabric.PortNo(100), p[0].InPort)
				assert.Equal(t, fabric.PortNo(101), p[len(p)-1].OutPort)
				for i := 0; i+1 < len(p); i++ {
					assertLinked(t, g, p[i], p[i+1])
				}
			}
		}
	}
}

func assertLinked(t *testing.T, g *topology.Graph, a, b pathfinder.Hop) {
	t.Helper()
	for _, e := range g.Neighbors(a.Switch) {
		if e.Neighbor == b.Switch && e.LocalPort == a.OutPort && e.RemotePort == b.InPort {
			return
		}
	}
	t.Errorf("hops %s and %s are not linked", a, b)
}

func randomTopology(rng *rand.Rand, n int) (*statictopo.Topology, map[int][]int) {
	topo := &statictopo.Topology{}
	adj := map[int][]int{}
	nextPort := map[int]fabric.PortNo{}
	for i := 1; i <= n; i++ {
		topo.Switches = append(topo.Switches, fabric.Switch{DPID: fabric.DPID(i)})
		nextPort[i] = 1
	}
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			// parallel links are allowed
			for k := rng.IntN(4); k >= 2; k-- {
				l := fabric.Link{
					Src: at(fabric.DPID(i), nextPort[i]),
					Dst: at(fabric.DPID(j), nextPort[j]),
				}
				nextPort[i]++
				nextPort[j]++
				topo.Links = append(topo.Links, l, l.Reverse())
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}
	return topo, adj
}

func referenceBFS(adj map[int][]int, src int) map[int]int {
	dist := map[int]int{src: 0}
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if _, ok := dist[next]; !ok {
				dist[next] = dist[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	return dist
}
