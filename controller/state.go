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
	"net"

	"github.com/sdnlab/fabric/controller/arpproxy"
	"github.com/sdnlab/fabric/controller/flowprog"
	"github.com/sdnlab/fabric/controller/pathfinder"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/controller/topology"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/private/serrors"
)

// Plan is the forwarding state the controller would install for traffic
// between two hosts.
type Plan struct {
	Src   fabric.Host
	Dst   fabric.Host
	Path  pathfinder.Path
	Rules []southbound.FlowMod
}

// Plan computes the path and the rules for IPv4 traffic from the host with
// MAC src to the host with MAC dst without installing anything.
func (c *Controller) Plan(src, dst net.HardwareAddr) (Plan, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	hosts := fabric.NewHostTable(c.discovery.Hosts())
	srcHost, ok := hosts.ByMAC(src)
	if !ok {
		return Plan{}, serrors.Join(ErrUnknownHost, nil, "mac", src)
	}
	dstHost, ok := hosts.ByMAC(dst)
	if !ok {
		return Plan{}, serrors.Join(ErrUnknownHost, nil, "mac", dst)
	}
	p := Plan{Src: srcHost, Dst: dstHost}
	from, to := srcHost.Attachment, dstHost.Attachment
	c.refresh()
	if !c.graph.HasSwitch(to.Switch) {
		return Plan{}, serrors.Join(pathfinder.ErrNoPath, nil, "dst", to, "reason", "switch down")
	}
	if from.Switch == to.Switch {
		p.Path = pathfinder.Path{{Switch: from.Switch, InPort: from.Port, OutPort: to.Port}}
		p.Rules = flowprog.Direct(from.Switch, from.Port, to.Port, src, dst, c.opts)
		return p, nil
	}
	path, err := pathfinder.ShortestPath(c.graph, from, to)
	if err != nil {
		return Plan{}, serrors.Wrap("computing path", err, "src", from, "dst", to)
	}
	p.Path = path
	p.Rules = flowprog.Compile(path, src, dst, c.opts)
	return p, nil
}

// Topology returns a copy of the current adjacency view.
func (c *Controller) Topology() topology.Snapshot {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.graph.Snapshot()
}

// Hosts returns the host table of the discovery collaborator.
func (c *Controller) Hosts() []fabric.Host {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return fabric.NewHostTable(c.discovery.Hosts()).Hosts()
}

// ARPEntries returns the ARP cache ordered by address.
func (c *Controller) ARPEntries() []arpproxy.Entry {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.proxy.Entries()
}
