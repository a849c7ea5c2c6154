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

// Package topotest provides topologies for tests.
package topotest

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/private/topology"
)

// Switch identifiers of the leaf-spine topology.
const (
	S1 fabric.DPID = 1
	S2 fabric.DPID = 2
	S3 fabric.DPID = 3
	S4 fabric.DPID = 4
)

// LeafSpine returns the 2x2 leaf-spine topology: leaves s1 and s2, spines s3
// and s4. Every leaf connects to every spine through ports 1 (s3) and 2
// (s4). Host hN has MAC 00:00:00:00:00:0N and address 10.0.0.N; h1 and h2
// are attached to s1 ports 3 and 4, h3 and h4 to s2 ports 3 and 4.
func LeafSpine() *topology.Topology {
	topo := &topology.Topology{
		Switches: []fabric.Switch{
			{DPID: S1, Ports: []fabric.PortNo{1, 2, 3, 4}},
			{DPID: S2, Ports: []fabric.PortNo{1, 2, 3, 4}},
			{DPID: S3, Ports: []fabric.PortNo{1, 2}},
			{DPID: S4, Ports: []fabric.PortNo{1, 2}},
		},
	}
	for i, leaf := range []fabric.DPID{S1, S2} {
		for j, spine := range []fabric.DPID{S3, S4} {
			l := fabric.Link{
				Src: fabric.Attachment{Switch: leaf, Port: fabric.PortNo(j + 1)},
				Dst: fabric.Attachment{Switch: spine, Port: fabric.PortNo(i + 1)},
			}
			topo.Links = append(topo.Links, l, l.Reverse())
		}
	}
	for n := 1; n <= 4; n++ {
		leaf := S1
		if n > 2 {
			leaf = S2
		}
		topo.Hosts = append(topo.Hosts, Host(n, fabric.Attachment{
			Switch: leaf,
			Port:   fabric.PortNo(3 + (n-1)%2),
		}))
	}
	return topo
}

// Host returns host hN at the given attachment.
func Host(n int, at fabric.Attachment) fabric.Host {
	return fabric.Host{
		MAC:        MAC(n),
		Attachment: at,
		IPv4:       []netip.Addr{IP(n)},
	}
}

// MAC returns the MAC address of host hN.
func MAC(n int) net.HardwareAddr {
	mac, err := net.ParseMAC(fmt.Sprintf("00:00:00:00:00:%02x", n))
	if err != nil {
		panic(err)
	}
	return mac
}

// IP returns the IPv4 address of host hN.
func IP(n int) netip.Addr {
	return netip.AddrFrom4([4]byte{10, 0, 0, byte(n)})
}

// Line returns n switches 1..n connected in a line. Switch i uses port 1
// towards i-1 and port 2 towards i+1. Host hI is attached to port 3 of
// switch i.
func Line(n int) *topology.Topology {
	topo := &topology.Topology{}
	for i := 1; i <= n; i++ {
		topo.Switches = append(topo.Switches, fabric.Switch{
			DPID:  fabric.DPID(i),
			Ports: []fabric.PortNo{1, 2, 3},
		})
		topo.Hosts = append(topo.Hosts, Host(i, fabric.Attachment{
			Switch: fabric.DPID(i),
			Port:   3,
		}))
		if i > 1 {
			l := fabric.Link{
				Src: fabric.Attachment{Switch: fabric.DPID(i - 1), Port: 2},
				Dst: fabric.Attachment{Switch: fabric.DPID(i), Port: 1},
			}
			topo.Links = append(topo.Links, l, l.Reverse())
		}
	}
	return topo
}
