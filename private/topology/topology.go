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

// Package topology loads the static description of a switched network from
// a topology file and serves it as discovery source to the controller.
//
// The file lists every physical inter-switch link once. Loading it yields
// both directions of each link, the way link-layer discovery reports them.
package topology

import (
	"slices"

	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/private/serrors"
)

// Topology is an immutable snapshot of the network description.
type Topology struct {
	Switches []fabric.Switch
	Links    []fabric.Link
	Hosts    []fabric.Host
}

// Validate checks that links and hosts only reference known switch ports,
// that no port is used twice, and that MAC addresses are unique.
func (t *Topology) Validate() error {
	switches := make(map[fabric.DPID]fabric.Switch, len(t.Switches))
	for _, sw := range t.Switches {
		if _, ok := switches[sw.DPID]; ok {
			return serrors.New("duplicate switch", "dpid", sw.DPID)
		}
		switches[sw.DPID] = sw
	}
	used := make(map[fabric.Attachment]string)
	claim := func(a fabric.Attachment, owner string) error {
		sw, ok := switches[a.Switch]
		if !ok {
			return serrors.New("unknown switch", "owner", owner, "dpid", a.Switch)
		}
		if !sw.HasPort(a.Port) {
			return serrors.New("unknown port", "owner", owner, "attachment", a)
		}
		if prev, ok := used[a]; ok {
			return serrors.New("port used twice", "attachment", a,
				"first", prev, "second", owner)
		}
		used[a] = owner
		return nil
	}
	for _, l := range t.Links {
		if l.IsLoop() {
			return serrors.New("link is a loop", "link", l)
		}
		// Both directions of a link claim the same two ports; only the
		// source side is claimed per direction.
		if err := claim(l.Src, l.String()); err != nil {
			return err
		}
	}
	macs := make(map[string]struct{}, len(t.Hosts))
	for _, h := range t.Hosts {
		if len(h.MAC) != 6 {
			return serrors.New("invalid host MAC", "mac", h.MAC)
		}
		if _, ok := macs[h.MAC.String()]; ok {
			return serrors.New("duplicate host MAC", "mac", h.MAC)
		}
		macs[h.MAC.String()] = struct{}{}
		if err := claim(h.Attachment, h.MAC.String()); err != nil {
			return err
		}
		for _, ip := range h.IPv4 {
			if !ip.Is4() {
				return serrors.New("host address is not IPv4", "mac", h.MAC, "addr", ip)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the topology.
func (t *Topology) Clone() *Topology {
	c := &Topology{
		Switches: make([]fabric.Switch, 0, len(t.Switches)),
		Links:    slices.Clone(t.Links),
		Hosts:    make([]fabric.Host, 0, len(t.Hosts)),
	}
	for _, sw := range t.Switches {
		c.Switches = append(c.Switches, fabric.Switch{
			DPID:  sw.DPID,
			Ports: slices.Clone(sw.Ports),
		})
	}
	for _, h := range t.Hosts {
		c.Hosts = append(c.Hosts, fabric.Host{
			MAC:        slices.Clone(h.MAC),
			Attachment: h.Attachment,
			IPv4:       slices.Clone(h.IPv4),
		})
	}
	return c
}
