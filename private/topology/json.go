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

package topology

import (
	"encoding/json"
	"io"
	"net"
	"net/netip"
	"slices"

	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/private/serrors"
	"github.com/sdnlab/fabric/private/config"
)

// JSON is the on-disk format of the topology file.
type JSON struct {
	Switches []JSONSwitch `json:"switches"`
	Links    []JSONLink   `json:"links"`
	Hosts    []JSONHost   `json:"hosts"`
}

type JSONSwitch struct {
	Name  string          `json:"name,omitempty"`
	DPID  fabric.DPID     `json:"dpid"`
	Ports []fabric.PortNo `json:"ports"`
}

// JSONLink is a physical, bidirectional link.
type JSONLink struct {
	A fabric.Attachment `json:"a"`
	B fabric.Attachment `json:"b"`
}

type JSONHost struct {
	Name string            `json:"name,omitempty"`
	MAC  string            `json:"mac"`
	At   fabric.Attachment `json:"attachment"`
	IPv4 []string          `json:"ipv4,omitempty"`
}

// Load reads and validates the topology at location, which is either a file
// path or an http(s) URL.
func Load(location string) (*Topology, error) {
	rc, err := config.LoadResource(location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, serrors.Wrap("reading topology", err, "location", location)
	}
	topo, err := FromJSONBytes(raw)
	if err != nil {
		return nil, serrors.Wrap("parsing topology", err, "location", location)
	}
	return topo, nil
}

// FromJSONBytes parses and validates a topology file.
func FromJSONBytes(raw []byte) (*Topology, error) {
	var j JSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	topo, err := j.Topology()
	if err != nil {
		return nil, err
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return topo, nil
}

// Topology converts the file representation. It does not validate the
// result.
func (j *JSON) Topology() (*Topology, error) {
	topo := &Topology{}
	for _, sw := range j.Switches {
		ports := slices.Clone(sw.Ports)
		slices.Sort(ports)
		topo.Switches = append(topo.Switches, fabric.Switch{DPID: sw.DPID, Ports: ports})
	}
	for _, l := range j.Links {
		link := fabric.Link{Src: l.A, Dst: l.B}
		topo.Links = append(topo.Links, link, link.Reverse())
	}
	for _, h := range j.Hosts {
		mac, err := net.ParseMAC(h.MAC)
		if err != nil {
			return nil, serrors.Wrap("parsing host MAC", err, "host", h.Name)
		}
		host := fabric.Host{MAC: mac, Attachment: h.At}
		for _, s := range h.IPv4 {
			ip, err := netip.ParseAddr(s)
			if err != nil {
				return nil, serrors.Wrap("parsing host address", err, "host", h.Name)
			}
			host.IPv4 = append(host.IPv4, ip)
		}
		topo.Hosts = append(topo.Hosts, host)
	}
	return topo, nil
}
