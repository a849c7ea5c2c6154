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

package fabric

import (
	"fmt"
	"net"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/sdnlab/fabric/pkg/private/serrors"
)

// Attachment is a (switch, port) pair. For hosts it is the point where the
// host's traffic enters the switched network, for links it is one end of the
// link.
type Attachment struct {
	Switch DPID   `json:"dpid"`
	Port   PortNo `json:"port"`
}

func (a Attachment) String() string {
	return fmt.Sprintf("%s:%s", a.Switch, a.Port)
}

// ParseAttachment parses "<dpid>:<port>", where dpid is in any format
// accepted by ParseDPID and port is a decimal physical port number.
func ParseAttachment(s string) (Attachment, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Attachment{}, serrors.New("invalid attachment point", "value", s)
	}
	dpid, err := ParseDPID(s[:i])
	if err != nil {
		return Attachment{}, serrors.Wrap("invalid attachment point", err, "value", s)
	}
	port, err := strconv.ParseUint(s[i+1:], 10, 32)
	if err != nil || !PortNo(port).IsPhysical() {
		return Attachment{}, serrors.New("invalid attachment port", "value", s)
	}
	return Attachment{Switch: dpid, Port: PortNo(port)}, nil
}

// Switch is a switch as reported by the discovery collaborator.
type Switch struct {
	DPID  DPID
	Ports []PortNo
}

// HasPort reports whether p is one of the switch's ports.
func (s Switch) HasPort(p PortNo) bool {
	return slices.Contains(s.Ports, p)
}

// Link is a directed edge between two switch ports. Discovery reports both
// directions of a physical link as two separate links.
type Link struct {
	Src Attachment
	Dst Attachment
}

// IsLoop reports whether the link connects a switch to itself.
func (l Link) IsLoop() bool {
	return l.Src.Switch == l.Dst.Switch
}

// Reverse returns the link in the opposite direction.
func (l Link) Reverse() Link {
	return Link{Src: l.Dst, Dst: l.Src}
}

func (l Link) String() string {
	return fmt.Sprintf("%s->%s", l.Src, l.Dst)
}

// Host is an end host learned by discovery.
type Host struct {
	MAC        net.HardwareAddr
	Attachment Attachment
	IPv4       []netip.Addr
}

// HasIPv4 reports whether ip is one of the host's IPv4 addresses.
func (h Host) HasIPv4(ip netip.Addr) bool {
	return slices.Contains(h.IPv4, ip)
}

func (h Host) String() string {
	return fmt.Sprintf("%s@%s", h.MAC, h.Attachment)
}

// HostTable indexes hosts by MAC address. When several records share a MAC
// address, the last one wins.
type HostTable struct {
	byMAC map[string]Host
	order []string
}

// NewHostTable indexes the given hosts.
func NewHostTable(hosts []Host) *HostTable {
	t := &HostTable{byMAC: make(map[string]Host, len(hosts))}
	for _, h := range hosts {
		key := h.MAC.String()
		if _, ok := t.byMAC[key]; !ok {
			t.order = append(t.order, key)
		}
		t.byMAC[key] = h
	}
	return t
}

// ByMAC returns the host with the given MAC address.
func (t *HostTable) ByMAC(mac net.HardwareAddr) (Host, bool) {
	h, ok := t.byMAC[mac.String()]
	return h, ok
}

// ByIPv4 returns the first host that owns ip.
func (t *HostTable) ByIPv4(ip netip.Addr) (Host, bool) {
	for _, key := range t.order {
		if h := t.byMAC[key]; h.HasIPv4(ip) {
			return h, true
		}
	}
	return Host{}, false
}

// Hosts returns all hosts in first-seen order.
func (t *HostTable) Hosts() []Host {
	hosts := make([]Host, 0, len(t.order))
	for _, key := range t.order {
		hosts = append(hosts, t.byMAC[key])
	}
	return hosts
}

// Len returns the number of distinct hosts.
func (t *HostTable) Len() int {
	return len(t.order)
}
