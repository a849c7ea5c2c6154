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

// Package arpproxy answers ARP requests on behalf of hosts from a cache of
// IPv4 to MAC mappings, so that requests do not have to be broadcast across
// the fabric.
//
// Every ARP packet refreshes the cache with the sender's mapping. Requests
// for cached targets are answered with a synthesized reply out of the
// ingress port. Requests for unknown targets are flooded to host ports only,
// never to inter-switch ports, so flooding cannot loop. Replies are
// delivered to the port of their destination host.
package arpproxy

import (
	"net"
	"net/netip"
	"slices"
	"sort"
	"time"

	"github.com/gopacket/gopacket/layers"
	"github.com/mdlayher/arp"
	"github.com/mdlayher/ethernet"
	"github.com/patrickmn/go-cache"

	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/private/serrors"
)

// Outcome is the result of handling an ARP packet.
type Outcome string

const (
	// Replied means the proxy answered a request from the cache.
	Replied Outcome = "replied"
	// Flooded means the packet was sent to all other host ports.
	Flooded Outcome = "flooded"
	// Forwarded means a reply was delivered to its destination host.
	Forwarded Outcome = "forwarded"
	// Unroutable means the destination of a reply is unknown. The packet is
	// dropped.
	Unroutable Outcome = "unroutable"
	// Ignored means the packet is not Ethernet/IPv4 ARP or has an unknown
	// operation.
	Ignored Outcome = "ignored"
)

// Ports tells inter-switch ports apart from host ports and knows which
// switches are connected.
type Ports interface {
	HasSwitch(dpid fabric.DPID) bool
	IsInterSwitchPort(a fabric.Attachment) bool
}

// Packet is an ARP packet received by a switch.
type Packet struct {
	Ingress fabric.Attachment
	// Frame is the complete Ethernet frame.
	Frame []byte
	ARP   *layers.ARP
}

// Decision is the outcome of handling a packet and the packets to send.
type Decision struct {
	Outcome Outcome
	Out     []southbound.PacketOut
}

// Entry is a cached mapping.
type Entry struct {
	IP  netip.Addr
	MAC net.HardwareAddr
	// Expires is zero if the entry does not expire.
	Expires time.Time
}

// Proxy is the ARP proxy. It is not safe for concurrent use.
type Proxy struct {
	cache *cache.Cache
}

// New returns a proxy whose entries expire after staleness. Entries never
// expire if staleness is zero.
func New(staleness time.Duration) *Proxy {
	ttl := cache.NoExpiration
	if staleness > 0 {
		ttl = staleness
	}
	// Expired entries are skipped on lookup and purged on learning, so no
	// janitor goroutine is needed.
	return &Proxy{cache: cache.New(ttl, 0)}
}

// Learn records ip -> mac. The unspecified address is not recorded.
func (p *Proxy) Learn(ip netip.Addr, mac net.HardwareAddr) {
	if !ip.Is4() || ip.IsUnspecified() {
		return
	}
	p.cache.Set(ip.String(), slices.Clone(mac), cache.DefaultExpiration)
}

// Lookup returns the MAC address cached for ip.
func (p *Proxy) Lookup(ip netip.Addr) (net.HardwareAddr, bool) {
	v, ok := p.cache.Get(ip.String())
	if !ok {
		return nil, false
	}
	return slices.Clone(v.(net.HardwareAddr)), true
}

// Len returns the number of live entries.
func (p *Proxy) Len() int {
	return len(p.cache.Items())
}

// Entries returns the live entries ordered by address.
func (p *Proxy) Entries() []Entry {
	items := p.cache.Items()
	entries := make([]Entry, 0, len(items))
	for k, item := range items {
		e := Entry{
			IP:  netip.MustParseAddr(k),
			MAC: slices.Clone(item.Object.(net.HardwareAddr)),
		}
		if item.Expiration > 0 {
			e.Expires = time.Unix(0, item.Expiration)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].IP.Less(entries[j].IP)
	})
	return entries
}

// Handle processes an ARP packet. hosts is the current host table, ports
// classifies switch ports.
func (p *Proxy) Handle(pkt Packet, hosts *fabric.HostTable, ports Ports) (Decision, error) {
	a := pkt.ARP
	if !isEthernetIPv4(a) {
		return Decision{Outcome: Ignored}, nil
	}
	senderMAC := net.HardwareAddr(a.SourceHwAddress)
	senderIP, _ := netip.AddrFromSlice(a.SourceProtAddress)
	targetMAC := net.HardwareAddr(a.DstHwAddress)
	targetIP, _ := netip.AddrFromSlice(a.DstProtAddress)

	p.cache.DeleteExpired()
	p.Learn(senderIP, senderMAC)

	switch a.Operation {
	case layers.ARPRequest:
		if senderIP == targetIP {
			// Gratuitous announcement; everybody else should learn it.
			return flood(pkt, hosts, ports), nil
		}
		mac, ok := p.Lookup(targetIP)
		if !ok {
			return flood(pkt, hosts, ports), nil
		}
		frame, err := reply(mac, targetIP, senderMAC, senderIP)
		if err != nil {
			return Decision{}, err
		}
		return Decision{
			Outcome: Replied,
			Out: []southbound.PacketOut{
				packetOut(pkt.Ingress.Switch, frame, pkt.Ingress.Port),
			},
		}, nil
	case layers.ARPReply:
		dst, ok := hosts.ByMAC(targetMAC)
		if !ok {
			dst, ok = hosts.ByIPv4(targetIP)
		}
		if !ok || !ports.HasSwitch(dst.Attachment.Switch) {
			return Decision{Outcome: Unroutable}, nil
		}
		return Decision{
			Outcome: Forwarded,
			Out: []southbound.PacketOut{
				packetOut(dst.Attachment.Switch, pkt.Frame, dst.Attachment.Port),
			},
		}, nil
	default:
		return Decision{Outcome: Ignored}, nil
	}
}

func isEthernetIPv4(a *layers.ARP) bool {
	return a != nil &&
		a.AddrType == layers.LinkTypeEthernet &&
		a.Protocol == layers.EthernetTypeIPv4 &&
		a.HwAddressSize == 6 && a.ProtAddressSize == 4 &&
		len(a.SourceHwAddress) == 6 && len(a.DstHwAddress) == 6 &&
		len(a.SourceProtAddress) == 4 && len(a.DstProtAddress) == 4
}

// flood sends the frame to every host port of a connected switch except the
// ingress port. Each switch gets a single packet-out with one output action
// per port.
func flood(pkt Packet, hosts *fabric.HostTable, ports Ports) Decision {
	targets := map[fabric.DPID][]fabric.PortNo{}
	seen := map[fabric.Attachment]struct{}{pkt.Ingress: {}}
	for _, h := range hosts.Hosts() {
		at := h.Attachment
		if _, ok := seen[at]; ok {
			continue
		}
		seen[at] = struct{}{}
		if !ports.HasSwitch(at.Switch) || ports.IsInterSwitchPort(at) {
			continue
		}
		targets[at.Switch] = append(targets[at.Switch], at.Port)
	}
	switches := make([]fabric.DPID, 0, len(targets))
	for sw := range targets {
		switches = append(switches, sw)
	}
	slices.Sort(switches)

	d := Decision{Outcome: Flooded}
	for _, sw := range switches {
		portList := targets[sw]
		slices.Sort(portList)
		out := packetOut(sw, pkt.Frame, portList...)
		d.Out = append(d.Out, out)
	}
	return d
}

func packetOut(sw fabric.DPID, frame []byte, ports ...fabric.PortNo) southbound.PacketOut {
	actions := make([]southbound.Action, 0, len(ports))
	for _, port := range ports {
		actions = append(actions, southbound.Output(port))
	}
	return southbound.PacketOut{
		Switch:   sw,
		InPort:   fabric.PortController,
		BufferID: southbound.NoBuffer,
		Actions:  actions,
		Data:     slices.Clone(frame),
	}
}

// reply builds the Ethernet frame of an ARP reply that tells the requester
// (reqMAC, reqIP) that ip is at mac.
func reply(mac net.HardwareAddr, ip netip.Addr, reqMAC net.HardwareAddr,
	reqIP netip.Addr) ([]byte, error) {

	p, err := arp.NewPacket(arp.OperationReply, mac, ip, reqMAC, reqIP)
	if err != nil {
		return nil, serrors.Wrap("creating ARP reply", err, "ip", ip, "requester", reqIP)
	}
	payload, err := p.MarshalBinary()
	if err != nil {
		return nil, serrors.Wrap("encoding ARP reply", err)
	}
	f := &ethernet.Frame{
		Destination: reqMAC,
		Source:      mac,
		EtherType:   ethernet.EtherTypeARP,
		Payload:     payload,
	}
	frame, err := f.MarshalBinary()
	if err != nil {
		return nil, serrors.Wrap("encoding Ethernet frame", err)
	}
	return frame, nil
}
