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

package xtest

import (
	"net"
	"net/netip"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/require"
)

// BroadcastMAC is the Ethernet broadcast address.
var BroadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func serialize(t testing.TB, l ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, l...))
	return buf.Bytes()
}

// ARPFrame returns an Ethernet frame carrying an ARP packet. Requests are
// sent to the broadcast address, replies to dstMAC.
func ARPFrame(t testing.TB, op uint16, srcMAC net.HardwareAddr, srcIP netip.Addr,
	dstMAC net.HardwareAddr, dstIP netip.Addr) []byte {

	t.Helper()
	ethDst, arpDst := dstMAC, dstMAC
	if op == layers.ARPRequest {
		ethDst, arpDst = BroadcastMAC, net.HardwareAddr{0, 0, 0, 0, 0, 0}
	}
	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       ethDst,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		HwAddressSize:     6,
		Protocol:          layers.EthernetTypeIPv4,
		ProtAddressSize:   4,
		Operation:         op,
		SourceHwAddress:   srcMAC,
		SourceProtAddress: srcIP.AsSlice(),
		DstHwAddress:      arpDst,
		DstProtAddress:    dstIP.AsSlice(),
	}
	return serialize(t, &eth, &arp)
}

// IPv4Frame returns an Ethernet frame carrying a UDP datagram.
func IPv4Frame(t testing.TB, srcMAC, dstMAC net.HardwareAddr, srcIP, dstIP netip.Addr) []byte {
	t.Helper()
	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    srcIP.AsSlice(),
		DstIP:    dstIP.AsSlice(),
	}
	udp := layers.UDP{SrcPort: 40000, DstPort: 9}
	require.NoError(t, udp.SetNetworkLayerForChecksum(&ip))
	return serialize(t, &eth, &ip, &udp, gopacket.Payload("fabric"))
}

// EthernetFrame returns a frame with the given EtherType and payload.
func EthernetFrame(t testing.TB, srcMAC, dstMAC net.HardwareAddr, typ layers.EthernetType,
	payload []byte) []byte {

	t.Helper()
	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: typ,
	}
	return serialize(t, &eth, gopacket.Payload(payload))
}
