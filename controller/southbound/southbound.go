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

// Package southbound defines the messages the controller sends to switches
// and the Transport that delivers them. Encoding and session handling of the
// switch control protocol live behind Transport.
//
// Field semantics and reserved values follow OpenFlow 1.3.
package southbound

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/gopacket/gopacket/layers"

	"github.com/sdnlab/fabric/pkg/fabric"
)

const (
	// NoBuffer is the buffer id of a packet that is not buffered on the
	// switch (OFP_NO_BUFFER).
	NoBuffer uint32 = 0xffffffff
	// MaxLenNoBuffer requests the complete packet to be sent to the
	// controller (OFPCML_NO_BUFFER).
	MaxLenNoBuffer uint16 = 0xffff
)

// Transport delivers messages to switches. Implementations must be safe for
// concurrent use. A returned error only reports a local submission failure,
// delivery is not acknowledged.
type Transport interface {
	InstallFlow(ctx context.Context, mod FlowMod) error
	PacketOut(ctx context.Context, out PacketOut) error
}

// Match is the match predicate of a flow rule. Zero values are wildcards.
type Match struct {
	InPort  fabric.PortNo
	EthSrc  net.HardwareAddr
	EthDst  net.HardwareAddr
	EthType layers.EthernetType
}

// IsEmpty reports whether the match is a full wildcard.
func (m Match) IsEmpty() bool {
	return m.InPort == 0 && len(m.EthSrc) == 0 && len(m.EthDst) == 0 && m.EthType == 0
}

func (m Match) String() string {
	var fields []string
	if m.InPort != 0 {
		fields = append(fields, fmt.Sprintf("in_port=%s", m.InPort))
	}
	if len(m.EthSrc) != 0 {
		fields = append(fields, fmt.Sprintf("eth_src=%s", m.EthSrc))
	}
	if len(m.EthDst) != 0 {
		fields = append(fields, fmt.Sprintf("eth_dst=%s", m.EthDst))
	}
	if m.EthType != 0 {
		fields = append(fields, fmt.Sprintf("eth_type=0x%04x", uint16(m.EthType)))
	}
	if len(fields) == 0 {
		return "any"
	}
	return strings.Join(fields, ",")
}

// Action is an output action.
type Action struct {
	Output fabric.PortNo
	// MaxLen is the number of bytes sent to the controller when Output is
	// fabric.PortController.
	MaxLen uint16
}

// Output returns an output action to port.
func Output(port fabric.PortNo) Action {
	return Action{Output: port}
}

// ToController returns an output action that sends complete packets to the
// controller.
func ToController() Action {
	return Action{Output: fabric.PortController, MaxLen: MaxLenNoBuffer}
}

func (a Action) String() string {
	if a.Output == fabric.PortController {
		return fmt.Sprintf("output:controller(max_len=%d)", a.MaxLen)
	}
	return fmt.Sprintf("output:%s", a.Output)
}

// FlowMod adds a flow rule to the flow table of a switch.
type FlowMod struct {
	Switch   fabric.DPID
	Priority uint16
	Match    Match
	Actions  []Action
	// BufferID releases a packet buffered on the switch through the new
	// rule. NoBuffer if there is none.
	BufferID uint32
	// IdleTimeout and HardTimeout are in seconds, 0 means no expiry.
	IdleTimeout uint16
	HardTimeout uint16
}

func (m FlowMod) String() string {
	return fmt.Sprintf("dpid=%s priority=%d match=%s actions=%s",
		m.Switch, m.Priority, m.Match, actionsString(m.Actions))
}

// PacketOut sends a packet out of a switch.
type PacketOut struct {
	Switch fabric.DPID
	// InPort is the port the packet is treated as received on.
	// fabric.PortController if the packet originates at the controller.
	InPort   fabric.PortNo
	BufferID uint32
	Actions  []Action
	// Data is the frame to send. It must be empty if BufferID refers to a
	// buffered packet.
	Data []byte
}

func (p PacketOut) String() string {
	return fmt.Sprintf("dpid=%s in_port=%s actions=%s len=%d",
		p.Switch, p.InPort, actionsString(p.Actions), len(p.Data))
}

func actionsString(actions []Action) string {
	if len(actions) == 0 {
		return "drop"
	}
	s := make([]string, 0, len(actions))
	for _, a := range actions {
		s = append(s, a.String())
	}
	return strings.Join(s, ",")
}
