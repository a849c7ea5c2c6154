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
	"fmt"

	"github.com/sdnlab/fabric/pkg/fabric"
)

// Event is an input of the controller. The concrete types are SwitchUp,
// SwitchDown, PacketIn and LinkUpdate.
type Event interface {
	event()
}

// SwitchUp signals that the control session of a switch is established.
type SwitchUp struct {
	Switch fabric.Switch
}

// SwitchDown signals that the control session of a switch ended.
type SwitchDown struct {
	DPID fabric.DPID
}

// PacketIn is a frame a switch sent to the controller.
type PacketIn struct {
	DPID   fabric.DPID
	InPort fabric.PortNo
	// BufferID is the id of the packet buffered on the switch, or
	// southbound.NoBuffer.
	BufferID uint32
	// TotalLen is the length of the frame on the wire. Data is shorter if
	// the switch truncated it.
	TotalLen int
	Data     []byte
}

// LinkUpdate signals that discovery changed its view of the links.
type LinkUpdate struct{}

func (SwitchUp) event()   {}
func (SwitchDown) event() {}
func (PacketIn) event()   {}
func (LinkUpdate) event() {}

func (e SwitchUp) String() string {
	return fmt.Sprintf("SwitchUp(%s)", e.Switch.DPID)
}

func (e SwitchDown) String() string {
	return fmt.Sprintf("SwitchDown(%s)", e.DPID)
}

func (e PacketIn) String() string {
	return fmt.Sprintf("PacketIn(%s:%s, len=%d/%d)", e.DPID, e.InPort, len(e.Data), e.TotalLen)
}

func (LinkUpdate) String() string {
	return "LinkUpdate"
}
