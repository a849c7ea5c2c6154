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

package mgmtapi

import (
	"time"

	"github.com/sdnlab/fabric/controller"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/pkg/fabric"
)

// Problem is an error response.
type Problem struct {
	Detail *string `json:"detail,omitempty"`
	Status int     `json:"status"`
	Title  string  `json:"title"`
	Type   *string `json:"type,omitempty"`
}

// Info describes the controller instance.
type Info struct {
	ID           string `json:"id"`
	Version      string `json:"version,omitempty"`
	ConfigDigest string `json:"config_digest,omitempty"`
}

type TopologyResponse struct {
	Switches []Switch `json:"switches"`
	Links    []Link   `json:"links"`
}

type Switch struct {
	DPID  fabric.DPID     `json:"dpid"`
	Ports []fabric.PortNo `json:"ports"`
}

type Link struct {
	Src fabric.Attachment `json:"src"`
	Dst fabric.Attachment `json:"dst"`
}

type Host struct {
	MAC        string            `json:"mac"`
	Attachment fabric.Attachment `json:"attachment"`
	IPv4       []string          `json:"ipv4"`
}

func newHost(h fabric.Host) Host {
	rep := Host{
		MAC:        h.MAC.String(),
		Attachment: h.Attachment,
		IPv4:       make([]string, 0, len(h.IPv4)),
	}
	for _, ip := range h.IPv4 {
		rep.IPv4 = append(rep.IPv4, ip.String())
	}
	return rep
}

type ARPEntry struct {
	IP  string `json:"ip"`
	MAC string `json:"mac"`
	// Expires is omitted for entries that do not expire.
	Expires *time.Time `json:"expires,omitempty"`
}

type Hop struct {
	DPID    fabric.DPID   `json:"dpid"`
	InPort  fabric.PortNo `json:"in_port"`
	OutPort fabric.PortNo `json:"out_port"`
}

type PathResponse struct {
	Src   Host   `json:"src"`
	Dst   Host   `json:"dst"`
	Hops  []Hop  `json:"hops"`
	Rules []Rule `json:"rules"`
}

// NewPathResponse converts a plan of the controller.
func NewPathResponse(plan controller.Plan) PathResponse {
	rep := PathResponse{
		Src:   newHost(plan.Src),
		Dst:   newHost(plan.Dst),
		Hops:  make([]Hop, 0, len(plan.Path)),
		Rules: newRules(plan.Rules),
	}
	for _, h := range plan.Path {
		rep.Hops = append(rep.Hops, Hop{DPID: h.Switch, InPort: h.InPort, OutPort: h.OutPort})
	}
	return rep
}

// Rule is a flow rule in the order it is submitted.
type Rule struct {
	DPID     fabric.DPID `json:"dpid"`
	Priority uint16      `json:"priority"`
	Match    string      `json:"match"`
	Actions  []string    `json:"actions"`
	// BufferID is omitted if the rule releases no buffered packet.
	BufferID    *uint32 `json:"buffer_id,omitempty"`
	IdleTimeout uint16  `json:"idle_timeout"`
	HardTimeout uint16  `json:"hard_timeout"`
}

func newRules(mods []southbound.FlowMod) []Rule {
	rules := make([]Rule, 0, len(mods))
	for _, m := range mods {
		r := Rule{
			DPID:        m.Switch,
			Priority:    m.Priority,
			Match:       m.Match.String(),
			Actions:     make([]string, 0, len(m.Actions)),
			IdleTimeout: m.IdleTimeout,
			HardTimeout: m.HardTimeout,
		}
		for _, a := range m.Actions {
			r.Actions = append(r.Actions, a.String())
		}
		if m.BufferID != southbound.NoBuffer {
			id := m.BufferID
			r.BufferID = &id
		}
		rules = append(rules, r)
	}
	return rules
}
