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

package southbound

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sdnlab/fabric/pkg/fabric"
)

// DefaultJournalSize is the number of entries a journal keeps by default.
const DefaultJournalSize = 1024

// EntryKind is the kind of a journal entry.
type EntryKind string

const (
	KindFlowMod   EntryKind = "flow_mod"
	KindPacketOut EntryKind = "packet_out"
)

// Entry is a journaled message.
type Entry struct {
	Time      time.Time
	Kind      EntryKind
	FlowMod   *FlowMod
	PacketOut *PacketOut
	// Err is the error returned by the next transport, if any.
	Err error
}

// Journal is a Transport that records every submitted message in a bounded
// ring and keeps a view of the flow table of each switch. If Next is set,
// messages are forwarded to it.
type Journal struct {
	// Next receives the messages after they are recorded. Optional.
	Next Transport
	// Size is the capacity of the ring, DefaultJournalSize if zero.
	Size int
	// Now is the clock, time.Now if nil.
	Now func() time.Time

	mtx     sync.Mutex
	entries []Entry
	head    int
	full    bool
	flows   map[flowKey]FlowMod
}

type flowKey struct {
	dpid     fabric.DPID
	priority uint16
	match    string
}

func (j *Journal) InstallFlow(ctx context.Context, mod FlowMod) error {
	var err error
	if j.Next != nil {
		err = j.Next.InstallFlow(ctx, mod)
	}
	j.mtx.Lock()
	defer j.mtx.Unlock()
	if err == nil {
		if j.flows == nil {
			j.flows = make(map[flowKey]FlowMod)
		}
		j.flows[flowKey{dpid: mod.Switch, priority: mod.Priority, match: mod.Match.String()}] = mod
	}
	j.record(Entry{Kind: KindFlowMod, FlowMod: &mod, Err: err})
	return err
}

func (j *Journal) PacketOut(ctx context.Context, out PacketOut) error {
	var err error
	if j.Next != nil {
		err = j.Next.PacketOut(ctx, out)
	}
	j.mtx.Lock()
	defer j.mtx.Unlock()
	j.record(Entry{Kind: KindPacketOut, PacketOut: &out, Err: err})
	return err
}

func (j *Journal) record(e Entry) {
	if j.entries == nil {
		size := j.Size
		if size <= 0 {
			size = DefaultJournalSize
		}
		j.entries = make([]Entry, size)
	}
	if j.Now != nil {
		e.Time = j.Now()
	} else {
		e.Time = time.Now()
	}
	j.entries[j.head] = e
	j.head++
	if j.head == len(j.entries) {
		j.head = 0
		j.full = true
	}
}

// Entries returns the recorded entries, oldest first.
func (j *Journal) Entries() []Entry {
	j.mtx.Lock()
	defer j.mtx.Unlock()
	if !j.full {
		return slices.Clone(j.entries[:j.head])
	}
	return append(slices.Clone(j.entries[j.head:]), j.entries[:j.head]...)
}

// Flows returns the rules installed through the journal, ordered by switch,
// descending priority and match. A rule with the same switch, priority and
// match as an earlier one replaces it, as on the switch.
func (j *Journal) Flows() []FlowMod {
	j.mtx.Lock()
	defer j.mtx.Unlock()
	flows := make([]FlowMod, 0, len(j.flows))
	for _, f := range j.flows {
		flows = append(flows, f)
	}
	sort.Slice(flows, func(a, b int) bool {
		if flows[a].Switch != flows[b].Switch {
			return flows[a].Switch < flows[b].Switch
		}
		if flows[a].Priority != flows[b].Priority {
			return flows[a].Priority > flows[b].Priority
		}
		return flows[a].Match.String() < flows[b].Match.String()
	})
	return flows
}

// ForgetSwitch drops the flow table view of a switch. Switches lose their
// flow tables when the control session ends.
func (j *Journal) ForgetSwitch(dpid fabric.DPID) {
	j.mtx.Lock()
	defer j.mtx.Unlock()
	for k := range j.flows {
		if k.dpid == dpid {
			delete(j.flows, k)
		}
	}
}
