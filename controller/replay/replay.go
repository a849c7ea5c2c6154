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

// Package replay feeds packet captures to the controller as packet-ins.
//
// Both pcap and pcapng captures are supported. Every captured Ethernet frame
// becomes a packet-in that was not buffered on the switch. The ingress point
// of a frame is taken from the capture interface it was recorded on: first
// by interface name, then by interface index in the configured mapping, and
// finally from Mininet style names such as "s1-eth3" (switch 1, port 3).
// Frames of interfaces that cannot be mapped are skipped.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"

	"github.com/sdnlab/fabric/controller"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/private/serrors"
)

var ngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// Stats summarizes a replay.
type Stats struct {
	// Sent is the number of packet-ins handed to the controller.
	Sent int
	// Skipped is the number of frames whose interface could not be mapped
	// or that are not Ethernet.
	Skipped int
}

// Replayer replays captures.
type Replayer struct {
	// Interfaces maps interface names or decimal interface indices to
	// attachment points.
	Interfaces map[string]fabric.Attachment
	// Realtime reproduces the gaps between frames recorded in the capture.
	Realtime bool
}

// ReplayFile replays the capture in file. See Replay.
func (p *Replayer) ReplayFile(ctx context.Context, file string,
	events chan<- controller.Event) (Stats, error) {

	f, err := os.Open(file)
	if err != nil {
		return Stats{}, serrors.Wrap("opening capture", err, "file", file)
	}
	defer f.Close()
	stats, err := p.Replay(ctx, f, events)
	if err != nil {
		return stats, serrors.Wrap("replaying capture", err, "file", file)
	}
	return stats, nil
}

// Replay reads a pcap or pcapng capture from r and sends a packet-in for
// every frame to events. It returns when the capture is exhausted or ctx is
// done.
func (p *Replayer) Replay(ctx context.Context, r io.Reader,
	events chan<- controller.Event) (Stats, error) {

	br := bufio.NewReader(r)
	magic, err := br.Peek(len(ngMagic))
	if err != nil {
		return Stats{}, serrors.Wrap("reading capture header", err)
	}
	var src source
	if bytes.Equal(magic, ngMagic) {
		src, err = newNgSource(br)
	} else {
		src, err = newPcapSource(br)
	}
	if err != nil {
		return Stats{}, err
	}
	return p.run(ctx, src, events)
}

func (p *Replayer) run(ctx context.Context, src source,
	events chan<- controller.Event) (Stats, error) {

	logger := log.FromCtx(ctx)
	var stats Stats
	var last time.Time
	for {
		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, serrors.Wrap("reading frame", err, "frame", stats.Sent+stats.Skipped)
		}
		iface, err := src.iface(ci.InterfaceIndex)
		if err != nil {
			return stats, err
		}
		at, ok := p.attachment(iface)
		if !ok || iface.linkType != layers.LinkTypeEthernet {
			logger.Debug("Skipping frame", "interface", iface.name, "index", iface.index,
				"link_type", iface.linkType)
			stats.Skipped++
			continue
		}
		if p.Realtime && !last.IsZero() {
			if err := sleep(ctx, ci.Timestamp.Sub(last)); err != nil {
				return stats, nil
			}
		}
		last = ci.Timestamp

		pi := controller.PacketIn{
			DPID:     at.Switch,
			InPort:   at.Port,
			BufferID: southbound.NoBuffer,
			TotalLen: ci.Length,
			Data:     data,
		}
		select {
		case events <- pi:
			stats.Sent++
		case <-ctx.Done():
			return stats, nil
		}
	}
}

func (p *Replayer) attachment(iface captureIface) (fabric.Attachment, bool) {
	if iface.name != "" {
		if at, ok := p.Interfaces[iface.name]; ok {
			return at, true
		}
	}
	if at, ok := p.Interfaces[strconv.Itoa(iface.index)]; ok {
		return at, true
	}
	return ParseMininetName(iface.name)
}

// ParseMininetName returns the attachment point of a Mininet switch
// interface name of the form "s<switch>-eth<port>".
func ParseMininetName(name string) (fabric.Attachment, bool) {
	var sw uint64
	var port uint32
	rest, ok := cutNumber(name, "s", func(s string) (err error) {
		sw, err = strconv.ParseUint(s, 10, 64)
		return err
	})
	if !ok {
		return fabric.Attachment{}, false
	}
	rest, ok = cutNumber(rest, "-eth", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 32)
		port = uint32(v)
		return err
	})
	if !ok || rest != "" || sw == 0 || !fabric.PortNo(port).IsPhysical() {
		return fabric.Attachment{}, false
	}
	return fabric.Attachment{Switch: fabric.DPID(sw), Port: fabric.PortNo(port)}, true
}

// cutNumber removes prefix and the decimal number following it from s and
// passes the number to parse.
func cutNumber(s, prefix string, parse func(string) error) (string, bool) {
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return "", false
	}
	s = s[len(prefix):]
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || parse(s[:i]) != nil {
		return "", false
	}
	return s[i:], true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type captureIface struct {
	name     string
	index    int
	linkType layers.LinkType
}

type source interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	iface(index int) (captureIface, error)
}

type ngSource struct {
	*pcapgo.NgReader
}

func newNgSource(r io.Reader) (ngSource, error) {
	ng, err := pcapgo.NewNgReader(r, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return ngSource{}, serrors.Wrap("reading pcapng header", err)
	}
	return ngSource{NgReader: ng}, nil
}

func (s ngSource) iface(index int) (captureIface, error) {
	intf, err := s.Interface(index)
	if err != nil {
		return captureIface{}, serrors.Wrap("unknown capture interface", err, "index", index)
	}
	return captureIface{name: intf.Name, index: index, linkType: intf.LinkType}, nil
}

type pcapSource struct {
	*pcapgo.Reader
}

func newPcapSource(r io.Reader) (pcapSource, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return pcapSource{}, serrors.Wrap("reading pcap header", err)
	}
	return pcapSource{Reader: pr}, nil
}

func (s pcapSource) iface(index int) (captureIface, error) {
	return captureIface{index: index, linkType: s.LinkType()}, nil
}
