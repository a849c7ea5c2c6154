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
	"encoding"
	"fmt"
	"strconv"
	"strings"

	"github.com/sdnlab/fabric/pkg/private/serrors"
)

var (
	_ encoding.TextMarshaler   = DPID(0)
	_ encoding.TextUnmarshaler = (*DPID)(nil)
)

// DPID is the 64 bit datapath identifier of a switch.
type DPID uint64

// ParseDPID parses a datapath identifier. See the package documentation for
// the accepted formats.
func ParseDPID(s string) (DPID, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		if len(parts) != 8 {
			return 0, serrors.New("invalid datapath id", "value", s)
		}
		for _, p := range parts {
			if len(p) != 2 {
				return 0, serrors.New("invalid datapath id", "value", s)
			}
		}
		raw = strings.Join(parts, "")
	}
	if raw == "" || len(raw) > 16 {
		return 0, serrors.New("invalid datapath id", "value", s)
	}
	v, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, serrors.Wrap("invalid datapath id", err, "value", s)
	}
	return DPID(v), nil
}

// MustParseDPID parses s and panics on error. It is intended for tests and
// static tables.
func MustParseDPID(s string) DPID {
	d, err := ParseDPID(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d DPID) String() string {
	return fmt.Sprintf("%016x", uint64(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d DPID) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DPID) UnmarshalText(text []byte) error {
	v, err := ParseDPID(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// PortNo is an OpenFlow 1.3 port number.
type PortNo uint32

// Reserved port numbers, as defined by OpenFlow 1.3.
const (
	// PortMax is the largest number of a physical port.
	PortMax        PortNo = 0xffffff00
	PortInPort     PortNo = 0xfffffff8
	PortTable      PortNo = 0xfffffff9
	PortNormal     PortNo = 0xfffffffa
	PortFlood      PortNo = 0xfffffffb
	PortAll        PortNo = 0xfffffffc
	PortController PortNo = 0xfffffffd
	PortLocal      PortNo = 0xfffffffe
	PortAny        PortNo = 0xffffffff
)

var reservedPortNames = map[PortNo]string{
	PortInPort:     "in_port",
	PortTable:      "table",
	PortNormal:     "normal",
	PortFlood:      "flood",
	PortAll:        "all",
	PortController: "controller",
	PortLocal:      "local",
	PortAny:        "any",
}

// IsPhysical reports whether p identifies a switch port rather than a
// reserved pseudo port.
func (p PortNo) IsPhysical() bool {
	return p != 0 && p <= PortMax
}

func (p PortNo) String() string {
	if name, ok := reservedPortNames[p]; ok {
		return name
	}
	return strconv.FormatUint(uint64(p), 10)
}
