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

package fabric_test

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnlab/fabric/pkg/fabric"
)

func TestParseDPID(t *testing.T) {
	var testCases = []struct {
		src       string
		dpid      fabric.DPID
		assertErr assert.ErrorAssertionFunc
	}{
		{"", 0, assert.Error},
		{"0000000000000001", 1, assert.NoError},
		{"1", 1, assert.NoError},
		{"0x1f", 0x1f, assert.NoError},
		{"00:00:00:00:00:00:00:0a", 0xa, assert.NoError},
		{"ffffffffffffffff", 0xffffffffffffffff, assert.NoError},
		{"1ffffffffffffffff", 0, assert.Error},
		{"00:00:00:0a", 0, assert.Error},
		{"00:00:00:00:00:00:00:a", 0, assert.Error},
		{"zz", 0, assert.Error},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			dpid, err := fabric.ParseDPID(tc.src)
			tc.assertErr(t, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.dpid, dpid)
		})
	}
}

func TestDPIDText(t *testing.T) {
	d := fabric.DPID(3)
	assert.Equal(t, "0000000000000003", d.String())
	raw, err := d.MarshalText()
	require.NoError(t, err)
	var back fabric.DPID
	require.NoError(t, back.UnmarshalText(raw))
	assert.Equal(t, d, back)
}

func TestPortNo(t *testing.T) {
	assert.Equal(t, "controller", fabric.PortController.String())
	assert.Equal(t, "7", fabric.PortNo(7).String())
	assert.True(t, fabric.PortNo(1).IsPhysical())
	assert.False(t, fabric.PortNo(0).IsPhysical())
	assert.False(t, fabric.PortFlood.IsPhysical())
}

func TestParseAttachment(t *testing.T) {
	testCases := map[string]struct {
		input     string
		want      fabric.Attachment
		assertErr assert.ErrorAssertionFunc
	}{
		"hex dpid": {
			input:     "1:3",
			want:      fabric.Attachment{Switch: 1, Port: 3},
			assertErr: assert.NoError,
		},
		"colon dpid": {
			input:     "00:00:00:00:00:00:00:02:4",
			want:      fabric.Attachment{Switch: 2, Port: 4},
			assertErr: assert.NoError,
		},
		"round trip": {
			input:     fabric.Attachment{Switch: 0xab, Port: 12}.String(),
			want:      fabric.Attachment{Switch: 0xab, Port: 12},
			assertErr: assert.NoError,
		},
		"no port":       {input: "1", assertErr: assert.Error},
		"port zero":     {input: "1:0", assertErr: assert.Error},
		"reserved port": {input: "1:controller", assertErr: assert.Error},
		"bad dpid":      {input: "xyz:1", assertErr: assert.Error},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := fabric.ParseAttachment(tc.input)
			tc.assertErr(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLink(t *testing.T) {
	l := fabric.Link{
		Src: fabric.Attachment{Switch: 1, Port: 3},
		Dst: fabric.Attachment{Switch: 2, Port: 4},
	}
	assert.False(t, l.IsLoop())
	assert.Equal(t, l, l.Reverse().Reverse())
	assert.Equal(t, "0000000000000001:3->0000000000000002:4", l.String())
}

func TestHostTable(t *testing.T) {
	mac := func(s string) net.HardwareAddr {
		m, err := net.ParseMAC(s)
		require.NoError(t, err)
		return m
	}
	ip := netip.MustParseAddr
	table := fabric.NewHostTable([]fabric.Host{
		{
			MAC:        mac("00:00:00:00:00:01"),
			Attachment: fabric.Attachment{Switch: 1, Port: 1},
			IPv4:       []netip.Addr{ip("10.0.0.1")},
		},
		{
			MAC:        mac("00:00:00:00:00:02"),
			Attachment: fabric.Attachment{Switch: 2, Port: 1},
		},
		{
			MAC:        mac("00:00:00:00:00:01"),
			Attachment: fabric.Attachment{Switch: 3, Port: 5},
			IPv4:       []netip.Addr{ip("10.0.0.1")},
		},
	})

	assert.Equal(t, 2, table.Len())
	h, ok := table.ByMAC(mac("00:00:00:00:00:01"))
	require.True(t, ok)
	assert.Equal(t, fabric.Attachment{Switch: 3, Port: 5}, h.Attachment, "last seen wins")
	h, ok = table.ByIPv4(ip("10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, fabric.DPID(3), h.Attachment.Switch)
	_, ok = table.ByIPv4(ip("10.0.0.9"))
	assert.False(t, ok)
	_, ok = table.ByMAC(mac("00:00:00:00:00:09"))
	assert.False(t, ok)
}
