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

package flowprog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnlab/fabric/controller/flowprog"
	"github.com/sdnlab/fabric/controller/pathfinder"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/controller/southbound/mock_southbound"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/metrics"
	"github.com/sdnlab/fabric/private/topology/topotest"
)

var (
	h1 = topotest.MAC(1)
	h3 = topotest.MAC(3)
)

func threeHops() pathfinder.Path {
	return pathfinder.Path{
		{Switch: 1, InPort: 3, OutPort: 1},
		{Switch: 3, InPort: 1, OutPort: 2},
		{Switch: 2, InPort: 1, OutPort: 3},
	}
}

func TestCompile(t *testing.T) {
	rules := flowprog.Compile(threeHops(), h1, h3, flowprog.Options{})
	require.Len(t, rules, 3, "one rule per hop")

	expected := []struct {
		dpid    fabric.DPID
		inPort  fabric.PortNo
		outPort fabric.PortNo
	}{
		{2, 1, 3},
		{3, 1, 2},
		{1, 3, 1},
	}
	for i, e := range expected {
		r := rules[i]
		assert.Equal(t, e.dpid, r.Switch, "tail to head")
		assert.Equal(t, flowprog.DefaultPriority, r.Priority)
		assert.Equal(t, southbound.Match{
			InPort:  e.inPort,
			EthSrc:  h1,
			EthDst:  h3,
			EthType: layers.EthernetTypeIPv4,
		}, r.Match)
		assert.Equal(t, []southbound.Action{southbound.Output(e.outPort)}, r.Actions)
		assert.Equal(t, southbound.NoBuffer, r.BufferID)
		assert.Zero(t, r.IdleTimeout)
		assert.Zero(t, r.HardTimeout)
	}
}

func TestCompileOptions(t *testing.T) {
	rules := flowprog.Compile(threeHops(), h1, h3, flowprog.Options{
		Priority:    10,
		Buffer:      flowprog.NewBuffer(1, 77),
		IdleTimeout: 30,
		HardTimeout: 600,
	})
	for _, r := range rules {
		assert.Equal(t, uint16(10), r.Priority)
		assert.Equal(t, uint16(30), r.IdleTimeout)
		assert.Equal(t, uint16(600), r.HardTimeout)
		if r.Switch == 1 {
			assert.Equal(t, uint32(77), r.BufferID)
		} else {
			assert.Equal(t, southbound.NoBuffer, r.BufferID, "buffer ids are switch local")
		}
	}
	assert.Nil(t, flowprog.NewBuffer(1, southbound.NoBuffer))
}

func TestCompileDoesNotAlias(t *testing.T) {
	src := topotest.MAC(1)
	rules := flowprog.Compile(threeHops(), src, h3, flowprog.Options{})
	src[5] = 0xaa
	assert.Equal(t, h1, rules[0].Match.EthSrc)
}

func TestDirect(t *testing.T) {
	rules := flowprog.Direct(1, 3, 4, h1, topotest.MAC(2), flowprog.Options{
		Buffer: flowprog.NewBuffer(1, 5),
	})
	require.Len(t, rules, 1)
	assert.Equal(t, fabric.PortNo(3), rules[0].Match.InPort)
	assert.Equal(t, []southbound.Action{southbound.Output(4)}, rules[0].Actions)
	assert.Equal(t, uint32(5), rules[0].BufferID)
}

func TestTableMiss(t *testing.T) {
	r := flowprog.TableMiss(4)
	assert.Equal(t, fabric.DPID(4), r.Switch)
	assert.Equal(t, flowprog.TableMissPriority, r.Priority)
	assert.True(t, r.Match.IsEmpty())
	assert.Equal(t, []southbound.Action{{
		Output: fabric.PortController,
		MaxLen: southbound.MaxLenNoBuffer,
	}}, r.Actions)
	assert.Equal(t, southbound.NoBuffer, r.BufferID)
}

func TestPacketOut(t *testing.T) {
	data := []byte{1, 2, 3}
	testCases := map[string]struct {
		ingress  fabric.Attachment
		bufferID uint32
		expected *southbound.PacketOut
	}{
		"unbuffered at head": {
			ingress:  fabric.Attachment{Switch: 1, Port: 3},
			bufferID: southbound.NoBuffer,
			expected: &southbound.PacketOut{
				Switch:   1,
				InPort:   3,
				BufferID: southbound.NoBuffer,
				Actions:  []southbound.Action{southbound.Output(1)},
				Data:     data,
			},
		},
		"unbuffered mid path": {
			ingress:  fabric.Attachment{Switch: 3, Port: 1},
			bufferID: southbound.NoBuffer,
			expected: &southbound.PacketOut{
				Switch:   3,
				InPort:   1,
				BufferID: southbound.NoBuffer,
				Actions:  []southbound.Action{southbound.Output(2)},
				Data:     data,
			},
		},
		"buffered": {
			ingress:  fabric.Attachment{Switch: 1, Port: 3},
			bufferID: 0,
		},
		"off path": {
			ingress:  fabric.Attachment{Switch: 9, Port: 1},
			bufferID: southbound.NoBuffer,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			out, ok := flowprog.PacketOut(threeHops(), tc.ingress, tc.bufferID, data)
			if tc.expected == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, *tc.expected, out)
		})
	}
}

func TestInstall(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mock_southbound.NewMockTransport(ctrl)
	rules := flowprog.Compile(threeHops(), h1, h3, flowprog.Options{})
	ctx := context.Background()

	gomock.InOrder(
		transport.EXPECT().InstallFlow(ctx, rules[0]),
		transport.EXPECT().InstallFlow(ctx, rules[1]).Return(errors.New("session closed")),
		transport.EXPECT().InstallFlow(ctx, rules[2]),
	)
	results := metrics.NewTestCounter()
	n := flowprog.Installer{Transport: transport, Results: results}.Install(ctx, rules)
	assert.Equal(t, 2, n, "failures are not retried and do not stop the program")
	assert.Equal(t, float64(2), metrics.CounterValue(results.With("result", "ok")))
	assert.Equal(t, float64(1), metrics.CounterValue(results.With("result", "error")))
}

func TestInstallWithoutMetrics(t *testing.T) {
	j := &southbound.Journal{}
	rules := flowprog.Compile(threeHops(), h1, h3, flowprog.Options{})
	assert.Equal(t, 3, flowprog.Install(context.Background(), j, rules))
	assert.Len(t, j.Flows(), 3)
}
