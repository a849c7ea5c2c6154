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

package topology_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/private/xtest"
	"github.com/sdnlab/fabric/private/topology"
)

func loadJSON(t *testing.T) topology.JSON {
	t.Helper()
	raw, err := os.ReadFile("testdata/leafspine.json")
	require.NoError(t, err)
	var j topology.JSON
	require.NoError(t, json.Unmarshal(raw, &j))
	return j
}

func TestLoadLeafSpine(t *testing.T) {
	topo, err := topology.Load("testdata/leafspine.json")
	require.NoError(t, err)

	assert.Len(t, topo.Switches, 4)
	assert.Len(t, topo.Links, 8, "both directions of 4 links")
	assert.Contains(t, topo.Links, fabric.Link{
		Src: fabric.Attachment{Switch: 3, Port: 1},
		Dst: fabric.Attachment{Switch: 1, Port: 1},
	})
	require.Len(t, topo.Hosts, 4)
	h1 := topo.Hosts[0]
	assert.Equal(t, xtest.MustParseMAC(t, "00:00:00:00:00:01"), h1.MAC)
	assert.Equal(t, fabric.Attachment{Switch: 1, Port: 3}, h1.Attachment)
	assert.True(t, h1.HasIPv4(xtest.MustParseAddr(t, "10.0.0.1")))
}

func TestFromJSONBytesInvalid(t *testing.T) {
	testCases := map[string]func(j *topology.JSON){
		"unknown link switch": func(j *topology.JSON) {
			j.Links[0].B.Switch = 9
		},
		"unknown link port": func(j *topology.JSON) {
			j.Links[0].A.Port = 9
		},
		"loop": func(j *topology.JSON) {
			j.Links[0].B = fabric.Attachment{Switch: 1, Port: 2}
		},
		"port used twice": func(j *topology.JSON) {
			j.Hosts[0].At = fabric.Attachment{Switch: 1, Port: 1}
		},
		"duplicate switch": func(j *topology.JSON) {
			j.Switches[1].DPID = 1
		},
		"duplicate mac": func(j *topology.JSON) {
			j.Hosts[1].MAC = j.Hosts[0].MAC
		},
		"bad mac": func(j *topology.JSON) {
			j.Hosts[0].MAC = "zz"
		},
		"ipv6 host address": func(j *topology.JSON) {
			j.Hosts[0].IPv4 = []string{"2001:db8::1"}
		},
		"bad host address": func(j *topology.JSON) {
			j.Hosts[0].IPv4 = []string{"10.0.0"}
		},
	}
	for name, mod := range testCases {
		t.Run(name, func(t *testing.T) {
			j := loadJSON(t)
			mod(&j)
			raw, err := json.Marshal(j)
			require.NoError(t, err)
			_, err = topology.FromJSONBytes(raw)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := topology.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	topo, err := topology.Load("testdata/leafspine.json")
	require.NoError(t, err)
	c := topo.Clone()
	c.Switches[0].Ports[0] = 42
	c.Hosts[0].MAC[5] = 0xff
	assert.Equal(t, fabric.PortNo(1), topo.Switches[0].Ports[0])
	assert.Equal(t, byte(1), topo.Hosts[0].MAC[5])
}
