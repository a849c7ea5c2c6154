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

package mgmtapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnlab/fabric/controller"
	"github.com/sdnlab/fabric/controller/mgmtapi"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/private/xtest"
	statictopo "github.com/sdnlab/fabric/private/topology"
	"github.com/sdnlab/fabric/private/topology/topotest"
)

type fixture struct {
	ctrl    *controller.Controller
	journal *southbound.Journal
	handler http.Handler
}

func newFixture(t *testing.T, topo *statictopo.Topology) fixture {
	t.Helper()
	journal := &southbound.Journal{}
	ctrl, err := controller.New(controller.Config{
		Discovery: statictopo.NewStatic(topo),
		Transport: journal,
	})
	require.NoError(t, err)
	s := &mgmtapi.Server{
		Controller: ctrl,
		Flows:      journal,
		Info:       mgmtapi.Info{ID: "ctrl-1", ConfigDigest: "abcd"},
	}
	return fixture{ctrl: ctrl, journal: journal, handler: s.Handler()}
}

func (f fixture) get(t *testing.T, path string, rep any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, mgmtapi.BaseURL+path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rep != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), rep), rec.Body.String())
	}
	return rec
}

func TestGetTopology(t *testing.T) {
	f := newFixture(t, topotest.LeafSpine())
	require.NoError(t, f.ctrl.Handle(context.Background(), controller.LinkUpdate{}))

	var rep mgmtapi.TopologyResponse
	rec := f.get(t, "/topology", &rep)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, rep.Switches, 4)
	assert.Equal(t, topotest.S1, rep.Switches[0].DPID)
	assert.Equal(t, []fabric.PortNo{1, 2, 3, 4}, rep.Switches[0].Ports)
	assert.Len(t, rep.Links, 8)
	assert.Equal(t, mgmtapi.Link{
		Src: fabric.Attachment{Switch: topotest.S1, Port: 1},
		Dst: fabric.Attachment{Switch: topotest.S3, Port: 1},
	}, rep.Links[0])
}

func TestGetHosts(t *testing.T) {
	f := newFixture(t, topotest.LeafSpine())

	var rep []mgmtapi.Host
	rec := f.get(t, "/hosts", &rep)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rep, 4)
	assert.Equal(t, mgmtapi.Host{
		MAC:        "00:00:00:00:00:03",
		Attachment: fabric.Attachment{Switch: topotest.S2, Port: 3},
		IPv4:       []string{"10.0.0.3"},
	}, rep[2])
}

func TestGetARP(t *testing.T) {
	f := newFixture(t, topotest.LeafSpine())
	req := xtest.ARPFrame(t, layers.ARPRequest,
		topotest.MAC(1), topotest.IP(1), nil, topotest.IP(3))
	require.NoError(t, f.ctrl.HandlePacketIn(context.Background(), controller.PacketIn{
		DPID:     topotest.S1,
		InPort:   3,
		BufferID: southbound.NoBuffer,
		TotalLen: len(req),
		Data:     req,
	}))

	var rep []mgmtapi.ARPEntry
	rec := f.get(t, "/arp", &rep)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []mgmtapi.ARPEntry{{IP: "10.0.0.1", MAC: "00:00:00:00:00:01"}}, rep)
}

func TestGetPath(t *testing.T) {
	disconnected := topotest.LeafSpine()
	disconnected.Links = nil

	testCases := map[string]struct {
		topo   *statictopo.Topology
		query  string
		status int
		typ    string
	}{
		"missing src": {
			query:  "?dst=00:00:00:00:00:03",
			status: http.StatusBadRequest,
			typ:    mgmtapi.BadRequest,
		},
		"malformed dst": {
			query:  "?src=00:00:00:00:00:01&dst=h3",
			status: http.StatusBadRequest,
			typ:    mgmtapi.BadRequest,
		},
		"unknown host": {
			query:  "?src=00:00:00:00:00:01&dst=00:00:00:00:00:99",
			status: http.StatusNotFound,
			typ:    mgmtapi.NotFound,
		},
		"no path": {
			topo:   disconnected,
			query:  "?src=00:00:00:00:00:01&dst=00:00:00:00:00:03",
			status: http.StatusNotFound,
			typ:    mgmtapi.NoPath,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			topo := tc.topo
			if topo == nil {
				topo = topotest.LeafSpine()
			}
			f := newFixture(t, topo)
			var p mgmtapi.Problem
			rec := f.get(t, "/paths"+tc.query, &p)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.status, p.Status)
			require.NotNil(t, p.Type)
			assert.Equal(t, tc.typ, *p.Type)
		})
	}

	t.Run("leaf to leaf", func(t *testing.T) {
		f := newFixture(t, topotest.LeafSpine())
		var rep mgmtapi.PathResponse
		rec := f.get(t, "/paths?src=00:00:00:00:00:01&dst=00:00:00:00:00:03", &rep)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []mgmtapi.Hop{
			{DPID: topotest.S1, InPort: 3, OutPort: 1},
			{DPID: topotest.S3, InPort: 1, OutPort: 2},
			{DPID: topotest.S2, InPort: 1, OutPort: 3},
		}, rep.Hops)
		require.Len(t, rep.Rules, 3)
		// Rules are listed in submission order, destination switch first.
		assert.Equal(t, topotest.S2, rep.Rules[0].DPID)
		assert.Equal(t, []string{"output:3"}, rep.Rules[0].Actions)
		assert.Nil(t, rep.Rules[0].BufferID)
		assert.Equal(t, "00:00:00:00:00:01", rep.Src.MAC)
		assert.Empty(t, f.journal.Entries())
	})
}

func TestGetFlows(t *testing.T) {
	f := newFixture(t, topotest.LeafSpine())
	require.NoError(t, f.ctrl.Handle(context.Background(), controller.SwitchUp{
		Switch: topotest.LeafSpine().Switches[0],
	}))

	var rep []mgmtapi.Rule
	rec := f.get(t, "/flows", &rep)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rep, 1)
	assert.Equal(t, mgmtapi.Rule{
		DPID:    topotest.S1,
		Match:   "any",
		Actions: []string{"output:controller(max_len=65535)"},
	}, rep[0])
}

func TestGetFlowsWithoutSource(t *testing.T) {
	s := &mgmtapi.Server{}
	req := httptest.NewRequest(http.MethodGet, mgmtapi.BaseURL+"/flows", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetInfo(t *testing.T) {
	f := newFixture(t, topotest.LeafSpine())
	var rep mgmtapi.Info
	rec := f.get(t, "/info", &rep)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mgmtapi.Info{ID: "ctrl-1", ConfigDigest: "abcd"}, rep)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, topotest.LeafSpine())
	req := httptest.NewRequest(http.MethodGet, mgmtapi.BaseURL+"/info", nil)
	req.Header.Set("Origin", "http://dashboard.example")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, topotest.LeafSpine())
	rec := f.get(t, "/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
