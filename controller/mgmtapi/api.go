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

// Package mgmtapi implements the management HTTP API of the controller.
//
// All endpoints are read only and served below /api/v1:
//
//	GET /topology              switches and links of the adjacency view
//	GET /hosts                 host table
//	GET /arp                   ARP proxy cache
//	GET /paths?src=MAC&dst=MAC path and flow program between two hosts
//	GET /flows                 rules submitted to switches
//	GET /info                  instance information
//
// Errors are reported as problem details (RFC 7807).
package mgmtapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sdnlab/fabric/controller"
	"github.com/sdnlab/fabric/controller/arpproxy"
	"github.com/sdnlab/fabric/controller/pathfinder"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/controller/topology"
	"github.com/sdnlab/fabric/pkg/fabric"
)

// BaseURL is the prefix of all endpoints.
const BaseURL = "/api/v1"

// Problem types.
const (
	BadRequest    = "/problems/bad-request"
	NotFound      = "/problems/not-found"
	NoPath        = "/problems/no-path"
	InternalError = "/problems/internal-error"
)

// Controller is the controller state the API exposes.
type Controller interface {
	Topology() topology.Snapshot
	Hosts() []fabric.Host
	ARPEntries() []arpproxy.Entry
	Plan(src, dst net.HardwareAddr) (controller.Plan, error)
}

// FlowSource lists the rules submitted to switches.
type FlowSource interface {
	Flows() []southbound.FlowMod
}

// Server implements the management API.
type Server struct {
	Controller Controller
	// Flows is optional. Without it, /flows is empty.
	Flows FlowSource
	Info  Info
}

// Handler returns the handler of the API, rooted at BaseURL.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
	}))
	r.Route(BaseURL, func(r chi.Router) {
		r.Get("/topology", s.GetTopology)
		r.Get("/hosts", s.GetHosts)
		r.Get("/arp", s.GetARP)
		r.Get("/paths", s.GetPath)
		r.Get("/flows", s.GetFlows)
		r.Get("/info", s.GetInfo)
	})
	return r
}

// GetTopology returns the adjacency view.
func (s *Server) GetTopology(w http.ResponseWriter, r *http.Request) {
	snap := s.Controller.Topology()
	rep := TopologyResponse{
		Switches: make([]Switch, 0, len(snap.Switches)),
		Links:    make([]Link, 0, len(snap.Links)),
	}
	for _, sw := range snap.Switches {
		rep.Switches = append(rep.Switches, Switch{DPID: sw.DPID, Ports: sw.Ports})
	}
	for _, l := range snap.Links {
		rep.Links = append(rep.Links, Link{Src: l.Src, Dst: l.Dst})
	}
	writeJSON(w, rep)
}

// GetHosts returns the host table.
func (s *Server) GetHosts(w http.ResponseWriter, r *http.Request) {
	hosts := s.Controller.Hosts()
	rep := make([]Host, 0, len(hosts))
	for _, h := range hosts {
		rep = append(rep, newHost(h))
	}
	writeJSON(w, rep)
}

// GetARP returns the ARP cache.
func (s *Server) GetARP(w http.ResponseWriter, r *http.Request) {
	entries := s.Controller.ARPEntries()
	rep := make([]ARPEntry, 0, len(entries))
	for _, e := range entries {
		entry := ARPEntry{IP: e.IP.String(), MAC: e.MAC.String()}
		if !e.Expires.IsZero() {
			expires := e.Expires.UTC()
			entry.Expires = &expires
		}
		rep = append(rep, entry)
	}
	writeJSON(w, rep)
}

// GetPath returns the path and the flow program between the hosts given by
// the src and dst query parameters.
func (s *Server) GetPath(w http.ResponseWriter, r *http.Request) {
	src, err := macParam(r, "src")
	if err != nil {
		badRequest(w, err)
		return
	}
	dst, err := macParam(r, "dst")
	if err != nil {
		badRequest(w, err)
		return
	}
	plan, err := s.Controller.Plan(src, dst)
	switch {
	case errors.Is(err, controller.ErrUnknownHost):
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusNotFound,
			Title:  "unknown host",
			Type:   StringRef(NotFound),
		})
		return
	case errors.Is(err, pathfinder.ErrNoPath):
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusNotFound,
			Title:  "no path between hosts",
			Type:   StringRef(NoPath),
		})
		return
	case err != nil:
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "error computing path",
			Type:   StringRef(InternalError),
		})
		return
	}
	writeJSON(w, NewPathResponse(plan))
}

// GetFlows returns the rules submitted to switches.
func (s *Server) GetFlows(w http.ResponseWriter, r *http.Request) {
	var flows []southbound.FlowMod
	if s.Flows != nil {
		flows = s.Flows.Flows()
	}
	writeJSON(w, newRules(flows))
}

// GetInfo returns the instance information.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Info)
}

func macParam(r *http.Request, name string) (net.HardwareAddr, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, errors.New("missing query parameter " + name)
	}
	mac, err := net.ParseMAC(raw)
	if err != nil {
		return nil, err
	}
	return mac, nil
}

func badRequest(w http.ResponseWriter, err error) {
	ErrorResponse(w, Problem{
		Detail: StringRef(err.Error()),
		Status: http.StatusBadRequest,
		Title:  "malformed query parameter",
		Type:   StringRef(BadRequest),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "unable to marshal response",
			Type:   StringRef(InternalError),
		})
	}
}

// ErrorResponse writes a problem details response.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// no point in catching error here, there is nothing we can do about it anymore.
	_ = enc.Encode(p)
}

// StringRef returns a pointer to s.
func StringRef(s string) *string {
	return &s
}
