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

// fabricpath prints the flow program the controller installs for IPv4
// traffic between two hosts of a topology file.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sdnlab/fabric/controller"
	"github.com/sdnlab/fabric/controller/mgmtapi"
	"github.com/sdnlab/fabric/controller/southbound"
	"github.com/sdnlab/fabric/pkg/fabric"
	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/private/serrors"
	"github.com/sdnlab/fabric/private/topology"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var flags struct {
		topology    string
		priority    uint16
		idleTimeout time.Duration
		hardTimeout time.Duration
		format      formatVal
		logLevel    string
	}
	cmd := &cobra.Command{
		Use:   "fabricpath <src> <dst>",
		Short: "Display the flow program between two hosts",
		Example: `  fabricpath --topology topology.json 00:00:00:00:00:01 00:00:00:00:00:03
  fabricpath --topology topology.json 10.0.0.1 10.0.0.4 --format json`,
		Long: `'fabricpath' computes the shortest path between two hosts of a topology
file and lists the flow rules the controller installs along it, in the order
they are submitted. Hosts are given by MAC or IPv4 address.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Setup(log.Config{Console: log.ConsoleConfig{Level: flags.logLevel}}); err != nil {
				return serrors.Wrap("setting up logging", err)
			}
			cmd.SilenceUsage = true

			topo, err := topology.Load(flags.topology)
			if err != nil {
				return serrors.Wrap("loading topology", err)
			}
			hosts := fabric.NewHostTable(topo.Hosts)
			src, err := resolve(hosts, args[0])
			if err != nil {
				return err
			}
			dst, err := resolve(hosts, args[1])
			if err != nil {
				return err
			}
			ctrl, err := controller.New(controller.Config{
				Discovery:   topology.NewStatic(topo),
				Transport:   &southbound.Journal{},
				Priority:    flags.priority,
				IdleTimeout: flags.idleTimeout,
				HardTimeout: flags.hardTimeout,
			})
			if err != nil {
				return err
			}
			plan, err := ctrl.Plan(src, dst)
			if err != nil {
				return err
			}
			switch flags.format {
			case "human":
				printHuman(cmd.OutOrStdout(), plan)
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(mgmtapi.NewPathResponse(plan))
			default:
				return serrors.New("output format not supported", "format", string(flags.format))
			}
		},
	}
	cmd.Flags().StringVarP(&flags.topology, "topology", "t", "topology.json",
		"Topology file or URL")
	cmd.Flags().Uint16Var(&flags.priority, "priority", 0, "Priority of the path rules")
	cmd.Flags().DurationVar(&flags.idleTimeout, "idle-timeout", 0, "Idle timeout of the rules")
	cmd.Flags().DurationVar(&flags.hardTimeout, "hard-timeout", 0, "Hard timeout of the rules")
	flags.format = "human"
	cmd.Flags().Var(&flags.format, "format", "Output format (human|json)")
	cmd.Flags().StringVar(&flags.logLevel, "log.level", "error",
		"Console logging level (debug|info|error)")
	return cmd
}

type formatVal string

var _ pflag.Value = (*formatVal)(nil)

func (v *formatVal) Set(val string) error {
	switch val {
	case "human", "json":
		*v = formatVal(val)
		return nil
	default:
		return serrors.New("output format not supported", "format", val)
	}
}

func (v *formatVal) Type() string   { return "format" }
func (v *formatVal) String() string { return string(*v) }

// resolve returns the MAC address of the host identified by a MAC or IPv4
// address.
func resolve(hosts *fabric.HostTable, s string) (net.HardwareAddr, error) {
	if mac, err := net.ParseMAC(s); err == nil {
		return mac, nil
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return nil, serrors.New("host must be a MAC or IPv4 address", "host", s)
	}
	h, ok := hosts.ByIPv4(ip)
	if !ok {
		return nil, serrors.New("no host with address", "ip", ip)
	}
	return h.MAC, nil
}

func printHuman(w io.Writer, plan controller.Plan) {
	fmt.Fprintf(w, "Path from %s (%s) to %s (%s): %d hops\n",
		plan.Src.MAC, plan.Src.Attachment, plan.Dst.MAC, plan.Dst.Attachment, plan.Path.Len())
	fmt.Fprintf(w, "  %s\n\n", plan.Path)

	rows := make([][]string, 0, len(plan.Rules))
	for _, r := range plan.Rules {
		actions := make([]string, 0, len(r.Actions))
		for _, a := range r.Actions {
			actions = append(actions, a.String())
		}
		rows = append(rows, []string{
			r.Switch.String(),
			fmt.Sprint(r.Priority),
			r.Match.String(),
			strings.Join(actions, ","),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"SWITCH", "PRIORITY", "MATCH", "ACTIONS"})
	table.AppendBulk(rows)
	table.Render()
}
