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

package config

const controllerSample = `
# Priority of installed path rules. The table-miss rule has priority 0.
# (default 1)
flow_priority = 1

# Idle timeout of path rules, in whole seconds. 0 disables expiry.
# (default 0s)
idle_timeout = "0s"

# Hard timeout of path rules, in whole seconds. 0 disables expiry.
# (default 0s)
hard_timeout = "0s"

# Maximum age of ARP cache entries. 0 means entries never expire.
# (default 0s)
arp_staleness = "0s"
`

const replaySample = `
# pcapng capture replayed as packet-ins at startup. If not set, nothing is
# replayed. (default "")
capture = ""

# Replay frames with the gaps recorded in the capture instead of as fast as
# possible. (default false)
realtime = false
`

const replayInterfacesSample = `
# Attachment points of the capture interfaces, by interface name or index.
# Interfaces named like Mininet switch ports (s1-eth3) need no entry.
# "0" = "0000000000000001:3"
`
