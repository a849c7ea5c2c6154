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

// Package fabric contains the value types that describe a switched network
// as seen by the controller: datapath identifiers, port numbers, attachment
// points, inter-switch links and end hosts.
//
// Datapath identifiers are formatted as 16 hex digits, the format used by
// Open vSwitch and Mininet (e.g. "0000000000000001"). Parsing also accepts a
// "0x" prefix, shorter hex strings and the colon separated form
// "00:00:00:00:00:00:00:01".
package fabric
