// Copyright 2019 Anapaya Systems
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

// Package envtest contains helpers to test the config blocks of package env
// as part of a process' config test.
package envtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdnlab/fabric/private/env"
)

func InitTestGeneral(cfg *env.General) {}

func CheckTestGeneral(t *testing.T, cfg *env.General, id string) {
	assert.Equal(t, id, cfg.ID)
	assert.Equal(t, "/etc/fabric", cfg.ConfigDir)
}

func InitTestMetrics(cfg *env.Metrics) {
	cfg.Prometheus = "totally_random_value"
}

func CheckTestMetrics(t *testing.T, cfg *env.Metrics) {
	assert.Empty(t, cfg.Prometheus)
}

func InitTestAPI(cfg *env.API) {
	cfg.Addr = "totally_random_value"
}

func CheckTestAPI(t *testing.T, cfg *env.API) {
	assert.Equal(t, env.DefaultAPIAddress, cfg.Addr)
}

func InitTestLogging(cfg *env.Logging) {
	cfg.Console.Level = "totally_random_value"
}

func CheckTestLogging(t *testing.T, cfg *env.Logging) {
	assert.Equal(t, "info", cfg.Console.Level)
	assert.Equal(t, "human", cfg.Console.Format)
	assert.Equal(t, "none", cfg.Console.StacktraceLevel)
}
