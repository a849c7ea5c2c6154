// Copyright 2018 ETH Zurich, Anapaya Systems
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

package env

import (
	"io"
	"strings"

	"github.com/sdnlab/fabric/pkg/log"
	"github.com/sdnlab/fabric/pkg/private/serrors"
	"github.com/sdnlab/fabric/private/config"
)

var _ config.Config = (*Logging)(nil)

// Logging is the [log] block. The launcher reads the same keys to set up
// the process logger before the process' own config is loaded.
type Logging struct {
	log.Config
}

func (cfg *Logging) Validate() error {
	switch strings.ToLower(cfg.Console.Level) {
	case "", "debug", "info", "error":
	default:
		return serrors.New("invalid log.console.level", "level", cfg.Console.Level)
	}
	switch cfg.Console.Format {
	case "", "human", "json":
	default:
		return serrors.New("invalid log.console.format", "format", cfg.Console.Format)
	}
	return nil
}

func (cfg *Logging) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, "\n["+strings.Join(path.Extend("console"), ".")+"]")
	config.WriteString(dst, loggingConsoleSample)
}

func (cfg *Logging) ConfigName() string {
	return "log"
}
