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

package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sdnlab/fabric/pkg/private/util"
)

func TestDurWrap(t *testing.T) {
	testCases := map[string]struct {
		Input    string
		Expected time.Duration
		Err      assert.ErrorAssertionFunc
	}{
		"empty":    {Input: "", Expected: 0, Err: assert.NoError},
		"zero":     {Input: "0", Expected: 0, Err: assert.NoError},
		"seconds":  {Input: "30s", Expected: 30 * time.Second, Err: assert.NoError},
		"days":     {Input: "2d", Expected: 48 * time.Hour, Err: assert.NoError},
		"negative": {Input: "-1s", Err: assert.Error},
		"garbage":  {Input: "soon", Err: assert.Error},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var d util.DurWrap
			err := d.UnmarshalText([]byte(tc.Input))
			tc.Err(t, err)
			if err == nil {
				assert.Equal(t, tc.Expected, d.Duration)
				var back util.DurWrap
				raw, _ := d.MarshalText()
				assert.NoError(t, back.UnmarshalText(raw))
				assert.Equal(t, d, back)
			}
		})
	}
}
