/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"testing"
)

func TestLintCmd(t *testing.T) {
	testEnv(t)
	runTestCmd(t, []cmdTestCase{
		{
			name:     "lint a good index",
			cmd:      "lint testdata/stable/index.yaml",
			contains: []string{"==> Linting testdata/stable/index.yaml", "[WARNING] tool-1.0-1: not provided by any package of the index: missing-thing", "1 index(es) linted, 0 index(es) failed"},
		},
		{
			name:      "lint a bad index",
			cmd:       "lint testdata/lint/badindex.yaml",
			contains:  []string{"[ERROR] selfish-1.0-1: conflicts with itself (selfish-api)"},
			wantError: true,
		},
		{
			name:     "warnings pass",
			cmd:      "lint testdata/lint/warnindex.yaml",
			contains: []string{"[WARNING] bartool-1.0-1"},
		},
		{
			name:      "warnings fail in strict mode",
			cmd:       "lint --strict testdata/lint/warnindex.yaml",
			wantError: true,
		},
		{
			name:      "several indexes",
			cmd:       "lint testdata/stable/index.yaml testdata/lint/badindex.yaml",
			contains:  []string{"2 index(es) linted, 1 index(es) failed"},
			wantError: true,
		},
	})
}
