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

func TestDepsCmd(t *testing.T) {
	testEnv(t)
	runTestCmd(t, []cmdTestCase{
		{
			name:     "requirement status",
			cmd:      "deps tool",
			contains: []string{"tool-1.0-1.x86_64:", "/usr/bin/app", "available", "app-1.0-1", "missing-thing", "missing"},
		},
		{
			name:     "available provider",
			cmd:      "deps app -o json",
			contains: []string{`"package":"app-1.0-1.x86_64"`, `"requirement":"libfoo >= 2.0","status":"available","provider":"libfoo-2.0-1"`},
		},
		{
			name:      "unknown package",
			cmd:       "deps nosuch",
			contains:  []string{"no such package"},
			wantError: true,
		},
		{
			name:      "one package at a time",
			cmd:       "deps app tool",
			wantError: true,
		},
	})
}

func TestWhatProvidesCmd(t *testing.T) {
	testEnv(t)
	runTestCmd(t, []cmdTestCase{
		{
			name:     "virtual capability",
			cmd:      "whatprovides mta",
			contains: []string{"alt-a-1.0-1.noarch", "alt-b-1.0-1.noarch", "available", "stable"},
		},
		{
			name:     "file",
			cmd:      "whatprovides /bin/sh",
			contains: []string{"bash-5.0-3.x86_64", "installed", "bash-5.1-1.x86_64"},
		},
		{
			name:     "versioned",
			cmd:      `whatprovides "libfoo > 1.0" -o yaml`,
			contains: []string{"package: libfoo-2.0-1.x86_64"},
			excludes: []string{"libfoo-1.0-1"},
		},
		{
			name:     "nothing",
			cmd:      "whatprovides nothing-at-all",
			contains: []string{"No package provides it"},
		},
		{
			name:      "bad relation",
			cmd:       `whatprovides "libfoo >> 1"`,
			wantError: true,
		},
	})
}
