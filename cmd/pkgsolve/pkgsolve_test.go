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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/pkgsolve/pkg/cli"
)

func executeCommandStdinC(cmd string) (*cobra.Command, string, error) {
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return nil, "", err
	}

	// settings are global and read the environment once
	settings = cli.New()

	buf := new(bytes.Buffer)
	root, err := newRootCmd(buf, buf, args)
	if err != nil {
		return nil, "", err
	}

	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c, err := root.ExecuteC()
	result := buf.String()

	return c, result, err
}

func resetEnv() func() {
	origEnv := os.Environ()
	return func() {
		os.Clearenv()
		for _, pair := range origEnv {
			kv := strings.SplitN(pair, "=", 2)
			os.Setenv(kv[0], kv[1])
		}
		settings = cli.New()
	}
}

// testEnv points pkgsolve at the test repository, the test configuration
// and a private copy of the installed database, whose path it returns.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Cleanup(resetEnv())

	b, err := ioutil.ReadFile("testdata/installed.yaml")
	require.NoError(t, err)
	dir := t.TempDir()
	installed := filepath.Join(dir, "installed.yaml")
	require.NoError(t, ioutil.WriteFile(installed, b, 0644))

	os.Setenv("PKGSOLVE_CONFIG", "testdata/config.yaml")
	os.Setenv("PKGSOLVE_REPOSITORY_CONFIG", "testdata/repositories.yaml")
	os.Setenv("PKGSOLVE_INSTALLED", installed)
	os.Setenv("PKGSOLVE_NOEMOJIS", "true")
	os.Setenv("PKGSOLVE_NOCOLORS", "true")
	os.Unsetenv("PKGSOLVE_ROOT")
	os.Unsetenv("PKGSOLVE_INDEX")
	os.Unsetenv("PKGSOLVE_HOLD")
	os.Unsetenv("PKGSOLVE_DEBUG")
	return installed
}

// cmdTestCase describes a test case that runs a command line.
type cmdTestCase struct {
	name      string
	cmd       string
	contains  []string
	excludes  []string
	wantError bool
}

func runTestCmd(t *testing.T, tests []cmdTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Logf("running cmd: %s", tt.cmd)
			_, out, err := executeCommandStdinC(tt.cmd)
			if (err != nil) != tt.wantError {
				t.Errorf("expected error %v, got '%v'\n%s", tt.wantError, err, out)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("expected %q in output:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("unexpected %q in output:\n%s", s, out)
				}
			}
		})
	}
}
