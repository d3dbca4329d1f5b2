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

package action

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/stretchr/testify/require"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli"
	"github.com/rancher-sandbox/pkgsolve/pkg/config"
)

// actionConfigFixture points at the stable test repository and a private
// copy of the installed database.
func actionConfigFixture(t *testing.T) (*Configuration, *bytes.Buffer) {
	t.Helper()

	// create our own Logger that satisfies impl/cli.Logger, but with a buffer for tests
	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.InfoOut = buf
	logger.WarnOut = buf
	logger.ErrorOut = buf
	logger.DebugOut = buf

	b, err := ioutil.ReadFile("testdata/installed.yaml")
	require.NoError(t, err)
	installed := filepath.Join(t.TempDir(), "installed.yaml")
	require.NoError(t, ioutil.WriteFile(installed, b, 0644))

	settings := &cli.EnvSettings{
		RepositoryConfig: "testdata/repositories.yaml",
		Installed:        installed,
	}
	cfg := config.DefaultConfig()
	cfg.Policy.MachineArchs = []string{"x86_64", "noarch"}
	cfg.Policy.MachineOS = []string{"linux"}
	return NewConfiguration(settings, cfg, logger), buf
}

func names(pkgs []*pkg.Pkg) []string {
	out := []string{}
	for _, p := range pkgs {
		out = append(out, p.String())
	}
	return out
}
