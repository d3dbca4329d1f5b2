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

// Package config loads the user configuration file holding the default
// solver policy.
package config

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
)

// Config holds pkgsolve configuration.
type Config struct {
	// Policy is the solver policy commands start from before their flags
	// are applied.
	Policy solver.Policy `yaml:"policy"`
	// RepositoryConfig overrides the default repositories file.
	RepositoryConfig string `yaml:"repositoryConfig,omitempty"`
	// Installed overrides the default installed database.
	Installed string `yaml:"installed,omitempty"`
}

// machineArchs maps GOARCH to the package architectures the machine can
// run.
var machineArchs = map[string][]string{
	"amd64":   {"x86_64", "i686", "i586", "i386"},
	"386":     {"i686", "i586", "i386"},
	"arm64":   {"aarch64"},
	"arm":     {"armv7hl", "armv7l", "armv6l"},
	"ppc64le": {"ppc64le"},
	"s390x":   {"s390x"},
	"riscv64": {"riscv64"},
}

// MachineArchs returns the architectures installable on goarch, noarch
// included.
func MachineArchs(goarch string) []string {
	archs, ok := machineArchs[goarch]
	if !ok {
		archs = []string{goarch}
	}
	return append(append([]string{}, archs...), pkg.NoArch)
}

// IsKnownArch tells whether some machine runs packages built for arch.
func IsKnownArch(arch string) bool {
	if arch == pkg.NoArch {
		return true
	}
	for _, archs := range machineArchs {
		for _, a := range archs {
			if a == arch {
				return true
			}
		}
	}
	return false
}

// DefaultConfig returns a default configuration for the running machine.
func DefaultConfig() *Config {
	policy := solver.DefaultPolicy()
	policy.MachineArchs = MachineArchs(runtime.GOARCH)
	policy.MachineOS = []string{runtime.GOOS}
	return &Config{Policy: policy}
}

// LoadConfig loads configuration from path. Settings missing from the file
// keep their defaults; a missing file is the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "reading config")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if cfg.Policy.AggressiveGreedy {
		cfg.Policy.Greedy = true
	}
	return cfg, nil
}

// SaveConfig saves configuration to path.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	return errors.Wrap(ioutil.WriteFile(path, data, 0644), "writing config")
}
