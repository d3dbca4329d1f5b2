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
	"github.com/Masterminds/log-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rancher-sandbox/pkgsolve/internal/solver"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli"
	"github.com/rancher-sandbox/pkgsolve/pkg/config"
)

// Configuration is everything an action needs from the environment: the
// settings, the configuration file, and where to log and ask.
type Configuration struct {
	Settings *cli.EnvSettings
	Config   *config.Config
	Logger   log.Logger

	// Chooser answers the resolver's questions. Nil takes the defaults.
	Chooser solver.Chooser

	// Registry collects the resolver metrics. With MetricsFile set, they
	// are written there after each resolution.
	Registry    *prometheus.Registry
	MetricsFile string

	metrics *solver.Metrics
}

// NewConfiguration creates a Configuration with its own metrics registry.
func NewConfiguration(settings *cli.EnvSettings, cfg *config.Config, logger log.Logger) *Configuration {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	reg := prometheus.NewRegistry()
	return &Configuration{
		Settings: settings,
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		metrics:  solver.NewMetrics(reg),
	}
}

// Policy returns the configured policy, with the hold patterns of the
// environment added.
func (c *Configuration) Policy() solver.Policy {
	policy := c.Config.Policy
	policy.HoldPatterns = append(append([]string{}, policy.HoldPatterns...), c.Settings.Hold...)
	policy.MachineArchs = append([]string{}, policy.MachineArchs...)
	policy.MachineOS = append([]string{}, policy.MachineOS...)
	policy.RpmlibProvides = append([]string{}, policy.RpmlibProvides...)
	return policy
}

func (c *Configuration) writeMetrics() error {
	if c.MetricsFile == "" {
		return nil
	}
	c.Logger.Debugf("writing metrics to %s", c.MetricsFile)
	return prometheus.WriteToTextfile(c.MetricsFile, c.Registry)
}
