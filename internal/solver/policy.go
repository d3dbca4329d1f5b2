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

package solver

import (
	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// Policy holds the transaction-wide options.
type Policy struct {
	// Follow marks packages needed to satisfy requirements. Without it
	// unsatisfied requirements are only reported.
	Follow bool `yaml:"follow"`
	// Greedy upgrades installed packages whose requirements get broken by
	// the transaction.
	Greedy bool `yaml:"greedy"`
	// AggressiveGreedy tries to upgrade orphans even when their broken
	// requirement could still be satisfied otherwise. Implies Greedy.
	AggressiveGreedy bool `yaml:"aggressiveGreedy"`

	Upgrade   bool `yaml:"upgrade"`
	Freshen   bool `yaml:"freshen"`
	Reinstall bool `yaml:"reinstall"`
	Downgrade bool `yaml:"downgrade"`

	Obsoletes       bool `yaml:"obsoletes"`
	Conflicts       bool `yaml:"conflicts"`
	AllowDuplicates bool `yaml:"allowDuplicates"`
	Multilib        bool `yaml:"multilib"`

	// Force ignores conflicts and installed-version checks, NoDeps ignores
	// unresolved dependencies.
	Force  bool `yaml:"force"`
	NoDeps bool `yaml:"nodeps"`

	Hold         bool     `yaml:"hold"`
	HoldPatterns []string `yaml:"holdPatterns,omitempty"`

	IgnoreArch   bool     `yaml:"ignoreArch"`
	IgnoreOS     bool     `yaml:"ignoreOS"`
	MachineArchs []string `yaml:"machineArchs,omitempty"`
	MachineOS    []string `yaml:"machineOS,omitempty"`

	// Suggests offers suggested packages to the Chooser.
	Suggests bool `yaml:"suggests"`
	// Mercy relaxes matching: unversioned provides satisfy versioned
	// requirements, and tooling-added capabilities are not checked for
	// conflicts.
	Mercy bool `yaml:"mercy"`
	// PromoteEpoch makes a missing epoch match any epoch. When false a
	// missing epoch is epoch 0.
	PromoteEpoch bool `yaml:"promoteEpoch"`
	// Particle resolves each requested package as its own transaction.
	Particle bool `yaml:"particle"`
	// AskEquivalents lets the Chooser pick among equivalent providers.
	AskEquivalents bool `yaml:"askEquivalents"`

	// RpmlibProvides lists the rpmlib() capabilities of the package
	// manager. When empty, rpmlib requirements are not checked.
	RpmlibProvides []string `yaml:"rpmlibProvides,omitempty"`
}

// DefaultPolicy is what an upgrade-capable install runs with.
func DefaultPolicy() Policy {
	return Policy{
		Follow:       true,
		Upgrade:      true,
		Obsoletes:    true,
		Conflicts:    true,
		Hold:         true,
		MachineArchs: []string{"x86_64", "i686", "i586", "i386", pkg.NoArch},
		MachineOS:    []string{"linux"},
	}
}

// matchFlags are the flags every requirement and provides lookup of a
// transaction is matched with.
func (p *Policy) matchFlags() pkg.MatchFlags {
	flags := p.strictFlags()
	if p.Mercy {
		flags |= pkg.PromoteVersion
	}
	return flags
}

// strictFlags never promote versions.
func (p *Policy) strictFlags() pkg.MatchFlags {
	if p.PromoteEpoch {
		return pkg.PromoteEpoch
	}
	return 0
}

// MatchFlags are the flags lookups made outside a transaction use to
// agree with it.
func (p *Policy) MatchFlags() pkg.MatchFlags { return p.matchFlags() }
