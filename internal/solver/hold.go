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

// matchesHold tells whether a hold pattern matches the package name, its
// name-version or its name-version-release.
func matchesHold(p *pkg.Pkg, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	ids := []string{p.Name, p.Name + "-" + p.Version}
	if p.Release != "" {
		ids = append(ids, p.Name+"-"+p.Version+"-"+p.Release)
	}
	for _, pattern := range patterns {
		for _, id := range ids {
			if fnmatch(pattern, id) {
				return true
			}
		}
	}
	return false
}

func (t *Transaction) isHeld(p *pkg.Pkg) bool {
	return p.Held || matchesHold(p, t.policy.HoldPatterns)
}

// verifyHeld refuses a removal set touching held packages.
func (t *Transaction) verifyHeld() bool {
	if !t.policy.Upgrade || !t.policy.Hold {
		return true
	}
	ok := true
	for _, dbpkg := range t.rmset.Packages() {
		if t.isHeld(dbpkg) {
			t.logger.Errorf("%s: refusing to uninstall held package", dbpkg.GetFingerPrint())
			ok = false
		}
	}
	return ok
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// validArchOS checks the install set against the machine arch and os
// lists. The arch check is off in multilib mode.
func (t *Transaction) validArchOS() bool {
	nerr := 0
	for _, p := range t.inset.Packages() {
		if !t.policy.Multilib && !t.policy.IgnoreArch && p.Arch != "" && !contains(t.policy.MachineArchs, p.Arch) {
			t.logger.Errorf("%s: package is for a different architecture (%s)", p.GetFingerPrint(), p.Arch)
			nerr++
		}
		if !t.policy.IgnoreOS && p.OS != "" && !contains(t.policy.MachineOS, p.OS) {
			t.logger.Errorf("%s: package is for a different operating system (%s)", p.GetFingerPrint(), p.OS)
			nerr++
		}
	}
	return nerr == 0
}
