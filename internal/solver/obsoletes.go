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
	"sort"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// obsoletedBy returns the installed packages p replaces, leaving out the
// ones already on the uninstall set.
func (t *Transaction) obsoletedBy(p *pkg.Pkg) []*pkg.Pkg {
	q := ObsoletesQuery{
		Downgrade: t.policy.Downgrade,
		Obsoletes: t.policy.Obsoletes,
		Flags:     t.strict,
	}
	if t.policy.Multilib {
		// an uncoloured side lets the upgrade through
		q.Filter = func(dbpkg *pkg.Pkg) bool {
			return dbpkg.IsColoredLike(p, true)
		}
	}
	return t.db.ObsoletedBy(p, q, t.rmset)
}

// installSetProvides tells whether the install set satisfies c without
// marking anything new.
func (t *Transaction) installSetProvides(marker *pkg.Pkg, c *pkg.Capability) bool {
	best, _, found := t.findReq(marker, c)
	return found && best == nil
}

// processObsoletes moves what n's package replaces to the uninstall set
// and returns the installed packages left with unsatisfied requirements.
func (t *Transaction) processObsoletes(n *node) []*orphan {
	if !t.policy.Upgrade || t.stopped() {
		return nil
	}
	p := n.pkg

	obsoleted := t.obsoletedBy(p)
	t.logger.Debugf("%s removes %d package(s)", p, len(obsoleted))
	if len(obsoleted) == 0 {
		return nil
	}

	var unsatisfied []pkg.Capability
	seen := map[string]bool{}
	for _, dbpkg := range obsoleted {
		if t.rmset.Has(dbpkg) {
			t.die(dbpkg, "installed twice? Give up.")
			return nil
		}
		n.obsoletedBy = append(n.obsoletedBy, dbpkg)
		t.logger.Infof("%s obsoleted by %s", dbpkg, p)
		if err := t.rmset.Add(dbpkg, MarkDep); err != nil {
			t.logger.Errorf("%s", err)
			continue
		}

		for _, c := range dbpkg.AllCaps() {
			c := c
			if c.IsFile() && !isRequireablePath(c.Name) {
				continue
			}
			if p.SatisfiesReq(&c, t.strict) {
				t.logger.Debugf("- %s (satisfied by successor)", &c)
				continue
			}
			if t.installSetProvides(p, &c) {
				t.logger.Debugf("- %s (satisfied by inset)", &c)
				continue
			}
			if key := c.String(); !seen[key] {
				seen[key] = true
				unsatisfied = append(unsatisfied, c)
			}
		}
	}
	if len(unsatisfied) == 0 {
		return nil
	}

	var orphaned []*pkg.Pkg
	byRecNo := map[int]bool{}
	for i := range unsatisfied {
		for _, dbpkg := range t.db.WhatRequires(&unsatisfied[i], t.strict, t.rmset) {
			if !byRecNo[dbpkg.RecNo] {
				byRecNo[dbpkg.RecNo] = true
				orphaned = append(orphaned, dbpkg)
			}
		}
	}

	sort.Slice(orphaned, func(i, j int) bool { return orphaned[i].RecNo < orphaned[j].RecNo })

	var orphans []*orphan
	for _, dbpkg := range orphaned {
		if o := newOrphan(dbpkg, unsatisfied, t.strict); o != nil {
			t.logger.Debugf("- %s (nreqs=%d)", dbpkg, len(o.reqs))
			orphans = append(orphans, o)
		}
	}
	return orphans
}
