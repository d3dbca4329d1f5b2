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

// processReq resolves one requirement of a package processed as NEW. It
// returns either a task for the package to install or the outcome.
func (t *Transaction) processReq(n *node, req *pkg.Capability) (task, int) {
	p := n.pkg
	t.logger.Debugf("%s, req: %s", p, req)

	if t.dbMatchReq(req) {
		t.logger.Debugf("%s: satisfied by db", req)
		return nil, 1
	}

	best, candidates, found := t.findReq(p, req)
	if found && best == nil {
		t.logger.Debugf("%s: satisfied by already installed set", req)
		return nil, 1
	}

	if best != nil && t.policy.Follow {
		tomark := best
		if candidates != nil {
			var err error
			if tomark, err = t.chooseEquiv(p, req, candidates, best); err != nil {
				t.logger.Errorf("%s", err)
				t.stop()
				return nil, 0
			}
		}

		n.flags &^= crossroad
		if t.nonBlacks(candidates) > 1 {
			n.flags |= crossroad
			t.logger.Debugf("%s is a crossroad", p)
		}
		var flags nodeFlag
		if n.backtrackable() {
			flags |= crossroadIndirect
		}
		return newPackageTask(newNode(tomark, flags, p, req, byReq)), 0
	}

	if req.IsRpmlib() {
		t.recordError(p, ErrNotFound, "%s: req %s not found, upgrade rpm", p, req)
	} else {
		t.recordError(p, ErrNotFound, "%s: req %s not found", p, req)
	}
	return nil, 0
}

func (t *Transaction) nonBlacks(pkgs []*pkg.Pkg) int {
	n := 0
	for _, p := range pkgs {
		if !t.isBlack(p) {
			n++
		}
	}
	return n
}

// processOrphanReq resolves a requirement an installed package lost to
// the uninstall set.
func (t *Transaction) processOrphanReq(p *pkg.Pkg, req *pkg.Capability) task {
	t.logger.Debugf("%s, req: %s", p, req)

	// skip foreign requirements, the uninstall set never provided them
	if !t.rmset.Provides(req) {
		t.logger.Errorf("%s: %s skipped foreign requirement", p, req)
		return nil
	}

	if t.policy.AggressiveGreedy {
		if child := t.tryUpgradeOrphan(p, req); child != nil {
			return child
		}
	}

	best, candidates, found := t.findReq(p, req)
	if found && best == nil {
		t.logger.Debugf("%s: satisfied by already installed set", req)
		return nil
	}
	if t.dbMatchReq(req) {
		t.logger.Debugf("%s: satisfied by db", req)
		return nil
	}

	if t.policy.Greedy && !t.policy.AggressiveGreedy {
		if child := t.tryUpgradeOrphan(p, req); child != nil {
			return child
		}
	}

	if best != nil && t.policy.Follow {
		tomark := best
		if candidates != nil {
			var err error
			if tomark, err = t.chooseEquiv(p, req, candidates, best); err != nil {
				t.logger.Errorf("%s", err)
				t.stop()
				return nil
			}
		}
		return newPackageTask(newNode(tomark, 0, p, req, byOrphan))
	}

	t.recordUnder(p, ErrRequiredBy, "%s is required by %s", req, p)
	return nil
}

// tryUpgradeOrphan returns a task installing a successor of the orphan,
// nil when it has none.
func (t *Transaction) tryUpgradeOrphan(p *pkg.Pkg, req *pkg.Capability) task {
	t.logger.Debugf("%s req: %s", p, req)
	succ := t.findSuccessor(p)
	if succ == nil {
		return nil
	}
	return newPackageTask(newNode(succ, 0, p, req, byGreedy))
}

// findSuccessor returns the package that would replace an installed one:
// a newer version of it, or with obsoletes enabled, a package providing
// or obsoleting its name.
func (t *Transaction) findSuccessor(dbpkg *pkg.Pkg) *pkg.Pkg {
	p := t.selectSuccessor(dbpkg)
	if p == nil && t.policy.Obsoletes {
		if p = t.findSuccessorBy(dbpkg, t.pool.SearchCap); p == nil {
			p = t.findSuccessorBy(dbpkg, t.pool.SearchObsoletes)
		}
	}
	if p != nil {
		t.logger.Debugf("successor of %s is %s, marked=%t", dbpkg, p, t.isMarked(p) || t.hand.has(p))
	}
	return p
}

func (t *Transaction) findSuccessorBy(dbpkg *pkg.Pkg, search func(string) []*pkg.Pkg) *pkg.Pkg {
	var pkgs []*pkg.Pkg
	for _, p := range search(dbpkg.Name) {
		if p.Name == dbpkg.Name {
			continue
		}
		if areEquivalents(dbpkg, p) {
			t.logger.Debugf("- skipped equivalent %s", p)
			continue
		}
		pkgs = append(pkgs, p)
	}
	if len(pkgs) == 0 {
		t.logger.Debugf("%s: successor not found", dbpkg)
		return nil
	}
	if i := t.selectBestPkg(dbpkg, pkgs); i >= 0 {
		return pkgs[i]
	}
	return nil
}

// replacementCapName returns the unversioned obsoletes entry a package
// also provides, the way a rename is expressed.
func replacementCapName(p *pkg.Pkg) string {
	for i := range p.Conflicts {
		c := &p.Conflicts[i]
		if c.IsObsoletes() && !c.IsVersioned() && p.CapsMatchReq(c, 0) {
			return c.Name
		}
	}
	return ""
}

// areEquivalents tells whether two packages replace the same thing.
func areEquivalents(p1, p2 *pkg.Pkg) bool {
	c1 := replacementCapName(p1)
	return c1 != "" && c1 == replacementCapName(p2)
}
