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

// conflictCheck is one installed package that may conflict with the
// package being processed, through cnfl.
type conflictCheck struct {
	dbpkg *pkg.Pkg
	cnfl  *pkg.Capability
	// cap is set when dbpkg declares cnfl against a capability of ours.
	cap *pkg.Capability
}

// conflictScan walks the conflicts of a package against the install set
// and the installed database. Replacing a conflicting installed package
// needs a child task, so the scan is resumable.
type conflictScan struct {
	n       *node
	started bool

	items []pkg.Capability // our caps, then our conflicts
	ncaps int
	item  int

	checks []conflictCheck
	check  int

	// pending is the check a replacement is being installed for.
	pending *conflictCheck
	replace *pkg.Pkg
}

func newConflictScan(n *node) *conflictScan {
	return &conflictScan{n: n}
}

// step returns a task installing a replacement, or nil when the scan is
// over. childRC is the outcome of the last replacement.
func (cs *conflictScan) step(t *Transaction, childRC int) task {
	if !t.policy.Conflicts {
		return nil
	}
	p := cs.n.pkg
	if c := cs.pending; c != nil {
		cs.pending = nil
		if childRC <= 0 || t.state(cs.replace) == Failed {
			t.logger.Debugf("%s: replacement %s of %s failed", p, cs.replace, c.dbpkg)
			t.dbConflictError(p, c)
		}
	}
	if !cs.started {
		cs.started = true
		t.logger.Debugf("conflicts of %s", p)
		t.inSetConflicts(p)

		cs.items = append(cs.items, p.SelfCap())
		for _, c := range p.Provides {
			if t.policy.Mercy && c.IsBastard() {
				continue
			}
			cs.items = append(cs.items, c)
		}
		cs.ncaps = len(cs.items)
		for _, c := range p.Conflicts {
			if !c.IsObsoletes() {
				cs.items = append(cs.items, c)
			}
		}
	}

	for {
		for cs.check < len(cs.checks) {
			if t.stopped() {
				return nil
			}
			c := &cs.checks[cs.check]
			cs.check++
			child, resolved := t.resolveConflict(p, c.cnfl, c.dbpkg)
			if child != nil {
				cs.pending, cs.replace = c, child.n.pkg
				return child
			}
			if !resolved {
				t.dbConflictError(p, c)
			}
		}

		if cs.item >= len(cs.items) || t.stopped() {
			return nil
		}
		i := cs.item
		cs.item++
		if i < cs.ncaps {
			cs.checks = t.dbConflictsWithCap(p, &cs.items[i])
		} else {
			cs.checks = t.cnflConflictsWithDB(p, &cs.items[i])
		}
		cs.check = 0
	}
}

func (t *Transaction) dbConflictError(p *pkg.Pkg, c *conflictCheck) {
	if c.cap != nil {
		t.recordError(p, ErrDBConflict, "%s (cap %s) conflicts with installed %s (%s)", p, c.cap, c.dbpkg, c.cnfl)
	} else {
		t.recordError(p, ErrDBConflict, "%s (cnfl %s) conflicts with installed %s", p, c.cnfl, c.dbpkg)
	}
}

// inSetConflicts records a conflict with every install-marked package p
// conflicts with, once per pair.
func (t *Transaction) inSetConflicts(p *pkg.Pkg) int {
	n := 0
	for _, q := range t.pool.ConflictedWith(p, t.strict) {
		if !t.isMarked(q) {
			continue
		}
		key := [2]int{p.ID, q.ID}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if _, reported := t.cnflPairs[key]; reported {
			continue
		}
		t.cnflPairs[key] = p.GetFingerPrint()
		t.recordError(p, ErrConflict, "%s conflicts with %s", p, q)
		n++
	}
	return n
}

// dbConflictsWithCap lists installed packages declaring a conflict that
// c matches.
func (t *Transaction) dbConflictsWithCap(p *pkg.Pkg, c *pkg.Capability) []conflictCheck {
	var checks []conflictCheck
	for _, dbpkg := range t.db.Search(ByConflict, c.Name, t.rmset) {
		for i := range dbpkg.Conflicts {
			cnfl := &dbpkg.Conflicts[i]
			if cnfl.IsObsoletes() {
				continue
			}
			t.logger.Debugf("%s (%s) <-> %s ?", p, c, dbpkg)
			if pkg.CapMatchReq(c, cnfl, t.strict) {
				checks = append(checks, conflictCheck{dbpkg: dbpkg, cnfl: cnfl, cap: c})
			}
		}
	}
	return checks
}

// cnflConflictsWithDB lists installed packages providing what cnfl
// forbids.
func (t *Transaction) cnflConflictsWithDB(p *pkg.Pkg, cnfl *pkg.Capability) []conflictCheck {
	dbpkgs := t.db.Search(ByCap, cnfl.Name, t.rmset)
	if len(dbpkgs) == 0 {
		return nil
	}
	t.logger.Debugf("Processing conflict %s:%s...", p, cnfl)

	var disarmed map[string]bool
	if t.policy.AllowDuplicates && len(dbpkgs) > 1 {
		disarmed = map[string]bool{}
		for _, dbpkg := range dbpkgs {
			if disarmed[dbpkg.Name] {
				continue
			}
			if !dbpkg.SatisfiesReq(cnfl, t.strict) {
				t.logger.Debugf("%s: conflict disarmed by %s", cnfl, dbpkg)
				disarmed[dbpkg.Name] = true
			}
		}
	}

	var checks []conflictCheck
	for _, dbpkg := range dbpkgs {
		if disarmed[dbpkg.Name] {
			continue
		}
		if !p.IsColoredLike(dbpkg, t.policy.Multilib) {
			continue
		}
		if dbpkg.SatisfiesReq(cnfl, t.strict) {
			checks = append(checks, conflictCheck{dbpkg: dbpkg, cnfl: cnfl})
		}
	}
	return checks
}

// hasConflict tells whether p declares exactly cnfl.
func hasConflict(p *pkg.Pkg, cnfl *pkg.Capability) bool {
	for i := range p.Conflicts {
		c := &p.Conflicts[i]
		if c.Name == cnfl.Name && c.Relation == cnfl.Relation && c.EVR() == cnfl.EVR() {
			return true
		}
	}
	return false
}

// findDirectReplacement returns the first newer version of dbpkg that no
// longer declares cnfl. already is true when it is on the install set.
func (t *Transaction) findDirectReplacement(dbpkg *pkg.Pkg, cnfl *pkg.Capability) (rpkg *pkg.Pkg, already bool) {
	for _, p := range t.pool.FindByName(dbpkg.Name) {
		if !p.IsKindOf(dbpkg, t.policy.Multilib) || hasConflict(p, cnfl) {
			continue
		}
		if p.CmpEVR(dbpkg) > 0 {
			rpkg = p
			break
		}
	}
	if rpkg != nil && t.isMarked(rpkg) {
		return nil, true
	}
	return rpkg, false
}

// findIndirectReplacement returns a package obsoleting dbpkg that no
// longer declares cnfl.
func (t *Transaction) findIndirectReplacement(dbpkg *pkg.Pkg, cnfl *pkg.Capability) (rpkg *pkg.Pkg, already bool) {
	for _, p := range t.pool.SearchObsoletes(dbpkg.Name) {
		if !p.IsKindOf(dbpkg, t.policy.Multilib) || hasConflict(p, cnfl) {
			continue
		}
		if p.CapsObsoletesPkgCaps(dbpkg, t.strict) && p.CmpNameEVR(dbpkg) > 0 {
			rpkg = p
			break
		}
	}
	if rpkg != nil && t.isMarked(rpkg) {
		return nil, true
	}
	return rpkg, false
}

// resolveConflict tries to get rid of a conflict between p and an
// installed package by upgrading the latter. It returns the task
// installing the replacement, or whether the conflict is already gone.
func (t *Transaction) resolveConflict(p *pkg.Pkg, cnfl *pkg.Capability, dbpkg *pkg.Pkg) (*packageTask, bool) {
	if !t.policy.Follow || !cnfl.IsVersioned() {
		return nil, false
	}
	req := cnfl.Reversed()
	t.logger.Debugf("%s&%s cnfl %s", p, dbpkg, cnfl)

	byReplacement := false
	tomark, already := t.findDirectReplacement(dbpkg, cnfl)
	found := tomark != nil || already
	if found {
		byReplacement = true
	} else {
		var candidates []*pkg.Pkg
		tomark, candidates, found = t.findReq(p, &req)
		t.logger.Debugf("%s&%s cnfl %s => req lookup %v", p, dbpkg, cnfl, tomark)
		if found && tomark != nil && len(candidates) > 1 {
			var err error
			if tomark, err = t.chooseEquiv(p, &req, candidates, tomark); err != nil {
				t.logger.Errorf("%s", err)
				t.stop()
				return nil, false
			}
		}
	}
	if !found {
		tomark, already = t.findIndirectReplacement(dbpkg, cnfl)
		found = tomark != nil || already
		byReplacement = true
	}

	if !found {
		return nil, false
	}
	if tomark == nil {
		// already on the install set
		return nil, true
	}
	if byReplacement || tomark.ObsoletesPkg(dbpkg, t.strict) {
		t.logger.Debugf("%s&%s cnfl %s => install %s", p, dbpkg, cnfl, tomark)
		byreq := req
		byreq.Flags |= pkg.CapConflict
		return newPackageTask(newNode(tomark, 0, p, &byreq, byReq)), true
	}
	t.logger.Debugf("%s&%s cnfl %s => not found", p, dbpkg, cnfl)
	return nil, false
}
