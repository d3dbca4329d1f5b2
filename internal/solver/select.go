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
	"math"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// Installability is what isInstallable thinks of a package.
type Installability int

const (
	InstallError   Installability = -1
	NotInstallable Installability = 0
	Installable    Installability = 1
)

// isInstalled returns how many instances of p are installed and how p
// compares to the first of them.
func (t *Transaction) isInstalled(p *pkg.Pkg) (n int, cmp int) {
	dbpkgs := t.db.Search(ByName, p.Name, nil)
	if t.policy.Multilib {
		kind := dbpkgs[:0:0]
		for _, dbpkg := range dbpkgs {
			if dbpkg.IsKindOf(p, true) {
				kind = append(kind, dbpkg)
			}
		}
		dbpkgs = kind
	}
	if len(dbpkgs) > 0 {
		cmp = p.CmpEVR(dbpkgs[0])
	}
	return len(dbpkgs), cmp
}

func (t *Transaction) isInstallable(p *pkg.Pkg, handMarked bool) Installability {
	pol := t.policy
	n, cmp := t.isInstalled(p)

	switch {
	case n == 0:
		if handMarked && pol.Freshen {
			return NotInstallable
		}
	case handMarked && n > 1 && pol.Upgrade && !pol.Force:
		t.logger.Errorf("%s: multiple instances installed, give up", p.Name)
		return InstallError
	case pol.Upgrade && pol.Hold && t.isHeld(p):
		t.logger.Errorf("%s: refusing to upgrade held package", p)
		return NotInstallable
	case cmp <= 0 && !pol.Force && (pol.Upgrade || cmp == 0):
		eqs := "newer"
		if cmp == 0 {
			eqs = "equal"
		}
		switch {
		case cmp == 0 && pol.Reinstall:
			return Installable
		case cmp < 0 && pol.Downgrade:
			return Installable
		case handMarked && pol.Freshen:
			return NotInstallable
		case handMarked:
			t.logger.Errorf("%s: %s version installed, give up", p, eqs)
			return InstallError
		}
		t.logger.Debugf("%s: %s version installed, skipped", p, eqs)
		return NotInstallable
	}
	return Installable
}

// satisfiabilityScore scores how many of marker's requirements p meets.
func (t *Transaction) satisfiabilityScore(marker, p *pkg.Pkg) int {
	yes, no := 0, 0
	for _, list := range [][]pkg.Capability{marker.Requires, marker.Suggests} {
		for i := range list {
			if p.SatisfiesReq(&list[i], t.strict) {
				yes++
			} else {
				no++
			}
		}
	}
	switch {
	case yes > 2 && no == 0:
		return 3
	case yes > 1:
		return 2
	}
	return 0
}

// archScore ranks an architecture by its position in the machine list,
// lower is better.
func (t *Transaction) archScore(arch string) int {
	for i, a := range t.policy.MachineArchs {
		if a == arch {
			return i
		}
	}
	return len(t.policy.MachineArchs)
}

// drags counts the requirements of p that neither p, the install set nor
// the installed database meet: what choosing p would pull in.
func (t *Transaction) drags(p *pkg.Pkg) int {
	n := 0
	for i := range p.Requires {
		if p.Requires[i].IsRpmlib() || p.Requires[i].IsPrereqUn() {
			continue
		}
		req := p.Requires[i].Unversioned()
		if p.SatisfiesReq(&req, t.flags) || t.inset.Provides(&req) || t.dbMatchReq(&req) {
			continue
		}
		n++
	}
	return n
}

func (t *Transaction) markedConflicts(p *pkg.Pkg) int {
	n := 0
	for _, q := range t.pool.ConflictedWith(p, t.strict) {
		if t.isMarked(q) {
			n++
		}
	}
	return n
}

// leastDragging breaks a tie between the tied indexes of candidates: the
// one pulling in the fewest packages wins, then one without conflicts
// with the install set, then the first.
func (t *Transaction) leastDragging(candidates []*pkg.Pkg, tied []int) int {
	best, bestDrags, bestCnfl := tied[0], math.MaxInt32, math.MaxInt32
	for _, i := range tied {
		p := candidates[i]
		drags, cnfl := t.drags(p), t.markedConflicts(p)
		t.logger.Debugf("- %d. %s -> drags %d, conflicts %d", i, p, drags, cnfl)
		if drags < bestDrags || (drags == bestDrags && bestCnfl > 0 && cnfl == 0) {
			best, bestDrags, bestCnfl = i, drags, cnfl
		}
	}
	return best
}

// doSelectBest scores candidates against marker and returns the index of
// the best one. Equal scores of the same arch go to leastDragging, else
// the first wins.
func (t *Transaction) doSelectBest(marker *pkg.Pkg, candidates []*pkg.Pkg) int {
	if len(candidates) == 1 {
		return 0
	}
	multilib := t.policy.Multilib
	scores := make([]int, len(candidates))

	for i, p := range candidates {
		if t.isBlack(p) {
			scores[i] = -999
		}
		if marker != nil && marker.EqNamePrefix(p) {
			scores[i]++
			if marker.CmpEVR(p) == 0 {
				scores[i] += 2
			} else if marker.CmpVer(p) == 0 {
				scores[i]++
			}
		}
		if marker != nil && multilib {
			if p.IsColoredLike(marker, true) {
				scores[i] += 2
			} else if p.Arch == marker.Arch {
				scores[i]++
			}
		}
		if marker != nil {
			scores[i] += t.satisfiabilityScore(marker, p)
		}
		if n, cmp := t.isInstalled(p); n > 0 && cmp > 0 && !t.rmset.HasKindOf(p, multilib) {
			scores[i] += 5
		}
		scores[i] -= 5 * t.markedConflicts(p)
		if t.isOtherVersionMarked(p, nil) {
			t.logger.Debugf("%s: other version is already marked", p)
			scores[i] -= 10
		}
	}

	if multilib && marker != nil && marker.Arch == pkg.NoArch {
		best := math.MaxInt32
		archs := make([]int, len(candidates))
		for i, p := range candidates {
			archs[i] = t.archScore(p.Arch)
			if archs[i] < best {
				best = archs[i]
			}
		}
		for i := range candidates {
			if archs[i] == best {
				scores[i]++
			}
		}
	}

	best := 0
	for i, p := range candidates {
		t.logger.Debugf("- %d. %s -> score %d", i, p, scores[i])
		if scores[i] > scores[best] {
			best = i
		}
	}
	var tied []int
	sameArch := true
	for i, p := range candidates {
		if scores[i] == scores[best] {
			tied = append(tied, i)
			sameArch = sameArch && p.Arch == candidates[best].Arch
		}
	}
	if len(tied) > 1 && sameArch {
		best = t.leastDragging(candidates, tied)
	}
	return best
}

// selectBestPkg picks among the candidates coloured like marker and
// returns the index in candidates, -1 when none qualifies.
func (t *Transaction) selectBestPkg(marker *pkg.Pkg, candidates []*pkg.Pkg) int {
	var (
		colored []*pkg.Pkg
		index   []int
	)
	for i, p := range candidates {
		if p.IsColoredLike(marker, t.policy.Multilib) {
			colored = append(colored, p)
			index = append(index, i)
		}
	}
	if len(colored) == 0 {
		return -1
	}
	return index[t.doSelectBest(marker, colored)]
}

// lookupReq returns the available packages that could satisfy req.
// found with no suspects means nothing has to be installed for it.
func (t *Transaction) lookupReq(marker *pkg.Pkg, req *pkg.Capability) (suspects []*pkg.Pkg, found bool) {
	if req.IsRpmlib() {
		if len(t.rpmlib) == 0 {
			return nil, true
		}
		for i := range t.rpmlib {
			if pkg.CapMatchReq(&t.rpmlib[i], req, t.flags) {
				return nil, true
			}
		}
		return nil, false
	}
	if marker != nil && marker.SatisfiesReq(req, t.flags) {
		return nil, true
	}
	suspects = t.pool.FindProviders(req, t.flags)
	return suspects, len(suspects) > 0
}

// findReq looks for the package to install to satisfy marker's req.
// found with a nil best means the install set already satisfies it.
// candidates lists the live suspects when there was a choice.
func (t *Transaction) findReq(marker *pkg.Pkg, req *pkg.Capability) (best *pkg.Pkg, candidates []*pkg.Pkg, found bool) {
	suspects, found := t.lookupReq(marker, req)
	if !found || suspects == nil {
		return nil, nil, found
	}

	live := suspects[:0:0]
	for _, p := range suspects {
		if !t.isMarkedForRemoval(p) {
			live = append(live, p)
		}
	}
	if len(live) == 0 {
		return nil, nil, false
	}

	anyMarked := false
	for _, p := range live {
		if t.isMarked(p) {
			anyMarked = true
			break
		}
	}
	if !anyMarked {
		best = live[t.doSelectBest(marker, live)]
		if t.isOtherVersionMarked(best, nil) {
			best, found = nil, false
		}
	}
	if len(live) > 1 {
		candidates = live
	}
	if !req.IsRpmlib() {
		t.logger.Debugf("%s found=%t (%d candidate(s), best=%v)", req, found, len(candidates), best)
	}
	return best, candidates, found
}

// selectSuccessor returns the best newer version of an installed package.
func (t *Transaction) selectSuccessor(dbpkg *pkg.Pkg) *pkg.Pkg {
	var newer []*pkg.Pkg
	for _, p := range t.pool.FindByName(dbpkg.Name) {
		if p.IsKindOf(dbpkg, t.policy.Multilib) && p.CmpEVR(dbpkg) > 0 {
			newer = append(newer, p)
		}
	}
	if len(newer) == 0 {
		return nil
	}
	if i := t.selectBestPkg(dbpkg, newer); i >= 0 {
		return newer[i]
	}
	return nil
}
