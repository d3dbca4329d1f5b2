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
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// Request is what the user asked to install.
type Request struct {
	// Packages are pool packages requested by name.
	Packages []*pkg.Pkg
	// Caps are capability names to install a provider of.
	Caps []string
}

// prepareCap marks a provider of a requested capability: the first one
// when nothing installed provides it, otherwise a version upgrading an
// installed provider.
func (t *Transaction) prepareCap(name string, requested map[int]bool) error {
	providers := t.pool.SearchCap(name)
	if len(providers) == 0 {
		t.logger.Errorf("%s: no such package or capability", name)
		return nil
	}
	dbpkgs := t.db.Search(ByCap, name, nil)
	if len(dbpkgs) == 0 {
		if t.policy.Freshen {
			return nil
		}
		p := providers[0]
		if len(providers) > 1 {
			c := pkg.Capability{Name: name}
			var err error
			if p, err = t.chooseEquiv(nil, &c, providers, nil); err != nil {
				return err
			}
		}
		requested[p.ID] = true
		return nil
	}

	for _, dbpkg := range dbpkgs {
		for _, p := range providers {
			if p.Name != dbpkg.Name {
				continue
			}
			cmp := p.CmpNameEVR(dbpkg)
			if cmp > 0 || (cmp == 0 && t.policy.Reinstall) || (cmp < 0 && t.policy.Downgrade) {
				t.logger.Infof("%s: marked as %s's provider", p, name)
				requested[p.ID] = true
				return nil
			}
			eqs := "newer"
			if cmp == 0 {
				eqs = "equal"
			}
			t.logger.Infof("%s: %s version of %s is installed (%s), skipped", name, eqs, dbpkg, p)
		}
	}
	return nil
}

// unmarkNameDuplicates keeps one requested package per name, the newest,
// and per arch in multilib mode.
func (t *Transaction) unmarkNameDuplicates(requested map[int]bool) int {
	kept := map[string]bool{}
	n := 0
	for _, p := range t.pool.Packages() {
		if !requested[p.ID] {
			continue
		}
		key := p.Name
		if t.policy.Multilib {
			key += "." + p.Arch
		}
		if kept[key] {
			t.logger.Debugf("unmark %s", p)
			delete(requested, p.ID)
			continue
		}
		kept[key] = true
		n++
	}
	return n
}

// preinstall turns a request into the installable packages to process,
// providers first.
func (t *Transaction) preinstall(req Request) ([]*pkg.Pkg, error) {
	requested := map[int]bool{}
	for _, p := range req.Packages {
		if t.pool.Get(p.ID) != p {
			return nil, errors.Errorf("%s: not in the pool", p.GetFingerPrint())
		}
		requested[p.ID] = true
	}
	for _, name := range req.Caps {
		if err := t.prepareCap(name, requested); err != nil {
			return nil, err
		}
	}

	if t.unmarkNameDuplicates(requested) == 0 {
		return nil, ErrNothingToDo
	}

	var pkgs []*pkg.Pkg
	for _, p := range t.pool.Ordered() {
		if !requested[p.ID] {
			continue
		}
		if t.ctx.Err() != nil {
			return nil, t.ctx.Err()
		}
		installable := t.isInstallable(p, true)
		if installable > 0 {
			pkgs = append(pkgs, p)
			t.logger.Debugf("- added   %s", p)
		} else {
			t.logger.Debugf("- omitted %s", p)
		}
	}
	if len(pkgs) == 0 {
		return nil, ErrNothingToDo
	}
	return pkgs, nil
}

// parseRpmlib reads the rpmlib() capabilities of the package manager.
func parseRpmlib(list []string) ([]pkg.Capability, error) {
	caps, err := pkg.ParseCapabilities(list, pkg.CapRpmlib)
	return caps, errors.Wrap(err, "invalid rpmlib capability")
}

func (t *Transaction) summary() Summary {
	var sum Summary
	for _, p := range t.inset.Packages() {
		mark := t.inset.Mark(p)
		if mark&MarkHand != 0 {
			sum.Hand++
		} else {
			sum.Dep++
		}
		sum.DownloadSize += p.FileSize
		sum.InstallSize += p.Size
	}
	for _, dbpkg := range t.rmset.Packages() {
		if t.upgraded(dbpkg) {
			sum.Upgrade++
		} else {
			sum.Remove++
		}
		sum.InstallSize -= dbpkg.Size
	}
	return sum
}

// upgraded tells whether the removal of dbpkg is the upgrade of it by a
// marked package of the same name.
func (t *Transaction) upgraded(dbpkg *pkg.Pkg) bool {
	for _, p := range t.inset.Packages() {
		if p.Name == dbpkg.Name {
			return true
		}
	}
	return false
}

func dependencyErrors(ndeps, ncnfls int) string {
	var parts []string
	if ndeps == 1 {
		parts = append(parts, "1 unresolved dependency")
	} else if ndeps > 1 {
		parts = append(parts, strconv.Itoa(ndeps)+" unresolved dependencies")
	}
	if ncnfls > 0 {
		parts = append(parts, strconv.Itoa(ncnfls)+" conflicts")
	}
	return strings.Join(parts, ", ")
}

// doInstall processes every marked package and judges the outcome.
func (t *Transaction) doInstall() Status {
	t.logger.Infof("Processing dependencies...")
	for _, p := range t.inset.Packages() {
		t.installPackage(p)
		if t.stopped() {
			break
		}
	}
	if t.stopped() {
		return StatusAborted
	}

	sum := t.summary()
	t.logger.Infof("There are %d package(s) to install (%d marked, %d dependencies), %d to upgrade, %d to remove",
		sum.Hand+sum.Dep, sum.Hand, sum.Dep, sum.Upgrade, sum.Remove)

	status := StatusOK
	ndeps, ncnfls := t.errs.count(ClassDep), t.errs.count(ClassConflict)
	if ndeps > 0 || ncnfls > 0 {
		t.logger.Errorf("%s", dependencyErrors(ndeps, ncnfls))
		status = StatusForced
		if ndeps > 0 && !t.policy.NoDeps {
			status = StatusUnresolved
		}
		if ncnfls > 0 && !t.policy.Force {
			status = StatusUnresolved
		}
	}
	if status != StatusUnresolved {
		if !t.validArchOS() {
			return StatusRefused
		}
		if !t.verifyHeld() {
			return StatusRefused
		}
	}
	return status
}

// collect merges the outcome of t into the result set.
func (s *Solver) collect(t *Transaction, status Status, seenIn, seenRm map[int]bool) {
	rs := &s.PkgResultSet
	if status.severity() > rs.Status.severity() {
		rs.Status = status
	}
	for _, e := range t.errs.all() {
		rs.Errors = append(rs.Errors, e)
		rs.Inconsistencies = append(rs.Inconsistencies, e.Message)
	}
	if status != StatusOK && status != StatusForced {
		return
	}
	for _, p := range t.inset.InstallOrder() {
		if !seenIn[p.ID] {
			seenIn[p.ID] = true
			rs.ToInstall = append(rs.ToInstall, p)
		}
	}
	for _, dbpkg := range t.rmset.Packages() {
		if !seenRm[dbpkg.RecNo] {
			seenRm[dbpkg.RecNo] = true
			if t.upgraded(dbpkg) {
				rs.Upgraded = append(rs.Upgraded, dbpkg)
			} else {
				rs.ToRemove = append(rs.ToRemove, dbpkg)
			}
		}
	}
	sum := t.summary()
	rs.Summary.Hand += sum.Hand
	rs.Summary.Dep += sum.Dep
	rs.Summary.Upgrade += sum.Upgrade
	rs.Summary.Remove += sum.Remove
	rs.Summary.DownloadSize += sum.DownloadSize
	rs.Summary.InstallSize += sum.InstallSize
}

// Solve computes the transaction installing req. The outcome is left in
// s.PkgResultSet. A cancelled ctx or a fatal error is returned; every
// other problem is reported through the result status and errors.
func (s *Solver) Solve(ctx context.Context, req Request) error {
	start := time.Now()
	defer s.Metrics.observe(start)
	s.resetResult()

	rpmlib, err := parseRpmlib(s.Policy.RpmlibProvides)
	if err != nil {
		return err
	}

	pre := newTransaction(ctx, s, handMarks{}, rpmlib)
	pkgs, err := pre.preinstall(req)
	switch {
	case errors.Is(err, ErrNothingToDo):
		s.logger().Infof("Nothing to do")
		s.PkgResultSet.Status = StatusNothing
		return nil
	case errors.Is(err, ErrAbort):
		s.PkgResultSet.Status = StatusAborted
		return nil
	case err != nil:
		s.PkgResultSet.Status = StatusAborted
		return err
	}

	hand := handMarks{}
	for _, p := range pkgs {
		hand[p.ID] = true
	}
	seenIn, seenRm := map[int]bool{}, map[int]bool{}

	if !s.Policy.Particle || len(pkgs) == 1 {
		t := newTransaction(ctx, s, hand, rpmlib)
		for _, p := range pkgs {
			if hand.has(p) && !t.isMarked(p) {
				t.markPackage(p, MarkHand)
			}
		}
		s.collect(t, t.doInstall(), seenIn, seenRm)
		return s.finish(ctx, t)
	}

	nset := 0
	for _, p := range pkgs {
		if !hand.has(p) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		nset++
		t := newTransaction(ctx, s, hand, rpmlib)
		t.logger.Infof("** Installing set #%d", nset)
		t.markPackage(p, MarkHand)
		t.markNameGroup(p)
		s.collect(t, t.doInstall(), seenIn, seenRm)
		if err := s.finish(ctx, t); err != nil {
			return err
		}
	}
	return s.finish(ctx, nil)
}

func (s *Solver) finish(ctx context.Context, t *Transaction) error {
	if err := ctx.Err(); err != nil {
		s.PkgResultSet.Status = StatusAborted
		return errors.Wrap(err, "resolution interrupted")
	}
	if t != nil && t.fatal != nil {
		return t.fatal
	}
	return nil
}
