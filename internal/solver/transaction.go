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
	"fmt"

	"github.com/Masterminds/log-go"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// handMarks are the packages the user asked for that were found
// installable, keyed by pool ID. They outlive a single Transaction so
// particle mode can hand them from one set to the next.
type handMarks map[int]bool

func (h handMarks) has(p *pkg.Pkg) bool { return p.ID >= 0 && h[p.ID] }

// Transaction is the state of one resolution run: what gets installed,
// what gets removed, what went wrong, and how far every package got.
type Transaction struct {
	ctx     context.Context
	policy  *Policy
	pool    AvailablePool
	db      InstalledDB
	chooser Chooser
	logger  log.Logger
	metrics *Metrics

	inset  *InstallSet
	rmset  *RemoveSet
	hand   handMarks
	states map[int]ProcessingState
	black  map[int]bool
	chain  []*node
	errs   errorLog
	// cnflPairs remembers in-set conflicts already reported, by the pair
	// of pool IDs, with the fingerprint of the package holding the error.
	cnflPairs map[[2]int]string
	rpmlib    []pkg.Capability

	flags  pkg.MatchFlags
	strict pkg.MatchFlags

	aborted bool
	fatal   *FatalError
}

func newTransaction(ctx context.Context, s *Solver, hand handMarks, rpmlib []pkg.Capability) *Transaction {
	t := &Transaction{
		ctx:       ctx,
		policy:    &s.Policy,
		pool:      s.Pool,
		db:        s.DB,
		chooser:   s.Chooser,
		logger:    s.logger(),
		metrics:   s.Metrics,
		hand:      hand,
		states:    make(map[int]ProcessingState),
		black:     make(map[int]bool),
		cnflPairs: make(map[[2]int]string),
		rpmlib:    rpmlib,
		flags:     s.Policy.matchFlags(),
		strict:    s.Policy.strictFlags(),
	}
	if t.chooser == nil {
		t.chooser = DefaultChooser{}
	}
	t.inset = NewInstallSet(t.flags)
	t.rmset = NewRemoveSet(t.flags)
	return t
}

// stopped tells whether resolution must not mark anything new.
func (t *Transaction) stopped() bool {
	return t.aborted || t.fatal != nil || t.ctx.Err() != nil
}

func (t *Transaction) stop() { t.aborted = true }

func (t *Transaction) die(p *pkg.Pkg, msg string) {
	t.fatal = &FatalError{Package: p.String(), Msg: msg}
	t.logger.Errorf("%s", t.fatal.Error())
	t.metrics.error(ErrFatal)
}

func (t *Transaction) state(p *pkg.Pkg) ProcessingState {
	return t.states[p.ID]
}

func (t *Transaction) setState(p *pkg.Pkg, s ProcessingState) {
	if s == Unvisited {
		delete(t.states, p.ID)
		return
	}
	t.states[p.ID] = s
}

func (t *Transaction) isBlack(p *pkg.Pkg) bool { return t.black[p.ID] }

// isMarked tells whether an available package is on the install set.
func (t *Transaction) isMarked(p *pkg.Pkg) bool {
	return p.ID >= 0 && t.inset.Has(p)
}

func (t *Transaction) isHandMarked(p *pkg.Pkg) bool {
	return t.isMarked(p) && t.inset.Mark(p)&MarkHand != 0
}

// isMarkedForRemoval accepts installed packages and available packages
// that are the same build as an installed one.
func (t *Transaction) isMarkedForRemoval(p *pkg.Pkg) bool {
	if p.RecNo > 0 {
		return t.rmset.Has(p)
	}
	return t.rmset.HasLike(p)
}

// isOtherVersionMarked tells whether another version of p is on the
// install set, satisfying req when one is given.
func (t *Transaction) isOtherVersionMarked(p *pkg.Pkg, req *pkg.Capability) bool {
	for _, q := range t.pool.FindByName(p.Name) {
		if q == p || !t.isMarked(q) {
			continue
		}
		if req == nil || q.SatisfiesReq(req, 0) {
			return true
		}
	}
	return false
}

// markPackage puts p on the install set. An installability error stops
// the whole transaction.
func (t *Transaction) markPackage(p *pkg.Pkg, mark MarkFlag) bool {
	switch t.isInstallable(p, t.hand.has(p)) {
	case InstallError:
		t.stop()
		return false
	case NotInstallable:
		return false
	}
	if t.hand.has(p) {
		delete(t.hand, p.ID)
		mark |= MarkInternal
	}
	if err := t.inset.Add(p, mark); err != nil {
		t.logger.Errorf("%s", err)
		return false
	}
	t.metrics.marked(mark)
	return true
}

// markNameGroup marks the requested packages whose name starts like p's.
func (t *Transaction) markNameGroup(p *pkg.Pkg) int {
	prefix := p.NamePrefix()
	n := 0
	for _, q := range t.pool.Packages() {
		if len(q.Name) < len(prefix) || q.Name[:len(prefix)] != prefix {
			continue
		}
		if !t.hand.has(q) || t.isMarked(q) {
			continue
		}
		t.logger.Debugf("mark %s", q)
		if t.markPackage(q, MarkHand) {
			n++
		}
	}
	return n
}

// dbMatchReq tells whether an installed package not on its way out
// satisfies req.
func (t *Transaction) dbMatchReq(req *pkg.Capability) bool {
	return t.db.MatchReq(req, t.flags, t.rmset)
}

func (t *Transaction) recordError(p *pkg.Pkg, code ErrorCode, format string, args ...interface{}) *PkgError {
	e := t.errs.record(p, code, fmt.Sprintf(format, args...))
	t.logger.Errorf("%s", e.Message)
	t.metrics.error(code)
	return e
}

// recordUnder records an error against p on behalf of the package being
// processed. Rolling that package back forgets it.
func (t *Transaction) recordUnder(p *pkg.Pkg, code ErrorCode, format string, args ...interface{}) {
	e := t.recordError(p, code, format, args...)
	if len(t.chain) > 0 {
		owner := t.chain[len(t.chain)-1]
		owner.errs = append(owner.errs, e)
	}
}

func (t *Transaction) forgetErrors(p *pkg.Pkg) {
	t.errs.forget(p)
	fp := p.GetFingerPrint()
	for k, owner := range t.cnflPairs {
		if owner == fp {
			delete(t.cnflPairs, k)
		}
	}
}

// markMessage logs why a package is being pulled in.
func (t *Transaction) markMessage(n *node) {
	switch n.by {
	case byGreedy:
		if n.pkg.Name != n.bypkg.Name {
			t.logger.Infof("greedy upgrade %s to %s (unresolved %s)", n.bypkg, n.pkg, n.byreq)
		} else if t.policy.Multilib {
			t.logger.Infof("greedy upgrade %s to %s.%s (unresolved %s)", n.bypkg, n.pkg.EVR(), n.pkg.Arch, n.byreq)
		} else {
			t.logger.Infof("greedy upgrade %s to %s (unresolved %s)", n.bypkg, n.pkg.EVR(), n.byreq)
		}
	case byReq, byOrphan:
		kind := "cap"
		if n.byreq != nil && n.byreq.Flags&pkg.CapConflict != 0 {
			kind = "cnfl"
		}
		prefix := ""
		if n.by == byOrphan {
			prefix = "orphaned "
		}
		t.logger.Infof("%s%s marks %s (%s %s)", prefix, n.bypkg, n.pkg, kind, n.byreq)
	}
}
