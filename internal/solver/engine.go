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

// task is one resumable unit of resolution work. step either returns a
// child to run first, whose result comes back as childRC on the next
// step, or finishes with rc:
//
//	 1  processed (errors, if any, are recorded)
//	 0  failed or stopped
//	-1  failed and rolled back, the parent may try another candidate
type task interface {
	step(t *Transaction, childRC int) (child task, rc int, done bool)
}

// run drives root and everything it spawns on an explicit stack.
func (t *Transaction) run(root task) int {
	stack := []task{root}
	rc := 0
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		child, r, done := top.step(t, rc)
		rc = 0
		switch {
		case done:
			stack = stack[:len(stack)-1]
			rc = r
		case child != nil:
			stack = append(stack, child)
		}
	}
	return rc
}

type phase uint8

const (
	phStart phase = iota
	phObsoletes
	phRequirements
	phConflicts
	phEnd
)

// packageTask processes a package as NEW: mark it, replace what it
// obsoletes, resolve its requirements, then its conflicts.
type packageTask struct {
	n       *node
	phase   phase
	waiting bool
	onChain bool
	failed  bool
	rc      int

	orphans []*orphan
	next    int

	reqs      []*pkg.Capability
	nerrors   int
	backtrack bool

	conflicts *conflictScan
}

func newPackageTask(n *node) *packageTask {
	return &packageTask{n: n, rc: 1}
}

func (pt *packageTask) step(t *Transaction, childRC int) (task, int, bool) {
	for {
		switch pt.phase {
		case phStart:
			if done, rc := pt.start(t); done {
				return nil, rc, true
			}

		case phObsoletes:
			if pt.next < len(pt.orphans) && !t.stopped() {
				o := pt.orphans[pt.next]
				pt.next++
				return &orphanTask{o: o}, 0, false
			}
			pt.enterRequirements(t)

		case phRequirements:
			if pt.waiting {
				pt.waiting = false
				if childRC <= 0 {
					pt.nerrors++
					if childRC < 0 {
						pt.backtrack = true
					}
				}
			}
			if child := pt.requirements(t); child != nil {
				pt.waiting = true
				return child, 0, false
			}

		case phConflicts:
			if child := pt.conflicts.step(t, childRC); child != nil {
				return child, 0, false
			}
			pt.phase = phEnd

		case phEnd:
			pt.end(t)
			return nil, pt.rc, true
		}
	}
}

func (pt *packageTask) start(t *Transaction) (bool, int) {
	n, p := pt.n, pt.n.pkg
	if t.stopped() {
		return true, 0
	}
	if t.state(p) != Unvisited {
		t.logger.Debugf("not processing %s as NEW (%s)", p, t.state(p))
		return true, 1
	}
	t.logger.Debugf("PROCESS %s as NEW", p)

	var mark MarkFlag
	switch {
	case n.by == byHand || t.isMarked(p):
	case t.hand.has(p):
		mark = MarkHand
	default:
		mark = MarkDep
		t.markMessage(n)
	}

	t.setState(p, InProgress)
	if mark != 0 && !t.markPackage(p, mark) {
		if t.stopped() {
			t.setState(p, Failed)
			return true, 0
		}
		// left unvisited, another requirement on it reports its own error
		t.setState(p, Unvisited)
		t.black[p.ID] = true
		t.notInstallable(n)
		return true, 0
	}

	if len(t.chain) > 0 {
		parent := t.chain[len(t.chain)-1]
		parent.markedBy = append(parent.markedBy, n)
	}
	t.chain = append(t.chain, n)
	pt.onChain = true

	pt.orphans = t.processObsoletes(n)
	if t.fatal != nil {
		pt.failed, pt.rc = true, 0
		pt.phase = phEnd
		return false, 0
	}
	pt.phase = phObsoletes
	return false, 0
}

// notInstallable records the requirement of n's marker that n's package
// was meant to satisfy as unresolved.
func (t *Transaction) notInstallable(n *node) {
	if n.bypkg == nil || n.byreq == nil {
		return
	}
	switch n.by {
	case byOrphan, byGreedy:
		t.recordUnder(n.bypkg, ErrRequiredBy, "%s is required by %s, %s is not installable", n.byreq, n.bypkg, n.pkg)
	default:
		t.recordUnder(n.bypkg, ErrNotFound, "%s: req %s: %s is not installable", n.bypkg, n.byreq, n.pkg)
	}
}

func (pt *packageTask) enterRequirements(t *Transaction) {
	p := pt.n.pkg
	pt.phase = phRequirements
	pt.reqs = pt.reqs[:0]
	pt.next, pt.nerrors, pt.backtrack = 0, 0, false
	if t.stopped() {
		pt.nerrors++
		return
	}
	for i := range p.Requires {
		if !p.Requires[i].IsPrereqUn() {
			pt.reqs = append(pt.reqs, &p.Requires[i])
		}
	}
	for _, c := range t.withSuggests(p) {
		c := c
		pt.reqs = append(pt.reqs, &c)
	}
}

// requirements resumes the requirement loop. It returns a child to run or
// nil once the loop and its outcome are settled.
func (pt *packageTask) requirements(t *Transaction) task {
	n, p := pt.n, pt.n.pkg
	for {
		for pt.next < len(pt.reqs) {
			if t.stopped() {
				pt.nerrors++
				pt.next = len(pt.reqs)
				break
			}
			req := pt.reqs[pt.next]
			pt.next++
			child, rc := t.processReq(n, req)
			if child != nil {
				return child
			}
			if rc <= 0 {
				pt.nerrors++
			}
		}
		// every backtrack blackens a candidate, so retries run out
		if !pt.backtrack || n.flags&crossroad == 0 || t.stopped() {
			break
		}
		t.logger.Infof("Retrying to process %s", p)
		pt.next, pt.nerrors, pt.backtrack = 0, 0, false
	}

	pt.phase = phConflicts
	pt.conflicts = newConflictScan(n)
	if pt.nerrors == 0 {
		return nil
	}

	t.black[p.ID] = true
	pt.failed = true
	if n.backtrackable() {
		t.logger.Debugf("backtracking (%s)", p)
		t.rollback(n)
		t.metrics.backtrack()
		pt.rc = -1
		pt.phase = phEnd
	}
	return nil
}

func (pt *packageTask) end(t *Transaction) {
	p := pt.n.pkg
	if pt.onChain {
		t.chain = t.chain[:len(t.chain)-1]
	}
	if pt.rc != -1 {
		if pt.failed {
			t.setState(p, Failed)
		} else {
			t.setState(p, Done)
		}
	}
	t.logger.Debugf("END PROCESSING %s as NEW", p)
}

// orphanTask re-resolves the requirements an installed package lost.
type orphanTask struct {
	o    *orphan
	next int
}

func (ot *orphanTask) step(t *Transaction, _ int) (task, int, bool) {
	p := ot.o.pkg
	if ot.next == 0 {
		t.logger.Debugf("PROCESS %s as ORPHAN", p)
	}
	for ot.next < len(ot.o.reqs) {
		if t.stopped() {
			return nil, 0, true
		}
		req := ot.o.reqs[ot.next]
		ot.next++
		if req.IsPrereqUn() || req.IsRpmlib() {
			continue
		}
		if t.isMarkedForRemoval(p) {
			t.logger.Debugf("%s: obsoleted, return", p)
			return nil, 1, true
		}
		if child := t.processOrphanReq(p, req); child != nil {
			return child, 0, false
		}
	}
	t.logger.Debugf("END PROCESSING %s as ORPHAN", p)
	return nil, 1, true
}

// installPackage processes a package the user asked for.
func (t *Transaction) installPackage(p *pkg.Pkg) bool {
	if t.stopped() {
		return false
	}
	if t.state(p) != Unvisited {
		return true
	}
	t.logger.Debugf("INSTALLING %s", p)
	return t.run(newPackageTask(newNode(p, 0, nil, nil, byHand))) == 1
}
