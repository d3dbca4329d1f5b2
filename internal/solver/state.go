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

// ProcessingState tracks how far a package got through resolution.
type ProcessingState uint8

const (
	Unvisited ProcessingState = iota
	InProgress
	Done
	Failed
)

func (s ProcessingState) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unvisited"
}

// markedBy tells what made the engine process a package.
type markedBy uint8

const (
	byHand markedBy = iota
	byReq
	byOrphan
	byGreedy
)

type nodeFlag uint8

const (
	// crossroad is set on a package whose requirement had more than one
	// live candidate.
	crossroad nodeFlag = 1 << iota
	// crossroadIndirect is inherited from a backtrackable parent.
	crossroadIndirect
)

// node is a package being processed as NEW, with what it pulled in.
type node struct {
	pkg   *pkg.Pkg
	flags nodeFlag
	by    markedBy
	bypkg *pkg.Pkg
	byreq *pkg.Capability

	// markedBy holds the nodes this package caused to be processed.
	markedBy []*node
	// obsoletedBy holds the installed packages it put on the uninstall set.
	obsoletedBy []*pkg.Pkg
	// errs holds errors raised while processing it against other packages.
	errs []*PkgError
}

func newNode(p *pkg.Pkg, flags nodeFlag, bypkg *pkg.Pkg, byreq *pkg.Capability, by markedBy) *node {
	return &node{pkg: p, flags: flags, bypkg: bypkg, byreq: byreq, by: by}
}

func (n *node) backtrackable() bool {
	return n.flags&(crossroad|crossroadIndirect) != 0
}

// orphan is an installed package left with requirements that only
// packages on the uninstall set provided.
type orphan struct {
	pkg  *pkg.Pkg
	reqs []*pkg.Capability
}

func newOrphan(p *pkg.Pkg, caps []pkg.Capability, flags pkg.MatchFlags) *orphan {
	o := &orphan{pkg: p}
	for i := range caps {
		req := p.RequirementFor(&caps[i], flags)
		if req == nil || o.has(req) {
			continue
		}
		o.reqs = append(o.reqs, req)
	}
	if len(o.reqs) == 0 {
		return nil
	}
	return o
}

func (o *orphan) has(req *pkg.Capability) bool {
	for _, r := range o.reqs {
		if r == req {
			return true
		}
	}
	return false
}
