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

	"github.com/Masterminds/log-go"
	"github.com/tidwall/btree"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// AvailablePool is the set of packages that can be installed.
//
// Lists returned are sorted by name, then newest version first.
type AvailablePool interface {
	Get(id int) *pkg.Pkg
	Packages() []*pkg.Pkg
	// Ordered returns every package, providers before their dependents.
	Ordered() []*pkg.Pkg
	FindByName(name string) []*pkg.Pkg
	// FindProviders returns the packages satisfying req.
	FindProviders(req *pkg.Capability, flags pkg.MatchFlags) []*pkg.Pkg
	// SearchCap returns the packages providing name at any version.
	SearchCap(name string) []*pkg.Pkg
	// SearchObsoletes returns the packages obsoleting name.
	SearchObsoletes(name string) []*pkg.Pkg
	// ConflictedWith returns the packages p conflicts with, or that
	// conflict with p.
	ConflictedWith(p *pkg.Pkg, flags pkg.MatchFlags) []*pkg.Pkg
}

// Pool is an arena of available packages. Packages get their ID from the
// position they were added at, and are indexed by name, provided
// capability, owned file, obsoletes and conflicts.
type Pool struct {
	pkgs    []*pkg.Pkg
	byName  btree.Map[string, []int]
	byCap   map[string][]int
	byFile  map[string][]int
	byObsl  map[string][]int
	byCnfl  map[string][]int
	sorted  []*pkg.Pkg
	ordered []*pkg.Pkg
}

func NewPool() *Pool {
	return &Pool{
		byCap:  make(map[string][]int),
		byFile: make(map[string][]int),
		byObsl: make(map[string][]int),
		byCnfl: make(map[string][]int),
	}
}

func appendIndex(idx map[string][]int, seen map[string]bool, key string, id int) {
	if seen[key] {
		return
	}
	seen[key] = true
	idx[key] = append(idx[key], id)
}

// Add puts p in the pool and returns its ID.
func (pl *Pool) Add(p *pkg.Pkg) int {
	id := len(pl.pkgs)
	p.ID = id
	pl.pkgs = append(pl.pkgs, p)

	ids, _ := pl.byName.Get(p.Name)
	pl.byName.Set(p.Name, append(ids, id))

	capSeen := map[string]bool{}
	appendIndex(pl.byCap, capSeen, p.Name, id)
	for _, c := range p.Provides {
		appendIndex(pl.byCap, capSeen, c.Name, id)
	}
	fileSeen := map[string]bool{}
	for _, f := range p.Files {
		appendIndex(pl.byFile, fileSeen, f, id)
	}
	obslSeen, cnflSeen := map[string]bool{}, map[string]bool{}
	for _, c := range p.Conflicts {
		if c.IsObsoletes() {
			appendIndex(pl.byObsl, obslSeen, c.Name, id)
		} else {
			appendIndex(pl.byCnfl, cnflSeen, c.Name, id)
		}
	}

	pl.sorted, pl.ordered = nil, nil
	return id
}

func (pl *Pool) Get(id int) *pkg.Pkg {
	if id < 0 || id >= len(pl.pkgs) {
		return nil
	}
	return pl.pkgs[id]
}

func (pl *Pool) Len() int { return len(pl.pkgs) }

func (pl *Pool) Packages() []*pkg.Pkg {
	if pl.sorted == nil {
		pl.sorted = make([]*pkg.Pkg, len(pl.pkgs))
		copy(pl.sorted, pl.pkgs)
		sortNameEVRRev(pl.sorted)
	}
	return pl.sorted
}

func (pl *Pool) Ordered() []*pkg.Pkg {
	if pl.ordered == nil {
		pl.ordered = orderPackages(pl.Packages(), func(_ *pkg.Pkg, req *pkg.Capability) *pkg.Pkg {
			if providers := pl.FindProviders(req, 0); len(providers) > 0 {
				return providers[0]
			}
			return nil
		})
	}
	return pl.ordered
}

func (pl *Pool) collect(ids []int, keep func(*pkg.Pkg) bool) []*pkg.Pkg {
	var out []*pkg.Pkg
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p := pl.pkgs[id]; keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	sortNameEVRRev(out)
	return out
}

func (pl *Pool) FindByName(name string) []*pkg.Pkg {
	ids, _ := pl.byName.Get(name)
	return pl.collect(ids, nil)
}

func (pl *Pool) FindProviders(req *pkg.Capability, flags pkg.MatchFlags) []*pkg.Pkg {
	ids := pl.byCap[req.Name]
	if req.IsFile() {
		ids = append(append([]int{}, ids...), pl.byFile[req.Name]...)
	}
	return pl.collect(ids, func(p *pkg.Pkg) bool {
		return p.SatisfiesReq(req, flags)
	})
}

func (pl *Pool) SearchCap(name string) []*pkg.Pkg {
	return pl.collect(pl.byCap[name], nil)
}

func (pl *Pool) SearchObsoletes(name string) []*pkg.Pkg {
	return pl.collect(pl.byObsl[name], nil)
}

func (pl *Pool) ConflictedWith(p *pkg.Pkg, flags pkg.MatchFlags) []*pkg.Pkg {
	var ids []int
	for i := range p.Conflicts {
		c := &p.Conflicts[i]
		if c.IsObsoletes() {
			continue
		}
		ids = append(ids, pl.byCap[c.Name]...)
		if c.IsFile() {
			ids = append(ids, pl.byFile[c.Name]...)
		}
	}
	for _, c := range p.AllCaps() {
		ids = append(ids, pl.byCnfl[c.Name]...)
	}
	return pl.collect(ids, func(q *pkg.Pkg) bool {
		if q == p {
			return false
		}
		return p.ConflictsWith(q, flags) || q.ConflictsWith(p, flags)
	})
}

// DebugPrintDB dumps the pool to the logger.
func (pl *Pool) DebugPrintDB(logger log.Logger) {
	logger.Debugf("Printing pool")
	pl.byName.Scan(func(name string, ids []int) bool {
		for _, id := range ids {
			logger.Debugf("%d: %s", id, pl.pkgs[id].GetFingerPrint())
		}
		return true
	})
}

// sortNameEVRRev sorts by name, then newest first, then arch so the order
// does not depend on how packages were loaded.
func sortNameEVRRev(pkgs []*pkg.Pkg) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		a, b := pkgs[i], pkgs[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if rc := a.CmpEVR(b); rc != 0 {
			return rc > 0
		}
		return a.Arch < b.Arch
	})
}
