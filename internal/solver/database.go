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

// SearchTag selects the index an installed database search uses.
type SearchTag int

const (
	ByName     SearchTag = iota // package name
	ByCap                       // package name, provides and owned files
	ByReq                       // requirement names
	ByConflict                  // conflict names, obsoletes excluded
	ByFile                      // owned files
	numTags
)

// Skipper hides installed records from database queries. The uninstall set
// is one: packages on their way out no longer count as installed.
type Skipper interface {
	Skip(recno int) bool
}

// ObsoletesQuery tells InstalledDB.ObsoletedBy what replacing means.
type ObsoletesQuery struct {
	// Downgrade replaces newer instances instead of older ones.
	Downgrade bool
	// Obsoletes also honours the package's Obsoletes entries.
	Obsoletes bool
	Flags     pkg.MatchFlags
	// Filter, when set, must accept every returned package.
	Filter func(dbpkg *pkg.Pkg) bool
}

// InstalledDB is the database of installed packages. Every package it
// returns carries a non zero RecNo. Results are in record order.
type InstalledDB interface {
	Installed() []*pkg.Pkg
	Search(tag SearchTag, key string, skip Skipper) []*pkg.Pkg
	MatchReq(req *pkg.Capability, flags pkg.MatchFlags, skip Skipper) bool
	ObsoletedBy(p *pkg.Pkg, q ObsoletesQuery, skip Skipper) []*pkg.Pkg
	// WhatRequires returns the packages needing capability c that do not
	// provide it themselves.
	WhatRequires(c *pkg.Capability, flags pkg.MatchFlags, skip Skipper) []*pkg.Pkg
}

// PkgDB implements an in-memory installed database, keyed by record
// number, with one index per SearchTag.
type PkgDB struct {
	records btree.Map[int, *pkg.Pkg]
	index   [numTags]map[string][]int
	lastRec int
}

func NewPkgDB() *PkgDB {
	db := &PkgDB{}
	for i := range db.index {
		db.index[i] = make(map[string][]int)
	}
	return db
}

// Add records p as installed and returns its record number. A zero RecNo
// gets the next free one.
func (db *PkgDB) Add(p *pkg.Pkg) int {
	if p.RecNo == 0 {
		p.RecNo = db.lastRec + 1
	}
	if p.RecNo > db.lastRec {
		db.lastRec = p.RecNo
	}
	db.records.Set(p.RecNo, p)

	db.indexKey(ByName, p.Name, p.RecNo)
	db.indexKey(ByCap, p.Name, p.RecNo)
	for _, c := range p.Provides {
		db.indexKey(ByCap, c.Name, p.RecNo)
	}
	for _, f := range p.Files {
		db.indexKey(ByCap, f, p.RecNo)
		db.indexKey(ByFile, f, p.RecNo)
	}
	for _, c := range p.Requires {
		db.indexKey(ByReq, c.Name, p.RecNo)
	}
	for _, c := range p.Conflicts {
		if !c.IsObsoletes() {
			db.indexKey(ByConflict, c.Name, p.RecNo)
		}
	}
	return p.RecNo
}

func (db *PkgDB) indexKey(tag SearchTag, key string, recno int) {
	list := db.index[tag][key]
	if n := len(list); n > 0 && list[n-1] == recno {
		return
	}
	db.index[tag][key] = append(list, recno)
}

// Remove forgets an installed record.
func (db *PkgDB) Remove(recno int) bool {
	p, ok := db.records.Delete(recno)
	if !ok {
		return false
	}
	for tag := range db.index {
		for key, list := range db.index[tag] {
			out := list[:0]
			for _, r := range list {
				if r != recno {
					out = append(out, r)
				}
			}
			if len(out) == 0 {
				delete(db.index[tag], key)
			} else {
				db.index[tag][key] = out
			}
		}
	}
	p.RecNo = 0
	return true
}

func (db *PkgDB) Get(recno int) *pkg.Pkg {
	p, _ := db.records.Get(recno)
	return p
}

func (db *PkgDB) Installed() []*pkg.Pkg {
	return db.records.Values()
}

func (db *PkgDB) Len() int { return db.records.Len() }

func (db *PkgDB) Search(tag SearchTag, key string, skip Skipper) []*pkg.Pkg {
	recnos := append([]int{}, db.index[tag][key]...)
	sort.Ints(recnos)
	out := []*pkg.Pkg{}
	for i, r := range recnos {
		if i > 0 && recnos[i-1] == r {
			continue
		}
		if skip != nil && skip.Skip(r) {
			continue
		}
		if p, ok := db.records.Get(r); ok {
			out = append(out, p)
		}
	}
	return out
}

func (db *PkgDB) MatchReq(req *pkg.Capability, flags pkg.MatchFlags, skip Skipper) bool {
	for _, p := range db.Search(ByCap, req.Name, skip) {
		if p.SatisfiesReq(req, flags) {
			return true
		}
	}
	return false
}

func (db *PkgDB) ObsoletedBy(p *pkg.Pkg, q ObsoletesQuery, skip Skipper) []*pkg.Pkg {
	found := map[int]*pkg.Pkg{}

	self := p.SelfCap()
	self.Relation = pkg.RelEQ | pkg.RelLT
	if q.Downgrade {
		self.Relation = pkg.RelEQ | pkg.RelGT
	}
	for _, dbpkg := range db.Search(ByName, p.Name, skip) {
		if dbpkg.MatchReq(&self, q.Flags|pkg.PromoteVersion) {
			found[dbpkg.RecNo] = dbpkg
		}
	}

	if q.Obsoletes {
		for _, obsl := range p.Obsoletes() {
			obsl := obsl
			for _, tag := range []SearchTag{ByName, ByCap} {
				for _, dbpkg := range db.Search(tag, obsl.Name, skip) {
					if dbpkg.MatchReq(&obsl, q.Flags) {
						found[dbpkg.RecNo] = dbpkg
					}
				}
			}
		}
	}

	out := make([]*pkg.Pkg, 0, len(found))
	for _, dbpkg := range found {
		if q.Filter == nil || q.Filter(dbpkg) {
			out = append(out, dbpkg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecNo < out[j].RecNo })
	return out
}

func (db *PkgDB) WhatRequires(c *pkg.Capability, flags pkg.MatchFlags, skip Skipper) []*pkg.Pkg {
	out := []*pkg.Pkg{}
	for _, dbpkg := range db.Search(ByReq, c.Name, skip) {
		if dbpkg.SatisfiesReq(c, flags) {
			continue
		}
		if c.IsVersioned() && !dbpkg.RequiresCap(c, flags) {
			continue
		}
		out = append(out, dbpkg)
	}
	return out
}

// DebugPrintDB dumps the installed records to the logger.
func (db *PkgDB) DebugPrintDB(logger log.Logger) {
	logger.Debugf("Printing DB")
	db.records.Scan(func(recno int, p *pkg.Pkg) bool {
		logger.Debugf("%d: %s", recno, p.GetFingerPrint())
		return true
	})
}
