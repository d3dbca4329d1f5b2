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
	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// MarkFlag tells why a package is in a set.
type MarkFlag uint8

const (
	MarkHand     MarkFlag = 1 << iota // requested by the user
	MarkDep                           // pulled in by resolution
	MarkInternal                      // requested before the transaction touched it
)

// pkgSet is an ordered set of packages with marks and a cache of the
// capabilities it was found to provide.
type pkgSet struct {
	pkgs     []*pkg.Pkg
	marks    map[int]MarkFlag
	capcache map[string]struct{}
	key      func(*pkg.Pkg) int
	flags    pkg.MatchFlags
}

func newPkgSet(key func(*pkg.Pkg) int, flags pkg.MatchFlags) pkgSet {
	return pkgSet{
		marks:    make(map[int]MarkFlag),
		capcache: make(map[string]struct{}),
		key:      key,
		flags:    flags,
	}
}

func (s *pkgSet) Add(p *pkg.Pkg, mark MarkFlag) error {
	k := s.key(p)
	if _, ok := s.marks[k]; ok {
		return errors.Wrap(ErrAlreadyMarked, p.GetFingerPrint())
	}
	s.marks[k] = mark
	s.pkgs = append(s.pkgs, p)
	return nil
}

func (s *pkgSet) Remove(p *pkg.Pkg) bool {
	k := s.key(p)
	if _, ok := s.marks[k]; !ok {
		return false
	}
	delete(s.marks, k)
	for i, q := range s.pkgs {
		if s.key(q) == k {
			s.pkgs = append(s.pkgs[:i], s.pkgs[i+1:]...)
			break
		}
	}
	s.capcache = make(map[string]struct{})
	return true
}

func (s *pkgSet) Has(p *pkg.Pkg) bool {
	_, ok := s.marks[s.key(p)]
	return ok
}

func (s *pkgSet) Mark(p *pkg.Pkg) MarkFlag {
	return s.marks[s.key(p)]
}

func (s *pkgSet) Len() int { return len(s.pkgs) }

// Packages returns a copy of the members in insertion order.
func (s *pkgSet) Packages() []*pkg.Pkg {
	out := make([]*pkg.Pkg, len(s.pkgs))
	copy(out, s.pkgs)
	return out
}

// Provides tells whether any member satisfies req.
func (s *pkgSet) Provides(req *pkg.Capability) bool {
	key := req.String()
	if _, ok := s.capcache[key]; ok {
		return true
	}
	for _, p := range s.pkgs {
		if p.SatisfiesReq(req, s.flags) {
			s.capcache[key] = struct{}{}
			return true
		}
	}
	return false
}

// FindProviders returns the members satisfying req.
func (s *pkgSet) FindProviders(req *pkg.Capability) []*pkg.Pkg {
	var out []*pkg.Pkg
	for _, p := range s.pkgs {
		if p.SatisfiesReq(req, s.flags) {
			out = append(out, p)
		}
	}
	return out
}

// HasKindOf tells whether another version of p is a member.
func (s *pkgSet) HasKindOf(p *pkg.Pkg, multilib bool) bool {
	for _, q := range s.pkgs {
		if q.IsKindOf(p, multilib) {
			return true
		}
	}
	return false
}

// InstallSet holds the available packages chosen for installation.
type InstallSet struct {
	pkgSet
}

func NewInstallSet(flags pkg.MatchFlags) *InstallSet {
	return &InstallSet{pkgSet: newPkgSet(func(p *pkg.Pkg) int { return p.ID }, flags)}
}

// InstallOrder returns the members so that a package comes after the
// members providing its requirements, prerequisites first. Cycles are
// broken in insertion order.
func (s *InstallSet) InstallOrder() []*pkg.Pkg {
	return orderPackages(s.pkgs, func(_ *pkg.Pkg, req *pkg.Capability) *pkg.Pkg {
		for _, p := range s.pkgs {
			if p.SatisfiesReq(req, s.flags) {
				return p
			}
		}
		return nil
	})
}

// RemoveSet holds the installed packages chosen for removal.
type RemoveSet struct {
	pkgSet
	recnos       btree.Set[int]
	fingerprints map[string]int
}

func NewRemoveSet(flags pkg.MatchFlags) *RemoveSet {
	return &RemoveSet{
		pkgSet:       newPkgSet(func(p *pkg.Pkg) int { return p.RecNo }, flags),
		fingerprints: make(map[string]int),
	}
}

func (s *RemoveSet) Add(p *pkg.Pkg, mark MarkFlag) error {
	if err := s.pkgSet.Add(p, mark); err != nil {
		return err
	}
	s.recnos.Insert(p.RecNo)
	s.fingerprints[p.GetFingerPrint()]++
	return nil
}

func (s *RemoveSet) Remove(p *pkg.Pkg) bool {
	if !s.pkgSet.Remove(p) {
		return false
	}
	s.recnos.Delete(p.RecNo)
	fp := p.GetFingerPrint()
	if s.fingerprints[fp]--; s.fingerprints[fp] <= 0 {
		delete(s.fingerprints, fp)
	}
	return true
}

// Skip hides members from installed database queries.
func (s *RemoveSet) Skip(recno int) bool {
	return s.recnos.Contains(recno)
}

// HasLike tells whether a member has the same name, version and arch as p,
// which may be an available package.
func (s *RemoveSet) HasLike(p *pkg.Pkg) bool {
	return s.fingerprints[p.GetFingerPrint()] > 0
}
