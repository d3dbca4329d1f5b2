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

package pkg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NoArch is the architecture of packages that run anywhere.
const NoArch = "noarch"

// Pkg is the minimum object the solver reasons about: a name, an
// epoch:version-release, the platform it was built for, and the lists of
// capabilities it provides, requires, conflicts with and suggests.
//
// Obsoletes are stored among the conflicts, flagged with CapObsoletes.
//
// A Pkg is never mutated by the solver; everything a transaction needs to
// remember about it is kept in side tables keyed by ID (available packages)
// or RecNo (installed packages).
type Pkg struct {
	ID         int          `json:"-" yaml:"-"` // position in the pool, -1 when not pooled
	Name       string       `json:"name"`
	Epoch      int32        `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	Version    string       `json:"version"`
	Release    string       `json:"release"`
	Arch       string       `json:"arch,omitempty" yaml:"arch,omitempty"`
	OS         string       `json:"os,omitempty" yaml:"os,omitempty"`
	Color      uint32       `json:"-" yaml:"-"` // multilib colour bits
	Size       int64        `json:"size,omitempty" yaml:"size,omitempty"`
	FileSize   int64        `json:"fileSize,omitempty" yaml:"filesize,omitempty"`
	BuildTime  int64        `json:"-" yaml:"-"`
	Summary    string       `json:"-" yaml:"-"`
	Repository string       `json:"repository,omitempty" yaml:"repository,omitempty"`
	RecNo      int          `json:"-" yaml:"-"` // installed database record, 0 when not installed
	Held       bool         `json:"-" yaml:"-"`
	Provides   []Capability `json:"-" yaml:"-"`
	Requires   []Capability `json:"-" yaml:"-"`
	Conflicts  []Capability `json:"-" yaml:"-"`
	Suggests   []Capability `json:"-" yaml:"-"`
	Files      []string     `json:"-" yaml:"-"`
}

func NewPkg(name string, epoch int32, version, release, arch string) *Pkg {
	p := &Pkg{
		ID:        -1,
		Name:      name,
		Epoch:     epoch,
		Version:   version,
		Release:   release,
		Arch:      arch,
		OS:        "linux",
		Provides:  []Capability{},
		Requires:  []Capability{},
		Conflicts: []Capability{},
		Suggests:  []Capability{},
	}
	return p
}

// NewPkgMock creates a new package from "[epoch:]version-release", with the
// given requirements and provides in their text form. It panics on
// malformed input.
// Useful for testing.
func NewPkgMock(name, evr, arch string, requires, provides []string) *Pkg {
	epoch, _, version, release, err := ParseEVR(evr)
	if err != nil {
		panic(err)
	}
	p := NewPkg(name, epoch, version, release, arch)
	if p.Requires, err = ParseCapabilities(requires, 0); err != nil {
		panic(err)
	}
	if p.Provides, err = ParseCapabilities(provides, 0); err != nil {
		panic(err)
	}
	return p
}

// JSON serializes package p into JSON, returning a []byte
func (p *Pkg) JSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(p)
	return buffer.Bytes(), err
}

// EVR returns "[epoch:]version-release".
func (p *Pkg) EVR() string {
	return FormatEVR(p.Epoch, p.Epoch > 0, p.Version, p.Release)
}

// GetFingerPrint returns a unique id of the package: name-evr.arch
func (p *Pkg) GetFingerPrint() string {
	if p.Arch == "" {
		return fmt.Sprintf("%s-%s", p.Name, p.EVR())
	}
	return fmt.Sprintf("%s-%s.%s", p.Name, p.EVR(), p.Arch)
}

// String returns name-evr, the form used in messages.
func (p *Pkg) String() string {
	return p.Name + "-" + p.EVR()
}

// SelfCap returns the capability every package implicitly provides: its
// own name at its exact version.
func (p *Pkg) SelfCap() Capability {
	return Capability{
		Name:     p.Name,
		Epoch:    p.Epoch,
		HasEpoch: p.Epoch > 0,
		Version:  p.Version,
		Release:  p.Release,
		Relation: RelEQ,
	}
}

// CmpEVR compares epoch, then version, then release.
func (p *Pkg) CmpEVR(o *Pkg) int {
	if rc := sign(int(p.Epoch) - int(o.Epoch)); rc != 0 {
		return rc
	}
	if rc := VersionCompare(p.Version, o.Version); rc != 0 {
		return rc
	}
	return VersionCompare(p.Release, o.Release)
}

// CmpVer compares epoch and version only.
func (p *Pkg) CmpVer(o *Pkg) int {
	if rc := sign(int(p.Epoch) - int(o.Epoch)); rc != 0 {
		return rc
	}
	return VersionCompare(p.Version, o.Version)
}

// CmpNameEVR orders by name, then EVR.
func (p *Pkg) CmpNameEVR(o *Pkg) int {
	if rc := strings.Compare(p.Name, o.Name); rc != 0 {
		return rc
	}
	return p.CmpEVR(o)
}

// NamePrefix is the part of the name before the first '-'.
func (p *Pkg) NamePrefix() string {
	if i := strings.IndexByte(p.Name, '-'); i > 0 {
		return p.Name[:i]
	}
	return p.Name
}

func (p *Pkg) EqNamePrefix(o *Pkg) bool {
	return p.NamePrefix() == o.NamePrefix()
}

// IsKindOf tells whether o is another version of the same package. In
// multilib mode the architecture must also be the same.
func (p *Pkg) IsKindOf(o *Pkg, multilib bool) bool {
	if p.Name != o.Name {
		return false
	}
	return !multilib || p.Arch == o.Arch
}

// IsColoredLike tells whether p and o may both be installed on a multilib
// system. Packages without colour are compatible with anything.
func (p *Pkg) IsColoredLike(o *Pkg, multilib bool) bool {
	if !multilib || p.Color == 0 || o.Color == 0 {
		return true
	}
	return p.Color&o.Color != 0
}

// HasPath tells whether the package owns the file.
func (p *Pkg) HasPath(path string) bool {
	for _, f := range p.Files {
		if f == path {
			return true
		}
	}
	return false
}

// CapsMatchReq looks for req among provides only.
func (p *Pkg) CapsMatchReq(req *Capability, flags MatchFlags) bool {
	for i := range p.Provides {
		if CapMatchReq(&p.Provides[i], req, flags) {
			return true
		}
	}
	return false
}

// MatchReq tells whether the package itself or one of its provides
// satisfies req.
func (p *Pkg) MatchReq(req *Capability, flags MatchFlags) bool {
	if p.Name == req.Name {
		self := p.SelfCap()
		if CapMatchReq(&self, req, flags) {
			return true
		}
	}
	return p.CapsMatchReq(req, flags)
}

// SatisfiesReq is MatchReq extended to file requirements, which are
// checked against the owned files.
func (p *Pkg) SatisfiesReq(req *Capability, flags MatchFlags) bool {
	if req.IsFile() && p.HasPath(req.Name) {
		return true
	}
	return p.MatchReq(req, flags)
}

// RequiresCap tells whether p has a requirement satisfied by c.
func (p *Pkg) RequiresCap(c *Capability, flags MatchFlags) bool {
	for i := range p.Requires {
		if CapMatchReq(c, &p.Requires[i], flags) {
			return true
		}
	}
	return false
}

// Obsoletes returns the obsoletes entries of p.
func (p *Pkg) Obsoletes() []Capability {
	var out []Capability
	for _, c := range p.Conflicts {
		if c.IsObsoletes() {
			out = append(out, c)
		}
	}
	return out
}

// ObsoletesPkg tells whether p declares o obsolete by name.
func (p *Pkg) ObsoletesPkg(o *Pkg, flags MatchFlags) bool {
	for i := range p.Conflicts {
		c := &p.Conflicts[i]
		if c.IsObsoletes() && c.Name == o.Name && o.MatchReq(c, flags) {
			return true
		}
	}
	return false
}

// CapsObsoletesPkgCaps tells whether one of p's obsoletes is provided by o.
func (p *Pkg) CapsObsoletesPkgCaps(o *Pkg, flags MatchFlags) bool {
	for i := range p.Conflicts {
		c := &p.Conflicts[i]
		if c.IsObsoletes() && o.MatchReq(c, flags) {
			return true
		}
	}
	return false
}

// ConflictsWith tells whether one of p's plain conflicts is satisfied by o.
func (p *Pkg) ConflictsWith(o *Pkg, flags MatchFlags) bool {
	for i := range p.Conflicts {
		c := &p.Conflicts[i]
		if !c.IsObsoletes() && o.SatisfiesReq(c, flags) {
			return true
		}
	}
	return false
}

// AllCaps returns what the package offers to others: its own name, its
// provides and its files.
func (p *Pkg) AllCaps() []Capability {
	caps := make([]Capability, 0, 1+len(p.Provides)+len(p.Files))
	caps = append(caps, p.SelfCap())
	caps = append(caps, p.Provides...)
	for _, f := range p.Files {
		caps = append(caps, Capability{Name: f})
	}
	return caps
}

// RequirementFor returns the first requirement of p that c satisfies.
func (p *Pkg) RequirementFor(c *Capability, flags MatchFlags) *Capability {
	for i := range p.Requires {
		if CapMatchReq(c, &p.Requires[i], flags) {
			return &p.Requires[i]
		}
	}
	return nil
}
