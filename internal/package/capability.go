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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Relation is a bitmask of the comparison results a versioned capability
// accepts.
type Relation uint8

const (
	RelEQ Relation = 1 << iota
	RelGT
	RelLT
)

// Matches tells whether a comparison result (provided against required)
// is accepted by the relation.
func (r Relation) Matches(cmp int) bool {
	switch {
	case cmp == 0:
		return r&RelEQ != 0
	case cmp > 0:
		return r&RelGT != 0
	default:
		return r&RelLT != 0
	}
}

// Reversed swaps the greater and lower bits.
func (r Relation) Reversed() Relation {
	out := r & RelEQ
	if r&RelGT != 0 {
		out |= RelLT
	}
	if r&RelLT != 0 {
		out |= RelGT
	}
	return out
}

func (r Relation) String() string {
	switch r {
	case RelEQ:
		return "="
	case RelGT:
		return ">"
	case RelLT:
		return "<"
	case RelEQ | RelGT:
		return ">="
	case RelEQ | RelLT:
		return "<="
	}
	return ""
}

var relationTokens = map[string]Relation{
	"=":  RelEQ,
	"==": RelEQ,
	">":  RelGT,
	"<":  RelLT,
	">=": RelEQ | RelGT,
	"=>": RelEQ | RelGT,
	"<=": RelEQ | RelLT,
	"=<": RelEQ | RelLT,
}

// CapFlag qualifies what a capability record is used for.
type CapFlag uint8

const (
	CapConflict  CapFlag = 1 << iota // conflicts entry
	CapObsoletes                     // conflicts entry that also obsoletes
	CapPrereq                        // needed before install
	CapPrereqUn                      // needed only before uninstall
	CapRpmlib                        // satisfied by the package manager itself
	CapBastard                       // added by the tooling, not by the packager
)

// Capability is something a package provides, or a requirement/conflict
// against such a thing. It is immutable once built.
type Capability struct {
	Name     string
	Epoch    int32
	HasEpoch bool
	Version  string
	Release  string
	Relation Relation
	Flags    CapFlag
}

// NewCapability builds a capability from already split fields.
func NewCapability(name string, rel Relation, evr string) (Capability, error) {
	c := Capability{Name: name, Relation: rel}
	if strings.HasPrefix(name, "rpmlib(") {
		c.Flags |= CapRpmlib
	}
	if evr == "" {
		c.Relation = 0
		return c, nil
	}
	if rel == 0 {
		return c, errors.Errorf("capability %q has a version but no relation", name)
	}
	var err error
	c.Epoch, c.HasEpoch, c.Version, c.Release, err = ParseEVR(evr)
	return c, err
}

// ParseCapability reads the textual form of a capability: "name" or
// "name <op> [epoch:]version[-release]".
func ParseCapability(s string) (Capability, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return NewCapability(fields[0], 0, "")
	case 3:
		rel, ok := relationTokens[fields[1]]
		if !ok {
			return Capability{}, errors.Errorf("capability %q: unknown relation %q", s, fields[1])
		}
		return NewCapability(fields[0], rel, fields[2])
	}
	return Capability{}, errors.Errorf("malformed capability %q", s)
}

// MustParseCapability is like ParseCapability but panics on error.
// Useful for testing.
func MustParseCapability(s string) Capability {
	c, err := ParseCapability(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCapabilities parses a list of capabilities, setting flags on each.
func ParseCapabilities(list []string, flags CapFlag) ([]Capability, error) {
	caps := make([]Capability, 0, len(list))
	for _, s := range list {
		c, err := ParseCapability(s)
		if err != nil {
			return nil, err
		}
		c.Flags |= flags
		caps = append(caps, c)
	}
	return caps, nil
}

// ParseEVR splits "[epoch:]version[-release]".
func ParseEVR(evr string) (epoch int32, hasEpoch bool, version, release string, err error) {
	rest := evr
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		e, perr := strconv.ParseInt(rest[:i], 10, 32)
		if perr != nil {
			return 0, false, "", "", errors.Wrapf(perr, "invalid epoch in %q", evr)
		}
		epoch, hasEpoch = int32(e), true
		rest = rest[i+1:]
	}
	version = rest
	if i := strings.LastIndexByte(rest, '-'); i >= 0 {
		version, release = rest[:i], rest[i+1:]
	}
	if version == "" {
		return 0, false, "", "", errors.Errorf("missing version in %q", evr)
	}
	return epoch, hasEpoch, version, release, nil
}

// FormatEVR is the inverse of ParseEVR.
func FormatEVR(epoch int32, hasEpoch bool, version, release string) string {
	var sb strings.Builder
	if hasEpoch {
		sb.WriteString(strconv.Itoa(int(epoch)))
		sb.WriteByte(':')
	}
	sb.WriteString(version)
	if release != "" {
		sb.WriteByte('-')
		sb.WriteString(release)
	}
	return sb.String()
}

// IsVersioned tells whether the capability constrains the version at all.
func (c *Capability) IsVersioned() bool {
	return c.Relation != 0 && (c.Version != "" || c.HasEpoch)
}

// IsFile tells whether the capability names an absolute file path.
func (c *Capability) IsFile() bool { return strings.HasPrefix(c.Name, "/") }

func (c *Capability) IsRpmlib() bool    { return c.Flags&CapRpmlib != 0 }
func (c *Capability) IsObsoletes() bool { return c.Flags&CapObsoletes != 0 }
func (c *Capability) IsPrereqUn() bool  { return c.Flags&CapPrereqUn != 0 }
func (c *Capability) IsBastard() bool   { return c.Flags&CapBastard != 0 }

// EVR returns the version part of the capability in text form.
func (c *Capability) EVR() string {
	if !c.IsVersioned() {
		return ""
	}
	return FormatEVR(c.Epoch, c.HasEpoch, c.Version, c.Release)
}

// Reversed returns a copy of c with its relation reversed. A conflict
// "foo < 2" reversed gives the requirement "foo > 2" that a replacement must
// satisfy. Conflict flags are dropped.
func (c Capability) Reversed() Capability {
	c.Relation = c.Relation.Reversed()
	c.Flags &^= CapConflict | CapObsoletes
	return c
}

// Unversioned returns c stripped of any version constraint.
func (c Capability) Unversioned() Capability {
	c.Relation, c.Epoch, c.HasEpoch, c.Version, c.Release = 0, 0, false, "", ""
	return c
}

func (c Capability) String() string {
	if !c.IsVersioned() {
		return c.Name
	}
	return c.Name + " " + c.Relation.String() + " " + c.EVR()
}
