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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/docker/go-units"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v2"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// Status is the outcome of a resolution.
type Status string

const (
	// StatusOK means every requirement and conflict was resolved.
	StatusOK Status = "OK"
	// StatusForced means errors remain that the policy forgives.
	StatusForced Status = "FORCED"
	// StatusUnresolved means dependency or conflict errors remain.
	StatusUnresolved Status = "UNRESOLVED"
	// StatusRefused means the transaction would remove held packages or
	// install packages for another machine.
	StatusRefused Status = "REFUSED"
	// StatusAborted means resolution was stopped before it finished.
	StatusAborted Status = "ABORTED"
	// StatusNothing means no requested package needs installing.
	StatusNothing Status = "NOTHING"
)

// severity orders statuses when particle sets are merged.
func (s Status) severity() int {
	switch s {
	case StatusOK:
		return 1
	case StatusForced:
		return 2
	case StatusUnresolved:
		return 3
	case StatusRefused:
		return 4
	case StatusAborted:
		return 5
	}
	return 0
}

// Summary counts what a transaction installs and removes.
type Summary struct {
	Hand         int   `json:"hand"`
	Dep          int   `json:"dep"`
	Upgrade      int   `json:"upgrade"`
	Remove       int   `json:"remove"`
	DownloadSize int64 `json:"downloadSize"`
	InstallSize  int64 `json:"installSize"`
}

// PkgResultSet contains the outcome of solving and the package sets
// derived from it.
// It will be marshalled into Yaml and Json.
type PkgResultSet struct {
	ToInstall       []*pkg.Pkg  `json:"toInstall"`
	ToRemove        []*pkg.Pkg  `json:"toRemove"`
	Upgraded        []*pkg.Pkg  `json:"upgraded"` // installed packages replaced by one of the same name
	Status          Status      `json:"status"`
	Inconsistencies []string    `json:"inconsistencies"`
	Errors          []*PkgError `json:"errors"`
	Summary         Summary     `json:"summary"`
}

// Removed lists every installed package the transaction takes away,
// upgraded ones included.
func (rs *PkgResultSet) Removed() []*pkg.Pkg {
	removed := make([]*pkg.Pkg, 0, len(rs.ToRemove)+len(rs.Upgraded))
	removed = append(removed, rs.Upgraded...)
	return append(removed, rs.ToRemove...)
}

// successor finds the package of ToInstall upgrading dbpkg.
func (rs *PkgResultSet) successor(dbpkg *pkg.Pkg) *pkg.Pkg {
	for _, p := range rs.ToInstall {
		if p.Name == dbpkg.Name {
			return p
		}
	}
	return nil
}

type OutputMode int

const (
	JSON OutputMode = iota
	YAML
	Table
)

// Solver resolves install requests against a pool of available packages
// and a database of installed ones.
type Solver struct {
	Pool    AvailablePool
	DB      InstalledDB
	Policy  Policy
	Chooser Chooser // nil means DefaultChooser
	Logger  log.Logger
	Metrics *Metrics // nil records nothing

	PkgResultSet PkgResultSet // outcome of the last Solve
}

// New creates a new Solver over pool and db.
func New(pool AvailablePool, db InstalledDB, policy Policy) *Solver {
	s := &Solver{
		Pool:   pool,
		DB:     db,
		Policy: policy,
	}
	s.resetResult()
	return s
}

func (s *Solver) logger() log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Current
}

func (s *Solver) resetResult() {
	s.PkgResultSet = PkgResultSet{
		ToInstall:       []*pkg.Pkg{},
		ToRemove:        []*pkg.Pkg{},
		Upgraded:        []*pkg.Pkg{},
		Inconsistencies: []string{},
		Errors:          []*PkgError{},
	}
}

// IsOK tells whether the last Solve produced a transaction to run.
func (s *Solver) IsOK() bool {
	return s.PkgResultSet.Status == StatusOK || s.PkgResultSet.Status == StatusForced
}

func (s *Solver) FormatOutput(t OutputMode) (output string) {
	var sb strings.Builder
	switch t {
	case Table:
		rs := &s.PkgResultSet
		sb.WriteString(fmt.Sprintf("Status: %s\n", rs.Status))
		if s.IsOK() {
			if len(rs.ToInstall) > 0 {
				sb.WriteString("Packages to be installed:\n")
				table := uitable.New()
				table.AddRow("NAME", "VERSION", "ARCH", "SIZE")
				for _, p := range rs.ToInstall {
					table.AddRow(p.Name, p.EVR(), p.Arch, units.HumanSize(float64(p.Size)))
				}
				sb.WriteString(table.String())
				sb.WriteString("\n")
			}
			if len(rs.Upgraded) > 0 {
				sb.WriteString("Packages to be upgraded:\n")
				table := uitable.New()
				table.AddRow("NAME", "FROM", "TO", "ARCH")
				for _, dbpkg := range rs.Upgraded {
					to := "-"
					if p := rs.successor(dbpkg); p != nil {
						to = p.EVR()
					}
					table.AddRow(dbpkg.Name, dbpkg.EVR(), to, dbpkg.Arch)
				}
				sb.WriteString(table.String())
				sb.WriteString("\n")
			}
			if len(rs.ToRemove) > 0 {
				sb.WriteString("Packages to be removed:\n")
				table := uitable.New()
				table.AddRow("NAME", "VERSION", "ARCH")
				for _, p := range rs.ToRemove {
					table.AddRow(p.Name, p.EVR(), p.Arch)
				}
				sb.WriteString(table.String())
				sb.WriteString("\n")
			}
			sb.WriteString(fmt.Sprintf("%d package(s) to install (%d requested, %d dependencies), %d to upgrade, %d to remove\n",
				rs.Summary.Hand+rs.Summary.Dep, rs.Summary.Hand, rs.Summary.Dep, rs.Summary.Upgrade, rs.Summary.Remove))
			sb.WriteString(fmt.Sprintf("Need to get %s of archives, %s after installing.\n",
				units.HumanSize(float64(rs.Summary.DownloadSize)), units.HumanSize(float64(rs.Summary.InstallSize))))
		}
		if len(rs.Inconsistencies) > 0 {
			sb.WriteString("Inconsistencies:\n")
			for _, incons := range rs.Inconsistencies {
				sb.WriteString(fmt.Sprintf("\t%s\n", incons))
			}
		}
	case YAML:
		o, err := yaml.Marshal(s.PkgResultSet)
		if err != nil {
			s.logger().Errorf("cannot marshal result: %s", err)
		}
		sb.Write(o)
	case JSON:
		o, err := json.Marshal(s.PkgResultSet)
		if err != nil {
			s.logger().Errorf("cannot marshal result: %s", err)
		}
		sb.Write(o)
	}
	return sb.String()
}
