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

/*
Package rules contains all the rules that pkgsolve runs against a package
index when pkgsolve lint is run.
*/
package rules

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
	"github.com/rancher-sandbox/pkgsolve/pkg/config"
	"github.com/rancher-sandbox/pkgsolve/pkg/lint/support"
	"github.com/rancher-sandbox/pkgsolve/pkg/repo"
)

// Index runs the set of linter rules of a package index: the file must
// load, the capabilities of each package must parse, and the index should
// be self-contained.
func Index(linter *support.Linter) {
	indexName := filepath.Base(linter.IndexPath)
	index, err := repo.LoadIndexFile(linter.IndexPath)
	if !linter.RunLinterRule(support.ErrorSev, indexName, err) {
		return
	}
	linter.RunLinterRule(support.InfoSev, indexName, validateNotEmpty(index))

	pool := solver.NewPool()
	for _, e := range index.Packages {
		name := e.Name + "-" + e.EVR()
		p, err := e.ToPkg()
		if !linter.RunLinterRule(support.ErrorSev, name, err) {
			continue
		}
		pool.Add(p)
		linter.RunLinterRule(support.InfoSev, name, validateSummary(e))
		linter.RunLinterRule(support.WarningSev, name, validateArch(e))
	}

	for _, p := range pool.Packages() {
		linter.RunLinterRule(support.WarningSev, p.String(), validateRequirements(pool, p))
		linter.RunLinterRule(support.ErrorSev, p.String(), validateNoSelfConflict(p))
	}
}

// validateNotEmpty checks that the index lists packages
func validateNotEmpty(index *repo.IndexFile) error {
	if len(index.Packages) == 0 {
		return errors.New("index has no packages")
	}
	return nil
}

// validateSummary checks that the package has a summary, used by search
func validateSummary(e *repo.PackageEntry) error {
	if strings.TrimSpace(e.Summary) == "" {
		return errors.New("Setting a summary is recommended")
	}
	return nil
}

// validateArch checks that some machine can install the package
func validateArch(e *repo.PackageEntry) error {
	if e.Arch == "" || config.IsKnownArch(e.Arch) {
		return nil
	}
	return errors.Errorf("unknown architecture %q", e.Arch)
}

// validateRequirements checks that the index provides everything its
// packages require. rpmlib() requirements are the package manager's.
func validateRequirements(pool *solver.Pool, p *pkg.Pkg) error {
	var missing []string
	for i := range p.Requires {
		req := &p.Requires[i]
		if req.IsRpmlib() {
			continue
		}
		if len(pool.FindProviders(req, 0)) == 0 {
			missing = append(missing, req.String())
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("not provided by any package of the index: %s", strings.Join(missing, ", "))
	}
	return nil
}

// validateNoSelfConflict checks that the package does not conflict with
// what it provides itself, which would make it uninstallable
func validateNoSelfConflict(p *pkg.Pkg) error {
	for i := range p.Conflicts {
		c := &p.Conflicts[i]
		if c.IsObsoletes() {
			continue
		}
		if p.SatisfiesReq(c, 0) {
			return errors.Errorf("conflicts with itself (%s)", c)
		}
	}
	return nil
}
