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

package action

import (
	"context"

	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
)

// ErrNoSuchPackage is returned for an argument naming no available package.
var ErrNoSuchPackage = errors.New("no such package")

// Install is the action for resolving and recording the installation of
// packages.
//
// It provides the implementation of 'pkgsolve install'.
type Install struct {
	Config *Configuration
	Policy solver.Policy

	// CapLookup treats arguments naming no package as capabilities.
	CapLookup bool
	// DryRun resolves without recording the result in the installed
	// database.
	DryRun bool
}

// NewInstall creates a new Install object with the given configuration.
func NewInstall(cfg *Configuration) *Install {
	return &Install{
		Config: cfg,
		Policy: cfg.Policy(),
	}
}

// Run resolves the installation of the packages named by args. When the
// resolution succeeds and DryRun is off, the installed database is
// updated. The returned solver holds the outcome either way.
func (i *Install) Run(ctx context.Context, args []string) (*solver.Solver, error) {
	w, err := BuildWorld(i.Config)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	req, err := i.request(w.Pool, args)
	if err != nil {
		return nil, err
	}
	return i.solve(ctx, w, req)
}

func (i *Install) solve(ctx context.Context, w *World, req solver.Request) (*solver.Solver, error) {
	s := solver.New(w.Pool, w.DB, i.Policy)
	s.Chooser = i.Config.Chooser
	s.Logger = i.Config.Logger
	s.Metrics = i.Config.metrics

	err := s.Solve(ctx, req)
	if merr := i.Config.writeMetrics(); merr != nil {
		i.Config.Logger.Warnf("cannot write metrics: %s", merr)
	}
	if err != nil {
		return s, err
	}
	if !s.IsOK() || i.DryRun {
		return s, nil
	}

	rs := s.PkgResultSet
	if err := w.DB.Commit(rs.ToInstall, rs.Removed()); err != nil {
		return s, errors.Wrap(err, "cannot record the transaction")
	}
	return s, nil
}

// request maps each argument to the pool packages it names: a name, a
// name-version, a name-evr or a fingerprint.
func (i *Install) request(pool *solver.Pool, args []string) (solver.Request, error) {
	var req solver.Request
	for _, arg := range args {
		if pkgs := FindPackages(pool, arg); len(pkgs) > 0 {
			req.Packages = append(req.Packages, pkgs...)
			continue
		}
		if i.CapLookup {
			req.Caps = append(req.Caps, arg)
			continue
		}
		return req, errors.Wrapf(ErrNoSuchPackage, "%s", arg)
	}
	return req, nil
}

// FindPackages returns the pool packages arg names, newest first.
func FindPackages(pool solver.AvailablePool, arg string) []*pkg.Pkg {
	if pkgs := pool.FindByName(arg); len(pkgs) > 0 {
		return pkgs
	}
	var found []*pkg.Pkg
	for _, p := range pool.Packages() {
		switch arg {
		case p.String(), p.GetFingerPrint(), p.Name + "-" + p.Version:
			found = append(found, p)
		}
	}
	return found
}
