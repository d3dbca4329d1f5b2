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
	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
)

// Requirement statuses.
const (
	StatusInstalled = "installed"
	StatusAvailable = "available"
	StatusMissing   = "missing"
)

// RequirementStatus tells how one requirement of a package is met.
type RequirementStatus struct {
	Requirement string `json:"requirement"`
	Status      string `json:"status"`
	Provider    string `json:"provider,omitempty"`
}

// Dependency is the action for inspecting the requirements of packages.
//
// It provides the implementation of 'pkgsolve deps' and
// 'pkgsolve whatprovides'.
type Dependency struct {
	Config *Configuration
	Policy solver.Policy
}

// NewDependency creates a new Dependency object with the given configuration.
func NewDependency(cfg *Configuration) *Dependency {
	return &Dependency{
		Config: cfg,
		Policy: cfg.Policy(),
	}
}

// List returns the package name refers to, newest available first, then
// installed, along with the status of each of its requirements.
func (d *Dependency) List(name string) (*pkg.Pkg, []RequirementStatus, error) {
	w, err := BuildWorld(d.Config)
	if err != nil {
		return nil, nil, err
	}
	defer w.Close()

	var p *pkg.Pkg
	if pkgs := FindPackages(w.Pool, name); len(pkgs) > 0 {
		p = pkgs[0]
	} else if dbpkgs := w.DB.Search(solver.ByName, name, nil); len(dbpkgs) > 0 {
		p = dbpkgs[0]
	} else {
		return nil, nil, errors.Wrapf(ErrNoSuchPackage, "%s", name)
	}

	return p, d.requirementStatus(w, p), nil
}

func (d *Dependency) requirementStatus(w *World, p *pkg.Pkg) []RequirementStatus {
	flags := d.Policy.MatchFlags()
	out := []RequirementStatus{}
	for i := range p.Requires {
		req := &p.Requires[i]
		if req.IsRpmlib() {
			continue
		}
		st := RequirementStatus{Requirement: req.String(), Status: StatusMissing}
		if dbpkgs := providersOf(w.DB.Search(solver.ByCap, req.Name, nil), req, flags); len(dbpkgs) > 0 {
			st.Status, st.Provider = StatusInstalled, dbpkgs[0].String()
		} else if pkgs := w.Pool.FindProviders(req, flags); len(pkgs) > 0 {
			st.Status, st.Provider = StatusAvailable, pkgs[0].String()
		}
		out = append(out, st)
	}
	return out
}

// WhatProvides returns the installed and the available packages
// satisfying the capability, given as "name [relation evr]".
func (d *Dependency) WhatProvides(capability string) (installed, available []*pkg.Pkg, err error) {
	c, err := pkg.ParseCapability(capability)
	if err != nil {
		return nil, nil, err
	}

	w, err := BuildWorld(d.Config)
	if err != nil {
		return nil, nil, err
	}
	defer w.Close()

	flags := d.Policy.MatchFlags()
	installed = providersOf(w.DB.Search(solver.ByCap, c.Name, nil), &c, flags)
	available = w.Pool.FindProviders(&c, flags)
	return installed, available, nil
}

func providersOf(pkgs []*pkg.Pkg, req *pkg.Capability, flags pkg.MatchFlags) []*pkg.Pkg {
	out := []*pkg.Pkg{}
	for _, p := range pkgs {
		if p.SatisfiesReq(req, flags) {
			out = append(out, p)
		}
	}
	return out
}
