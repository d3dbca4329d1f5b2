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

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
)

// Upgrade is the action for upgrading installed packages.
//
// It provides the implementation of 'pkgsolve upgrade'.
type Upgrade struct {
	*Install
}

// NewUpgrade creates a new Upgrade object with the given configuration.
func NewUpgrade(cfg *Configuration) *Upgrade {
	i := NewInstall(cfg)
	i.Policy.Upgrade = true
	return &Upgrade{Install: i}
}

// Run upgrades the packages named by args, or every installed package
// with a newer version available when args is empty.
func (u *Upgrade) Run(ctx context.Context, args []string) (*solver.Solver, error) {
	w, err := BuildWorld(u.Config)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	var req solver.Request
	if len(args) == 0 {
		req.Packages = Successors(w.Pool, w.DB, u.Policy.Multilib)
		u.Config.Logger.Debugf("%d package(s) to upgrade", len(req.Packages))
	} else {
		if req, err = u.request(w.Pool, args); err != nil {
			return nil, err
		}
	}
	return u.solve(ctx, w, req)
}

// Successors returns the newest available version of every installed
// package that has a newer one.
func Successors(pool solver.AvailablePool, db solver.InstalledDB, multilib bool) []*pkg.Pkg {
	var out []*pkg.Pkg
	for _, dbpkg := range db.Installed() {
		for _, p := range pool.FindByName(dbpkg.Name) {
			if p.IsKindOf(dbpkg, multilib) && p.CmpEVR(dbpkg) > 0 {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
