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
	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

type providerFunc func(p *pkg.Pkg, req *pkg.Capability) *pkg.Pkg

// dependenciesOf lists the providers of p's requirements, prerequisites
// first, without duplicates and without p itself.
func dependenciesOf(p *pkg.Pkg, providerOf providerFunc) []*pkg.Pkg {
	var deps []*pkg.Pkg
	seen := map[*pkg.Pkg]bool{p: true}
	for _, prereq := range []bool{true, false} {
		for i := range p.Requires {
			req := &p.Requires[i]
			if req.IsRpmlib() || req.IsPrereqUn() || (req.Flags&pkg.CapPrereq != 0) != prereq {
				continue
			}
			if dep := providerOf(p, req); dep != nil && !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

// orderPackages sorts pkgs depth first so that providers come before the
// packages requiring them.
func orderPackages(pkgs []*pkg.Pkg, providerOf providerFunc) []*pkg.Pkg {
	type frame struct {
		p    *pkg.Pkg
		deps []*pkg.Pkg
		next int
	}
	const (
		visiting = 1
		visited  = 2
	)

	state := make(map[*pkg.Pkg]int, len(pkgs))
	out := make([]*pkg.Pkg, 0, len(pkgs))

	for _, root := range pkgs {
		if state[root] != 0 {
			continue
		}
		state[root] = visiting
		stack := []*frame{{p: root, deps: dependenciesOf(root, providerOf)}}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			if f.next < len(f.deps) {
				dep := f.deps[f.next]
				f.next++
				if state[dep] == 0 {
					state[dep] = visiting
					stack = append(stack, &frame{p: dep, deps: dependenciesOf(dep, providerOf)})
				}
				continue
			}
			state[f.p] = visited
			out = append(out, f.p)
			stack = stack[:len(stack)-1]
		}
	}
	return out
}
