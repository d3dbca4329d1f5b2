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

	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// Chooser is asked when the resolver has a choice to make that policy
// leaves to the user. Returning ErrAbort stops the transaction.
type Chooser interface {
	// ChooseEquivalent picks one of candidates to satisfy req. marker may
	// be nil. def is the index the resolver would pick.
	ChooseEquivalent(marker *pkg.Pkg, req *pkg.Capability, candidates []*pkg.Pkg, def int) (int, error)
	// ChooseSuggests returns the suggestions of p to install.
	ChooseSuggests(p *pkg.Pkg, suggests []pkg.Capability) ([]pkg.Capability, error)
}

// DefaultChooser never asks: it takes the default candidate and every
// suggestion.
type DefaultChooser struct{}

func (DefaultChooser) ChooseEquivalent(_ *pkg.Pkg, _ *pkg.Capability, _ []*pkg.Pkg, def int) (int, error) {
	return def, nil
}

func (DefaultChooser) ChooseSuggests(_ *pkg.Pkg, suggests []pkg.Capability) ([]pkg.Capability, error) {
	return suggests, nil
}

// chooseEquiv lets the chooser override hint among candidates. A nil
// result with no error never happens; ErrAbort is passed through.
func (t *Transaction) chooseEquiv(marker *pkg.Pkg, req *pkg.Capability, candidates []*pkg.Pkg, hint *pkg.Pkg) (*pkg.Pkg, error) {
	if hint == nil {
		hint = candidates[0]
	}
	if !t.policy.AskEquivalents {
		return hint, nil
	}

	pkgs := append([]*pkg.Pkg{}, candidates...)
	sort.SliceStable(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return pkgs[i].CmpEVR(pkgs[j]) > 0
	})
	if t.policy.Multilib {
		// same builds in different arches leave nothing to choose
		for i := 1; i < len(pkgs); i++ {
			if pkgs[i].CmpNameEVR(pkgs[i-1]) == 0 {
				return hint, nil
			}
		}
	}

	def := 0
	for i, p := range pkgs {
		if p == hint {
			def = i
			break
		}
	}
	n, err := t.chooser.ChooseEquivalent(marker, req, pkgs, def)
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= len(pkgs) {
		return nil, errors.Wrapf(ErrAbort, "choice %d out of range", n)
	}
	return pkgs[n], nil
}

// withSuggests returns the suggestions of p to process along with its
// requirements.
func (t *Transaction) withSuggests(p *pkg.Pkg) []pkg.Capability {
	if !t.policy.Suggests || len(p.Suggests) == 0 {
		return nil
	}
	var open []pkg.Capability
	for i := range p.Suggests {
		c := &p.Suggests[i]
		if t.dbMatchReq(c) || t.inset.Provides(c) {
			continue
		}
		open = append(open, *c)
	}
	if len(open) == 0 {
		return nil
	}
	chosen, err := t.chooser.ChooseSuggests(p, open)
	if err != nil {
		if errors.Is(err, ErrAbort) {
			t.stop()
		}
		t.logger.Debugf("%s: suggests not taken: %s", p, err)
		return nil
	}
	return chosen
}
