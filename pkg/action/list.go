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
	"regexp"
	"sort"

	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/pkg/repo"
)

// List is the action for listing installed packages.
type List struct {
	Config *Configuration
	// Filter is a regular expression package names must match.
	Filter string
}

// NewList constructs a new *List
func NewList(cfg *Configuration) *List {
	return &List{
		Config: cfg,
	}
}

// Run returns the installed packages, sorted by name.
func (l *List) Run() ([]*pkg.Pkg, error) {
	var filter *regexp.Regexp
	if l.Filter != "" {
		var err error
		if filter, err = regexp.Compile(l.Filter); err != nil {
			return nil, errors.Wrap(err, "invalid filter")
		}
	}

	path, err := l.Config.Settings.InstalledPath()
	if err != nil {
		return nil, err
	}
	db, err := repo.OpenInstalledDB(path, l.Config.Logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	pkgs := []*pkg.Pkg{}
	for _, p := range db.Installed() {
		if filter == nil || filter.MatchString(p.Name) {
			pkgs = append(pkgs, p)
		}
	}
	sort.SliceStable(pkgs, func(i, j int) bool {
		return pkgs[i].CmpNameEVR(pkgs[j]) < 0
	})
	return pkgs, nil
}
