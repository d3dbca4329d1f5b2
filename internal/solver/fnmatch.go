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
	"sync"

	"github.com/gobwas/glob"
)

var globCache sync.Map // pattern -> glob.Glob

// compileGlob compiles a shell glob without separators, so '*' also
// matches '/', unlike path.Match.
func compileGlob(pattern string) (glob.Glob, error) {
	if g, ok := globCache.Load(pattern); ok {
		return g.(glob.Glob), nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	globCache.Store(pattern, g)
	return g, nil
}

// fnmatch reports whether name matches the glob. Malformed patterns
// match nothing.
func fnmatch(pattern, name string) bool {
	g, err := compileGlob(pattern)
	if err != nil {
		return false
	}
	return g.Match(name)
}

// nonRequireable are files nobody depends on.
var nonRequireable = func() []glob.Glob {
	var out []glob.Glob
	for _, pattern := range []string{
		"/usr/share/doc/*/*",
		"/usr/share/doc/*",
		"/usr/share/man/*.[0-9]",
		"/usr/src/examples/*",
		"*.desktop",
		"*.mo",
		"*.gz",
		"*.bz2",
		"*.pdf",
		"*.txt",
		"*.png",
		"*.gif",
		"*.jpg",
		"*.c",
		"*.h",
		"*.pc",
		"*.pm",
		"*.py",
		"*.rb",
	} {
		out = append(out, glob.MustCompile(pattern))
	}
	return out
}()

func isRequireablePath(path string) bool {
	for _, g := range nonRequireable {
		if g.Match(path) {
			return false
		}
	}
	return true
}
