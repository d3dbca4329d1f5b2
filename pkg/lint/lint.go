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

package lint

import (
	"path/filepath"

	"github.com/rancher-sandbox/pkgsolve/pkg/lint/rules"
	"github.com/rancher-sandbox/pkgsolve/pkg/lint/support"
)

// All runs all of the available linters on the given index file.
func All(indexPath string) support.Linter {
	// Using abs path to get directory context
	path, _ := filepath.Abs(indexPath)

	linter := support.Linter{IndexPath: path}
	rules.Index(&linter)
	return linter
}
