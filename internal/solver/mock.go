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

// BuildWorldMock fills a pool with available and a database with installed
// packages instead of loading repository indexes and the installed
// database file.
// Useful for testing.
func BuildWorldMock(available, installed []*pkg.Pkg) (*Pool, *PkgDB) {
	pool := NewPool()
	for _, p := range available {
		pool.Add(p)
	}
	db := NewPkgDB()
	for _, p := range installed {
		db.Add(p)
	}
	return pool, db
}

// NewMock creates a Solver with the default policy over a mock world.
// Useful for testing.
func NewMock(available, installed []*pkg.Pkg) *Solver {
	pool, db := BuildWorldMock(available, installed)
	return New(pool, db, DefaultPolicy())
}
