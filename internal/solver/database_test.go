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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

func newTestDB() (*PkgDB, map[string]*pkg.Pkg) {
	c := mockPkg("c", "1.0-1", nil, []string{"cc"}, nil, nil)
	c.Files = []string{"/usr/bin/c"}
	d := mockPkg("d", "1.0-1", []string{"c >= 1.0", "/usr/bin/c"}, nil, nil, nil)
	e := mockPkg("e", "1.0-1", nil, nil, []string{"c < 2.0"}, []string{"old-e"})

	db := NewPkgDB()
	for _, p := range []*pkg.Pkg{c, d, e} {
		db.Add(p)
	}
	return db, map[string]*pkg.Pkg{"c": c, "d": d, "e": e}
}

func TestPkgDBSearch(t *testing.T) {
	db, pkgs := newTestDB()
	is := assert.New(t)

	is.Equal(3, db.Len())
	is.Equal(1, pkgs["c"].RecNo)
	is.Equal(3, pkgs["e"].RecNo)

	is.Equal([]string{"c-1.0-1.x86_64"}, fingerprints(db.Search(ByName, "c", nil)))
	is.Equal([]string{"c-1.0-1.x86_64"}, fingerprints(db.Search(ByCap, "cc", nil)))
	is.Equal([]string{"c-1.0-1.x86_64"}, fingerprints(db.Search(ByCap, "/usr/bin/c", nil)))
	is.Equal([]string{"c-1.0-1.x86_64"}, fingerprints(db.Search(ByFile, "/usr/bin/c", nil)))
	is.Equal([]string{"d-1.0-1.x86_64"}, fingerprints(db.Search(ByReq, "c", nil)))
	is.Equal([]string{"e-1.0-1.x86_64"}, fingerprints(db.Search(ByConflict, "c", nil)))
	is.Empty(db.Search(ByConflict, "old-e", nil))
	is.Empty(db.Search(ByName, "missing", nil))
}

func TestPkgDBSkip(t *testing.T) {
	db, pkgs := newTestDB()
	rmset := NewRemoveSet(0)
	require.NoError(t, rmset.Add(pkgs["c"], MarkDep))

	is := assert.New(t)
	is.Empty(db.Search(ByCap, "cc", rmset))
	is.False(db.MatchReq(&pkg.Capability{Name: "cc"}, 0, rmset))
	is.True(db.MatchReq(&pkg.Capability{Name: "cc"}, 0, nil))

	is.True(rmset.Remove(pkgs["c"]))
	is.NotEmpty(db.Search(ByCap, "cc", rmset))
}

func TestPkgDBMatchReq(t *testing.T) {
	db, _ := newTestDB()
	is := assert.New(t)

	req := pkg.MustParseCapability("c >= 1.0")
	is.True(db.MatchReq(&req, 0, nil))
	req = pkg.MustParseCapability("c > 1.0")
	is.False(db.MatchReq(&req, 0, nil))
	req = pkg.MustParseCapability("/usr/bin/c")
	is.True(db.MatchReq(&req, 0, nil))
}

func TestPkgDBObsoletedBy(t *testing.T) {
	db, _ := newTestDB()

	for _, tcase := range []struct {
		name string
		p    *pkg.Pkg
		q    ObsoletesQuery
		want []string
	}{
		{
			name: "newer version",
			p:    mockPkg("c", "2.0-1", nil, nil, nil, nil),
			want: []string{"c-1.0-1.x86_64"},
		},
		{
			name: "same version",
			p:    mockPkg("c", "1.0-1", nil, nil, nil, nil),
			want: []string{"c-1.0-1.x86_64"},
		},
		{
			name: "older version",
			p:    mockPkg("c", "0.9-1", nil, nil, nil, nil),
			want: []string{},
		},
		{
			name: "older version with downgrade",
			p:    mockPkg("c", "0.9-1", nil, nil, nil, nil),
			q:    ObsoletesQuery{Downgrade: true},
			want: []string{"c-1.0-1.x86_64"},
		},
		{
			name: "obsoletes by provided capability",
			p:    mockPkg("x", "1.0-1", nil, nil, nil, []string{"cc"}),
			q:    ObsoletesQuery{Obsoletes: true},
			want: []string{"c-1.0-1.x86_64"},
		},
		{
			name: "obsoletes disabled",
			p:    mockPkg("x", "1.0-1", nil, nil, nil, []string{"cc"}),
			want: []string{},
		},
		{
			name: "filtered",
			p:    mockPkg("x", "1.0-1", nil, nil, nil, []string{"c", "d"}),
			q: ObsoletesQuery{Obsoletes: true, Filter: func(dbpkg *pkg.Pkg) bool {
				return dbpkg.Name != "c"
			}},
			want: []string{"d-1.0-1.x86_64"},
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			assert.Equal(t, tcase.want, fingerprints(db.ObsoletedBy(tcase.p, tcase.q, nil)))
		})
	}
}

func TestPkgDBWhatRequires(t *testing.T) {
	db, pkgs := newTestDB()
	is := assert.New(t)

	self := pkgs["c"].SelfCap()
	is.Equal([]string{"d-1.0-1.x86_64"}, fingerprints(db.WhatRequires(&self, 0, nil)))

	file := pkg.Capability{Name: "/usr/bin/c"}
	is.Equal([]string{"d-1.0-1.x86_64"}, fingerprints(db.WhatRequires(&file, 0, nil)))

	// too old for "c >= 1.0"
	old := pkg.MustParseCapability("c = 0.5-1")
	is.Empty(db.WhatRequires(&old, 0, nil))
}

func TestPkgDBRemove(t *testing.T) {
	db, pkgs := newTestDB()
	c := pkgs["c"]

	is := assert.New(t)
	is.True(db.Remove(c.RecNo))
	is.Equal(0, c.RecNo)
	is.False(db.Remove(1))
	is.Empty(db.Search(ByCap, "cc", nil))
	is.Equal([]string{"d-1.0-1.x86_64", "e-1.0-1.x86_64"}, fingerprints(db.Installed()))

	// record numbers are not reused
	f := mockPkg("f", "1.0-1", nil, nil, nil, nil)
	is.Equal(4, db.Add(f))
}
