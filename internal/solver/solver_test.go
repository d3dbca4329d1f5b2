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
	"bytes"
	"context"
	"encoding/json"
	"testing"

	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

// mockPkg creates an x86_64 package with conflicts and obsoletes.
func mockPkg(name, evr string, requires, provides, conflicts, obsoletes []string) *pkg.Pkg {
	p := pkg.NewPkgMock(name, evr, "x86_64", requires, provides)
	cnfls, err := pkg.ParseCapabilities(conflicts, pkg.CapConflict)
	if err != nil {
		panic(err)
	}
	obsls, err := pkg.ParseCapabilities(obsoletes, pkg.CapConflict|pkg.CapObsoletes)
	if err != nil {
		panic(err)
	}
	p.Conflicts = append(cnfls, obsls...)
	return p
}

func newTestSolver(available, installed []*pkg.Pkg, policy func(*Policy)) (*Solver, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.InfoOut = buf
	logger.WarnOut = buf
	logger.ErrorOut = buf
	logger.DebugOut = buf

	s := NewMock(available, installed)
	s.Logger = logger
	s.Metrics = NewMetrics(prometheus.NewRegistry())
	if policy != nil {
		policy(&s.Policy)
	}
	return s, buf
}

func fingerprints(pkgs []*pkg.Pkg) []string {
	out := []string{}
	for _, p := range pkgs {
		out = append(out, p.GetFingerPrint())
	}
	return out
}

func messages(errs []*PkgError) []string {
	out := []string{}
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

func TestSolver(t *testing.T) {

	for _, tcase := range []struct {
		name      string
		available []*pkg.Pkg
		installed []*pkg.Pkg
		request   []string // fingerprints of pool packages
		policy    func(*Policy)
		status    Status
		toInstall []string
		toRemove  []string
		upgraded  []string // none when nil
		errors    []string
	}{
		{
			name:      "nothing requested",
			available: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			status:    StatusNothing,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "install a package and its dependency",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"b >= 1.0"}, nil, nil, nil),
				mockPkg("b", "1.2-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"b-1.2-1.x86_64", "a-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "upgrade a dependency in place",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"libfoo >= 2.0"}, nil, nil, nil),
				mockPkg("libfoo", "2.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("libfoo", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"libfoo-2.0-1.x86_64", "a-1.0-1.x86_64"},
			toRemove:  []string{},
			upgraded:  []string{"libfoo-1.0-1.x86_64"},
			errors:    []string{},
		},
		{
			name: "dependency satisfied by the installed database",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"libfoo >= 1.0"}, nil, nil, nil),
				mockPkg("libfoo", "2.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("libfoo", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"a-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "missing provider",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"b"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1: req b not found"},
		},
		{
			name: "missing provider with nodeps",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"b"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.NoDeps = true },
			status:    StatusForced,
			toInstall: []string{"a-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1: req b not found"},
		},
		{
			name: "rpmlib requirement not provided",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"rpmlib(PayloadIsZstd) <= 5.4.18-1"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.RpmlibProvides = []string{"rpmlib(PayloadIsXz) <= 5.2-1"} },
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1: req rpmlib(PayloadIsZstd) <= 5.4.18-1 not found, upgrade rpm"},
		},
		{
			name: "rpmlib requirement provided",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"rpmlib(PayloadIsXz) <= 5.2-1"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.RpmlibProvides = []string{"rpmlib(PayloadIsXz) = 5.2-1"} },
			status:    StatusOK,
			toInstall: []string{"a-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "obsoleted package with a greedy successor for its orphan",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, []string{"c"}),
				mockPkg("d", "2.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("c", "1.0-1", nil, nil, nil, nil),
				mockPkg("d", "1.0-1", []string{"c"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.Greedy = true },
			status:    StatusOK,
			toInstall: []string{"a-1.0-1.x86_64", "d-2.0-1.x86_64"},
			toRemove:  []string{"c-1.0-1.x86_64"},
			upgraded:  []string{"d-1.0-1.x86_64"},
			errors:    []string{},
		},
		{
			name: "obsoleted package breaks an installed one",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, []string{"c"}),
			},
			installed: []*pkg.Pkg{
				mockPkg("c", "1.0-1", nil, nil, nil, nil),
				mockPkg("d", "1.0-1", []string{"c"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"c is required by d-1.0-1"},
		},
		{
			name: "orphan requirement satisfied by another provider",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, []string{"c"}),
				mockPkg("c-compat", "1.0-1", nil, []string{"c"}, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("c", "1.0-1", nil, nil, nil, nil),
				mockPkg("d", "1.0-1", []string{"c"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"a-1.0-1.x86_64", "c-compat-1.0-1.x86_64"},
			toRemove:  []string{"c-1.0-1.x86_64"},
			errors:    []string{},
		},
		{
			name: "mutual conflict between requested packages",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, []string{"b"}, nil),
				mockPkg("b", "1.0-1", nil, nil, []string{"a"}, nil),
			},
			request:   []string{"a-1.0-1.x86_64", "b-1.0-1.x86_64"},
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1 conflicts with b-1.0-1"},
		},
		{
			name: "mutual conflict forced",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, []string{"b"}, nil),
				mockPkg("b", "1.0-1", nil, nil, []string{"a"}, nil),
			},
			request:   []string{"a-1.0-1.x86_64", "b-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.Force = true },
			status:    StatusForced,
			toInstall: []string{"a-1.0-1.x86_64", "b-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1 conflicts with b-1.0-1"},
		},
		{
			name: "conflict with an installed package resolved by upgrading it",
			available: []*pkg.Pkg{
				mockPkg("a", "1.5-1", nil, nil, nil, nil),
				mockPkg("b", "2.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("b", "1.0-1", nil, nil, []string{"a < 2.0"}, nil),
			},
			request:   []string{"a-1.5-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"a-1.5-1.x86_64", "b-2.0-1.x86_64"},
			toRemove:  []string{},
			upgraded:  []string{"b-1.0-1.x86_64"},
			errors:    []string{},
		},
		{
			name: "conflict with an installed package whose upgrade fails",
			available: []*pkg.Pkg{
				mockPkg("a", "1.5-1", nil, nil, nil, nil),
				mockPkg("b", "2.0-1", []string{"missing"}, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("b", "1.0-1", nil, nil, []string{"a < 2.0"}, nil),
			},
			request:   []string{"a-1.5-1.x86_64"},
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors: []string{
				"a-1.5-1 (cap a = 1.5-1) conflicts with installed b-1.0-1 (a < 2.0)",
				"b-2.0-1: req missing not found",
			},
		},
		{
			name: "conflict with an installed package",
			available: []*pkg.Pkg{
				mockPkg("a", "1.5-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("b", "1.0-1", nil, nil, []string{"a < 2.0"}, nil),
			},
			request:   []string{"a-1.5-1.x86_64"},
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"a-1.5-1 (cap a = 1.5-1) conflicts with installed b-1.0-1 (a < 2.0)"},
		},
		{
			name: "own conflict with an installed package",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, []string{"b"}, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("b", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1 (cnfl b) conflicts with installed b-1.0-1"},
		},
		{
			name: "backtrack to the next candidate",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"x"}, nil, nil, nil),
				mockPkg("p1", "1.0-1", []string{"missing"}, []string{"x"}, nil, nil),
				mockPkg("p2", "1.0-1", []string{"y"}, []string{"x"}, nil, nil),
				mockPkg("y", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"y-1.0-1.x86_64", "p2-1.0-1.x86_64", "a-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "rollback forgets errors raised against installed packages",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"x"}, nil, nil, nil),
				mockPkg("p1", "1.0-1", []string{"missing"}, []string{"x"}, nil, []string{"c"}),
				mockPkg("p2", "1.0-1", []string{"y"}, []string{"x"}, nil, nil),
				mockPkg("y", "1.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("c", "1.0-1", nil, nil, nil, nil),
				mockPkg("d", "1.0-1", []string{"c"}, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"y-1.0-1.x86_64", "p2-1.0-1.x86_64", "a-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "candidate pulling in fewer packages wins",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"x"}, nil, nil, nil),
				mockPkg("x-one", "1.0-1", []string{"y"}, []string{"x"}, nil, nil),
				mockPkg("x-two", "1.0-1", nil, []string{"x"}, nil, nil),
				mockPkg("y", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusOK,
			toInstall: []string{"x-two-1.0-1.x86_64", "a-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "equal version installed",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusNothing,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "reinstall",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.Reinstall = true },
			status:    StatusOK,
			toInstall: []string{"a-1.0-1.x86_64"},
			toRemove:  []string{},
			upgraded:  []string{"a-1.0-1.x86_64"},
			errors:    []string{},
		},
		{
			name: "held package refused removal",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, []string{"c"}),
			},
			installed: []*pkg.Pkg{
				mockPkg("c", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.HoldPatterns = []string{"c"} },
			status:    StatusRefused,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{},
		},
		{
			name: "held package not upgraded",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"libfoo >= 2.0"}, nil, nil, nil),
				mockPkg("libfoo", "2.0-1", nil, nil, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("libfoo", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.HoldPatterns = []string{"libfoo-*"} },
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1: req libfoo >= 2.0: libfoo-2.0-1 is not installable"},
		},
		{
			name: "dependency with a newer version installed is skipped",
			available: []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"libfoo-api"}, nil, nil, nil),
				mockPkg("libfoo", "3.0-1", nil, []string{"libfoo-api"}, nil, nil),
			},
			installed: []*pkg.Pkg{
				mockPkg("libfoo", "4.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			status:    StatusUnresolved,
			toInstall: []string{},
			toRemove:  []string{},
			errors:    []string{"a-1.0-1: req libfoo-api: libfoo-3.0-1 is not installable"},
		},
		{
			name: "suggested package",
			available: []*pkg.Pkg{
				func() *pkg.Pkg {
					p := mockPkg("a", "1.0-1", nil, nil, nil, nil)
					p.Suggests = []pkg.Capability{pkg.MustParseCapability("a-docs")}
					return p
				}(),
				mockPkg("a-docs", "1.0-1", nil, nil, nil, nil),
			},
			request:   []string{"a-1.0-1.x86_64"},
			policy:    func(p *Policy) { p.Suggests = true },
			status:    StatusOK,
			toInstall: []string{"a-1.0-1.x86_64", "a-docs-1.0-1.x86_64"},
			toRemove:  []string{},
			errors:    []string{},
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			s, _ := newTestSolver(tcase.available, tcase.installed, tcase.policy)
			req := Request{}
			for _, fp := range tcase.request {
				p := findPkg(s.Pool, fp)
				require.NotNil(t, p, fp)
				req.Packages = append(req.Packages, p)
			}
			err := s.Solve(context.Background(), req)

			is := assert.New(t)
			is.NoError(err)
			is.Equal(tcase.status, s.PkgResultSet.Status)
			is.Equal(tcase.toInstall, fingerprints(s.PkgResultSet.ToInstall))
			is.Equal(tcase.toRemove, fingerprints(s.PkgResultSet.ToRemove))
			upgraded := tcase.upgraded
			if upgraded == nil {
				upgraded = []string{}
			}
			is.Equal(upgraded, fingerprints(s.PkgResultSet.Upgraded))
			is.Equal(tcase.errors, messages(s.PkgResultSet.Errors))
		})
	}
}

func findPkg(pool AvailablePool, fingerprint string) *pkg.Pkg {
	for _, p := range pool.Packages() {
		if p.GetFingerPrint() == fingerprint {
			return p
		}
	}
	return nil
}

func TestSolveGreedyLogsUpgrade(t *testing.T) {
	a := mockPkg("a", "1.0-1", nil, nil, nil, []string{"c"})
	s, buf := newTestSolver(
		[]*pkg.Pkg{a, mockPkg("d", "2.0-1", nil, nil, nil, nil)},
		[]*pkg.Pkg{
			mockPkg("c", "1.0-1", nil, nil, nil, nil),
			mockPkg("d", "1.0-1", []string{"c"}, nil, nil, nil),
		},
		func(p *Policy) { p.Greedy = true })

	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))
	assert.Contains(t, buf.String(), "c-1.0-1 obsoleted by a-1.0-1")
	assert.Contains(t, buf.String(), "greedy upgrade d-1.0-1 to 2.0-1 (unresolved c)")
}

func TestSolveBacktrackMetrics(t *testing.T) {
	a := mockPkg("a", "1.0-1", []string{"x"}, nil, nil, nil)
	s, _ := newTestSolver([]*pkg.Pkg{
		a,
		mockPkg("p1", "1.0-1", []string{"missing"}, []string{"x"}, nil, nil),
		mockPkg("p2", "1.0-1", []string{"y"}, []string{"x"}, nil, nil),
		mockPkg("y", "1.0-1", nil, nil, nil, nil),
	}, nil, nil)

	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))

	is := assert.New(t)
	is.Equal(StatusOK, s.PkgResultSet.Status)
	is.Equal(float64(1), testutil.ToFloat64(s.Metrics.backtrackTotal))
	is.Equal(float64(1), testutil.ToFloat64(s.Metrics.errorTotal.WithLabelValues("notfound")))
	is.Equal(float64(1), testutil.ToFloat64(s.Metrics.markedTotal.WithLabelValues("hand")))
	// p1, then p2 and y after the rollback
	is.Equal(float64(3), testutil.ToFloat64(s.Metrics.markedTotal.WithLabelValues("dep")))
	is.Equal(1, testutil.CollectAndCount(s.Metrics.duration))
}

func TestSolveIsDeterministic(t *testing.T) {
	world := func() ([]*pkg.Pkg, []*pkg.Pkg) {
		return []*pkg.Pkg{
				mockPkg("a", "1.0-1", []string{"x", "y"}, nil, nil, nil),
				mockPkg("x-one", "1.0-1", nil, []string{"x"}, nil, nil),
				mockPkg("x-two", "1.0-1", nil, []string{"x", "y"}, nil, nil),
				mockPkg("y", "3.0-1", nil, nil, nil, nil),
				mockPkg("y", "2.0-1", nil, nil, nil, nil),
			}, []*pkg.Pkg{
				mockPkg("y", "1.0-1", nil, nil, nil, nil),
			}
	}

	var first []string
	for i := 0; i < 5; i++ {
		available, installed := world()
		s, _ := newTestSolver(available, installed, nil)
		a := findPkg(s.Pool, "a-1.0-1.x86_64")
		require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))
		got := fingerprints(s.PkgResultSet.ToInstall)
		if first == nil {
			first = got
			continue
		}
		assert.Equal(t, first, got)
	}
}

func TestSolveSamePackageTwice(t *testing.T) {
	a := mockPkg("a", "1.0-1", nil, nil, nil, nil)
	s, _ := newTestSolver([]*pkg.Pkg{a}, nil, nil)

	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a, a}}))
	assert.Equal(t, []string{"a-1.0-1.x86_64"}, fingerprints(s.PkgResultSet.ToInstall))
}

func TestSolveKeepsNewestRequestedVersion(t *testing.T) {
	a1 := mockPkg("a", "1.0-1", nil, nil, nil, nil)
	a2 := mockPkg("a", "2.0-1", nil, nil, nil, nil)
	s, _ := newTestSolver([]*pkg.Pkg{a1, a2}, nil, nil)

	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a1, a2}}))
	assert.Equal(t, []string{"a-2.0-1.x86_64"}, fingerprints(s.PkgResultSet.ToInstall))
}

func TestSolveCapabilityRequest(t *testing.T) {
	for _, tcase := range []struct {
		name      string
		installed []*pkg.Pkg
		want      []string
		status    Status
	}{
		{
			name:   "first provider when nothing provides it",
			want:   []string{"apache-2.4-1.x86_64"},
			status: StatusOK,
		},
		{
			name:      "upgrade of the installed provider",
			installed: []*pkg.Pkg{mockPkg("nginx", "1.0-1", nil, []string{"webserver"}, nil, nil)},
			want:      []string{"nginx-1.20-1.x86_64"},
			status:    StatusOK,
		},
		{
			name:      "installed provider up to date",
			installed: []*pkg.Pkg{mockPkg("nginx", "1.20-1", nil, []string{"webserver"}, nil, nil)},
			want:      []string{},
			status:    StatusNothing,
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			s, _ := newTestSolver([]*pkg.Pkg{
				mockPkg("apache", "2.4-1", nil, []string{"webserver"}, nil, nil),
				mockPkg("nginx", "1.20-1", nil, []string{"webserver"}, nil, nil),
			}, tcase.installed, nil)

			require.NoError(t, s.Solve(context.Background(), Request{Caps: []string{"webserver"}}))
			assert.Equal(t, tcase.status, s.PkgResultSet.Status)
			assert.Equal(t, tcase.want, fingerprints(s.PkgResultSet.ToInstall))
		})
	}
}

func TestSolveParticle(t *testing.T) {
	a := mockPkg("a", "1.0-1", nil, nil, nil, nil)
	b := mockPkg("b", "1.0-1", []string{"missing"}, nil, nil, nil)
	s, buf := newTestSolver([]*pkg.Pkg{a, b}, nil, func(p *Policy) { p.Particle = true })

	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a, b}}))

	is := assert.New(t)
	is.Equal(StatusUnresolved, s.PkgResultSet.Status)
	is.Equal([]string{"a-1.0-1.x86_64"}, fingerprints(s.PkgResultSet.ToInstall))
	is.Equal([]string{"b-1.0-1: req missing not found"}, messages(s.PkgResultSet.Errors))
	is.Contains(buf.String(), "** Installing set #2")
}

func TestSolveWrongArch(t *testing.T) {
	a := pkg.NewPkgMock("a", "1.0-1", "sparc64", nil, nil)
	for _, tcase := range []struct {
		name   string
		policy func(*Policy)
		status Status
	}{
		{name: "refused", status: StatusRefused},
		{name: "ignored", policy: func(p *Policy) { p.IgnoreArch = true }, status: StatusOK},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			s, buf := newTestSolver([]*pkg.Pkg{a}, nil, tcase.policy)
			require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))
			assert.Equal(t, tcase.status, s.PkgResultSet.Status)
			if tcase.status == StatusRefused {
				assert.Contains(t, buf.String(), "a-1.0-1.sparc64: package is for a different architecture (sparc64)")
			}
		})
	}
}

type fakeChooser struct {
	choice int
	err    error
	asked  []string
}

func (c *fakeChooser) ChooseEquivalent(_ *pkg.Pkg, _ *pkg.Capability, candidates []*pkg.Pkg, _ int) (int, error) {
	c.asked = fingerprints(candidates)
	return c.choice, c.err
}

func (c *fakeChooser) ChooseSuggests(_ *pkg.Pkg, suggests []pkg.Capability) ([]pkg.Capability, error) {
	return nil, c.err
}

func TestSolveAskEquivalents(t *testing.T) {
	world := func() []*pkg.Pkg {
		return []*pkg.Pkg{
			mockPkg("a", "1.0-1", []string{"x"}, nil, nil, nil),
			mockPkg("x-one", "1.0-1", nil, []string{"x"}, nil, nil),
			mockPkg("x-two", "1.0-1", nil, []string{"x"}, nil, nil),
		}
	}

	t.Run("user choice", func(t *testing.T) {
		s, _ := newTestSolver(world(), nil, func(p *Policy) { p.AskEquivalents = true })
		chooser := &fakeChooser{choice: 1}
		s.Chooser = chooser
		a := findPkg(s.Pool, "a-1.0-1.x86_64")

		require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))
		assert.Equal(t, []string{"x-one-1.0-1.x86_64", "x-two-1.0-1.x86_64"}, chooser.asked)
		assert.Equal(t, []string{"x-two-1.0-1.x86_64", "a-1.0-1.x86_64"}, fingerprints(s.PkgResultSet.ToInstall))
	})

	t.Run("user abort", func(t *testing.T) {
		s, _ := newTestSolver(world(), nil, func(p *Policy) { p.AskEquivalents = true })
		s.Chooser = &fakeChooser{err: ErrAbort}
		a := findPkg(s.Pool, "a-1.0-1.x86_64")

		require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))
		assert.Equal(t, StatusAborted, s.PkgResultSet.Status)
		assert.Empty(t, s.PkgResultSet.ToInstall)
	})
}

func TestSolveCancelled(t *testing.T) {
	a := mockPkg("a", "1.0-1", nil, nil, nil, nil)
	s, _ := newTestSolver([]*pkg.Pkg{a}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Solve(ctx, Request{Packages: []*pkg.Pkg{a}})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StatusAborted, s.PkgResultSet.Status)
}

func TestSolveSharedObsoletion(t *testing.T) {
	// a and its dependency both obsolete c, which goes away once
	a := mockPkg("a", "1.0-1", []string{"b"}, nil, nil, []string{"c"})
	b := mockPkg("b", "1.0-1", nil, nil, nil, []string{"c"})
	s, _ := newTestSolver([]*pkg.Pkg{a, b}, []*pkg.Pkg{mockPkg("c", "1.0-1", nil, nil, nil, nil)}, nil)

	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))
	assert.Equal(t, StatusOK, s.PkgResultSet.Status)
	assert.Equal(t, []string{"c-1.0-1.x86_64"}, fingerprints(s.PkgResultSet.ToRemove))
}

func TestFormatOutput(t *testing.T) {
	a := mockPkg("a", "1.0-1", []string{"b"}, nil, nil, nil)
	a.Size = 2048
	s, _ := newTestSolver([]*pkg.Pkg{a, mockPkg("b", "1.0-1", nil, nil, nil, nil)}, nil, nil)
	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))

	is := assert.New(t)

	table := s.FormatOutput(Table)
	is.Contains(table, "Status: OK")
	is.Contains(table, "Packages to be installed:")
	is.Contains(table, "2 package(s) to install (1 requested, 1 dependencies), 0 to upgrade, 0 to remove")
	is.NotContains(table, "Packages to be removed:")
	is.NotContains(table, "Packages to be upgraded:")

	var out struct {
		Status    string `json:"status"`
		ToInstall []struct {
			Name string `json:"name"`
		} `json:"toInstall"`
	}
	require.NoError(t, json.Unmarshal([]byte(s.FormatOutput(JSON)), &out))
	is.Equal("OK", out.Status)
	is.Len(out.ToInstall, 2)

	is.Contains(s.FormatOutput(YAML), "status: OK")
}

func TestFormatOutputUpgrade(t *testing.T) {
	libfoo := mockPkg("libfoo", "2.0-1", nil, nil, nil, nil)
	installed := []*pkg.Pkg{
		mockPkg("libfoo", "1.0-1", nil, nil, nil, nil),
		mockPkg("c", "1.0-1", nil, nil, nil, nil),
	}
	a := mockPkg("a", "1.0-1", []string{"libfoo >= 2.0"}, nil, nil, []string{"c"})
	s, _ := newTestSolver([]*pkg.Pkg{a, libfoo}, installed, nil)
	require.NoError(t, s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{a}}))

	is := assert.New(t)
	is.Equal(StatusOK, s.PkgResultSet.Status)
	is.Equal([]string{"libfoo-1.0-1.x86_64"}, fingerprints(s.PkgResultSet.Upgraded))
	is.Equal([]string{"c-1.0-1.x86_64"}, fingerprints(s.PkgResultSet.ToRemove))
	is.ElementsMatch([]string{"libfoo-1.0-1.x86_64", "c-1.0-1.x86_64"}, fingerprints(s.PkgResultSet.Removed()))
	is.Equal(1, s.PkgResultSet.Summary.Upgrade)
	is.Equal(1, s.PkgResultSet.Summary.Remove)

	table := s.FormatOutput(Table)
	is.Contains(table, "Packages to be upgraded:")
	is.Contains(table, "Packages to be removed:")
	is.Regexp(`libfoo\s+1\.0-1\s+2\.0-1`, table)
	is.Contains(table, "2 package(s) to install (1 requested, 1 dependencies), 1 to upgrade, 1 to remove")
}
