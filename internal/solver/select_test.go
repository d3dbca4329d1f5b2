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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

func TestIsInstallable(t *testing.T) {
	for _, tcase := range []struct {
		name      string
		p         *pkg.Pkg
		installed []*pkg.Pkg
		hand      bool
		policy    func(*Policy)
		want      Installability
	}{
		{
			name: "not installed",
			p:    mockPkg("a", "1.0-1", nil, nil, nil, nil),
			hand: true,
			want: Installable,
		},
		{
			name:   "not installed with freshen",
			p:      mockPkg("a", "1.0-1", nil, nil, nil, nil),
			hand:   true,
			policy: func(p *Policy) { p.Freshen = true },
			want:   NotInstallable,
		},
		{
			name:      "upgrade",
			p:         mockPkg("a", "2.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			hand:      true,
			want:      Installable,
		},
		{
			name:      "equal version requested",
			p:         mockPkg("a", "1.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			hand:      true,
			want:      InstallError,
		},
		{
			name:      "equal version requested with freshen",
			p:         mockPkg("a", "1.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			hand:      true,
			policy:    func(p *Policy) { p.Freshen = true },
			want:      NotInstallable,
		},
		{
			name:      "equal version as a dependency",
			p:         mockPkg("a", "1.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			want:      NotInstallable,
		},
		{
			name:      "newer version installed as a dependency",
			p:         mockPkg("a", "1.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "2.0-1", nil, nil, nil, nil)},
			want:      NotInstallable,
		},
		{
			name:      "newer version installed requested",
			p:         mockPkg("a", "1.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "2.0-1", nil, nil, nil, nil)},
			hand:      true,
			want:      InstallError,
		},
		{
			name:      "equal version forced",
			p:         mockPkg("a", "1.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			policy:    func(p *Policy) { p.Force = true },
			want:      Installable,
		},
		{
			name:      "older version with downgrade",
			p:         mockPkg("a", "0.9-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			hand:      true,
			policy:    func(p *Policy) { p.Downgrade = true },
			want:      Installable,
		},
		{
			name: "multiple instances installed",
			p:    mockPkg("a", "2.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{
				mockPkg("a", "1.0-1", nil, nil, nil, nil),
				mockPkg("a", "1.1-1", nil, nil, nil, nil),
			},
			hand: true,
			want: InstallError,
		},
		{
			name:      "held",
			p:         mockPkg("a", "2.0-1", nil, nil, nil, nil),
			installed: []*pkg.Pkg{mockPkg("a", "1.0-1", nil, nil, nil, nil)},
			hand:      true,
			policy:    func(p *Policy) { p.HoldPatterns = []string{"a"} },
			want:      NotInstallable,
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			s, _ := newTestSolver([]*pkg.Pkg{tcase.p}, tcase.installed, tcase.policy)
			tr := newTransaction(context.Background(), s, handMarks{}, nil)
			assert.Equal(t, tcase.want, tr.isInstallable(tcase.p, tcase.hand))
		})
	}
}

func TestDoSelectBest(t *testing.T) {
	t.Run("upgrade of an installed package wins", func(t *testing.T) {
		one := mockPkg("x-one", "1.0-1", nil, []string{"x"}, nil, nil)
		two := mockPkg("x-two", "1.0-1", nil, []string{"x"}, nil, nil)
		s, _ := newTestSolver([]*pkg.Pkg{one, two}, []*pkg.Pkg{mockPkg("x-two", "0.9-1", nil, nil, nil, nil)}, nil)
		tr := newTransaction(context.Background(), s, handMarks{}, nil)

		assert.Equal(t, 1, tr.doSelectBest(nil, []*pkg.Pkg{one, two}))
	})

	t.Run("other version marked", func(t *testing.T) {
		one1 := mockPkg("x-one", "1.0-1", nil, []string{"x"}, nil, nil)
		one2 := mockPkg("x-one", "2.0-1", nil, []string{"x"}, nil, nil)
		two := mockPkg("x-two", "1.0-1", nil, []string{"x"}, nil, nil)
		s, _ := newTestSolver([]*pkg.Pkg{one1, one2, two}, nil, nil)
		tr := newTransaction(context.Background(), s, handMarks{}, nil)
		require.True(t, tr.markPackage(one1, MarkDep))

		assert.Equal(t, 1, tr.doSelectBest(nil, []*pkg.Pkg{one2, two}))
	})

	t.Run("conflict with the install set", func(t *testing.T) {
		one := mockPkg("x-one", "1.0-1", nil, []string{"x"}, []string{"m"}, nil)
		two := mockPkg("x-two", "1.0-1", nil, []string{"x"}, nil, nil)
		m := mockPkg("m", "1.0-1", nil, nil, nil, nil)
		s, _ := newTestSolver([]*pkg.Pkg{one, two, m}, nil, nil)
		tr := newTransaction(context.Background(), s, handMarks{}, nil)
		require.True(t, tr.markPackage(m, MarkHand))

		assert.Equal(t, 1, tr.doSelectBest(nil, []*pkg.Pkg{one, two}))
	})

	t.Run("blackened candidate", func(t *testing.T) {
		one := mockPkg("x-one", "1.0-1", nil, []string{"x"}, nil, nil)
		two := mockPkg("x-two", "1.0-1", nil, []string{"x"}, nil, nil)
		s, _ := newTestSolver([]*pkg.Pkg{one, two}, nil, nil)
		tr := newTransaction(context.Background(), s, handMarks{}, nil)
		tr.black[one.ID] = true

		assert.Equal(t, 1, tr.doSelectBest(nil, []*pkg.Pkg{one, two}))
	})

	t.Run("same name prefix as the marker", func(t *testing.T) {
		marker := mockPkg("python-foo", "1.0-1", []string{"x"}, nil, nil, nil)
		one := mockPkg("perl-x", "1.0-1", nil, []string{"x"}, nil, nil)
		two := mockPkg("python-x", "1.0-1", nil, []string{"x"}, nil, nil)
		s, _ := newTestSolver([]*pkg.Pkg{marker, one, two}, nil, nil)
		tr := newTransaction(context.Background(), s, handMarks{}, nil)

		assert.Equal(t, 1, tr.doSelectBest(marker, []*pkg.Pkg{one, two}))
	})

	t.Run("first wins a tie", func(t *testing.T) {
		one := mockPkg("x-one", "1.0-1", nil, []string{"x"}, nil, nil)
		two := mockPkg("x-two", "1.0-1", nil, []string{"x"}, nil, nil)
		s, _ := newTestSolver([]*pkg.Pkg{one, two}, nil, nil)
		tr := newTransaction(context.Background(), s, handMarks{}, nil)

		assert.Equal(t, 0, tr.doSelectBest(nil, []*pkg.Pkg{one, two}))
	})

	for _, tcase := range []struct {
		name      string
		installed []*pkg.Pkg
		marked    []string
		one, two  []string // requirements
		want      int
	}{
		{
			name: "fewest pulled packages wins a tie",
			one:  []string{"y"},
			want: 1,
		},
		{
			name: "requirement met by the candidate itself",
			one:  []string{"x"},
			two:  []string{"y"},
			want: 0,
		},
		{
			name:      "requirement met by the installed database",
			installed: []*pkg.Pkg{mockPkg("y", "1.0-1", nil, nil, nil, nil)},
			one:       []string{"y >= 2.0"},
			two:       []string{"z"},
			want:      0,
		},
		{
			name:   "requirement met by the install set",
			marked: []string{"z"},
			one:    []string{"y"},
			two:    []string{"z"},
			want:   1,
		},
		{
			name: "same drags keep the first",
			one:  []string{"y"},
			two:  []string{"z"},
			want: 0,
		},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			one := mockPkg("x-one", "1.0-1", tcase.one, []string{"x"}, nil, nil)
			two := mockPkg("x-two", "1.0-1", tcase.two, []string{"x"}, nil, nil)
			available := []*pkg.Pkg{one, two}
			for _, name := range tcase.marked {
				available = append(available, mockPkg(name, "1.0-1", nil, nil, nil, nil))
			}
			s, _ := newTestSolver(available, tcase.installed, nil)
			tr := newTransaction(context.Background(), s, handMarks{}, nil)
			for _, p := range available[2:] {
				require.True(t, tr.markPackage(p, MarkHand))
			}

			assert.Equal(t, tcase.want, tr.doSelectBest(nil, []*pkg.Pkg{one, two}))
		})
	}
}

func TestSelectSuccessor(t *testing.T) {
	old := mockPkg("a", "1.0-1", nil, nil, nil, nil)
	a2 := mockPkg("a", "2.0-1", nil, nil, nil, nil)
	a3 := mockPkg("a", "3.0-1", nil, nil, nil, nil)
	renamed := mockPkg("b", "1.0-1", nil, []string{"a"}, nil, []string{"a"})
	s, _ := newTestSolver([]*pkg.Pkg{a2, a3, renamed}, []*pkg.Pkg{old}, nil)
	tr := newTransaction(context.Background(), s, handMarks{}, nil)

	assert.Equal(t, a3, tr.findSuccessor(old))

	gone := mockPkg("c", "1.0-1", nil, nil, nil, nil)
	assert.Nil(t, tr.findSuccessor(gone))

	renamedFrom := mockPkg("a", "9.0-1", nil, nil, nil, nil)
	assert.Equal(t, renamed, tr.findSuccessor(renamedFrom))
}
