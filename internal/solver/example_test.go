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
	"fmt"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

func ExampleSolver() {

	// Create mock available packages:
	wantedbaz := pkg.NewPkgMock("wantedbaz", "1.0.0-1", "x86_64", []string{"myawesomedep < 1.0"}, nil)
	available := []*pkg.Pkg{
		pkg.NewPkgMock("notinstalledbar", "2.0.0-1", "x86_64", nil, nil),
		pkg.NewPkgMock("myawesomedep", "2.1.0-1", "x86_64", nil, nil),
		pkg.NewPkgMock("myawesomedep", "0.1.100-1", "x86_64", nil, nil),
		wantedbaz,
	}
	// and packages already installed:
	installed := []*pkg.Pkg{
		pkg.NewPkgMock("installedfoo", "1.0.0-1", "x86_64", nil, nil),
	}

	// create our own Logger that satisfies impl/cli.Logger, but with a buffer for tests
	buf := new(bytes.Buffer)
	logger := logcli.NewStandard()
	logger.InfoOut = buf
	logger.WarnOut = buf
	logger.ErrorOut = buf
	logger.DebugOut = buf
	log.Current = logger
	// logger.Level = log.DebugLevel

	s := NewMock(available, installed)
	s.Logger = logger

	// Call the solver
	if err := s.Solve(context.Background(), Request{Packages: []*pkg.Pkg{wantedbaz}}); err != nil {
		fmt.Println(err)
	}

	fmt.Println(s.FormatOutput(YAML))

	// Output:
	// toinstall:
	// - name: myawesomedep
	//   version: 0.1.100
	//   release: "1"
	//   arch: x86_64
	//   os: linux
	// - name: wantedbaz
	//   version: 1.0.0
	//   release: "1"
	//   arch: x86_64
	//   os: linux
	// toremove: []
	// status: OK
	// inconsistencies: []
	// errors: []
	// summary:
	//   hand: 1
	//   dep: 1
	//   remove: 0
	//   downloadsize: 0
	//   installsize: 0
}
