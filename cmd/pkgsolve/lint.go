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

package main

import (
	"fmt"
	"io"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolve/pkg/lint"
	"github.com/rancher-sandbox/pkgsolve/pkg/lint/support"
)

var longLintHelp = `
This command takes paths to package indexes and runs a series of tests to
verify that the indexes are well-formed.

If the linter encounters things that will cause an index to fail loading
or a package to be uninstallable, it will emit [ERROR] messages. If it
encounters issues that break with convention or recommendation, such as
requirements no package of the index provides, it will emit [WARNING]
messages.
`

func newLintCmd(logger log.Logger) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint INDEX...",
		Short: "examine package indexes for possible issues",
		Long:  longLintHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := []string{"index.yaml"}
			if len(args) > 0 {
				paths = args
			}
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			return runLint(wInfo, paths, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on lint warnings")

	return cmd
}

func runLint(out io.Writer, paths []string, strict bool) error {
	failures := 0
	for _, path := range paths {
		linter := lint.All(path)

		fmt.Fprintf(out, "==> Linting %s\n", path)
		for _, msg := range linter.Messages {
			fmt.Fprintln(out, msg.Error())
		}
		fmt.Fprintln(out)

		if linter.HighestSeverity == support.ErrorSev || (strict && linter.HighestSeverity == support.WarningSev) {
			failures++
		}
	}

	summary := fmt.Sprintf("%d index(es) linted, %d index(es) failed", len(paths), failures)
	if failures > 0 {
		return errors.New(summary)
	}
	fmt.Fprintln(out, summary)
	return nil
}
