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
	"context"
	"fmt"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/pkgsolve/cmd/pkgsolve/require"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
	"github.com/rancher-sandbox/pkgsolve/pkg/action"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli/output"
	"github.com/rancher-sandbox/pkgsolve/pkg/eyecandy"
)

const installDesc = `
This command resolves the installation of packages.

Each argument names an available package: by name, by name-version,
name-version-release or fingerprint (name-version-release.arch). With
--caplookup, an argument naming no package is looked up as a capability
and one of its providers is installed.

The packages required by the requested ones are pulled in, installed
packages they replace are removed, and the result is recorded in the
installed database unless --dry-run is given.
`

func newInstallCmd(cfg *action.Configuration, logger log.Logger) *cobra.Command {
	client := action.NewInstall(cfg)
	var outfmt output.Format

	cmd := &cobra.Command{
		Use:   "install [PACKAGE...]",
		Short: "install packages and their dependencies",
		Long:  installDesc,
		Args:  require.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixupPolicy(&client.Policy)
			return runInstall(cmd.Context(), args, client.Run, outfmt, logger)
		},
	}
	f := cmd.Flags()
	addInstallFlags(f, client)
	bindOutputFlag(cmd, &outfmt)
	return cmd
}

func addInstallFlags(f *pflag.FlagSet, client *action.Install) {
	f.BoolVar(&client.CapLookup, "caplookup", false, "look up arguments naming no package as capabilities")
	f.BoolVar(&client.DryRun, "dry-run", false, "resolve without recording the result")
	addPolicyFlags(f, &client.Policy)
}

func fixupPolicy(p *solver.Policy) {
	if p.AggressiveGreedy {
		p.Greedy = true
	}
}

type runFunc func(ctx context.Context, args []string) (*solver.Solver, error)

// runInstall runs the resolution and prints its outcome. A status that
// leaves nothing to install, NOTHING aside, is an error.
func runInstall(ctx context.Context, args []string, run runFunc, outfmt output.Format, logger log.Logger) error {
	// Get an io.Writer compliant logger instance at the info level.
	wInfo := logio.NewWriter(logger, log.InfoLevel)

	s, err := run(ctx, args)
	if s == nil {
		return err
	}
	if s.PkgResultSet.Status != solver.StatusNothing {
		fmt.Fprint(wInfo, s.FormatOutput(outputMode(outfmt)))
	}
	if err != nil {
		return err
	}

	status := s.PkgResultSet.Status
	logger.Info(statusLine(status))
	switch status {
	case solver.StatusUnresolved, solver.StatusRefused, solver.StatusAborted:
		return errors.Errorf("transaction %s", status)
	}
	return nil
}

func statusLine(status solver.Status) string {
	noEmojis := settings.NoEmojis
	switch status {
	case solver.StatusOK:
		return eyecandy.ESPrintf(noEmojis, eyecandy.Done+" %s", green("Done!"))
	case solver.StatusForced:
		return eyecandy.ESPrintf(noEmojis, eyecandy.Forced+" %s", yellow("Done, errors were forced"))
	case solver.StatusNothing:
		return eyecandy.ESPrint(noEmojis, eyecandy.Nothing+" Nothing to do")
	case solver.StatusRefused:
		return eyecandy.ESPrintf(noEmojis, eyecandy.Refused+" %s", red("Refused"))
	case solver.StatusAborted:
		return eyecandy.ESPrintf(noEmojis, eyecandy.Aborted+" %s", red("Aborted"))
	}
	return eyecandy.ESPrintf(noEmojis, eyecandy.Unresolved+" %s", red("Unresolved dependencies"))
}
