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
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/pkgsolve/internal/solver"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli/output"
)

const outputFlag = "output"

// bindOutputFlag will add the output flag to the given command and bind the
// value to the given format pointer
func bindOutputFlag(cmd *cobra.Command, varRef *output.Format) {
	cmd.Flags().VarP(newOutputValue(output.Table, varRef), outputFlag, "o",
		fmt.Sprintf("prints the output in the specified format. Allowed values: %s", strings.Join(output.Formats(), ", ")))

	err := cmd.RegisterFlagCompletionFunc(outputFlag, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var formatNames []string
		for _, format := range output.Formats() {
			if strings.HasPrefix(format, toComplete) {
				formatNames = append(formatNames, format)
			}
		}
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})

	if err != nil {
		log.Fatal(err)
	}
}

type outputValue output.Format

func newOutputValue(defaultValue output.Format, p *output.Format) *outputValue {
	*p = defaultValue
	return (*outputValue)(p)
}

func (o *outputValue) String() string {
	return string(*o)
}

func (o *outputValue) Type() string {
	return "format"
}

func (o *outputValue) Set(s string) error {
	outfmt, err := output.ParseFormat(s)
	if err != nil {
		return err
	}
	*o = outputValue(outfmt)
	return nil
}

// outputMode maps an output format to the one the solver renders its
// result in.
func outputMode(f output.Format) solver.OutputMode {
	switch f {
	case output.JSON:
		return solver.JSON
	case output.YAML:
		return solver.YAML
	}
	return solver.Table
}

// addPolicyFlags binds the solver policy switches. Defaults are the ones
// of the configuration file.
func addPolicyFlags(f *pflag.FlagSet, p *solver.Policy) {
	f.BoolVar(&p.Follow, "follow", p.Follow, "install packages required by the requested ones")
	f.BoolVar(&p.Greedy, "greedy", p.Greedy, "upgrade installed packages whose requirements the transaction breaks")
	f.BoolVar(&p.AggressiveGreedy, "aggressive-greedy", p.AggressiveGreedy, "upgrade those packages even when their requirements could be satisfied otherwise (implies --greedy)")
	f.BoolVar(&p.Freshen, "freshen", p.Freshen, "only upgrade packages already installed")
	f.BoolVar(&p.Reinstall, "reinstall", p.Reinstall, "reinstall packages at the installed version")
	f.BoolVar(&p.Downgrade, "downgrade", p.Downgrade, "allow installing older versions than the installed ones")
	f.BoolVar(&p.Obsoletes, "obsoletes", p.Obsoletes, "remove installed packages obsoleted by the installed ones")
	f.BoolVar(&p.Conflicts, "conflicts", p.Conflicts, "check conflicts")
	f.BoolVar(&p.AllowDuplicates, "allow-duplicates", p.AllowDuplicates, "allow several versions of a package to be installed")
	f.BoolVar(&p.Multilib, "multilib", p.Multilib, "treat packages of different architectures as distinct")
	f.BoolVar(&p.Force, "force", p.Force, "ignore conflicts and installed versions")
	f.BoolVar(&p.NoDeps, "nodeps", p.NoDeps, "ignore unresolved dependencies")
	f.BoolVar(&p.Hold, "hold-installed", p.Hold, "refuse transactions removing held packages")
	f.BoolVar(&p.IgnoreArch, "ignore-arch", p.IgnoreArch, "install packages built for other architectures")
	f.BoolVar(&p.IgnoreOS, "ignore-os", p.IgnoreOS, "install packages built for other operating systems")
	f.BoolVar(&p.Suggests, "suggests", p.Suggests, "offer the packages the installed ones suggest")
	f.BoolVar(&p.Mercy, "mercy", p.Mercy, "let unversioned provides satisfy versioned requirements")
	f.BoolVar(&p.PromoteEpoch, "promote-epoch", p.PromoteEpoch, "let a missing epoch match any epoch")
	f.BoolVar(&p.Particle, "particle", p.Particle, "resolve each requested package as its own transaction")
	f.BoolVar(&p.AskEquivalents, "ask", p.AskEquivalents, "ask which of several equivalent providers to install")
}
