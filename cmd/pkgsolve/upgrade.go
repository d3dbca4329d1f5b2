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
	"github.com/Masterminds/log-go"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolve/pkg/action"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli/output"
)

const upgradeDesc = `
This command upgrades installed packages to their newest available
versions.

With no argument, every installed package with a newer version
available is upgraded. Otherwise the arguments name packages the way
'pkgsolve install' takes them.
`

func newUpgradeCmd(cfg *action.Configuration, logger log.Logger) *cobra.Command {
	client := action.NewUpgrade(cfg)
	var outfmt output.Format

	cmd := &cobra.Command{
		Use:   "upgrade [PACKAGE...]",
		Short: "upgrade installed packages",
		Long:  upgradeDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixupPolicy(&client.Policy)
			client.Policy.Upgrade = true
			return runInstall(cmd.Context(), args, client.Run, outfmt, logger)
		},
	}
	f := cmd.Flags()
	addInstallFlags(f, client.Install)
	bindOutputFlag(cmd, &outfmt)
	return cmd
}
