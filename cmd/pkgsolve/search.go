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
	"github.com/rancher-sandbox/pkgsolve/pkg/search"
)

const searchDesc = `
Search reads through all of the repositories configured on the system,
and the extra indexes given with --index, and looks for matches in the
package names and summaries.

It will display the newest version of the packages found. If you want
every version, use --versions. If you want to search using a version
constraint, use --version.

Examples:

    # Search for packages matching the keyword "nginx"
    $ pkgsolve search nginx

    # Search for every version of nginx older than 1.20
    $ pkgsolve search nginx --versions --version "< 1.20"

Repositories are managed with 'pkgsolve repo' commands.
`

func newSearchCmd(cfg *action.Configuration, logger log.Logger) *cobra.Command {
	o := &search.Options{}

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "search repositories for a keyword in packages",
		Long:  searchDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := action.LoadPool(cfg)
			if err != nil {
				return err
			}
			return o.Run(pool, logger, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.Regexp, "regexp", "r", false, "use regular expressions for searching")
	f.BoolVarP(&o.Versions, "versions", "l", false, "show the long listing, with each version of each package on its own line")
	f.StringVar(&o.Version, "version", "", `search using a version constraint, e.g. ">= 1.2"`)
	f.UintVar(&o.MaxColWidth, "max-col-width", 50, "maximum column width for output table")
	bindOutputFlag(cmd, &o.OutputFormat)

	return cmd
}
