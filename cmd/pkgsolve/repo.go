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
	"os"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolve/cmd/pkgsolve/require"
)

var repoPkgsolve = `
This command consists of multiple subcommands to interact with package
repositories.

It can be used to add, remove, and list repositories. A repository is a
name and the path of its package index.
`

func newRepoCmd(logger log.Logger) *cobra.Command {
	wInfo := logio.NewWriter(logger, log.InfoLevel)
	cmd := &cobra.Command{
		Use:   "repo add|remove|list [ARGS]",
		Short: "add, list, and remove package repositories",
		Long:  repoPkgsolve,
		Args:  require.NoArgs,
	}

	cmd.AddCommand(
		newRepoAddCmd(wInfo),
		newRepoListCmd(wInfo),
		newRepoRemoveCmd(wInfo),
	)

	return cmd
}

func isNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}
