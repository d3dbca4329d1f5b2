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
	"io"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/docker/go-units"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolve/cmd/pkgsolve/require"
	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/pkg/action"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli/output"
)

var listHelp = `
List the packages of the installed database.

With --filter, only the packages whose name matches the regular
expression are listed.
`

func newListCmd(cfg *action.Configuration, logger log.Logger) *cobra.Command {
	client := action.NewList(cfg)
	var outfmt output.Format
	var short bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "list installed packages",
		Long:    listHelp,
		Aliases: []string{"ls"},
		Args:    require.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := client.Run()
			if err != nil {
				return err
			}

			// Get an io.Writer compliant logger instance at the info level.
			wInfo := logio.NewWriter(logger, log.InfoLevel)

			if short {
				names := make([]string, 0, len(results))
				for _, p := range results {
					names = append(names, p.String())
				}
				switch outfmt {
				case output.JSON:
					return output.EncodeJSON(wInfo, names)
				case output.YAML:
					return output.EncodeYAML(wInfo, names)
				}
				for _, name := range names {
					logger.Info(name)
				}
				return nil
			}

			return outfmt.Write(wInfo, newPackageListWriter(results))
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&short, "short", "q", false, "output short (quiet) listing format")
	f.StringVarP(&client.Filter, "filter", "f", "", "a regular expression. Any packages that match the expression will be included in the results")
	bindOutputFlag(cmd, &outfmt)

	return cmd
}

type packageElement struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Arch    string `json:"arch"`
	Size    string `json:"size"`
	Held    bool   `json:"held"`
}

type packageListWriter struct {
	packages []packageElement
}

func newPackageListWriter(pkgs []*pkg.Pkg) *packageListWriter {
	// Initialize the array so no results returns an empty array instead of null
	elements := make([]packageElement, 0, len(pkgs))
	for _, p := range pkgs {
		elements = append(elements, packageElement{
			Name:    p.Name,
			Version: p.EVR(),
			Arch:    p.Arch,
			Size:    units.HumanSize(float64(p.Size)),
			Held:    p.Held,
		})
	}
	return &packageListWriter{elements}
}

func (r *packageListWriter) WriteTable(out io.Writer) error {
	table := uitable.New()
	table.AddRow("NAME", "VERSION", "ARCH", "SIZE", "HELD")
	for _, p := range r.packages {
		held := ""
		if p.Held {
			held = "yes"
		}
		table.AddRow(p.Name, p.Version, p.Arch, p.Size, held)
	}
	return output.EncodeTable(out, table)
}

func (r *packageListWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, r.packages)
}

func (r *packageListWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, r.packages)
}
