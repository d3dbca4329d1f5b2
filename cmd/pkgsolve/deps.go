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
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolve/cmd/pkgsolve/require"
	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/pkg/action"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli/output"
)

const depsDesc = `
List the requirements of a package, and for each one whether an
installed package satisfies it, an available one would, or none does.

The newest available version of the package is shown, or the installed
one when no repository has it.
`

const whatProvidesDesc = `
List the installed and the available packages providing a capability.

The capability is a name, a file path, or a versioned requirement such
as "libfoo >= 2.0" given as a single argument.
`

func newDepsCmd(cfg *action.Configuration, logger log.Logger) *cobra.Command {
	client := action.NewDependency(cfg)
	var outfmt output.Format

	cmd := &cobra.Command{
		Use:   "deps PACKAGE",
		Short: "show the requirements of a package",
		Long:  depsDesc,
		Args:  require.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, reqs, err := client.List(args[0])
			if err != nil {
				return err
			}
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			return outfmt.Write(wInfo, &depsWriter{Package: p.GetFingerPrint(), Requires: reqs})
		},
	}
	bindOutputFlag(cmd, &outfmt)
	return cmd
}

type depsWriter struct {
	Package  string                     `json:"package"`
	Requires []action.RequirementStatus `json:"requires"`
}

func (w *depsWriter) WriteTable(out io.Writer) error {
	table := uitable.New()
	table.AddRow("REQUIREMENT", "STATUS", "PROVIDER")
	for _, r := range w.Requires {
		table.AddRow(r.Requirement, r.Status, r.Provider)
	}
	if _, err := io.WriteString(out, w.Package+":\n"); err != nil {
		return err
	}
	return output.EncodeTable(out, table)
}

func (w *depsWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w)
}

func (w *depsWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w)
}

func newWhatProvidesCmd(cfg *action.Configuration, logger log.Logger) *cobra.Command {
	client := action.NewDependency(cfg)
	var outfmt output.Format

	cmd := &cobra.Command{
		Use:   "whatprovides CAPABILITY",
		Short: "list the packages providing a capability",
		Long:  whatProvidesDesc,
		Args:  require.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installed, available, err := client.WhatProvides(args[0])
			if err != nil {
				return err
			}
			wInfo := logio.NewWriter(logger, log.InfoLevel)
			return outfmt.Write(wInfo, newProvidersWriter(installed, available))
		},
	}
	bindOutputFlag(cmd, &outfmt)
	return cmd
}

type providerElement struct {
	Package    string `json:"package"`
	Status     string `json:"status"`
	Repository string `json:"repository,omitempty"`
}

type providersWriter struct {
	providers []providerElement
}

func newProvidersWriter(installed, available []*pkg.Pkg) *providersWriter {
	elements := make([]providerElement, 0, len(installed)+len(available))
	for _, p := range installed {
		elements = append(elements, providerElement{Package: p.GetFingerPrint(), Status: action.StatusInstalled})
	}
	for _, p := range available {
		elements = append(elements, providerElement{Package: p.GetFingerPrint(), Status: action.StatusAvailable, Repository: p.Repository})
	}
	return &providersWriter{elements}
}

func (w *providersWriter) WriteTable(out io.Writer) error {
	if len(w.providers) == 0 {
		_, err := io.WriteString(out, "No package provides it\n")
		return err
	}
	table := uitable.New()
	table.AddRow("PACKAGE", "STATUS", "REPOSITORY")
	for _, p := range w.providers {
		table.AddRow(p.Package, p.Status, p.Repository)
	}
	return output.EncodeTable(out, table)
}

func (w *providersWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w.providers)
}

func (w *providersWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w.providers)
}
