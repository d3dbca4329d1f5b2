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
	"text/template"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolve/cmd/pkgsolve/require"
	"github.com/rancher-sandbox/pkgsolve/internal/version"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli/output"
	"github.com/rancher-sandbox/pkgsolve/pkg/repo"
)

const versionDesc = `
Show the build information of pkgsolve and the index schema it reads.

By default a table is printed. The --short flag prints the version number
alone, with the abbreviated git commit when known. The --template flag
renders a Go template against the build information, with the fields
.Version, .GitCommit, .GitTreeState, .GoVersion and .IndexAPIVersion.
`

// versionInfo is what the version command prints.
type versionInfo struct {
	version.BuildInfo
	IndexAPIVersion   string `json:"index_api_version"`
}

type versionOptions struct {
	short        bool
	template     string
	outputFormat output.Format
}

func newVersionCmd(logger log.Logger) *cobra.Command {
	o := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "print the version information",
		Long:  versionDesc,
		Args:  require.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(logio.NewWriter(logger, log.InfoLevel))
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.short, "short", false, "print the version number")
	f.StringVar(&o.template, "template", "", "template for version string format")
	bindOutputFlag(cmd, &o.outputFormat)

	return cmd
}

func (o *versionOptions) run(out io.Writer) error {
	info := versionInfo{BuildInfo: version.Get(), IndexAPIVersion: repo.APIVersionV1}
	switch {
	case o.template != "":
		tt, err := template.New("version").Parse(o.template)
		if err != nil {
			return errors.Wrap(err, "bad version template")
		}
		if err := tt.Execute(out, info); err != nil {
			return errors.Wrap(err, "bad version template")
		}
		_, err = fmt.Fprintln(out)
		return err
	case o.short:
		_, err := fmt.Fprintln(out, shortVersion(info.BuildInfo))
		return err
	}
	return o.outputFormat.Write(out, versionWriter{info})
}

func shortVersion(v version.BuildInfo) string {
	if len(v.GitCommit) < 7 {
		return v.Version
	}
	return v.Version + "+g" + v.GitCommit[:7]
}

type versionWriter struct {
	info versionInfo
}

func (w versionWriter) WriteTable(out io.Writer) error {
	table := uitable.New()
	table.AddRow("VERSION:", w.info.Version)
	if w.info.GitCommit != "" {
		table.AddRow("GIT COMMIT:", w.info.GitCommit)
		table.AddRow("GIT TREE STATE:", w.info.GitTreeState)
	}
	if w.info.GoVersion != "" {
		table.AddRow("GO VERSION:", w.info.GoVersion)
	}
	table.AddRow("INDEX API VERSION:", w.info.IndexAPIVersion)
	return output.EncodeTable(out, table)
}

func (w versionWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w.info)
}

func (w versionWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w.info)
}
