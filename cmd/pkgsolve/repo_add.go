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
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/pkgsolve/cmd/pkgsolve/require"
	"github.com/rancher-sandbox/pkgsolve/pkg/repo"
)

type repoAddOptions struct {
	name        string
	path        string
	forceUpdate bool

	repoFile string
}

func newRepoAddCmd(out io.Writer) *cobra.Command {
	o := &repoAddOptions{}

	cmd := &cobra.Command{
		Use:   "add [NAME] [PATH]",
		Short: "add a package repository",
		Args:  require.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.name = args[0]
			o.path = args[1]
			o.repoFile = settings.RepositoryConfig
			return o.run(cmd.Context(), out)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&o.forceUpdate, "force-update", false, "replace (overwrite) the repo if it already exists")

	return cmd
}

func (o *repoAddOptions) run(ctx context.Context, out io.Writer) error {
	if err := checkRepoName(o.name); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(o.repoFile), 0755); err != nil {
		return err
	}

	// Acquire a file lock for process synchronization
	fileLock := flock.New(strings.TrimSuffix(o.repoFile, filepath.Ext(o.repoFile)) + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	locked, err := fileLock.TryLockContext(lockCtx, time.Second)
	if err == nil && locked {
		defer fileLock.Unlock() //nolint:errcheck
	}
	if err != nil {
		return errors.Wrap(err, "cannot lock the repositories file")
	}

	f, err := repo.LoadFile(o.repoFile)
	if err != nil && !isNotExist(err) {
		return err
	}
	if len(f.Repositories) == 0 && f.APIVersion == "" {
		f = repo.NewFile()
	}

	if !o.forceUpdate && f.Has(o.name) {
		return errors.Errorf("repository name (%s) already exists, please specify a different name", o.name)
	}

	path, err := filepath.Abs(o.path)
	if err != nil {
		return err
	}
	index, err := repo.LoadIndexFile(path)
	if err != nil {
		return errors.Wrapf(err, "looks like %q is not a valid package repository or cannot be reached", o.path)
	}

	f.Update(&repo.Entry{Name: o.name, Path: path})
	f.Generated = time.Now()
	if err := f.WriteFile(o.repoFile, 0644); err != nil {
		return err
	}
	fmt.Fprintf(out, "%q has been added to your repositories (%d packages)\n", o.name, len(index.Packages))
	return nil
}

func checkRepoName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\ `) {
		return errors.Errorf("repository name %q is invalid", name)
	}
	return nil
}
