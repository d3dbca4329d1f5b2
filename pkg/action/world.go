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

package action

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/pkgsolve/internal/solver"
	"github.com/rancher-sandbox/pkgsolve/pkg/repo"
)

// World is what a resolution runs against: the packages of every
// configured repository and the installed database.
type World struct {
	Pool *solver.Pool
	DB   *repo.InstalledDB
}

// BuildWorld loads the indexes of the configured repositories, then the
// extra index files, and opens the installed database. The database stays
// locked until Close.
func BuildWorld(cfg *Configuration) (*World, error) {
	pool, err := LoadPool(cfg)
	if err != nil {
		return nil, err
	}

	path, err := cfg.Settings.InstalledPath()
	if err != nil {
		return nil, err
	}
	db, err := repo.OpenInstalledDB(path, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &World{Pool: pool, DB: db}, nil
}

// LoadPool builds the pool of available packages. A broken repository
// index is skipped with a warning; a broken extra index is an error.
func LoadPool(cfg *Configuration) (*solver.Pool, error) {
	logger := cfg.Logger
	pool := solver.NewPool()

	rf, err := repo.LoadFile(cfg.Settings.RepositoryConfig)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
		logger.Debug("No repository present, continuing…")
	}
	base := filepath.Dir(cfg.Settings.RepositoryConfig)
	for _, re := range rf.Repositories {
		path := re.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		index, err := repo.LoadIndexFile(path)
		if err != nil {
			logger.Warnf("Repo %q is corrupt or missing: %s", re.Name, err)
			continue
		}
		n, err := index.AddToPool(pool, re.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "repo %q", re.Name)
		}
		logger.Debugf("%s: %d package(s)", re.Name, n)
	}

	for _, path := range cfg.Settings.Indexes {
		index, err := repo.LoadIndexFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := index.AddToPool(pool, filepath.Base(path)); err != nil {
			return nil, errors.Wrapf(err, "index %s", path)
		}
	}

	pool.DebugPrintDB(logger)
	return pool, nil
}

// Close releases the installed database.
func (w *World) Close() error {
	return w.DB.Close()
}
