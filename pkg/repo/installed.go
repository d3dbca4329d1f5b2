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

package repo

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/log-go"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
)

// ErrLocked is returned when another process holds the installed database.
var ErrLocked = errors.New("installed database is locked by another process")

// InstalledFile is the on-disk form of the installed database.
type InstalledFile struct {
	APIVersion string          `json:"apiVersion"`
	Generated  time.Time       `json:"generated"`
	Packages   []*PackageEntry `json:"packages"`
}

// InstalledDB is the installed database file loaded in memory. It holds
// a lock on the file until Close.
type InstalledDB struct {
	*solver.PkgDB

	path   string
	lock   *flock.Flock
	logger log.Logger
}

// OpenInstalledDB locks and loads the database at path. A missing file is
// an empty database.
func OpenInstalledDB(path string, logger log.Logger) (*InstalledDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &IndexError{Op: "open", Path: path, Err: err}
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, &IndexError{Op: "lock", Path: path, Err: err}
	}
	if !locked {
		return nil, &IndexError{Op: "lock", Path: path, Err: ErrLocked}
	}

	db := &InstalledDB{
		PkgDB:  solver.NewPkgDB(),
		path:   path,
		lock:   lock,
		logger: logger,
	}
	if err := db.load(); err != nil {
		lock.Unlock() //nolint:errcheck
		return nil, err
	}
	return db, nil
}

func (db *InstalledDB) load() error {
	b, err := ioutil.ReadFile(db.path)
	if os.IsNotExist(err) {
		db.logger.Debugf("%s does not exist, no package installed", db.path)
		return nil
	}
	if err != nil {
		return &IndexError{Op: "read", Path: db.path, Err: err}
	}

	f := InstalledFile{}
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return &IndexError{Op: "load", Path: db.path, Err: err}
	}
	if err := checkAPIVersion(f.APIVersion); err != nil {
		return &IndexError{Op: "load", Path: db.path, Err: err}
	}
	for _, e := range f.Packages {
		if err := e.Validate(); err != nil {
			return &IndexError{Op: "load", Path: db.path, Err: errors.Wrapf(err, "package %q", e.Name)}
		}
		p, err := e.ToPkg()
		if err != nil {
			return &IndexError{Op: "load", Path: db.path, Err: err}
		}
		db.Add(p)
	}
	db.logger.Debugf("loaded %d installed package(s) from %s", db.Len(), db.path)
	return nil
}

// Path returns the file the database was loaded from.
func (db *InstalledDB) Path() string { return db.path }

// Commit applies a transaction to the database and writes it back: the
// removed records go away, copies of the installed packages are added.
func (db *InstalledDB) Commit(install, remove []*pkg.Pkg) error {
	for _, p := range remove {
		if p.RecNo == 0 || db.Get(p.RecNo) != p {
			return errors.Errorf("%s: not installed", p.GetFingerPrint())
		}
	}
	for _, p := range remove {
		db.logger.Debugf("uninstalling %s", p.GetFingerPrint())
		db.Remove(p.RecNo)
	}
	for _, p := range install {
		db.logger.Debugf("installing %s", p.GetFingerPrint())
		installed := *p
		installed.ID, installed.RecNo = -1, 0
		db.Add(&installed)
	}
	return db.write()
}

// write replaces the file so a crash never leaves a truncated database.
func (db *InstalledDB) write() error {
	f := InstalledFile{
		APIVersion: APIVersionV1,
		Generated:  time.Now(),
		Packages:   []*PackageEntry{},
	}
	for _, p := range db.Installed() {
		f.Packages = append(f.Packages, NewPackageEntry(p))
	}
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}

	tmp, err := ioutil.TempFile(filepath.Dir(db.path), filepath.Base(db.path)+".*")
	if err != nil {
		return &IndexError{Op: "write", Path: db.path, Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return &IndexError{Op: "write", Path: db.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IndexError{Op: "write", Path: db.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), db.path); err != nil {
		return &IndexError{Op: "write", Path: db.path, Err: err}
	}
	return nil
}

// Close releases the lock on the database file.
func (db *InstalledDB) Close() error {
	return db.lock.Unlock()
}
