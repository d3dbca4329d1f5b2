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
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/log-go"
	"github.com/Masterminds/semver/v3"
	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"sigs.k8s.io/yaml"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
)

// APIVersionV1 is the v1 API version for index and installed database files.
const APIVersionV1 = "v1"

// DigestSuffix names the file holding the digest of an index next to it.
const DigestSuffix = ".digest"

var (
	// ErrNoAPIVersion indicates that an API version was not specified.
	ErrNoAPIVersion = errors.New("no API version specified")
	// ErrUnsupportedAPIVersion indicates a file written for another schema.
	ErrUnsupportedAPIVersion = errors.New("unsupported API version")
	// ErrDigestMismatch indicates an index that does not match its digest file.
	ErrDigestMismatch = errors.New("digest mismatch")

	// ErrNoPackageVersion indicates that a package with the given version is not found.
	ErrNoPackageVersion = errors.New("no package version found")
	// ErrNoPackageName indicates that a package with the given name is not found.
	ErrNoPackageName = errors.New("no package name found")
)

// supportedAPIVersions are the schema versions this code reads.
var supportedAPIVersions = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// IndexError records a failed operation on an index or database file.
type IndexError struct {
	Op   string
	Path string
	Err  error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// PackageEntry is a package as stored in index and database files.
// Capabilities are kept in their text form: "name" or "name op evr".
type PackageEntry struct {
	Name       string        `json:"name"`
	Epoch      int32         `json:"epoch,omitempty"`
	Version    string        `json:"version"`
	Release    string        `json:"release,omitempty"`
	Arch       string        `json:"arch,omitempty"`
	OS         string        `json:"os,omitempty"`
	Color      uint32        `json:"color,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	Size       int64         `json:"size,omitempty"`
	FileSize   int64         `json:"fileSize,omitempty"`
	BuildTime  int64         `json:"buildTime,omitempty"`
	Digest     digest.Digest `json:"digest,omitempty"`
	Repository string        `json:"repository,omitempty"`
	Held       bool          `json:"held,omitempty"`

	Provides  []string `json:"provides,omitempty"`
	Requires  []string `json:"requires,omitempty"`
	Prereqs   []string `json:"prereqs,omitempty"`
	PrereqsUn []string `json:"prereqsUn,omitempty"`
	Conflicts []string `json:"conflicts,omitempty"`
	Obsoletes []string `json:"obsoletes,omitempty"`
	Suggests  []string `json:"suggests,omitempty"`
	Files     []string `json:"files,omitempty"`
}

// EVR returns "[epoch:]version-release".
func (e *PackageEntry) EVR() string {
	return pkg.FormatEVR(e.Epoch, e.Epoch > 0, e.Version, e.Release)
}

// Validate checks the entry is complete and its digest well formed.
func (e *PackageEntry) Validate() error {
	if e.Name == "" {
		return errors.New("missing name")
	}
	if e.Version == "" {
		return errors.New("missing version")
	}
	if e.Digest != "" {
		if err := e.Digest.Validate(); err != nil {
			return errors.Wrap(err, "invalid digest")
		}
	}
	return nil
}

// ToPkg builds the package the solver works with.
func (e *PackageEntry) ToPkg() (*pkg.Pkg, error) {
	p := pkg.NewPkg(e.Name, e.Epoch, e.Version, e.Release, e.Arch)
	if e.OS != "" {
		p.OS = e.OS
	}
	p.Color = e.Color
	p.Summary = e.Summary
	p.Size = e.Size
	p.FileSize = e.FileSize
	p.BuildTime = e.BuildTime
	p.Repository = e.Repository
	p.Held = e.Held
	p.Files = append(p.Files, e.Files...)

	for _, list := range []struct {
		dst   *[]pkg.Capability
		src   []string
		flags pkg.CapFlag
	}{
		{&p.Provides, e.Provides, 0},
		{&p.Requires, e.Requires, 0},
		{&p.Requires, e.Prereqs, pkg.CapPrereq},
		{&p.Requires, e.PrereqsUn, pkg.CapPrereqUn},
		{&p.Conflicts, e.Conflicts, pkg.CapConflict},
		{&p.Conflicts, e.Obsoletes, pkg.CapConflict | pkg.CapObsoletes},
		{&p.Suggests, e.Suggests, 0},
	} {
		caps, err := pkg.ParseCapabilities(list.src, list.flags)
		if err != nil {
			return nil, errors.Wrapf(err, "package %s-%s", e.Name, e.EVR())
		}
		*list.dst = append(*list.dst, caps...)
	}
	return p, nil
}

// NewPackageEntry is the inverse of ToPkg.
func NewPackageEntry(p *pkg.Pkg) *PackageEntry {
	e := &PackageEntry{
		Name:       p.Name,
		Epoch:      p.Epoch,
		Version:    p.Version,
		Release:    p.Release,
		Arch:       p.Arch,
		OS:         p.OS,
		Color:      p.Color,
		Summary:    p.Summary,
		Size:       p.Size,
		FileSize:   p.FileSize,
		BuildTime:  p.BuildTime,
		Repository: p.Repository,
		Held:       p.Held,
		Files:      append([]string(nil), p.Files...),
	}
	for _, c := range p.Provides {
		e.Provides = append(e.Provides, c.String())
	}
	for _, c := range p.Requires {
		switch {
		case c.Flags&pkg.CapPrereqUn != 0:
			e.PrereqsUn = append(e.PrereqsUn, c.String())
		case c.Flags&pkg.CapPrereq != 0:
			e.Prereqs = append(e.Prereqs, c.String())
		default:
			e.Requires = append(e.Requires, c.String())
		}
	}
	for _, c := range p.Conflicts {
		if c.IsObsoletes() {
			e.Obsoletes = append(e.Obsoletes, c.String())
		} else {
			e.Conflicts = append(e.Conflicts, c.String())
		}
	}
	for _, c := range p.Suggests {
		e.Suggests = append(e.Suggests, c.String())
	}
	return e
}

// IndexFile represents the package index of a repository.
type IndexFile struct {
	APIVersion string          `json:"apiVersion"`
	Generated  time.Time       `json:"generated"`
	Packages   []*PackageEntry `json:"packages"`

	// Digest is the digest of the file as read, empty for new indexes.
	Digest digest.Digest `json:"-"`
}

// NewIndexFile initializes an index
func NewIndexFile() *IndexFile {
	return &IndexFile{
		APIVersion: APIVersionV1,
		Generated:  time.Now(),
		Packages:   []*PackageEntry{},
	}
}

// Add appends entries to the index, leaving it unsorted.
func (i *IndexFile) Add(entries ...*PackageEntry) {
	i.Packages = append(i.Packages, entries...)
}

// Has tells whether the index holds name at evr.
func (i *IndexFile) Has(name, evr string) bool {
	_, err := i.Get(name, evr)
	return err == nil
}

// Get returns the entry for name at evr, the newest one when evr is empty.
func (i *IndexFile) Get(name, evr string) (*PackageEntry, error) {
	found := false
	for _, e := range i.Packages {
		if e.Name != name {
			continue
		}
		found = true
		if evr == "" || e.EVR() == evr {
			return e, nil
		}
	}
	if !found {
		return nil, errors.Wrap(ErrNoPackageName, name)
	}
	return nil, errors.Wrapf(ErrNoPackageVersion, "%s-%s", name, evr)
}

// Merge merges the given index file into this index.
//
// Entries are matched by name, EVR and arch. An entry of f that does not
// exist yet is added, an existing record is preserved.
//
// This can leave the index in an unsorted state
func (i *IndexFile) Merge(f *IndexFile) {
	seen := map[string]bool{}
	for _, e := range i.Packages {
		seen[entryKey(e)] = true
	}
	for _, e := range f.Packages {
		if !seen[entryKey(e)] {
			seen[entryKey(e)] = true
			i.Packages = append(i.Packages, e)
		}
	}
}

func entryKey(e *PackageEntry) string {
	return e.Name + "-" + e.EVR() + "." + e.Arch
}

// SortEntries sorts by name, newest version first.
func (i *IndexFile) SortEntries() {
	sort.SliceStable(i.Packages, func(a, b int) bool {
		ea, eb := i.Packages[a], i.Packages[b]
		if ea.Name != eb.Name {
			return ea.Name < eb.Name
		}
		if ea.Epoch != eb.Epoch {
			return ea.Epoch > eb.Epoch
		}
		if rc := pkg.VersionCompare(ea.Version, eb.Version); rc != 0 {
			return rc > 0
		}
		if rc := pkg.VersionCompare(ea.Release, eb.Release); rc != 0 {
			return rc > 0
		}
		return ea.Arch < eb.Arch
	})
}

// AddToPool adds every entry to the pool, tagged with the repository name
// when the entry has none.
func (i *IndexFile) AddToPool(pool *solver.Pool, repository string) (int, error) {
	n := 0
	for _, e := range i.Packages {
		p, err := e.ToPkg()
		if err != nil {
			return n, err
		}
		if p.Repository == "" {
			p.Repository = repository
		}
		pool.Add(p)
		n++
	}
	return n, nil
}

// LoadIndexFile takes a file at the given path and returns an IndexFile
// object. Files ending in .xz are decompressed. When a digest file sits
// next to the index, the index content must match it.
func LoadIndexFile(path string) (*IndexFile, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, &IndexError{Op: "read", Path: path, Err: err}
	}
	sum := digest.FromBytes(b)
	if err := verifyDigestFile(path, b); err != nil {
		return nil, &IndexError{Op: "verify", Path: path, Err: err}
	}
	if strings.HasSuffix(path, ".xz") {
		if b, err = decompress(b); err != nil {
			return nil, &IndexError{Op: "decompress", Path: path, Err: err}
		}
	}
	i, err := loadIndex(b, path)
	if err != nil {
		return nil, &IndexError{Op: "load", Path: path, Err: err}
	}
	i.Digest = sum
	return i, nil
}

func verifyDigestFile(path string, content []byte) error {
	raw, err := ioutil.ReadFile(path + DigestSuffix)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	expected, err := digest.Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return errors.Wrapf(err, "invalid digest file %s%s", path, DigestSuffix)
	}
	verifier := expected.Verifier()
	if _, err := verifier.Write(content); err != nil {
		return err
	}
	if !verifier.Verified() {
		return errors.Wrapf(ErrDigestMismatch, "expected %s", expected)
	}
	return nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ioutil.ReadAll(r)
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// checkAPIVersion accepts the v1 family of schemas.
func checkAPIVersion(apiVersion string) error {
	if apiVersion == "" {
		return ErrNoAPIVersion
	}
	v, err := semver.NewVersion(apiVersion)
	if err != nil {
		return errors.Wrapf(ErrUnsupportedAPIVersion, "%q", apiVersion)
	}
	if !supportedAPIVersions.Check(v) {
		return errors.Wrapf(ErrUnsupportedAPIVersion, "%q", apiVersion)
	}
	return nil
}

// loadIndex loads an index file and does minimal validity checking.
//
// The source parameter is only used for logging.
// This will fail if API Version is not set (ErrNoAPIVersion) or if the unmarshal fails.
func loadIndex(data []byte, source string) (*IndexFile, error) {
	i := &IndexFile{}
	if err := yaml.UnmarshalStrict(data, i); err != nil {
		return i, err
	}
	if err := checkAPIVersion(i.APIVersion); err != nil {
		return i, err
	}

	for idx := len(i.Packages) - 1; idx >= 0; idx-- {
		e := i.Packages[idx]
		if err := e.Validate(); err != nil {
			log.Current.Warnf("skipping loading invalid entry for package %q %q from %s: %s", e.Name, e.Version, source, err)
			i.Packages = append(i.Packages[:idx], i.Packages[idx+1:]...)
		}
	}
	i.SortEntries()
	return i, nil
}

// WriteFile writes the index to path, xz-compressed when path ends in .xz,
// with its digest file next to it.
func (i *IndexFile) WriteFile(path string, mode os.FileMode) error {
	b, err := yaml.Marshal(i)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".xz") {
		if b, err = compress(b); err != nil {
			return &IndexError{Op: "compress", Path: path, Err: err}
		}
	}
	if err := ioutil.WriteFile(path, b, mode); err != nil {
		return &IndexError{Op: "write", Path: path, Err: err}
	}
	i.Digest = digest.FromBytes(b)
	return ioutil.WriteFile(path+DigestSuffix, []byte(i.Digest.String()+"\n"), mode)
}
