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

/*Package search looks up available packages by keyword, in their names
and summaries, and writes the results in the supported output formats.
*/
package search

import (
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/docker/go-units"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
	"github.com/rancher-sandbox/pkgsolve/pkg/cli/output"
)

// searchMaxScore suggests that any score higher than this is not considered a match.
const searchMaxScore = 25

// Result is a search result.
//
// Score indicates how close it is to match. The higher the score, the longer
// the distance.
type Result struct {
	Name    string
	Score   int
	Package *pkg.Pkg
}

// Options is the struct used to search, and stores the different options to
// filter and configure the output
type Options struct {
	// Versions lists every version instead of the newest one.
	Versions bool
	// Regexp treats the keyword as a regular expression.
	Regexp bool
	// Version is a "relation evr" constraint, e.g. ">= 1.2".
	Version      string
	MaxColWidth  uint
	OutputFormat output.Format
}

// Run searches pool and prints the packages found based on the filters.
func (o *Options) Run(pool solver.AvailablePool, logger log.Logger, args []string) error {
	wInfo := logio.NewWriter(logger, log.InfoLevel)
	res, err := o.Search(pool, args)
	if err != nil {
		return err
	}
	return o.OutputFormat.Write(wInfo, &searchWriter{res, o.MaxColWidth})
}

// Search returns the matching packages, best score first.
func (o *Options) Search(pool solver.AvailablePool, args []string) ([]*Result, error) {
	var res []*Result
	if len(args) == 0 {
		res = all(pool)
	} else {
		q := strings.Join(args, " ")
		var err error
		if res, err = search(pool, q, searchMaxScore, o.Regexp); err != nil {
			return nil, err
		}
	}
	SortScore(res)
	return o.applyConstraint(res)
}

// applyConstraint filters res by version, keeping the newest match of
// each name unless every version is wanted.
func (o *Options) applyConstraint(res []*Result) ([]*Result, error) {
	var constraint *pkg.Capability
	if o.Version != "" {
		c, err := pkg.ParseCapability("_ " + o.Version)
		if err != nil {
			return nil, errors.Wrap(err, "an invalid version/constraint format")
		}
		constraint = &c
	}

	data := res[:0]
	foundNames := map[string]bool{}
	for _, r := range res {
		// if not returning all versions and already have found a result,
		// you're done!
		if !o.Versions && foundNames[r.Name] {
			continue
		}
		if constraint != nil {
			self := r.Package.SelfCap()
			self.Name = "_"
			if !pkg.CapMatchReq(&self, constraint, 0) {
				continue
			}
		}
		data = append(data, r)
		foundNames[r.Name] = true
	}
	return data, nil
}

func all(pool solver.AvailablePool) []*Result {
	res := []*Result{}
	for _, p := range pool.Packages() {
		res = append(res, &Result{Name: p.Name, Package: p})
	}
	return res
}

// search scores every package against q: an exact name first, then a
// name prefix, a name substring, and last a summary substring.
func search(pool solver.AvailablePool, q string, threshold int, regexpSearch bool) ([]*Result, error) {
	if regexpSearch {
		return searchRegexp(pool, q, threshold)
	}
	lq := strings.ToLower(q)
	res := []*Result{}
	for _, p := range pool.Packages() {
		name := strings.ToLower(p.Name)
		score := -1
		switch {
		case name == lq:
			score = 0
		case strings.HasPrefix(name, lq):
			score = 1
		case strings.Contains(name, lq):
			score = 2 + strings.Index(name, lq)
		case strings.Contains(strings.ToLower(p.Summary), lq):
			score = 10 + strings.Index(strings.ToLower(p.Summary), lq)
		}
		if score >= 0 && score <= threshold {
			res = append(res, &Result{Name: p.Name, Score: score, Package: p})
		}
	}
	return res, nil
}

func searchRegexp(pool solver.AvailablePool, q string, threshold int) ([]*Result, error) {
	re, err := regexp.Compile(q)
	if err != nil {
		return nil, errors.Wrap(err, "invalid regular expression")
	}
	res := []*Result{}
	for _, p := range pool.Packages() {
		if loc := re.FindStringIndex(p.Name); loc != nil {
			res = append(res, &Result{Name: p.Name, Score: loc[0], Package: p})
		} else if loc := re.FindStringIndex(p.Summary); loc != nil && 10+loc[0] <= threshold {
			res = append(res, &Result{Name: p.Name, Score: 10 + loc[0], Package: p})
		}
	}
	return res, nil
}

// SortScore does an in-place sort of the results: by score, then name,
// then newest version first.
func SortScore(r []*Result) {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score < r[j].Score
		}
		if r[i].Name != r[j].Name {
			return r[i].Name < r[j].Name
		}
		return r[i].Package.CmpEVR(r[j].Package) > 0
	})
}

// packageElement is used to store the final package values that will get printed
type packageElement struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Arch       string `json:"arch"`
	Size       string `json:"size"`
	Repository string `json:"repository"`
	Summary    string `json:"summary"`
}

// searchWriter is used to store and print the search results
type searchWriter struct {
	results     []*Result
	columnWidth uint
}

func newElement(p *pkg.Pkg) packageElement {
	return packageElement{p.Name, p.EVR(), p.Arch, units.HumanSize(float64(p.Size)), p.Repository, p.Summary}
}

// WriteTable writes the results as a table
func (r *searchWriter) WriteTable(out io.Writer) error {
	if len(r.results) == 0 {
		_, err := out.Write([]byte("No results found\n"))
		if err != nil {
			return errors.Wrap(err, "unable to write results")
		}
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = r.columnWidth
	table.AddRow("NAME", "VERSION", "ARCH", "SIZE", "REPOSITORY", "SUMMARY")
	for _, r := range r.results {
		e := newElement(r.Package)
		table.AddRow(e.Name, e.Version, e.Arch, e.Size, e.Repository, e.Summary)
	}
	return output.EncodeTable(out, table)
}

// WriteJSON prints the results as a json
func (r *searchWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, r.elements())
}

// WriteYAML prints the results as a yaml
func (r *searchWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, r.elements())
}

// elements initializes the array so no results returns an empty array
// instead of null
func (r *searchWriter) elements() []packageElement {
	list := make([]packageElement, 0, len(r.results))
	for _, r := range r.results {
		list = append(list, newElement(r.Package))
	}
	return list
}
