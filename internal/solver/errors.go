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

package solver

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
)

var (
	// ErrAlreadyMarked is returned when marking a package twice.
	ErrAlreadyMarked = errors.New("package already marked")
	// ErrAbort is returned by a Chooser when the user gives up.
	ErrAbort = errors.New("aborted by user")
	// ErrNothingToDo is returned when no requested package is installable.
	ErrNothingToDo = errors.New("nothing to do")
)

// ErrorCode classifies what went wrong with a package.
type ErrorCode int

const (
	ErrNotFound   ErrorCode = iota + 1 // requirement nobody provides
	ErrRequiredBy                      // removal breaks an installed package
	ErrConflict                        // conflict inside the install set
	ErrDBConflict                      // conflict with an installed package
	ErrFatal
)

// ErrorClass groups error codes the way force and nodeps forgive them.
type ErrorClass int

const (
	ClassDep ErrorClass = 1 << iota
	ClassConflict
	ClassFatal
)

func (c ErrorCode) Class() ErrorClass {
	switch c {
	case ErrNotFound, ErrRequiredBy:
		return ClassDep
	case ErrConflict, ErrDBConflict:
		return ClassConflict
	}
	return ClassFatal
}

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "notfound"
	case ErrRequiredBy:
		return "requiredby"
	case ErrConflict:
		return "conflict"
	case ErrDBConflict:
		return "dbconflict"
	}
	return "fatal"
}

// PkgError is a problem recorded against a package during resolution.
type PkgError struct {
	Package string    `json:"package"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *PkgError) Error() string { return e.Message }

// FatalError stops the transaction at once.
type FatalError struct {
	Package string
	Msg     string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Package, e.Msg)
}

// errorLog keeps recorded errors keyed by package fingerprint so a rollback
// can forget everything said about a package.
type errorLog struct {
	byPkg btree.Map[string, []*PkgError]
}

func (l *errorLog) record(p *pkg.Pkg, code ErrorCode, msg string) *PkgError {
	e := &PkgError{Package: p.GetFingerPrint(), Code: code, Message: msg}
	list, _ := l.byPkg.Get(e.Package)
	l.byPkg.Set(e.Package, append(list, e))
	return e
}

func (l *errorLog) forget(p *pkg.Pkg) int {
	list, ok := l.byPkg.Delete(p.GetFingerPrint())
	if !ok {
		return 0
	}
	return len(list)
}

// drop forgets e alone.
func (l *errorLog) drop(e *PkgError) bool {
	list, ok := l.byPkg.Get(e.Package)
	if !ok {
		return false
	}
	for i, x := range list {
		if x != e {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			l.byPkg.Delete(e.Package)
		} else {
			l.byPkg.Set(e.Package, list)
		}
		return true
	}
	return false
}

func (l *errorLog) count(class ErrorClass) int {
	n := 0
	l.byPkg.Scan(func(_ string, list []*PkgError) bool {
		for _, e := range list {
			if e.Code.Class()&class != 0 {
				n++
			}
		}
		return true
	})
	return n
}

// all returns every error, packages in fingerprint order, each package's
// errors in recording order.
func (l *errorLog) all() []*PkgError {
	out := []*PkgError{}
	l.byPkg.Scan(func(_ string, list []*PkgError) bool {
		out = append(out, list...)
		return true
	})
	return out
}

func (l *errorLog) of(p *pkg.Pkg) []*PkgError {
	list, _ := l.byPkg.Get(p.GetFingerPrint())
	return list
}
