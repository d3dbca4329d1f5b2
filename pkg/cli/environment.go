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

/*Package cli describes the operating environment for the pkgsolve CLI.

pkgsolve's environment encapsulates all of the service dependencies pkgsolve
has. These dependencies are expressed as interfaces so that alternate
implementations (mocks, etc.) can be easily generated.
*/
package cli

import (
	"os"
	"path/filepath"
	"strconv"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/pkgsolve/pkg/pkgpath"
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// Debug indicates whether or not pkgsolve is running in Debug mode.
	Debug bool
	// NoColors disables colorized output.
	NoColors bool
	// NoEmojis disables emojis in the output.
	NoEmojis bool
	// Root is the directory the installed database lives under. Empty is
	// the host root.
	Root string
	// ConfigFile is the path to the configuration file.
	ConfigFile string
	// RepositoryConfig is the path to the repositories file.
	RepositoryConfig string
	// Indexes are extra index files loaded after the repositories.
	Indexes []string
	// Installed is the path to the installed database, relative to Root.
	Installed string
	// Hold lists patterns of packages never to be removed.
	Hold []string
}

func New() *EnvSettings {
	env := &EnvSettings{
		Root:             os.Getenv("PKGSOLVE_ROOT"),
		ConfigFile:       envOr("PKGSOLVE_CONFIG", pkgpath.ConfigFile()),
		RepositoryConfig: envOr("PKGSOLVE_REPOSITORY_CONFIG", pkgpath.RepositoryFile()),
		Installed:        envOr("PKGSOLVE_INSTALLED", pkgpath.InstalledFile()),
		Indexes:          envList("PKGSOLVE_INDEX"),
		Hold:             envList("PKGSOLVE_HOLD"),
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("PKGSOLVE_DEBUG"))
	env.NoColors, _ = strconv.ParseBool(os.Getenv("PKGSOLVE_NOCOLORS"))
	env.NoEmojis, _ = strconv.ParseBool(os.Getenv("PKGSOLVE_NOEMOJIS"))
	return env
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.BoolVar(&s.NoColors, "no-colors", s.NoColors, "disable colorized output")
	fs.BoolVar(&s.NoEmojis, "no-emojis", s.NoEmojis, "disable emojis in the output")
	fs.StringVar(&s.Root, "root", s.Root, "directory the installed database is looked up under")
	fs.StringVar(&s.ConfigFile, "config", s.ConfigFile, "path to the configuration file")
	fs.StringVar(&s.RepositoryConfig, "repository-config", s.RepositoryConfig, "path to the file containing repository names and index paths")
	fs.StringArrayVar(&s.Indexes, "index", s.Indexes, "extra index file to load packages from (can be repeated)")
	fs.StringVar(&s.Installed, "installed", s.Installed, "path to the installed database")
	fs.StringArrayVar(&s.Hold, "hold", s.Hold, "pattern of installed packages that may not be removed (can be repeated)")
}

// EnvVars returns the environment variables pkgsolve reads, as they are
// currently resolved.
func (s *EnvSettings) EnvVars() map[string]string {
	return map[string]string{
		"PKGSOLVE_DEBUG":             strconv.FormatBool(s.Debug),
		"PKGSOLVE_NOCOLORS":          strconv.FormatBool(s.NoColors),
		"PKGSOLVE_NOEMOJIS":          strconv.FormatBool(s.NoEmojis),
		"PKGSOLVE_ROOT":              s.Root,
		"PKGSOLVE_CONFIG":            s.ConfigFile,
		"PKGSOLVE_REPOSITORY_CONFIG": s.RepositoryConfig,
		"PKGSOLVE_INSTALLED":         s.Installed,
		"PKGSOLVE_INDEX":             quoteList(s.Indexes),
		"PKGSOLVE_HOLD":              quoteList(s.Hold),

		// read by pkgpath
		"PKGSOLVE_CACHE_HOME":  pkgpath.CachePath(""),
		"PKGSOLVE_CONFIG_HOME": pkgpath.ConfigPath(""),
		"PKGSOLVE_DATA_HOME":   pkgpath.DataPath(""),
	}
}

// InstalledPath is the installed database under Root. The path cannot
// escape Root through symlinks or "..".
func (s *EnvSettings) InstalledPath() (string, error) {
	if s.Root == "" {
		return filepath.Clean(s.Installed), nil
	}
	return securejoin.SecureJoin(s.Root, s.Installed)
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

// envList splits a variable the way a shell would, so values can hold
// quoted spaces.
func envList(name string) []string {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	list, err := shellwords.Parse(v)
	if err != nil {
		return []string{v}
	}
	return list
}

func quoteList(list []string) string {
	var out string
	for i, v := range list {
		if i > 0 {
			out += " "
		}
		out += strconv.Quote(v)
	}
	return out
}
