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

// Package pkgpath calculates filesystem paths to pkgsolve's configuration,
// cache and data.
package pkgpath

const lp = lazypath("pkgsolve")

// ConfigPath returns the path where pkgsolve stores configuration.
func ConfigPath(elem ...string) string { return lp.configPath(elem...) }

// CachePath returns the path where pkgsolve stores cached objects.
func CachePath(elem ...string) string { return lp.cachePath(elem...) }

// DataPath returns the path where pkgsolve stores data.
func DataPath(elem ...string) string { return lp.dataPath(elem...) }

// ConfigFile is the default solver configuration file.
func ConfigFile() string { return ConfigPath("config.yaml") }

// RepositoryFile is the default list of repositories.
func RepositoryFile() string { return ConfigPath("repositories.yaml") }

// InstalledFile is the default installed database.
func InstalledFile() string { return DataPath("installed.yaml") }
