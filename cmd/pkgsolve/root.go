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
	"os"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/rancher-sandbox/pkgsolve/internal/version"
	"github.com/rancher-sandbox/pkgsolve/pkg/action"
	"github.com/rancher-sandbox/pkgsolve/pkg/config"
)

var globalUsage = `pkgsolve computes install and upgrade transactions of RPM packages.

It reads the package indexes of the configured repositories and the
database of installed packages, and works out which packages have to be
installed and which removed so that every requirement is satisfied and
nothing conflicts.

Environment variables:

| Name                         | Description                                                      |
|------------------------------|------------------------------------------------------------------|
| $PKGSOLVE_CACHE_HOME         | set an alternative location for storing cached files.            |
| $PKGSOLVE_CONFIG_HOME        | set an alternative location for storing pkgsolve configuration.  |
| $PKGSOLVE_DATA_HOME          | set an alternative location for storing pkgsolve data.           |
| $PKGSOLVE_CONFIG             | set the path to the configuration file.                          |
| $PKGSOLVE_REPOSITORY_CONFIG  | set the path to the repositories file.                           |
| $PKGSOLVE_INSTALLED          | set the path to the installed database.                          |
| $PKGSOLVE_ROOT               | set the directory the installed database is looked up under.     |
| $PKGSOLVE_INDEX              | extra index files, separated by spaces.                          |
| $PKGSOLVE_HOLD               | patterns of packages never to be removed, separated by spaces.   |
| $PKGSOLVE_DEBUG              | indicate whether or not pkgsolve is running in Debug mode.        |
| $PKGSOLVE_NOCOLORS           | disable colorized output.                                         |
| $PKGSOLVE_NOEMOJIS           | disable emojis in the output.                                     |
`

func newLogger(out, errOut io.Writer) *logcli.Logger {
	logger := logcli.NewStandard()
	logger.InfoOut = out
	logger.WarnOut = errOut
	logger.ErrorOut = errOut
	logger.DebugOut = errOut
	if settings.Debug {
		logger.Level = log.DebugLevel
	}
	return logger
}

func newRootCmd(out, errOut io.Writer, args []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           "pkgsolve",
		Short:         "A dependency resolver for RPM package transactions",
		Long:          globalUsage,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)
	var metricsFile string
	flags.StringVar(&metricsFile, "metrics-file", "", "write the resolver metrics to this file, in the Prometheus text format")

	// the configuration the subcommands start from depends on the global
	// flags, so they are parsed ahead of cobra
	flags.ParseErrorsWhitelist.UnknownFlags = true
	err := flags.Parse(args)
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, errors.Wrapf(err, "failed while parsing flags for %s", args)
	}

	if settings.NoColors {
		color.NoColor = true // disable colorized output
	}

	logger := newLogger(out, errOut)
	log.Current = logger

	cfg, err := config.LoadConfig(settings.ConfigFile)
	if err != nil {
		return nil, err
	}
	applyConfigPaths(flags, cfg)

	actionConfig := action.NewConfiguration(settings, cfg, logger)
	actionConfig.MetricsFile = metricsFile
	if term.IsTerminal(int(os.Stdin.Fd())) {
		actionConfig.Chooser = action.NewPromptChooser(os.Stdin, out, settings.NoEmojis)
	}

	cmd.PersistentPreRun = func(*cobra.Command, []string) {
		logger.Debugf("%s, config %s", version.UserAgent(), settings.ConfigFile)
		// repeated flags were seen by both parses
		settings.Indexes = uniq(settings.Indexes)
		settings.Hold = uniq(settings.Hold)
	}

	cmd.AddCommand(
		newInstallCmd(actionConfig, logger),
		newUpgradeCmd(actionConfig, logger),
		newListCmd(actionConfig, logger),
		newSearchCmd(actionConfig, logger),
		newWhatProvidesCmd(actionConfig, logger),
		newDepsCmd(actionConfig, logger),
		newRepoCmd(logger),
		newLintCmd(logger),
		newVersionCmd(logger),
	)

	return cmd, nil
}

// applyConfigPaths takes the paths of the configuration file for the
// settings given neither as flag nor in the environment.
func applyConfigPaths(flags *pflag.FlagSet, cfg *config.Config) {
	if cfg.RepositoryConfig != "" && !flags.Changed("repository-config") {
		if _, ok := os.LookupEnv("PKGSOLVE_REPOSITORY_CONFIG"); !ok {
			settings.RepositoryConfig = cfg.RepositoryConfig
		}
	}
	if cfg.Installed != "" && !flags.Changed("installed") {
		if _, ok := os.LookupEnv("PKGSOLVE_INSTALLED"); !ok {
			settings.Installed = cfg.Installed
		}
	}
}

func uniq(list []string) []string {
	seen := map[string]bool{}
	out := list[:0]
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
