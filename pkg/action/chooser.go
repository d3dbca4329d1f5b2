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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	pkg "github.com/rancher-sandbox/pkgsolve/internal/package"
	"github.com/rancher-sandbox/pkgsolve/internal/solver"
	"github.com/rancher-sandbox/pkgsolve/pkg/eyecandy"
)

// PromptChooser asks the questions of the resolver on a terminal.
type PromptChooser struct {
	reader   *bufio.Reader
	out      io.Writer
	noEmojis bool
}

// NewPromptChooser reads answers from in and writes questions to out.
func NewPromptChooser(in io.Reader, out io.Writer, noEmojis bool) *PromptChooser {
	return &PromptChooser{
		reader:   bufio.NewReader(in),
		out:      out,
		noEmojis: noEmojis,
	}
}

// ChooseEquivalent lists the candidates and reads a number. An empty
// answer takes the default, "q" aborts the transaction.
func (c *PromptChooser) ChooseEquivalent(marker *pkg.Pkg, req *pkg.Capability, candidates []*pkg.Pkg, def int) (int, error) {
	if marker != nil {
		fmt.Fprint(c.out, eyecandy.ESPrintf(c.noEmojis, ":package: %s requires %s, provided by:\n", marker, req))
	} else {
		fmt.Fprint(c.out, eyecandy.ESPrintf(c.noEmojis, ":package: %s is provided by:\n", req))
	}
	for i, p := range candidates {
		fmt.Fprintf(c.out, "%d) %s\n", i+1, p)
	}

	for {
		fmt.Fprintf(c.out, "Which one do you want to install ('q' to abort)? [%d] ", def+1)
		response, err := c.reader.ReadString('\n')
		if err != nil && response == "" {
			if err == io.EOF {
				return def, nil
			}
			return 0, err
		}
		response = strings.TrimSpace(response)
		switch {
		case response == "":
			return def, nil
		case strings.EqualFold(response, "q"):
			return 0, solver.ErrAbort
		}
		if n, err := strconv.Atoi(response); err == nil && n >= 1 && n <= len(candidates) {
			return n - 1, nil
		}
	}
}

// ChooseSuggests asks once whether to install all suggestions of p.
func (c *PromptChooser) ChooseSuggests(p *pkg.Pkg, suggests []pkg.Capability) ([]pkg.Capability, error) {
	names := make([]string, 0, len(suggests))
	for _, s := range suggests {
		names = append(names, s.String())
	}
	question := eyecandy.ESPrintf(c.noEmojis,
		":red_question_mark:Install packages suggested by %s (%s)?", p, strings.Join(names, ", "))
	ok, err := c.promptBool(question)
	if err != nil || !ok {
		return nil, err
	}
	return suggests, nil
}

func (c *PromptChooser) promptBool(question string) (bool, error) {
	for {
		fmt.Fprintf(c.out, "%s [Y/n]: ", question)

		response, err := c.reader.ReadString('\n')
		if err != nil && response == "" {
			if err == io.EOF {
				return true, nil
			}
			return false, err
		}

		response = strings.ToLower(strings.TrimSpace(response))

		if response == "y" || response == "yes" || response == "" {
			return true, nil
		} else if response == "n" || response == "no" {
			return false, nil
		}
	}
}
