package main

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probedef"

	"github.com/alessio/shellescape"
)

type commandParams struct {
	baseURL    string
	kbID       string
	password   string
	configFile string
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
	noColor    bool

	// explicitlySet holds the names of the flags that appeared on the command line, so that
	// they can take precedence over the config file.
	explicitlySet map[string]bool
}

func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.baseURL, "url", probedef.DefaultBaseURL, "base URL of the PandaWiki backend")
	fs.StringVar(&c.kbID, "kb-id", probedef.DefaultKBID, "knowledge base ID sent in the X-KB-ID header")
	fs.StringVar(&c.password, "password", "", "value for the x-simple-auth-password header, if the knowledge base requires one")
	fs.StringVar(&c.configFile, "config", "", "TOML file describing the target and the probes to run")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select probes to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select probes not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed probes")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all probes")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	c.explicitlySet = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.explicitlySet[f.Name] = true })
	return true
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// curlCommand returns a shell command that sends the same request as the probe, for reproducing
// a failure by hand.
func curlCommand(params probedef.ProbeParams, body []byte) string {
	var b commandBuilder
	b.add("curl", "-N", "-X", "POST")
	names := make([]string, 0, len(params.Headers))
	for name := range params.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.add("-H", name+": "+params.Headers[name])
	}
	b.add("--data", string(body), params.URL)
	return b.String()
}
