package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/client"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/framework"
	"github.com/scott-nodejs/pandawiki-sse-smoke-tests/probe"

	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := run(ctx, os.Args, os.Stdout, os.Stderr, client.NewChatClient(nil, nil))
	stop()
	os.Exit(status)
}

func run(ctx context.Context, args []string, out, errOut io.Writer, chatClient *client.ChatClient) int {
	var params commandParams
	if !params.Read(args, errOut) {
		return 1
	}
	if params.noColor {
		color.NoColor = true
	}

	probes, err := loadProbes(params)
	if err != nil {
		fmt.Fprintf(errOut, "Invalid parameters: %s\n", err)
		return 1
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)

	if params.debug || params.debugAll {
		for _, p := range probes {
			body, err := json.Marshal(p.Request)
			if err != nil {
				fmt.Fprintf(errOut, "Could not encode request for %q: %s\n", p.Name, err)
				continue
			}
			fmt.Fprintf(out, "To reproduce %q: %s\n", p.Name, curlCommand(p, body))
		}
	}

	fmt.Fprintln(out, "Running chat probes")

	probeLogger := &ConsoleProbeLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := probe.RunSuite(ctx, chatClient, probes, params.filters.AsFilter, probeLogger,
		probe.NewConsoleOutput(out))

	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	if !results.OK() {
		return 1
	}
	return 0
}
