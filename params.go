package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kde/plasma-widget-tests/framework"
	"github.com/kde/plasma-widget-tests/widgettests"
)

type commandParams struct {
	serverURL     string
	screenshotDir string
	filters       framework.RegexFilters
	skipStatus    bool
	debug         bool
	debugAll      bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serverURL, "url", widgettests.DefaultServerURL, "automation server URL")
	fs.StringVar(&c.screenshotDir, "screenshot-dir", "", "directory for screenshots of failed tests (default: current directory)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.skipStatus, "skip-status-check", false, "do not wait for the automation server to report its status")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false
	}
	return true
}
