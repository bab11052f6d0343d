package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kde/plasma-widget-tests/framework"
	"github.com/kde/plasma-widget-tests/webdriver"
	"github.com/kde/plasma-widget-tests/widgettests"
)

const statusQueryTimeout = time.Second * 10

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	if !params.skipStatus {
		status, err := webdriver.QueryStatus(params.serverURL, statusQueryTimeout, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Automation server error: %s\n", err)
			os.Exit(1)
		}
		if !status.Ready {
			mainDebugLogger.Printf("Automation server reports it is not ready: %s", status.Message)
		}
	}

	fmt.Println()
	framework.PrintFilterDescription(params.filters)

	fmt.Printf("Running smoke tests for %s\n", widgettests.WidgetID)

	testLogger := ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := widgettests.RunTestSuite(
		widgettests.RemoteSessionOpener(params.serverURL),
		widgettests.SuiteParams{ScreenshotDir: params.screenshotDir},
		params.filters.AsFilter,
		&testLogger,
	)

	fmt.Println()
	framework.PrintResults(results)
	if !results.OK() {
		os.Exit(1)
	}
}
