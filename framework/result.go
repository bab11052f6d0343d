package framework

import (
	"errors"
	"fmt"
	"strings"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID identifies a test by its path from the root of the test run.
type TestID struct {
	Path []string
}

// Plus returns the ID of a subtest of this test.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Dotted returns the path joined with dots, which is safe to embed in a file name as long as
// the path components themselves contain no slashes.
func (t TestID) Dotted() string {
	return strings.Join(t.Path, ".")
}

// PrintResults writes a summary of the test run to standard output.
func PrintResults(results Results) {
	if results.OK() {
		fmt.Printf("All tests passed (%d)\n", len(results.Tests))
		return
	}
	fmt.Printf("FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Printf("  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(reformatError(err).Error(), "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
}

// reformatError drops the "Error Trace" block that testify adds to assertion failures, since
// the stack location inside the test suite is rarely useful in a test run report.
func reformatError(err error) error {
	var kept []string
	inTrace := false
	for _, line := range strings.Split(err.Error(), "\n") {
		trimmed := strings.TrimLeft(line, "\t")
		if strings.HasPrefix(trimmed, "Error Trace:") {
			inTrace = true
			continue
		}
		if inTrace && strings.HasPrefix(trimmed, " ") {
			continue
		}
		inTrace = false
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return err
	}
	return errors.New(strings.Join(kept, "\n"))
}
