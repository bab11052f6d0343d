package framework

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter decides whether a test should run. For suites, Context.RunSuite applies it to each
// case rather than to the suite itself.
type Filter func(TestID) bool

// RegexFilters holds the -run and -skip patterns. A pattern may be written against either form
// of a test's name: the slash-separated path ("CalendarTest/test_0_open") or the dotted form
// that also appears in screenshot file names ("CalendarTest.test_0_open").
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter returns true if the test is selected by MustMatch, when that is defined, and not
// excluded by MustNotMatch.
func (r RegexFilters) AsFilter(id TestID) bool {
	names := []string{id.String(), id.Dotted()}
	if r.MustMatch.IsDefined() && !r.MustMatch.AnyMatch(names...) {
		return false
	}
	return !r.MustNotMatch.AnyMatch(names...)
}

// Describe returns a human-readable summary of the filters, one line per defined list, or nil
// if neither is defined.
func (r RegexFilters) Describe() []string {
	var lines []string
	if r.MustMatch.IsDefined() {
		lines = append(lines, fmt.Sprintf("skip any not matching %s", r.MustMatch))
	}
	if r.MustNotMatch.IsDefined() {
		lines = append(lines, fmt.Sprintf("skip any matching %s", r.MustNotMatch))
	}
	return lines
}

// RegexList is a flag.Value that accumulates one pattern per occurrence of the flag.
type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	quoted := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		quoted = append(quoted, fmt.Sprintf("%q", p.String()))
	}
	return strings.Join(quoted, " or ")
}

// Set is called by the command line parser.
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex %q: %w", value, err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// AnyMatch returns true if any pattern matches any of the given names.
func (r RegexList) AnyMatch(names ...string) bool {
	for _, p := range r.patterns {
		for _, name := range names {
			if p.MatchString(name) {
				return true
			}
		}
	}
	return false
}

// PrintFilterDescription describes the -run and -skip parameters, if any were given.
func PrintFilterDescription(filters RegexFilters) {
	lines := filters.Describe()
	if len(lines) == 0 {
		return
	}
	fmt.Println("Some tests will be skipped based on the filter criteria for this test run:")
	for _, line := range lines {
		fmt.Printf("  %s\n", line)
	}
	fmt.Println()
}
