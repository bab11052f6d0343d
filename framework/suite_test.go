package framework

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events      []string
	debug       map[string]CapturedOutput
	skipReasons map[string]string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "started "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String())
}

func (r *recordingTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	r.events = append(r.events, fmt.Sprintf("finished %s failed=%t", id, failed))
	if r.debug == nil {
		r.debug = make(map[string]CapturedOutput)
	}
	r.debug[id.String()] = debugOutput
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skipped "+id.String())
	if r.skipReasons == nil {
		r.skipReasons = make(map[string]string)
	}
	r.skipReasons[id.String()] = reason
}

func TestSuiteRunsHooksInOrder(t *testing.T) {
	var calls []string
	s := Suite{
		Name:      "suite",
		BeforeAll: func(*Context) { calls = append(calls, "before-all") },
		Cases: []Case{
			{Name: "a", Action: func(*Context) { calls = append(calls, "a") }},
			{Name: "b", Action: func(*Context) { calls = append(calls, "b") }},
		},
		AfterEach: func(o Outcome, _ Logger) { calls = append(calls, "after-each "+o.ID.String()) },
		AfterAll:  func(Logger) { calls = append(calls, "after-all") },
	}
	results := Run(nil, nil, func(c *Context) { c.RunSuite(s) })

	assert.True(t, results.OK())
	assert.Equal(t, []string{
		"before-all",
		"a", "after-each suite/a",
		"b", "after-each suite/b",
		"after-all",
	}, calls)
}

func TestSuiteAfterEachReceivesFailingOutcome(t *testing.T) {
	var outcomes []Outcome
	s := Suite{
		Name: "suite",
		Cases: []Case{
			{Name: "passes", Action: func(*Context) {}},
			{Name: "fails", Action: func(c *Context) {
				require.NoError(c, errors.New("element \"Months\" not found"))
				c.Errorf("unreachable")
			}},
		},
		AfterEach: func(o Outcome, _ Logger) { outcomes = append(outcomes, o) },
	}
	results := Run(nil, nil, func(c *Context) { c.RunSuite(s) })

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Successful())
	assert.False(t, outcomes[1].Successful())
	assert.Equal(t, []string{"suite", "fails"}, outcomes[1].ID.Path)
	require.Len(t, outcomes[1].Errors, 1)
	assert.Contains(t, outcomes[1].Errors[0].Error(), "Months")

	assert.False(t, results.OK())
	var failed []string
	for _, f := range results.Failures {
		failed = append(failed, f.TestID.String())
	}
	assert.Equal(t, []string{"suite/fails"}, failed)
}

func TestSuiteAfterEachOutputIsAttachedToCase(t *testing.T) {
	logger := &recordingTestLogger{}
	s := Suite{
		Name:      "suite",
		Cases:     []Case{{Name: "a", Action: func(*Context) {}}},
		AfterEach: func(o Outcome, debug Logger) { debug.Printf("cleaned up %s", o.ID) },
	}
	Run(nil, logger, func(c *Context) { c.RunSuite(s) })

	output := logger.debug["suite/a"]
	require.Len(t, output, 1)
	assert.Equal(t, "cleaned up suite/a", output[0].Message)
}

func TestSuiteHookPanicDoesNotChangeOutcome(t *testing.T) {
	afterAllCalled := false
	s := Suite{
		Name:      "suite",
		Cases:     []Case{{Name: "a", Action: func(*Context) {}}},
		AfterEach: func(Outcome, Logger) { panic("screenshot failed") },
		AfterAll:  func(Logger) { afterAllCalled = true; panic("close failed") },
	}
	results := Run(nil, nil, func(c *Context) { c.RunSuite(s) })

	assert.True(t, results.OK())
	assert.True(t, afterAllCalled)
}

func TestSuiteSetupFailureFailsEveryCaseWithoutRunningIt(t *testing.T) {
	ran := false
	afterEachCalled := false
	afterAllCalled := false
	s := Suite{
		Name: "suite",
		BeforeAll: func(c *Context) {
			require.NoError(c, errors.New("connection refused"))
		},
		Cases: []Case{
			{Name: "a", Action: func(*Context) { ran = true }},
			{Name: "b", Action: func(*Context) { ran = true }},
		},
		AfterEach: func(Outcome, Logger) { afterEachCalled = true },
		AfterAll:  func(Logger) { afterAllCalled = true },
	}
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) { c.RunSuite(s) })

	assert.False(t, ran)
	assert.False(t, afterEachCalled)
	assert.True(t, afterAllCalled)
	assert.Len(t, results.Failures, 3)
	assert.Contains(t, logger.events, "finished suite/a failed=true")
	assert.Contains(t, logger.events, "finished suite/b failed=true")
	assert.Contains(t, logger.events, "finished suite failed=true")
}

func TestSuiteSetupSkipSkipsEveryCase(t *testing.T) {
	ran := false
	s := Suite{
		Name:      "suite",
		BeforeAll: func(c *Context) { c.SkipWithReason("no display") },
		Cases:     []Case{{Name: "a", Action: func(*Context) { ran = true }}},
	}
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) { c.RunSuite(s) })

	assert.False(t, ran)
	assert.True(t, results.OK())
	assert.Contains(t, logger.events, "skipped suite/a")
	assert.Contains(t, logger.events, "skipped suite")
}

func TestSuiteCaseExcludedByFilterDoesNotRunHooks(t *testing.T) {
	afterEachCalled := false
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("excluded"))
	s := Suite{
		Name:      "suite",
		Cases:     []Case{{Name: "excluded", Action: func(*Context) {}}},
		AfterEach: func(Outcome, Logger) { afterEachCalled = true },
	}
	logger := &recordingTestLogger{}
	Run(filters.AsFilter, logger, func(c *Context) { c.RunSuite(s) })

	assert.False(t, afterEachCalled)
	assert.Contains(t, logger.events, "skipped suite/excluded")
}

func TestSuiteRunsWhenOnlyACaseMatchesFilter(t *testing.T) {
	var calls []string
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("test_0_open$"))
	s := Suite{
		Name:      "CalendarTest",
		BeforeAll: func(*Context) { calls = append(calls, "before-all") },
		Cases: []Case{
			{Name: "test_0_open", Action: func(*Context) { calls = append(calls, "test_0_open") }},
			{Name: "test_1_other", Action: func(*Context) { calls = append(calls, "test_1_other") }},
		},
		AfterAll: func(Logger) { calls = append(calls, "after-all") },
	}
	logger := &recordingTestLogger{}
	results := Run(filters.AsFilter, logger, func(c *Context) { c.RunSuite(s) })

	assert.True(t, results.OK())
	assert.Equal(t, []string{"before-all", "test_0_open", "after-all"}, calls)
	assert.Contains(t, logger.events, "finished CalendarTest failed=false")
	assert.Contains(t, logger.events, "skipped CalendarTest/test_1_other")
}

func TestSuiteWithEveryCaseFilteredOutSkipsSetup(t *testing.T) {
	var calls []string
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set(`CalendarTest\.test_0_open`))
	s := Suite{
		Name:      "CalendarTest",
		BeforeAll: func(*Context) { calls = append(calls, "before-all") },
		Cases:     []Case{{Name: "test_0_open", Action: func(*Context) { calls = append(calls, "test_0_open") }}},
		AfterEach: func(Outcome, Logger) { calls = append(calls, "after-each") },
		AfterAll:  func(Logger) { calls = append(calls, "after-all") },
	}
	logger := &recordingTestLogger{}
	var outcome Outcome
	results := Run(filters.AsFilter, logger, func(c *Context) { outcome = c.RunSuite(s) })

	assert.True(t, results.OK())
	assert.Empty(t, calls)
	assert.True(t, outcome.Skipped)
	assert.Equal(t, []string{
		"started CalendarTest",
		"started CalendarTest/test_0_open",
		"skipped CalendarTest/test_0_open",
		"skipped CalendarTest",
	}, logger.events)
	assert.Equal(t, excludedByFilter, logger.skipReasons["CalendarTest"])
}

func TestOutcomeSuccessful(t *testing.T) {
	assert.True(t, Outcome{}.Successful())
	assert.False(t, Outcome{Failed: true}.Successful())
	assert.False(t, Outcome{Skipped: true}.Successful())
}
