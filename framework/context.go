package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the state of a single test or subtest. It can be passed to the assert and require
// packages as if it were a *testing.T.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run starts a test run. The root context has an empty TestID; all tests should be created
// as subtests of it with Context.Run or Context.RunSuite.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	c.record()
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			c.recovered(r)
		}
	}()
	action(c)
}

func (c *Context) recovered(r interface{}) {
	if c.skipped {
		return
	}
	c.failed = true
	var addError error
	if _, ok := r.(*Context); ok {
		if len(c.errors) == 0 {
			addError = errors.New("test failed with no failure message")
		}
	} else {
		addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
	}
	if addError != nil {
		c.errors = append(c.errors, addError)
		c.env.testLogger.TestError(c.id, addError)
	}
}

func (c *Context) record() {
	result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
	c.env.results.Tests = append(c.env.results.Tests, result)
	if c.failed {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
}

func (c *Context) outcome() Outcome {
	return Outcome{
		ID:      c.id,
		Failed:  c.failed,
		Skipped: c.skipped,
		Errors:  append([]error(nil), c.errors...),
	}
}

// ID returns the identifier of this test.
func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest and returns its outcome.
func (c *Context) Run(name string, action func(*Context)) Outcome {
	return c.runCase(name, action, nil)
}

const excludedByFilter = "excluded by filter parameters"

func (e *environment) selected(id TestID) bool {
	return e.filter == nil || e.filter(id)
}

// runCase runs a subtest; if after is non-nil, it is called with the outcome once the subtest
// has finished but before the subtest is reported to the test logger.
func (c *Context) runCase(name string, action func(*Context), after AfterEachHook) Outcome {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if !c.env.selected(id) {
		c.env.testLogger.TestSkipped(id, excludedByFilter)
		return Outcome{ID: id, Skipped: true}
	}
	return c.runSelected(id, action, after)
}

func (c *Context) runSelected(id TestID, action func(*Context), after AfterEachHook) Outcome {
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	outcome := c1.outcome()
	if after != nil && !c1.skipped {
		c1.runHook("after-each", func() { after(outcome, &c1.debugLogger) })
	}
	c1.record()
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
	return outcome
}

// runHook calls a hook that must not affect the test result. A panic is logged as debug output.
func (c *Context) runHook(name string, hook func()) {
	defer func() {
		if r := recover(); r != nil {
			c.Debug("%s hook panicked: %+v", name, r)
		}
	}()
	hook()
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// FailNow causes the test to immediately exit. The methods in the require package call it.
func (c *Context) FailNow() {
	panic(c)
}

// Skip causes the test to immediately exit without being counted as a failure.
func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

// SkipWithReason is like Skip, and also tells the TestLogger why the test was skipped.
func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug adds a line to this test's captured debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger that writes to this test's captured debug output, for passing
// to code such as the webdriver client that logs on its own.
func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
