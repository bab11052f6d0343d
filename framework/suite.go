package framework

// Outcome is the result of a single test case, as seen by hooks that run after it.
type Outcome struct {
	ID      TestID
	Failed  bool
	Skipped bool
	Errors  []error
}

// Successful returns true if the test ran and did not fail.
func (o Outcome) Successful() bool {
	return !o.Failed && !o.Skipped
}

// AfterEachHook is called after every case of a Suite that was not skipped. It receives the
// case's outcome explicitly, and a logger whose output is attached to that case. It cannot
// change the outcome.
type AfterEachHook func(outcome Outcome, debugLogger Logger)

// Case is a single named test within a Suite.
type Case struct {
	Name   string
	Action func(*Context)
}

// Suite is a group of test cases sharing state that is set up once.
//
// BeforeAll runs in the suite's own context before any case. If it fails, none of the cases
// run and each of them is reported as failed; if it skips, each case is reported as skipped.
// AfterEach runs after each case that ran. AfterAll runs once at the end, whatever happened.
// Any hook may be nil.
type Suite struct {
	Name      string
	BeforeAll func(*Context)
	Cases     []Case
	AfterEach AfterEachHook
	AfterAll  func(debugLogger Logger)
}

// RunSuite runs all the cases of a suite as subtests of a new subtest named after the suite.
//
// The filter is applied to the cases: the suite runs if any of its cases is selected, even when
// the suite's own name would not be, and it does not run at all, hooks included, if none is.
// A suite with no cases is filtered by its own name.
func (c *Context) RunSuite(s Suite) Outcome {
	id := c.id.Plus(s.Name)
	c.env.testLogger.TestStarted(id)
	if !c.suiteSelected(id, s.Cases) {
		for _, tc := range s.Cases {
			caseID := id.Plus(tc.Name)
			c.env.testLogger.TestStarted(caseID)
			c.env.testLogger.TestSkipped(caseID, excludedByFilter)
		}
		c.env.testLogger.TestSkipped(id, excludedByFilter)
		return Outcome{ID: id, Skipped: true}
	}
	return c.runSelected(id, func(sc *Context) {
		if s.AfterAll != nil {
			defer sc.runHook("after-all", func() { s.AfterAll(&sc.debugLogger) })
		}
		if s.BeforeAll != nil {
			sc.run(s.BeforeAll)
		}
		switch {
		case sc.skipped:
			for _, tc := range s.Cases {
				sc.runCase(tc.Name, func(cc *Context) {
					cc.SkipWithReason(sc.skipReason)
				}, nil)
			}
			return
		case sc.failed:
			for _, tc := range s.Cases {
				sc.runCase(tc.Name, func(cc *Context) {
					cc.Errorf("not run because setup of %q failed", s.Name)
					cc.FailNow()
				}, nil)
			}
			return
		}
		for _, tc := range s.Cases {
			sc.runCase(tc.Name, tc.Action, s.AfterEach)
		}
	}, nil)
}

func (c *Context) suiteSelected(id TestID, cases []Case) bool {
	if len(cases) == 0 {
		return c.env.selected(id)
	}
	for _, tc := range cases {
		if c.env.selected(id.Plus(tc.Name)) {
			return true
		}
	}
	return false
}
