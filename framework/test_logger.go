package framework

// TestLogger receives progress events for each test and suite in a run. The console
// implementation lives in the main package; a nil TestLogger passed to Run reports nothing.
type TestLogger interface {
	// TestStarted is called before a test's filter check, so it is also called for tests
	// that are then skipped.
	TestStarted(id TestID)
	// TestError is called for each failed assertion or unexpected panic, as it happens.
	TestError(id TestID, err error)
	// TestFinished is called once the test and its after-each hook have run. debugOutput
	// includes anything the hook logged, such as where a failure screenshot was saved.
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	// TestSkipped is called instead of TestFinished when a test was skipped or filtered out.
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (nullTestLogger) TestStarted(TestID)                        {}
func (nullTestLogger) TestError(TestID, error)                   {}
func (nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (nullTestLogger) TestSkipped(TestID, string)                {}
