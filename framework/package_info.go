// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of UI tests.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Assertions from testify's assert and require packages can be
// used with it directly.
//
// 2. Tests that share expensive state, such as a remote automation session, are grouped
// into a Suite. A suite has a before-all hook, an after-each hook that is given the
// Outcome of the case explicitly, and an after-all hook.
//
// 3. Each test has its own captured debug log, which the TestLogger can choose to print
// when the test finishes.
//
// The domain-specific code that knows what is being tested is responsible for opening
// sessions against the system under test and for the test cases themselves.
package framework
