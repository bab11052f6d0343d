package widgettests

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kde/plasma-widget-tests/framework"
	"github.com/kde/plasma-widget-tests/webdriver"

	"github.com/stretchr/testify/require"
)

// DefaultServerURL is where an Appium server listens by default.
const DefaultServerURL = "http://127.0.0.1:4723"

// ImplicitWait is how long the automation server keeps retrying an element lookup.
const ImplicitWait = 10 * time.Second

const screenshotPrefix = "failed_test_shot_"

// Session is the part of a webdriver.Session that the tests use.
type Session interface {
	SetImplicitWait(d time.Duration) error
	FindElementByName(name string) (webdriver.Element, error)
	SaveScreenshot(path string) error
	Close() error
}

// SessionOpener opens a Session that launches the application described by the capabilities.
type SessionOpener func(caps Capabilities, debugLogger framework.Logger) (Session, error)

// RemoteSessionOpener returns a SessionOpener that connects to an automation server.
func RemoteSessionOpener(serverURL string) SessionOpener {
	return func(caps Capabilities, debugLogger framework.Logger) (Session, error) {
		session, err := webdriver.NewSession(serverURL, caps.AsValue(), debugLogger)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// SuiteParams configures a widget test suite.
type SuiteParams struct {
	// Capabilities describe how to launch the widget. DefaultCapabilities is used if this is nil.
	Capabilities *Capabilities
	// ScreenshotDir is where screenshots of failed tests are saved; the current directory if empty.
	ScreenshotDir string
}

// T is the state shared by the cases of the calendar suite. The session is opened once, before
// the first case, and is not reopened between cases.
type T struct {
	open    SessionOpener
	params  SuiteParams
	session Session
}

// RunTestSuite runs the calendar widget tests.
func RunTestSuite(
	open SessionOpener,
	params SuiteParams,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		c.RunSuite(NewCalendarSuite(open, params))
	})
}

// NewCalendarSuite returns the calendar widget suite without running it.
func NewCalendarSuite(open SessionOpener, params SuiteParams) framework.Suite {
	t := &T{open: open, params: params}
	return framework.Suite{
		Name:      "CalendarTest",
		BeforeAll: t.setUp,
		Cases: []framework.Case{
			{Name: "test_0_open", Action: t.DoWidgetOpensTest},
		},
		AfterEach: t.screenshotOnFailure,
		AfterAll:  t.tearDown,
	}
}

func (t *T) setUp(c *framework.Context) {
	caps := DefaultCapabilities()
	if t.params.Capabilities != nil {
		caps = *t.params.Capabilities
	}
	session, err := t.open(caps, c.DebugLogger())
	require.NoError(c, err, "could not open a session for %s", caps.LaunchCommand)
	t.session = session
	require.NoError(c, t.session.SetImplicitWait(ImplicitWait))
}

// screenshotOnFailure saves a screenshot if a case did not succeed. A failure to take the
// screenshot is only logged, so that it cannot hide the failure that triggered it.
func (t *T) screenshotOnFailure(outcome framework.Outcome, debugLogger framework.Logger) {
	if outcome.Successful() || t.session == nil {
		return
	}
	path := filepath.Join(t.params.ScreenshotDir, ScreenshotFileName(outcome.ID))
	if err := t.session.SaveScreenshot(path); err != nil {
		debugLogger.Printf("Could not save screenshot of failed test: %s", err)
		return
	}
	debugLogger.Printf("Saved screenshot of failed test to %s", path)
}

func (t *T) tearDown(debugLogger framework.Logger) {
	if t.session == nil {
		return
	}
	if err := t.session.Close(); err != nil {
		debugLogger.Printf("Could not close session: %s", err)
	}
}

// ScreenshotFileName returns the name of the screenshot saved when the specified test fails.
func ScreenshotFileName(id framework.TestID) string {
	return fmt.Sprintf("%s%s_#%s.png", screenshotPrefix, WidgetID, id.Dotted())
}
