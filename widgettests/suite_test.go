package widgettests

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kde/plasma-widget-tests/framework"
	"github.com/kde/plasma-widget-tests/webdriver"
	"github.com/kde/plasma-widget-tests/webdriver/webdrivertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expectedScreenshot = "failed_test_shot_org.kde.plasma.calendar_#CalendarTest.test_0_open.png"

type stubSession struct {
	missing         map[string]bool
	screenshotErr   error
	calls           []string
	implicitWaits   []time.Duration
	screenshotPaths []string
	closed          int
}

func (s *stubSession) SetImplicitWait(d time.Duration) error {
	s.calls = append(s.calls, "implicit-wait")
	s.implicitWaits = append(s.implicitWaits, d)
	return nil
}

func (s *stubSession) FindElementByName(name string) (webdriver.Element, error) {
	s.calls = append(s.calls, "find "+name)
	if s.missing[name] {
		return webdriver.Element{}, &webdriver.Error{StatusCode: 404, Code: webdriver.ErrorCodeNoSuchElement}
	}
	return webdriver.Element{ID: "id-" + name}, nil
}

func (s *stubSession) SaveScreenshot(path string) error {
	s.calls = append(s.calls, "screenshot")
	s.screenshotPaths = append(s.screenshotPaths, path)
	return s.screenshotErr
}

func (s *stubSession) Close() error {
	s.closed++
	return nil
}

func runWithStub(session *stubSession, params SuiteParams) (framework.Results, []Capabilities) {
	var opened []Capabilities
	open := func(caps Capabilities, _ framework.Logger) (Session, error) {
		opened = append(opened, caps)
		return session, nil
	}
	return RunTestSuite(open, params, nil, nil), opened
}

func TestWidgetOpensWhenAllElementsArePresent(t *testing.T) {
	session := &stubSession{}
	results, opened := runWithStub(session, SuiteParams{})

	assert.True(t, results.OK())
	require.Len(t, opened, 1)
	assert.Equal(t, DefaultCapabilities(), opened[0])
	assert.Equal(t, []string{
		"implicit-wait",
		"find Today", "find Days", "find Months", "find Years",
	}, session.calls)
	assert.Equal(t, []time.Duration{10 * time.Second}, session.implicitWaits)
	assert.Equal(t, 1, session.closed)
}

func TestMissingElementFailsTestAndTakesScreenshot(t *testing.T) {
	session := &stubSession{missing: map[string]bool{"Months": true}}
	results, _ := runWithStub(session, SuiteParams{})

	require.Len(t, results.Failures, 1)
	failure := results.Failures[0]
	assert.Equal(t, "CalendarTest/test_0_open", failure.TestID.String())
	require.NotEmpty(t, failure.Errors)
	assert.Contains(t, failure.Errors[0].Error(), "Months")

	assert.Equal(t, []string{
		"implicit-wait",
		"find Today", "find Days", "find Months",
		"screenshot",
	}, session.calls)
	assert.Equal(t, []string{expectedScreenshot}, session.screenshotPaths)
	assert.Equal(t, 1, session.closed)
}

func TestScreenshotIsSavedInScreenshotDir(t *testing.T) {
	session := &stubSession{missing: map[string]bool{"Today": true}}
	runWithStub(session, SuiteParams{ScreenshotDir: "/tmp/shots"})

	assert.Equal(t, []string{filepath.Join("/tmp/shots", expectedScreenshot)}, session.screenshotPaths)
}

func TestScreenshotFailureIsNotReported(t *testing.T) {
	session := &stubSession{
		missing:       map[string]bool{"Years": true},
		screenshotErr: errors.New("could not grab window"),
	}
	results, _ := runWithStub(session, SuiteParams{})

	require.Len(t, results.Failures, 1)
	assert.Len(t, results.Failures[0].Errors, 1)
	assert.Len(t, session.screenshotPaths, 1)
}

func TestSessionFailureErrorsTheTestWithoutLookups(t *testing.T) {
	open := func(Capabilities, framework.Logger) (Session, error) {
		return nil, errors.New("connection refused")
	}
	results := RunTestSuite(open, SuiteParams{}, nil, nil)

	var failed []string
	for _, f := range results.Failures {
		failed = append(failed, f.TestID.String())
	}
	assert.ElementsMatch(t, []string{"CalendarTest", "CalendarTest/test_0_open"}, failed)
}

func TestCustomCapabilitiesAreUsed(t *testing.T) {
	caps := WidgetCapabilities("org.kde.plasma.digitalclock")
	session := &stubSession{}
	_, opened := runWithStub(session, SuiteParams{Capabilities: &caps})

	require.Len(t, opened, 1)
	assert.Equal(t, "plasmawindowed -p org.kde.plasma.nano org.kde.plasma.digitalclock", opened[0].LaunchCommand)
}

func TestScreenshotFileName(t *testing.T) {
	id := framework.TestID{Path: []string{"CalendarTest", "test_0_open"}}
	assert.Equal(t, expectedScreenshot, ScreenshotFileName(id))
}

func TestSuiteAgainstFakeServer(t *testing.T) {
	server := webdrivertest.NewServer()
	defer server.Close()
	server.SetMissingElements("Months")

	dir, err := ioutil.TempDir("", "widgettests")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	results := RunTestSuite(RemoteSessionOpener(server.URL()), SuiteParams{ScreenshotDir: dir}, nil, nil)

	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "Months")

	data, err := ioutil.ReadFile(filepath.Join(dir, expectedScreenshot))
	require.NoError(t, err)
	assert.Equal(t, webdrivertest.FakePNG, data)

	timeouts := server.RequestsTo("POST", "/timeouts")
	require.Len(t, timeouts, 1)
	assert.Equal(t, float64(10000), timeouts[0].Body["implicit"])

	var looked []interface{}
	for _, r := range server.RequestsTo("POST", "/element") {
		looked = append(looked, r.Body["value"])
	}
	assert.Equal(t, []interface{}{"Today", "Days", "Months"}, looked)
	assert.True(t, server.SessionDeleted())
}
