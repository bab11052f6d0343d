package webdriver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/ioutil"
	"sync"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Keys under which servers return an element reference. The first is the W3C form, the second
// is the JSON Wire Protocol form that older Appium drivers still use.
const (
	w3cElementKey    = "element-6066-11e4-a52e-4f735466cecf"
	legacyElementKey = "ELEMENT"
)

// Locator is a strategy for finding elements.
type Locator string

const (
	ByName            Locator = "name"
	ByAccessibilityID Locator = "accessibility id"
)

// Session is a live connection to an automation server controlling one application instance.
// A Session is not safe for concurrent use.
type Session struct {
	// Capabilities are the capabilities the server reported when the session was created.
	Capabilities ldvalue.Value

	conn      *connection
	id        string
	closeOnce sync.Once
	closeErr  error
}

// Element is a reference to a UI element found in the application's accessibility tree.
type Element struct {
	ID string
}

type timeoutsParams struct {
	Implicit ldvalue.OptionalInt `json:"implicit"`
}

type findElementParams struct {
	Using Locator `json:"using"`
	Value string  `json:"value"`
}

// ID returns the session ID assigned by the server.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) path(suffix string) string {
	return "/session/" + s.id + suffix
}

// SetImplicitWait sets how long the server keeps retrying element lookups before it reports
// that an element does not exist. The polling itself happens on the server.
func (s *Session) SetImplicitWait(d time.Duration) error {
	params := timeoutsParams{Implicit: ldvalue.NewOptionalInt(int(d / time.Millisecond))}
	if _, err := s.conn.do("POST", s.path("/timeouts"), params); err != nil {
		return fmt.Errorf("could not set implicit wait: %w", err)
	}
	return nil
}

// FindElement looks up a single element. If none matches once the implicit wait has elapsed,
// the returned error satisfies IsNoSuchElement.
func (s *Session) FindElement(by Locator, value string) (Element, error) {
	resp, err := s.conn.do("POST", s.path("/element"), findElementParams{Using: by, Value: value})
	if err != nil {
		return Element{}, fmt.Errorf("could not find element with %s %q: %w", by, value, err)
	}
	ref := resp.GetByKey("value")
	id := ref.GetByKey(w3cElementKey).StringValue()
	if id == "" {
		id = ref.GetByKey(legacyElementKey).StringValue()
	}
	if id == "" {
		return Element{}, fmt.Errorf("malformed element reference for %s %q: %s", by, value, ref.JSONString())
	}
	return Element{ID: id}, nil
}

// FindElementByName looks up an element by its accessible name.
func (s *Session) FindElementByName(name string) (Element, error) {
	return s.FindElement(ByName, name)
}

// Screenshot returns a PNG image of the application's current state.
func (s *Session) Screenshot() ([]byte, error) {
	resp, err := s.conn.do("GET", s.path("/screenshot"), nil)
	if err != nil {
		return nil, fmt.Errorf("could not take screenshot: %w", err)
	}
	encoded := resp.GetByKey("value")
	if !encoded.IsString() {
		return nil, errors.New("screenshot response did not contain image data")
	}
	data, err := base64.StdEncoding.DecodeString(encoded.StringValue())
	if err != nil {
		return nil, fmt.Errorf("screenshot data was not valid base64: %w", err)
	}
	return data, nil
}

// SaveScreenshot takes a screenshot and writes it to the specified file.
func (s *Session) SaveScreenshot(path string) error {
	data, err := s.Screenshot()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not save screenshot: %w", err)
	}
	s.conn.logger.Printf("Saved screenshot to %s", path)
	return nil
}

// Close ends the session; the server then stops the application. Calling Close more than
// once has no further effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if _, err := s.conn.do("DELETE", s.path(""), nil); err != nil {
			s.closeErr = fmt.Errorf("could not delete session: %w", err)
		}
	})
	return s.closeErr
}
