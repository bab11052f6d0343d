package webdriver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/kde/plasma-widget-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// The status query is made before any session exists, so a server that accepts the connection
// and never answers must not hang the run past the caller's timeout.
const minStatusAttemptTimeout = time.Millisecond * 50

// Session creation launches the application under test, and element lookups can block on the
// server side for the whole implicit wait, so requests get a generous timeout.
const defaultRequestTimeout = time.Minute * 2

const appiumVendorPrefix = "appium:"

// Capability names that the W3C protocol defines itself; everything else needs a vendor prefix
// when sent in the W3C form.
var standardCapabilities = map[string]bool{
	"acceptInsecureCerts":       true,
	"browserName":               true,
	"browserVersion":            true,
	"pageLoadStrategy":          true,
	"platformName":              true,
	"proxy":                     true,
	"setWindowRect":             true,
	"strictFileInteractability": true,
	"timeouts":                  true,
	"unhandledPromptBehavior":   true,
}

// ServerStatus is the information returned by the automation server's status resource.
type ServerStatus struct {
	Ready   bool
	Message string
}

type connection struct {
	baseURL    string
	httpClient *http.Client
	logger     framework.Logger
}

func newConnection(serverURL string, logger framework.Logger) *connection {
	return &connection{
		baseURL:    strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     framework.OrNullLogger(logger),
	}
}

// QueryStatus polls the server's status resource until it responds or the timeout expires.
// It writes progress dots to output, so that a slow server start is visible. No single attempt
// outlives the deadline, so a server that never answers also yields a timeout error.
func QueryStatus(serverURL string, timeout time.Duration, output io.Writer) (ServerStatus, error) {
	url := strings.TrimSuffix(serverURL, "/") + "/status"
	fmt.Fprintf(output, "Connecting to automation server at %s", serverURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		attemptTimeout := time.Until(deadline)
		if attemptTimeout < minStatusAttemptTimeout {
			attemptTimeout = minStatusAttemptTimeout
		}
		client := &http.Client{Timeout: attemptTimeout}
		resp, err := client.Get(url)
		if err == nil {
			fmt.Fprintln(output)
			data, err := ioutil.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return ServerStatus{}, err
			}
			if resp.StatusCode != 200 {
				return ServerStatus{}, fmt.Errorf("automation server returned status code %d", resp.StatusCode)
			}
			body := ldvalue.Parse(data)
			value := body.GetByKey("value")
			status := ServerStatus{
				Ready:   true,
				Message: value.GetByKey("message").StringValue(),
			}
			if ready := value.GetByKey("ready"); ready.IsBool() {
				status.Ready = ready.BoolValue()
			}
			fmt.Fprintf(output, "Status query returned: %s\n", string(data))
			return status, nil
		}
		if !time.Now().Before(deadline) {
			return ServerStatus{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

// NewSession asks the automation server to start a new session with the given capabilities,
// which must be a JSON object. The server launches the application as a side effect.
//
// The capabilities are sent both in the W3C form, with non-standard names given the "appium:"
// prefix, and in the legacy desiredCapabilities form, so that either kind of server accepts them.
//
// Once the session exists, everything the session logs is tagged with its ID.
func NewSession(serverURL string, capabilities ldvalue.Value, logger framework.Logger) (*Session, error) {
	if capabilities.Type() != ldvalue.ObjectType {
		return nil, errors.New("capabilities must be a JSON object")
	}
	conn := newConnection(serverURL, logger)

	alwaysMatch := ldvalue.ObjectBuild()
	for _, name := range capabilities.Keys() {
		w3cName := name
		if !standardCapabilities[name] && !strings.Contains(name, ":") {
			w3cName = appiumVendorPrefix + name
		}
		alwaysMatch = alwaysMatch.Set(w3cName, capabilities.GetByKey(name))
	}
	params := ldvalue.ObjectBuild().
		Set("capabilities", ldvalue.ObjectBuild().Set("alwaysMatch", alwaysMatch.Build()).Build()).
		Set("desiredCapabilities", capabilities).
		Build()

	conn.logger.Printf("Creating session with capabilities: %s", capabilities.JSONString())
	resp, err := conn.do("POST", "/session", params)
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	value := resp.GetByKey("value")
	id := value.GetByKey("sessionId").StringValue()
	if id == "" {
		id = resp.GetByKey("sessionId").StringValue()
	}
	if id == "" {
		return nil, fmt.Errorf("automation server did not return a session ID: %s", resp.JSONString())
	}
	conn.logger.Printf("Created session %s", id)
	conn.logger = framework.PrefixedLogger(conn.logger, "[session "+id+"] ")

	return &Session{
		conn:         conn,
		id:           id,
		Capabilities: value.GetByKey("capabilities"),
	}, nil
}

// do sends a command and returns the decoded response body. A nil params means no request body.
func (c *connection) do(method, path string, params interface{}) (ldvalue.Value, error) {
	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return ldvalue.Null(), err
		}
		c.logger.Printf("%s %s %s", method, path, string(data))
		body = bytes.NewBuffer(data)
	} else {
		c.logger.Printf("%s %s", method, path)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return ldvalue.Null(), err
	}
	if params != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ldvalue.Null(), err
	}
	data, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return ldvalue.Null(), err
	}

	decoded := ldvalue.Parse(data)
	if err := decodeError(resp.StatusCode, decoded); err != nil {
		c.logger.Printf("%s %s failed: %s", method, path, err)
		return ldvalue.Null(), err
	}
	return decoded, nil
}
