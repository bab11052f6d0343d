// Package webdrivertest provides an in-process fake automation server for testing code that
// uses the webdriver package.
package webdrivertest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
)

// DefaultSessionID is the session ID that a new Server assigns.
const DefaultSessionID = "fake-session"

// FakePNG is the screenshot data that a new Server returns.
var FakePNG = []byte("\x89PNG\r\n\x1a\nfake")

// Server is a fake automation server. It accepts a single session, finds any element whose
// name has not been declared missing, and records every request it receives.
type Server struct {
	SessionID string

	httpServer      *httptest.Server
	requests        []Request
	missing         map[string]bool
	screenshot      []byte
	screenshotFails bool
	sessionFails    bool
	deleted         bool
	lock            sync.Mutex
}

// Request is a request received by the Server.
type Request struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// NewServer starts a Server. The caller must call Close.
func NewServer() *Server {
	s := &Server{
		SessionID:  DefaultSessionID,
		missing:    make(map[string]bool),
		screenshot: FakePNG,
	}
	mux := http.NewServeMux()
	mux.Handle("/status", httphelpers.HandlerWithJSONResponse(
		map[string]interface{}{"value": map[string]interface{}{"ready": true, "message": "fake server ready"}},
		nil,
	))
	mux.HandleFunc("/session", s.serveNewSession)
	mux.HandleFunc("/session/", s.serveSessionCommand)
	s.httpServer = httptest.NewServer(s.recording(mux))
	return s
}

// recording wraps a handler so that every request is appended to s.requests. The body is
// buffered and put back, since the command handlers need to decode it too.
func (s *Server) recording(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{Method: r.Method, Path: r.URL.Path}
		if r.Body != nil {
			data, err := ioutil.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "invalid argument", err.Error())
				return
			}
			if len(data) > 0 {
				_ = json.Unmarshal(data, &req.Body)
			}
			r.Body = ioutil.NopCloser(bytes.NewReader(data))
		}
		s.lock.Lock()
		s.requests = append(s.requests, req)
		s.lock.Unlock()
		handler.ServeHTTP(w, r)
	})
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts down the server.
func (s *Server) Close() {
	s.httpServer.Close()
}

// SetMissingElements makes element lookups for the given names fail with "no such element".
func (s *Server) SetMissingElements(names ...string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, n := range names {
		s.missing[n] = true
	}
}

// FailScreenshots makes screenshot requests fail with an "unknown error".
func (s *Server) FailScreenshots() {
	s.lock.Lock()
	s.screenshotFails = true
	s.lock.Unlock()
}

// FailSessionCreation makes new session requests fail with "session not created".
func (s *Server) FailSessionCreation() {
	s.lock.Lock()
	s.sessionFails = true
	s.lock.Unlock()
}

// SessionDeleted returns true if the client deleted its session.
func (s *Server) SessionDeleted() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.deleted
}

// Requests returns all requests received so far, in order.
func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests received for the given session command, such as "/element";
// an empty suffix selects requests for the session resource itself.
func (s *Server) RequestsTo(method, suffix string) []Request {
	var ret []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == "/session/"+s.SessionID+suffix {
			ret = append(ret, r)
		}
	}
	return ret
}

func (s *Server) serveNewSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, r, http.StatusMethodNotAllowed, "unknown method", r.Method)
		return
	}
	s.lock.Lock()
	fails := s.sessionFails
	s.lock.Unlock()
	if fails {
		writeError(w, r, http.StatusInternalServerError, "session not created", "could not launch application")
		return
	}
	writeValue(w, r, map[string]interface{}{
		"sessionId":    s.SessionID,
		"capabilities": map[string]interface{}{"platformName": "linux"},
	})
}

func (s *Server) serveSessionCommand(w http.ResponseWriter, r *http.Request) {
	prefix := "/session/" + s.SessionID
	if r.URL.Path != prefix && !strings.HasPrefix(r.URL.Path, prefix+"/") {
		writeError(w, r, http.StatusNotFound, "invalid session id", "no session with that ID")
		return
	}
	command := strings.TrimPrefix(r.URL.Path, prefix)

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.deleted {
		writeError(w, r, http.StatusNotFound, "invalid session id", "session was deleted")
		return
	}

	switch {
	case command == "" && r.Method == "DELETE":
		s.deleted = true
		writeValue(w, r, nil)
	case command == "/timeouts" && r.Method == "POST":
		writeValue(w, r, nil)
	case command == "/element" && r.Method == "POST":
		var params struct {
			Using string `json:"using"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid argument", err.Error())
			return
		}
		if s.missing[params.Value] {
			writeError(w, r, http.StatusNotFound, "no such element",
				"An element could not be located on the page using the given search parameters")
			return
		}
		writeValue(w, r, map[string]interface{}{
			"element-6066-11e4-a52e-4f735466cecf": "element-" + params.Value,
		})
	case command == "/screenshot" && r.Method == "GET":
		if s.screenshotFails {
			writeError(w, r, http.StatusInternalServerError, "unknown error", "could not grab window")
			return
		}
		writeValue(w, r, base64.StdEncoding.EncodeToString(s.screenshot))
	default:
		writeError(w, r, http.StatusNotFound, "unknown command", r.Method+" "+command)
	}
}

func writeValue(w http.ResponseWriter, r *http.Request, value interface{}) {
	httphelpers.HandlerWithJSONResponse(map[string]interface{}{"value": value}, nil).ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"value": map[string]interface{}{"error": code, "message": message, "stacktrace": ""},
	})
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	httphelpers.HandlerWithResponse(status, headers, data).ServeHTTP(w, r)
}
