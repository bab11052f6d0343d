package webdriver

import (
	"errors"
	"fmt"
	"net/http"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Error codes defined by the W3C WebDriver specification that this client cares about.
const (
	ErrorCodeNoSuchElement     = "no such element"
	ErrorCodeInvalidSessionID  = "invalid session id"
	ErrorCodeSessionNotCreated = "session not created"
	ErrorCodeTimeout           = "timeout"
	ErrorCodeUnknownCommand    = "unknown command"
	ErrorCodeUnknownError      = "unknown error"
)

// Older servers speak the JSON Wire Protocol, which reports errors as numeric statuses.
var legacyStatusCodes = map[int]string{
	6:  ErrorCodeInvalidSessionID,
	7:  ErrorCodeNoSuchElement,
	9:  ErrorCodeUnknownCommand,
	13: ErrorCodeUnknownError,
	21: ErrorCodeTimeout,
	33: ErrorCodeSessionNotCreated,
}

// Error is an error reported by the automation server.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("webdriver: %s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("webdriver: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNoSuchElement returns true if err is, or wraps, an Error saying that an element lookup
// found nothing.
func IsNoSuchElement(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrorCodeNoSuchElement
}

// decodeError returns an *Error if the response represents a failure, or nil otherwise.
func decodeError(statusCode int, body ldvalue.Value) error {
	value := body.GetByKey("value")
	if code := value.GetByKey("error"); code.IsString() {
		return &Error{
			StatusCode: statusCode,
			Code:       code.StringValue(),
			Message:    value.GetByKey("message").StringValue(),
		}
	}
	if status := body.GetByKey("status"); status.IsInt() && status.IntValue() != 0 {
		code, ok := legacyStatusCodes[status.IntValue()]
		if !ok {
			code = ErrorCodeUnknownError
		}
		return &Error{
			StatusCode: statusCode,
			Code:       code,
			Message:    value.GetByKey("message").StringValue(),
		}
	}
	if statusCode >= 300 {
		return &Error{
			StatusCode: statusCode,
			Code:       ErrorCodeUnknownError,
			Message:    http.StatusText(statusCode),
		}
	}
	return nil
}
