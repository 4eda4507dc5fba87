package model

import (
	"context"
	"errors"
	"fmt"
)

// Code classifies an Error so callers can pick the right message.
type Code int

const (
	CodeValidation Code = iota + 1
	CodeCrossModeMisuse
	CodeMalformedURL
	CodeNetworkUnavailable
	CodeNotFound
	CodeRateLimited
	CodeServerError
	CodeUnexpectedStatus
	CodeInvalidEnvelope
	CodeExpiredData
	CodeMalformedData
)

var codeNames = map[Code]string{
	CodeValidation:         "validation",
	CodeCrossModeMisuse:    "cross_mode_misuse",
	CodeMalformedURL:       "malformed_url",
	CodeNetworkUnavailable: "network_unavailable",
	CodeNotFound:           "not_found",
	CodeRateLimited:        "rate_limited",
	CodeServerError:        "server_error",
	CodeUnexpectedStatus:   "unexpected_status",
	CodeInvalidEnvelope:    "invalid_envelope",
	CodeExpiredData:        "expired_data",
	CodeMalformedData:      "malformed_data",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a user-recoverable failure with a title and message fit for display.
type Error struct {
	Code       Code
	Title      string
	Message    string
	Status     int
	Identifier string
	// Expected is the query kind the input belongs to, set for cross-mode misuse.
	Expected Kind
	Err      error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Title
	}
	return e.Title + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// CodeName returns the name logged for err: its Code, "canceled" for a
// context error, or "error".
func CodeName(err error) string {
	if e, ok := AsError(err); ok {
		return e.Code.String()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "error"
}

// Describe returns a title and message for any error.
func Describe(err error) (title, message string) {
	if err == nil {
		return "", ""
	}
	if e, ok := AsError(err); ok {
		return e.Title, e.Message
	}
	return "Something went wrong", err.Error()
}

// Validation reports bad input syntax. No I/O has been attempted.
func Validation(title, message string) *Error {
	return &Error{Code: CodeValidation, Title: title, Message: message}
}

// CrossModeMisuse reports valid input submitted to the wrong search mode.
func CrossModeMisuse(expected Kind) *Error {
	e := &Error{Code: CodeCrossModeMisuse, Title: "Invalid Input", Expected: expected}
	switch expected {
	case KindProject:
		e.Message = "You're trying to search for a project in Account Analytics. Please switch to Project Analytics or use an account name only."
	default:
		e.Message = "You're trying to search for an account in Project Analytics. Please provide both owner and project name, or switch to Account Analytics."
	}
	return e
}

// MalformedURL reports a URL that does not point at an account or project.
func MalformedURL(host string) *Error {
	return &Error{
		Code:    CodeMalformedURL,
		Title:   "Invalid URL",
		Message: fmt.Sprintf("Please enter a valid URL (e.g., https://%[1]s/account or https://%[1]s/owner/project).", host),
	}
}

// NetworkUnavailable reports a transport failure.
func NetworkUnavailable(err error) *Error {
	return &Error{
		Code:    CodeNetworkUnavailable,
		Title:   "Connection Failed",
		Message: "Unable to connect to the server. Please check your internet connection.",
		Err:     err,
	}
}

// NotFound reports a 404 for the given identifier.
func NotFound(kind Kind, identifier string) *Error {
	title := "Account Not Found"
	noun := "Account"
	if kind == KindProject {
		title = "Project Not Found"
		noun = "Project"
	}
	return &Error{
		Code:       CodeNotFound,
		Title:      title,
		Message:    fmt.Sprintf("%s '%s' not found.", noun, identifier),
		Status:     404,
		Identifier: identifier,
	}
}

// RateLimited reports a 403 from the backend.
func RateLimited() *Error {
	return &Error{
		Code:    CodeRateLimited,
		Title:   "Rate Limit Exceeded",
		Message: "API rate limit exceeded. Please try again later.",
		Status:  403,
	}
}

// ServerError reports a 5xx status.
func ServerError(status int) *Error {
	return &Error{
		Code:    CodeServerError,
		Title:   "Server Error",
		Message: fmt.Sprintf("Server error (%d). Please try again later.", status),
		Status:  status,
	}
}

// UnexpectedStatus reports any other non-2xx status.
func UnexpectedStatus(status int) *Error {
	return &Error{
		Code:    CodeUnexpectedStatus,
		Title:   "Request Failed",
		Message: fmt.Sprintf("Error fetching analytics (%d).", status),
		Status:  status,
	}
}

// InvalidEnvelope reports a 2xx response without success and data.
func InvalidEnvelope(message string) *Error {
	if message == "" {
		message = "Invalid response format"
	}
	return &Error{Code: CodeInvalidEnvelope, Title: "Invalid Response", Message: message}
}

// ExpiredData reports a stored record older than RecordTTL.
func ExpiredData() *Error {
	return &Error{
		Code:    CodeExpiredData,
		Title:   "Data Expired",
		Message: "Analytics data has expired. Please search again.",
	}
}

// MalformedData reports a stored record that cannot be decoded.
func MalformedData(err error) *Error {
	return &Error{
		Code:    CodeMalformedData,
		Title:   "Invalid Data",
		Message: "Invalid analytics data format.",
		Err:     err,
	}
}
