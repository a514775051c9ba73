package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork matches every error produced when no HTTP response was received.
	ErrNetwork = errors.New("network error")
	// ErrNilReader is returned by uploads started without a payload.
	ErrNilReader = errors.New("upload reader is nil")

	errNullBody = errors.New("response body is null")
)

// APIError is a request the server answered with a non-2xx status.
// Error returns the server's detail message when one was sent, otherwise
// a message synthesized for the operation.
type APIError struct {
	StatusCode int
	Message    string
	// FromServer is true when Message is the server's detail.
	FromServer bool
	RequestID  string
}

func (e *APIError) Error() string {
	return e.Message
}

// NetworkError is a request that never produced a response: connection
// refused or reset, DNS failure, a cancelled context, a truncated body.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return "Network error during " + e.Op
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response (status %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by an *APIError in err's chain,
// or 0 when there is none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// failure describes how an operation reports a rejected request.
type failure struct {
	// message is used when the body parses but carries no detail.
	message string
	// withStatus appends the status code when the body does not parse at all.
	withStatus bool
}

func (f failure) unparsed(status int) string {
	if f.withStatus {
		return fmt.Sprintf("%s with status %d", f.message, status)
	}
	return f.message
}

// newAPIError builds the error for a non-2xx response body.
func newAPIError(status int, body []byte, f failure) *APIError {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{StatusCode: status, Message: f.unparsed(status)}
	}
	if msg := detailMessage(env.Detail); msg != "" {
		return &APIError{StatusCode: status, Message: msg, FromServer: true}
	}
	return &APIError{StatusCode: status, Message: f.message}
}

// detailMessage flattens a detail value. Validation failures arrive as a
// list of {"loc": [...], "msg": "..."} objects.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if m := detailMessage(item); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}

	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		return obj.Message
	}
	return ""
}
