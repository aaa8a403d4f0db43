package httpjson

import (
	"fmt"
	"unicode/utf8"
)

// snippetLimit caps how much of an unexpected body is quoted in errors.
const snippetLimit = 200

// RequestError is a transport failure: the backend never answered.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// DecodeError is a response whose body is not JSON.
type DecodeError struct {
	Method  string
	URL     string
	Status  int
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("non-JSON response: %s %s status=%d body=%s", e.Method, e.URL, e.Status, e.Snippet)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(method, url string, status int, body []byte, err error) error {
	return &DecodeError{
		Method:  method,
		URL:     url,
		Status:  status,
		Snippet: snippet(body),
		Err:     err,
	}
}

// snippet returns at most snippetLimit bytes of body without splitting a
// UTF-8 sequence.
func snippet(body []byte) string {
	if len(body) <= snippetLimit {
		return string(body)
	}
	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut])
}
