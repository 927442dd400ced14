// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter delegates to an underlying writer for a fixed number of
// calls, then starts failing.
type LimitedWriter struct {
	remaining int
	failed    int
	w         io.Writer
}

func NewLimitedWriter(remaining, failed int, w io.Writer) LimitedWriter {
	return LimitedWriter{remaining: remaining, failed: failed, w: w}
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.remaining <= 0 {
		l.failed++
		return 0, errors.New("write limit reached")
	}
	l.remaining--
	return l.w.Write(p)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
