package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockStep is one canned reply for outgoing HTTP calls.
type MockStep struct {
	// Method matches the request method; empty matches any.
	Method string
	// MatchURL is a prefix of the full request URL; empty matches any.
	MatchURL   string
	StatusCode int
	Body       string
	Header     http.Header
}

// RecordedRequest is an outgoing request seen by MockTransport.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockTransport is an http.RoundTripper answering from MockSteps. Install it
// on pkg/http.DefaultClient:
//
//	mt := testkit.NewMockTransport(steps...)
//	http.DefaultClient.Transport = mt
//	defer http.ResetTransport()
type MockTransport struct {
	mu       sync.Mutex
	steps    []httpMockEntry
	requests []RecordedRequest
}

type httpMockEntry struct {
	step      MockStep
	callCount int
}

func NewMockTransport(steps ...MockStep) *MockTransport {
	mt := &MockTransport{}
	for _, s := range steps {
		mt.steps = append(mt.steps, httpMockEntry{step: s})
	}
	return mt
}

// RoundTrip returns the first matching step's reply. Unmatched requests get
// an error, which surfaces as a transport failure.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.requests = append(mt.requests, RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	for i := range mt.steps {
		e := &mt.steps[i]
		if e.step.Method != "" && !strings.EqualFold(e.step.Method, req.Method) {
			continue
		}
		if !strings.HasPrefix(req.URL.String(), e.step.MatchURL) {
			continue
		}
		e.callCount++
		return buildHTTPResponse(req, e.step), nil
	}

	return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s %s", req.Method, req.URL)
}

// Requests returns every request seen so far.
func (mt *MockTransport) Requests() []RecordedRequest {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]RecordedRequest(nil), mt.requests...)
}

// AssertAllCalled returns one error per step that was never matched.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if e.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock step %s %q was never called", e.step.Method, e.step.MatchURL))
		}
	}
	return errs
}

func buildHTTPResponse(req *http.Request, s MockStep) *http.Response {
	code := s.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	for k, v := range s.Header {
		header[k] = append([]string(nil), v...)
	}

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(s.Body))),
		Request:    req,
	}
}
