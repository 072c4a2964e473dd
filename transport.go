//
// Copyright 2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"slices"
	"syscall"
	"time"
)

// maxChunkSize is the largest chunk handed to Hooks.Body in one call.
const maxChunkSize = 16 * 1024

var errTimedOut = errors.New("transfer time limit reached")

// Hooks receives the response of a transfer while it's in flight.
// Both methods return how many bytes were accepted: anything less than
// the length of the input tells the Transport to abort the transfer.
type Hooks interface {
	// Header is called once for each raw header line, including the
	// trailing CRLF.
	Header(line []byte) int
	// Body is called for each chunk of the response body.
	Body(chunk []byte) int
}

// Request describes a single GET transfer.
type Request struct {
	URL    string
	Header http.Header
	// MaxFileSize aborts the transfer when the body is larger (0 = no limit).
	MaxFileSize int64
	// Timeout is the limit for the whole transfer (0 = no limit).
	Timeout time.Duration
	// InactivityTimeout aborts the transfer if no data is received
	// for the given duration (0 = no limit).
	InactivityTimeout time.Duration
	// FailOnError makes a non-2xx status code a failure.
	FailOnError bool
}

// Transport performs transfers on behalf of a Fetcher. Perform must not
// return before it stops calling hooks.
type Transport interface {
	Perform(ctx context.Context, req *Request, hooks Hooks) error
}

// httpTransport is the Transport backed by net/http.
type httpTransport struct {
	client *http.Client
}

// newHTTPTransport copies base and disables transparent decompression, so
// that byte counts refer to the payload as it comes from the wire.
func newHTTPTransport(base http.Client) *httpTransport {
	client := base
	client.Timeout = 0
	switch rt := client.Transport.(type) {
	case nil:
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.DisableCompression = true
		client.Transport = tr
	case *http.Transport:
		tr := rt.Clone()
		tr.DisableCompression = true
		client.Transport = tr
	}
	return &httpTransport{client: &client}
}

// Close releases the idle connections held by the transport.
func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// Perform implements Transport.
func (t *httpTransport) Perform(ctx context.Context, r *Request, hooks Hooks) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, r.Timeout, errTimedOut)
		defer cancel()
	}
	ctx, wd := newWatchdog(ctx, r.InactivityTimeout)
	defer wd.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return &TransportError{Code: CodeMalformedURL, Err: err}
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := t.client.Do(req)
	if err != nil {
		return classify(ctx, r, err)
	}
	defer resp.Body.Close()
	wd.Kick()

	if r.FailOnError && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &TransportError{
			Code: CodeHTTPReturnedError,
			Msg:  "The requested URL returned error: " + resp.Status,
		}
	}

	if err := deliverHeaders(resp, hooks); err != nil {
		return err
	}

	if r.MaxFileSize > 0 && resp.ContentLength > r.MaxFileSize {
		return &TransportError{Code: CodeFileSizeExceeded}
	}

	var total int64
	buf := make([]byte, maxChunkSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			wd.Kick()
			if hooks.Body(buf[:n]) != n {
				return &TransportError{Code: CodeWriteError, Msg: "Failure writing output to destination"}
			}
			total += int64(n)
			if r.MaxFileSize > 0 && total > r.MaxFileSize {
				return &TransportError{Code: CodeFileSizeExceeded}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return classify(ctx, r, err)
		}
	}
}

// deliverHeaders hands the status line, the header lines (sorted by key)
// and the terminating empty line to hooks.
func deliverHeaders(resp *http.Response, hooks Hooks) error {
	lines := []string{fmt.Sprintf("%s %s\r\n", resp.Proto, resp.Status)}
	for _, key := range slices.Sorted(maps.Keys(resp.Header)) {
		for _, value := range resp.Header[key] {
			lines = append(lines, key+": "+value+"\r\n")
		}
	}
	lines = append(lines, "\r\n")

	for _, line := range lines {
		if hooks.Header([]byte(line)) != len(line) {
			return &TransportError{Code: CodeWriteError, Msg: "Failed writing header"}
		}
	}
	return nil
}

func classify(ctx context.Context, r *Request, err error) error {
	switch cause := context.Cause(ctx); {
	case errors.Is(cause, errTimedOut):
		return &TransportError{
			Code: CodeOperationTimedOut,
			Msg:  fmt.Sprintf("Operation timed out after %s", r.Timeout),
		}
	case errors.Is(cause, errStalled):
		return &TransportError{
			Code: CodeOperationTimedOut,
			Msg:  fmt.Sprintf("No data received for %s", r.InactivityTimeout),
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Code: CodeResolveHost, Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &TransportError{Code: CodeCouldntConnect, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Code: CodeOperationTimedOut, Err: err}
	}
	return &TransportError{Code: CodeFailed, Err: err}
}
