//
// Copyright 2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyBytes is returned when the server sends more body bytes than
	// the configured maximum size.
	ErrTooManyBytes = errors.New("fetcher: server returned too many bytes")

	// ErrUnexpectedContentType matches any *ContentTypeError.
	ErrUnexpectedContentType = errors.New("fetcher: unexpected content type")

	// ErrBusy is returned when a Fetcher is already running a transfer.
	ErrBusy = errors.New("fetcher: a transfer is already in progress")

	// ErrClosed is returned by a Fetcher after Close.
	ErrClosed = errors.New("fetcher: closed")

	// ErrInvalidArgument is returned for negative size or time limits.
	ErrInvalidArgument = errors.New("fetcher: invalid argument")
)

// SinkWriteError is returned when the output sink rejects a write.
type SinkWriteError struct {
	Err error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("fetcher: error writing to stream: %s", e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// ContentTypeError is returned when the server declares a Content-Type
// different from the expected one.
type ContentTypeError struct {
	Got  string
	Want string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("fetcher: server returned an unexpected mimetype of %s instead of %s", e.Got, e.Want)
}

func (e *ContentTypeError) Is(target error) bool {
	return target == ErrUnexpectedContentType
}

// Code classifies a TransportError.
type Code int

// Transport failure codes
const (
	CodeFailed Code = iota
	CodeMalformedURL
	CodeResolveHost
	CodeCouldntConnect
	CodeHTTPReturnedError
	CodeOperationTimedOut
	CodeFileSizeExceeded
	CodeWriteError
	CodeAbortedByCallback
)

func (c Code) String() string {
	switch c {
	case CodeMalformedURL:
		return "URL using bad/illegal format"
	case CodeResolveHost:
		return "Couldn't resolve host name"
	case CodeCouldntConnect:
		return "Couldn't connect to server"
	case CodeHTTPReturnedError:
		return "HTTP response code said error"
	case CodeOperationTimedOut:
		return "Timeout was reached"
	case CodeFileSizeExceeded:
		return "Maximum file size exceeded"
	case CodeWriteError:
		return "Failed writing received data to disk/application"
	case CodeAbortedByCallback:
		return "Operation was aborted by an application callback"
	default:
		return "Failed"
	}
}

// TransportError is returned when the transport fails for a reason that
// no hook recorded. Msg carries the transport diagnostic.
type TransportError struct {
	Code Code
	Msg  string
	Err  error
}

func (e *TransportError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("Download failed: %s: %s", msg, e.Err)
	}
	return "Download failed: " + msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports a transport size limit failure as ErrTooManyBytes, so callers
// don't need to care which of the two limits fired first.
func (e *TransportError) Is(target error) bool {
	return target == ErrTooManyBytes && e.Code == CodeFileSizeExceeded
}
