//
// Copyright 2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

const (
	contentTypeHeader   = "Content-Type: "
	contentLengthHeader = "Content-Length: "
)

// transferState holds the state of a single transfer while it is in
// progress. It is created by the Fetcher for each call and handed to the
// Transport as its Hooks.
type transferState struct {
	sink          io.Writer
	maxSize       int64
	received      int64
	written       int64
	contentType   string
	contentLength int64
	progress      func(current, total int64)
	fault         error
}

func newTransferState(sink io.Writer, contentType string, maxSize int64, progress func(current, total int64)) *transferState {
	return &transferState{
		sink:          sink,
		maxSize:       maxSize,
		contentType:   contentType,
		contentLength: -1,
		progress:      progress,
	}
}

// fail records err unless a fault was already recorded.
func (t *transferState) fail(err error) {
	if t.fault == nil {
		t.fault = err
	}
}

// Body implements Hooks.
func (t *transferState) Body(chunk []byte) (accepted int) {
	if t.fault != nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			t.fail(&SinkWriteError{Err: fmt.Errorf("panic: %v", r)})
			accepted = 0
		}
	}()

	if len(chunk) == 0 {
		return 0
	}

	// Content-Length may be missing or wrong, count what really arrives.
	t.received += int64(len(chunk))
	if t.maxSize > 0 && t.received > t.maxSize {
		t.fail(ErrTooManyBytes)
		return 0
	}

	n, err := t.sink.Write(chunk)
	if n > 0 {
		t.written += int64(n)
	}
	if err == nil && n != len(chunk) {
		err = io.ErrShortWrite
	}
	if err != nil {
		t.fail(&SinkWriteError{Err: err})
		return 0
	}

	if t.progress != nil {
		t.progress(t.written, t.contentLength)
	}
	return len(chunk)
}

// Header implements Hooks.
func (t *transferState) Header(line []byte) (accepted int) {
	if t.fault != nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			t.fail(&TransportError{Code: CodeAbortedByCallback, Msg: fmt.Sprintf("header callback panic: %v", r)})
			accepted = 0
		}
	}()

	if bytes.HasPrefix(line, []byte(contentLengthHeader)) {
		value := strings.TrimSpace(string(line[len(contentLengthHeader):]))
		if size, err := strconv.ParseInt(value, 10, 64); err == nil {
			t.contentLength = size
		}
	}

	if t.contentType != "" && bytes.HasPrefix(line, []byte(contentTypeHeader)) {
		value := strings.TrimRightFunc(string(line[len(contentTypeHeader):]), unicode.IsSpace)
		if value != t.contentType {
			t.fail(&ContentTypeError{Got: value, Want: t.contentType})
			return 0
		}
	}
	return len(line)
}
