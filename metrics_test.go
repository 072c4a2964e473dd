//
// Copyright 2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{ErrTooManyBytes, OutcomeTooManyBytes},
		{&TransportError{Code: CodeFileSizeExceeded}, OutcomeTooManyBytes},
		{&ContentTypeError{Got: "a", Want: "b"}, OutcomeUnexpectedContentType},
		{&SinkWriteError{Err: errDiskFull}, OutcomeSinkWriteFailure},
		{&TransportError{Code: CodeOperationTimedOut}, OutcomeTransportFailure},
		{errors.New("other"), OutcomeTransportFailure},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.err), func(t *testing.T) {
			require.Equal(t, test.want, Outcome(test.err))
		})
	}
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCollector(reg)

	ok := New(Config{
		Metrics:   metrics,
		Transport: &scriptedTransport{chunks: [][]byte{make([]byte, 2048)}},
	})
	require.NoError(t, ok.Fetch(io.Discard, "http://example/", "", 0, 0))
	require.NoError(t, ok.Fetch(io.Discard, "http://example/", "", 0, 0))
	require.ErrorIs(t, ok.Fetch(io.Discard, "http://example/", "", 1024, 0), ErrTooManyBytes)

	failing := New(Config{
		Metrics:   metrics,
		Transport: &scriptedTransport{err: &TransportError{Code: CodeResolveHost}},
	})
	require.Error(t, failing.Fetch(io.Discard, "http://example/", "", 0, 0))

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.fetchesTotal.WithLabelValues(OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.fetchesTotal.WithLabelValues(OutcomeTooManyBytes)))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.fetchesTotal.WithLabelValues(OutcomeTransportFailure)))
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.inProgress))
	require.Equal(t, 3, testutil.CollectAndCount(metrics.fetchesTotal))
}

func TestCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	require.Panics(t, func() { NewCollector(reg) })
}
