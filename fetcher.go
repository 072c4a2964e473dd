//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "go.bug.st/fetcher"

// Fetcher performs bounded transfers. It owns one Transport that is reused
// for every call. A Fetcher runs one transfer at a time: use one Fetcher per
// goroutine to download concurrently.
type Fetcher struct {
	transport         Transport
	extraHeaders      http.Header
	failOnError       bool
	inactivityTimeout time.Duration
	progress          func(current, total int64)
	logger            *zap.Logger
	tracer            trace.Tracer
	metrics           *Collector

	busy   sync.Mutex
	closed bool
}

// New returns a Fetcher configured with config.
func New(config Config) *Fetcher {
	transport := config.Transport
	if transport == nil {
		transport = newHTTPTransport(config.HttpClient)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	headers := http.Header{}
	for k, v := range config.ExtraHeaders {
		headers.Set(k, v)
	}
	return &Fetcher{
		transport:         transport,
		extraHeaders:      headers,
		failOnError:       !config.DoNotErrorOnNon2xxStatusCode,
		inactivityTimeout: config.InactivityTimeout,
		progress:          config.Progress,
		logger:            logger,
		tracer:            tracer,
		metrics:           config.Metrics,
	}
}

// Close releases the transport. It must not be called while a transfer is
// running.
func (f *Fetcher) Close() error {
	if !f.busy.TryLock() {
		return ErrBusy
	}
	defer f.busy.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if closer, ok := f.transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing transport: %w", err)
		}
	}
	return nil
}

// Fetch downloads uri into sink and waits until the transfer completes.
//
// If contentType is not empty the Content-Type declared by the server must
// be exactly contentType. If maxSize is greater than 0 the transfer fails
// as soon as the body grows past maxSize bytes. If timeout is greater than 0
// the whole transfer must complete within timeout.
//
// sink is never closed. It may have received part of the body when an
// error is returned.
func (f *Fetcher) Fetch(sink io.Writer, uri string, contentType string, maxSize int64, timeout time.Duration) error {
	return f.FetchWithContext(context.Background(), sink, uri, contentType, maxSize, timeout)
}

// FetchWithContext is like Fetch but the transfer is also aborted when ctx
// is done.
func (f *Fetcher) FetchWithContext(ctx context.Context, sink io.Writer, uri string, contentType string, maxSize int64, timeout time.Duration) error {
	if maxSize < 0 {
		return fmt.Errorf("%w: negative max size %d", ErrInvalidArgument, maxSize)
	}
	if timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidArgument, timeout)
	}
	if !f.busy.TryLock() {
		return ErrBusy
	}
	defer f.busy.Unlock()
	if f.closed {
		return ErrClosed
	}

	id := uuid.NewString()
	logger := f.logger.With(zap.String("transfer", id), zap.String("url", uri))
	ctx, span := f.tracer.Start(ctx, "fetcher.Fetch", trace.WithAttributes(
		attribute.String("fetcher.transfer_id", id),
		attribute.String("url.full", uri),
		attribute.String("fetcher.content_type", contentType),
		attribute.Int64("fetcher.max_size", maxSize),
	))
	defer span.End()

	state := newTransferState(sink, contentType, maxSize, f.progress)
	req := &Request{
		URL:               uri,
		Header:            f.extraHeaders.Clone(),
		MaxFileSize:       maxSize,
		Timeout:           timeout,
		InactivityTimeout: f.inactivityTimeout,
		FailOnError:       f.failOnError,
	}

	logger.Debug("Starting transfer",
		zap.String("content_type", contentType),
		zap.Int64("max_size", maxSize),
		zap.Duration("timeout", timeout))
	start := time.Now()
	f.metrics.start()

	err := f.transport.Perform(ctx, req, state)

	// A fault recorded by a hook is more specific than whatever error the
	// transport reported after being told to stop.
	if state.fault != nil {
		err = state.fault
	}

	elapsed := time.Since(start)
	f.metrics.finish(err, state.written, elapsed)
	span.SetAttributes(attribute.Int64("fetcher.bytes_written", state.written))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		logger.Warn("Transfer failed",
			zap.String("outcome", Outcome(err)),
			zap.Int64("written", state.written),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return err
	}
	logger.Debug("Transfer completed",
		zap.Int64("written", state.written),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Fetch downloads uri into sink using the default configuration.
// See (*Fetcher).Fetch for the meaning of the parameters.
func Fetch(sink io.Writer, uri string, contentType string, maxSize int64, timeout time.Duration) error {
	return FetchWithConfig(sink, uri, contentType, maxSize, timeout, GetDefaultConfig())
}

// FetchWithConfig downloads uri into sink using a Fetcher created from
// config, the Fetcher is closed before returning.
func FetchWithConfig(sink io.Writer, uri string, contentType string, maxSize int64, timeout time.Duration, config Config) error {
	f := New(config)
	defer f.Close()
	return f.Fetch(sink, uri, contentType, maxSize, timeout)
}
