//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config contains the configuration for the Fetcher
type Config struct {
	// HttpClient to use to perform HTTP requests. Its Timeout is ignored,
	// time limits are given on each Fetch call. Transparent decompression
	// is always disabled.
	HttpClient http.Client
	// Transport replaces the net/http based transport built from HttpClient.
	// It's closed by Fetcher.Close if it implements io.Closer.
	Transport Transport
	// ExtraHeaders to add to the HTTP requests.
	ExtraHeaders map[string]string
	// DoNotErrorOnNon2xxStatusCode set to true to not return an error
	// if the server returns a non-2xx status code.
	DoNotErrorOnNon2xxStatusCode bool
	// InactivityTimeout is the duration after which, if no data is received,
	// the transfer is aborted. If set to 0, no timeout is applied.
	InactivityTimeout time.Duration
	// Progress, if not nil, is called after every chunk written to the sink
	// with the bytes written so far and the declared size (-1 if unknown).
	Progress func(current, total int64)
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Tracer defaults to the tracer of the global otel TracerProvider.
	Tracer trace.Tracer
	// Metrics, if not nil, records the outcome of every transfer.
	Metrics *Collector
}

var defaultConfig Config = Config{}
var defaultConfigLock sync.Mutex

// SetDefaultConfig sets the configuration that will be used by the Fetch
// function.
func SetDefaultConfig(newConfig Config) {
	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()
	defaultConfig = newConfig
}

// GetDefaultConfig returns a copy of the default configuration. The default
// configuration can be changed using the SetDefaultConfig function.
func GetDefaultConfig() Config {
	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()
	return defaultConfig
}
