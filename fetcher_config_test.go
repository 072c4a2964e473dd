//
// Copyright 2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	old := GetDefaultConfig()
	defer SetDefaultConfig(old)

	SetDefaultConfig(Config{
		InactivityTimeout: time.Second,
		ExtraHeaders:      map[string]string{"User-Agent": "test"},
	})
	cfg := GetDefaultConfig()
	require.Equal(t, time.Second, cfg.InactivityTimeout)
	require.Equal(t, "test", cfg.ExtraHeaders["User-Agent"])
}

func TestNewDisablesDecompression(t *testing.T) {
	f := New(Config{HttpClient: http.Client{Timeout: time.Second}})
	tr, ok := f.transport.(*httpTransport)
	require.True(t, ok)
	require.Zero(t, tr.client.Timeout)

	rt, ok := tr.client.Transport.(*http.Transport)
	require.True(t, ok)
	require.True(t, rt.DisableCompression)
	require.False(t, http.DefaultTransport.(*http.Transport).DisableCompression)
}
