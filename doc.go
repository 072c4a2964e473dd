//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package fetcher downloads a single HTTP resource into an io.Writer,
// enforcing a maximum body size, a time limit and the expected
// Content-Type while the transfer is in flight.
//
// Response decompression is never enabled: size limits are checked against
// the bytes sent by the server.
package fetcher
