//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"errors"
	"time"
)

// errStalled is the cancel cause set by the watchdog when no data arrives
// for longer than the inactivity timeout.
var errStalled = errors.New("no data received within the inactivity timeout")

// watchdog cancels its context when it's not kicked for longer than timeout.
// A zero timeout disables it, the context is then only cancelled by Stop
// or by the parent.
type watchdog struct {
	cancel  context.CancelCauseFunc
	timer   *time.Timer
	timeout time.Duration
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	wd := &watchdog{cancel: cancel, timeout: timeout}
	if timeout > 0 {
		wd.timer = time.AfterFunc(timeout, func() {
			cancel(errStalled)
		})
	}
	return ctx, wd
}

// Kick postpones the expiration by another timeout.
func (wd *watchdog) Kick() {
	if wd.timer != nil {
		wd.timer.Reset(wd.timeout)
	}
}

// Stop disarms the timer and releases the context.
func (wd *watchdog) Stop() {
	if wd.timer != nil {
		wd.timer.Stop()
	}
	wd.cancel(nil)
}
