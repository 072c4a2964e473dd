//
// Copyright 2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchdogExpires(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 50*time.Millisecond)
	defer wd.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("watchdog did not expire")
	}
	require.ErrorIs(t, context.Cause(ctx), errStalled)
}

func TestWatchdogKick(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 200*time.Millisecond)
	defer wd.Stop()

	for i := 0; i < 5; i++ {
		time.Sleep(50 * time.Millisecond)
		wd.Kick()
	}
	require.NoError(t, ctx.Err())
}

func TestWatchdogDisabled(t *testing.T) {
	ctx, wd := newWatchdog(context.Background(), 0)
	wd.Kick()
	require.NoError(t, ctx.Err())
	wd.Stop()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
	require.ErrorIs(t, context.Cause(ctx), context.Canceled)
}
