// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/bookstored/fault"
)

// Limit - limiting for a single request
func Limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.ErrRateLimiting
	}
	time.Sleep(r.Delay())
	return nil
}

// LimitContext - limiting for a single request that gives up when the
// context ends rather than sleeping through the delay
func LimitContext(ctx context.Context, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); nil != err {
		return fault.ErrRateLimiting
	}
	return nil
}
