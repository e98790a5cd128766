// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"time"
)

// autoRangeMaxCalls bounds the batch growth so a pathological clock cannot
// spin the loop forever.
const autoRangeMaxCalls = 1_000_000_000

// autoRange finds a batch size large enough for a trustworthy mean.
// It runs batches of 1, 2, 5, 10, 20, 50, ... calls until one batch takes
// at least minSampleTime, then returns that batch's call count and elapsed
// time. The mean per-call cost is elapsed/calls; a sub-nanosecond call
// would otherwise be lost in timer resolution.
func autoRange(minSampleTime time.Duration, runBatch func(calls int) time.Duration) (int, time.Duration) {
	for pow := 1; ; pow *= 10 {
		for _, mult := range []int{1, 2, 5} {
			calls := mult * pow
			elapsed := runBatch(calls)
			if elapsed >= minSampleTime || calls >= autoRangeMaxCalls {
				return calls, elapsed
			}
		}
	}
}
