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
	"context"
	"time"

	plog "github.com/pingcap/log"
	"go.uber.org/zap"
)

const reportInterval = 5 * time.Second

// startReportLoop periodically logs throughput and the running mean
// per-call cost. The returned channel stops the loop when closed.
func (app *BenchApp) startReportLoop(ctx context.Context) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(reportInterval)
		defer ticker.Stop()

		var lastCalls uint64
		lastTime := time.Now()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				calls := app.Stats.CallCount.Load()
				elapsed := now.Sub(lastTime).Seconds()
				callsPerSec := float64(calls-lastCalls) / elapsed
				lastCalls = calls
				lastTime = now

				summary := app.Stats.Summarize()
				plog.Info("benchmark progress",
					zap.Uint64("rounds", app.Stats.RoundCount.Load()),
					zap.Uint64("calls", calls),
					zap.Float64("callsPerSec", callsPerSec),
					zap.Duration("meanPerCall", time.Duration(summary.Mean)),
					zap.Uint64("errors", app.Stats.ErrorCount.Load()))
			}
		}
	}()

	return done
}
