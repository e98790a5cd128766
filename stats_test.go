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
	"sync"
	"testing"
	"time"
)

func TestStatsSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		stats := &BenchStats{}
		summary := stats.Summarize()
		if summary.Rounds != 0 || summary.Mean != 0 {
			t.Fatalf("expected zero summary, got %+v", summary)
		}
	})

	t.Run("aggregates", func(t *testing.T) {
		stats := &BenchStats{}
		// Per-call costs of 10ns, 20ns, 30ns, 40ns.
		for i := 1; i <= 4; i++ {
			stats.Record(RoundResult{
				Spec:    TargetSpec{Name: "empty_run"},
				Calls:   100,
				Elapsed: time.Duration(i) * 1000 * time.Nanosecond,
			})
		}

		summary := stats.Summarize()
		if summary.Rounds != 4 {
			t.Fatalf("expected 4 rounds, got %d", summary.Rounds)
		}
		if summary.Min != 10 {
			t.Fatalf("expected min 10ns, got %v", summary.Min)
		}
		if summary.Mean != 25 {
			t.Fatalf("expected mean 25ns, got %v", summary.Mean)
		}
		if summary.P50 != 20 {
			t.Fatalf("expected p50 20ns, got %v", summary.P50)
		}
		if summary.P99 != 40 {
			t.Fatalf("expected p99 40ns, got %v", summary.P99)
		}
		if got := stats.CallCount.Load(); got != 400 {
			t.Fatalf("expected 400 calls, got %d", got)
		}
	})

	t.Run("zero calls ignored", func(t *testing.T) {
		stats := &BenchStats{}
		stats.Record(RoundResult{Calls: 0, Elapsed: time.Second})
		if stats.RoundCount.Load() != 0 {
			t.Fatalf("expected round with zero calls to be dropped")
		}
	})

	t.Run("concurrent record", func(t *testing.T) {
		stats := &BenchStats{}
		var wg sync.WaitGroup
		wg.Add(8)
		for i := 0; i < 8; i++ {
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					stats.Record(RoundResult{Calls: 10, Elapsed: time.Microsecond})
				}
			}()
		}
		wg.Wait()

		if got := stats.RoundCount.Load(); got != 800 {
			t.Fatalf("expected 800 rounds, got %d", got)
		}
		if got := stats.Summarize().Rounds; got != 800 {
			t.Fatalf("expected 800 samples, got %d", got)
		}
	})
}

func TestRoundResultPerCall(t *testing.T) {
	t.Parallel()

	round := RoundResult{Calls: 1000, Elapsed: time.Millisecond}
	if got := round.PerCall(); got != time.Microsecond {
		t.Fatalf("expected 1µs per call, got %v", got)
	}

	empty := RoundResult{}
	if got := empty.PerCall(); got != 0 {
		t.Fatalf("expected 0 for empty round, got %v", got)
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	cases := []struct {
		p    int
		want float64
	}{
		{50, 5},
		{99, 10},
		{100, 10},
		{1, 1},
	}
	for _, c := range cases {
		if got := percentile(sorted, c.p); got != c.want {
			t.Fatalf("p%d: expected %v, got %v", c.p, c.want, got)
		}
	}

	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}
