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
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// BenchStats aggregates counters and per-round overhead samples across all
// workers.
type BenchStats struct {
	CallCount  atomic.Uint64
	RoundCount atomic.Uint64
	ErrorCount atomic.Uint64

	mu      sync.Mutex
	samples []float64 // nanoseconds per call, one entry per round
}

// RoundResult is one autorange measurement of a single target spec.
type RoundResult struct {
	Spec    TargetSpec
	Calls   int
	Elapsed time.Duration
}

// PerCall returns the mean per-call cost of the round.
func (r RoundResult) PerCall() time.Duration {
	if r.Calls <= 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Calls)
}

func (s *BenchStats) Record(r RoundResult) {
	if r.Calls <= 0 {
		return
	}
	s.CallCount.Add(uint64(r.Calls))
	s.RoundCount.Add(1)

	perCall := float64(r.Elapsed.Nanoseconds()) / float64(r.Calls)
	s.mu.Lock()
	s.samples = append(s.samples, perCall)
	s.mu.Unlock()
}

// Summary is the aggregate of all recorded rounds, in nanoseconds per call.
type Summary struct {
	Rounds int
	Min    float64
	Mean   float64
	P50    float64
	P99    float64
}

func (s *BenchStats) Summarize() Summary {
	s.mu.Lock()
	samples := make([]float64, len(s.samples))
	copy(samples, s.samples)
	s.mu.Unlock()

	if len(samples) == 0 {
		return Summary{}
	}

	sort.Float64s(samples)
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	return Summary{
		Rounds: len(samples),
		Min:    samples[0],
		Mean:   sum / float64(len(samples)),
		P50:    percentile(samples, 50),
		P99:    percentile(samples, 99),
	}
}

// percentile expects sorted input and uses nearest-rank selection.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
