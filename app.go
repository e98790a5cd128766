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
	"sync"
	"time"

	"github.com/pingcap/errors"
	plog "github.com/pingcap/log"
	"go.uber.org/zap"
)

// BenchApp aggregates the driver's configuration, scenario, stats and
// optional result sink.
type BenchApp struct {
	Config   *BenchConfig
	Scenario *ScenarioConfig
	Stats    *BenchStats
	Sink     *ResultSink
}

func NewBenchApp(cfg *BenchConfig) (*BenchApp, error) {
	app := &BenchApp{
		Config: cfg,
		Stats:  &BenchStats{},
	}

	if cfg.ScenarioPath != "" {
		scenario, err := LoadScenarioConfig(cfg.ScenarioPath)
		if err != nil {
			return nil, err
		}
		app.Scenario = scenario
	} else {
		specs, err := ParseTargetList(cfg.Targets)
		if err != nil {
			return nil, err
		}
		app.Scenario = &ScenarioConfig{Rounds: cfg.Rounds, Targets: specs}
		app.Scenario.normalize()
		if err := app.Scenario.validate(); err != nil {
			return nil, err
		}
	}

	sink, err := NewResultSink(cfg)
	if err != nil {
		return nil, err
	}
	app.Sink = sink

	return app, nil
}

// Execute runs the whole benchmark: workers, round collection, periodic
// reporting, and the final summary.
func (app *BenchApp) Execute() error {
	tasks, err := app.buildBenchTasks()
	if err != nil {
		return errors.Trace(err)
	}

	ctx := context.Background()
	if app.Config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.Config.Duration)
		defer cancel()
	}

	if app.Sink != nil {
		defer app.Sink.Close()
		if err := app.Sink.EnsureTable(ctx); err != nil {
			return err
		}
	}

	plog.Info("start benchmark",
		zap.Int("targets", len(tasks)),
		zap.Int("rounds", app.Scenario.Rounds),
		zap.Int("thread", app.Config.Thread),
		zap.Duration("minSampleTime", app.Scenario.MinSample()))

	bufSize := app.Config.Thread * 2
	if bufSize < roundChanMinBufSize {
		bufSize = roundChanMinBufSize
	}
	taskCh := make(chan benchTask, bufSize)
	roundCh := make(chan RoundResult, bufSize)

	var workerWg sync.WaitGroup
	app.executeBenchWorkers(ctx, taskCh, roundCh, &workerWg)

	// Rounds finished right at the deadline still get persisted.
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go app.collectRounds(context.Background(), roundCh, &collectWg)

	reportDone := app.startReportLoop(ctx)

	app.genBenchTasks(ctx, tasks, taskCh)
	workerWg.Wait()
	close(roundCh)
	collectWg.Wait()
	close(reportDone)

	app.logSummary()
	return nil
}

func (app *BenchApp) logSummary() {
	summary := app.Stats.Summarize()
	plog.Info("benchmark finished",
		zap.Int("rounds", summary.Rounds),
		zap.Uint64("calls", app.Stats.CallCount.Load()),
		zap.Uint64("errors", app.Stats.ErrorCount.Load()),
		zap.Duration("minPerCall", time.Duration(summary.Min)),
		zap.Duration("meanPerCall", time.Duration(summary.Mean)),
		zap.Duration("p50PerCall", time.Duration(summary.P50)),
		zap.Duration("p99PerCall", time.Duration(summary.P99)))
}
