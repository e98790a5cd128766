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

	plog "github.com/pingcap/log"
	"go.uber.org/zap"

	"callbench/target"
)

const roundChanMinBufSize = 64

// benchTask pairs a target instance with the invocation shape to measure.
type benchTask struct {
	spec TargetSpec
	tgt  target.Target
	args []target.Arg
}

// executeBenchWorkers starts the measurement workers. Each worker pulls
// tasks from taskCh, runs one autorange round per task, and reports the
// round on roundCh until ctx is done.
func (app *BenchApp) executeBenchWorkers(ctx context.Context, taskCh <-chan benchTask, roundCh chan<- RoundResult, wg *sync.WaitGroup) {
	workerCount := app.Config.Thread
	if workerCount <= 0 {
		workerCount = 1
	}

	wg.Add(workerCount)
	for workerID := 0; workerID < workerCount; workerID++ {
		go func(workerID int) {
			defer func() {
				plog.Info("bench worker exited", zap.Int("worker", workerID))
				wg.Done()
			}()

			plog.Info("start bench worker", zap.Int("worker", workerID))

			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-taskCh:
					if !ok {
						return
					}
					round := app.runRound(task)
					select {
					case roundCh <- round:
					case <-ctx.Done():
						return
					}
				}
			}
		}(workerID)
	}
}

// runRound measures one autorange round of the task's target.
func (app *BenchApp) runRound(task benchTask) RoundResult {
	calls, elapsed := autoRange(app.Scenario.MinSample(), func(batch int) time.Duration {
		start := time.Now()
		for i := 0; i < batch; i++ {
			res := task.tgt.Invoke(task.spec.Size, task.args...)
			if len(res.Beta) != target.FixedBetaLen || res.A0 != 0 {
				app.Stats.ErrorCount.Add(1)
			}
		}
		return time.Since(start)
	})
	return RoundResult{Spec: task.spec, Calls: calls, Elapsed: elapsed}
}

// genBenchTasks emits Rounds tasks per target spec, then closes the
// channel.
func (app *BenchApp) genBenchTasks(ctx context.Context, tasks []benchTask, output chan<- benchTask) {
	defer close(output)
	for i := 0; i < app.Scenario.Rounds; i++ {
		for _, task := range tasks {
			select {
			case output <- task:
			case <-ctx.Done():
				return
			}
		}
	}
}

// buildBenchTasks resolves the scenario's target specs into runnable
// tasks.
func (app *BenchApp) buildBenchTasks() ([]benchTask, error) {
	tasks := make([]benchTask, 0, len(app.Scenario.Targets))
	for _, spec := range app.Scenario.Targets {
		tgt, err := target.New(spec.Name)
		if err != nil {
			return nil, err
		}
		args := make([]target.Arg, 0, len(spec.Args))
		for _, a := range spec.Args {
			args = append(args, target.Arg{Name: a.Name, Value: a.Value})
		}
		tasks = append(tasks, benchTask{spec: spec, tgt: tgt, args: args})
	}
	return tasks, nil
}

// collectRounds drains roundCh into the stats and the result sink until
// the channel closes.
func (app *BenchApp) collectRounds(ctx context.Context, roundCh <-chan RoundResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for round := range roundCh {
		app.Stats.Record(round)
		if app.Sink != nil {
			if err := app.Sink.InsertRound(ctx, round); err != nil {
				app.Stats.ErrorCount.Add(1)
				plog.Info("insert round result failed",
					zap.String("target", round.Spec.String()),
					zap.Error(err))
			}
		}
	}
}
