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

// callbench measures the mean per-call overhead of invoking callable
// targets, empty_run being the canonical near-zero-cost one.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	plog "github.com/pingcap/log"
	"go.uber.org/zap"

	"callbench/target"
)

func parseFlags() *BenchConfig {
	cfg := &BenchConfig{}

	flag.StringVar(&cfg.Targets, "targets", target.EmptyRunName,
		fmt.Sprintf("comma-separated target specs (name or name:size); built-ins: %s",
			strings.Join(target.Names(), ", ")))
	flag.IntVar(&cfg.Thread, "thread", 1, "number of measurement workers")
	flag.DurationVar(&cfg.Duration, "duration", 0, "overall time limit, 0 means run all rounds")
	flag.IntVar(&cfg.Rounds, "rounds", 10, "autorange rounds per target")
	flag.StringVar(&cfg.ScenarioPath, "scenario", "", "path to a .toml scenario config, overrides -targets and -rounds")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	flag.StringVar(&cfg.DBHost, "result-db-host", "", "result sink mysql host, empty disables the sink")
	flag.IntVar(&cfg.DBPort, "result-db-port", 4000, "result sink mysql port")
	flag.StringVar(&cfg.DBUser, "result-db-user", "root", "result sink mysql user")
	flag.StringVar(&cfg.DBPassword, "result-db-password", "", "result sink mysql password")
	flag.StringVar(&cfg.DBName, "result-db-name", "test", "result sink mysql database")

	flag.Parse()
	return cfg
}

func initLogger(level string) error {
	logger, props, err := plog.InitLogger(&plog.Config{Level: level})
	if err != nil {
		return err
	}
	plog.ReplaceGlobals(logger, props)
	return nil
}

func main() {
	cfg := parseFlags()

	if err := initLogger(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}

	app, err := NewBenchApp(cfg)
	if err != nil {
		plog.Error("init benchmark failed", zap.Error(err))
		os.Exit(1)
	}

	start := time.Now()
	if err := app.Execute(); err != nil {
		plog.Error("benchmark failed", zap.Error(err))
		os.Exit(1)
	}
	plog.Info("exit", zap.Duration("totalElapsed", time.Since(start)))
}
