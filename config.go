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
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"

	"callbench/target"
)

const defaultMinSampleTime = 200 * time.Millisecond

// BenchConfig carries the flag-level configuration of the driver.
type BenchConfig struct {
	Targets      string
	Thread       int
	Duration     time.Duration
	Rounds       int
	ScenarioPath string
	LogLevel     string

	// Result sink; disabled when DBHost is empty.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
}

// ScenarioConfig is the optional TOML scenario file. It overrides the
// target list given on the command line.
type ScenarioConfig struct {
	MinSampleTime string       `toml:"min_sample_time"`
	Rounds        int          `toml:"rounds"`
	Targets       []TargetSpec `toml:"targets"`

	minSampleTime time.Duration
}

// TargetSpec names one target invocation shape: which target, the size
// argument to pass, and any extra named arguments to pass through. The
// extra arguments are accepted and discarded by every built-in target.
type TargetSpec struct {
	Name string    `toml:"name"`
	Size float64   `toml:"size"`
	Args []ArgSpec `toml:"args"`
}

type ArgSpec struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

func LoadScenarioConfig(path string) (*ScenarioConfig, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("scenario config path is empty")
	}
	if filepath.Ext(path) != ".toml" {
		return nil, errors.Errorf("scenario config must be a .toml file: %s", path)
	}

	var cfg ScenarioConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Annotate(err, "decode scenario config failed")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown keys in scenario config: %v", undecoded)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ScenarioConfig) normalize() {
	// Trim and drop empty target entries.
	targets := make([]TargetSpec, 0, len(c.Targets))
	for _, spec := range c.Targets {
		spec.Name = strings.ToLower(strings.TrimSpace(spec.Name))
		if spec.Name != "" {
			targets = append(targets, spec)
		}
	}
	c.Targets = targets

	if len(c.Targets) == 0 {
		c.Targets = []TargetSpec{{Name: target.EmptyRunName}}
	}
	if c.Rounds <= 0 {
		c.Rounds = 1
	}
}

func (c *ScenarioConfig) validate() error {
	if strings.TrimSpace(c.MinSampleTime) == "" {
		c.minSampleTime = defaultMinSampleTime
	} else {
		d, err := time.ParseDuration(c.MinSampleTime)
		if err != nil {
			return errors.Annotatef(err, "invalid min_sample_time: %s", c.MinSampleTime)
		}
		if d <= 0 {
			return errors.Errorf("min_sample_time must be > 0: %s", c.MinSampleTime)
		}
		c.minSampleTime = d
	}

	for _, spec := range c.Targets {
		if _, err := target.New(spec.Name); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// MinSample returns the normalized minimum sample time.
func (c *ScenarioConfig) MinSample() time.Duration {
	if c.minSampleTime <= 0 {
		return defaultMinSampleTime
	}
	return c.minSampleTime
}

// ParseTargetSpec parses a command-line target entry of the form "name" or
// "name:size", e.g. "empty_run:5" or "spin:100000".
func ParseTargetSpec(raw string) (TargetSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TargetSpec{}, errors.New("target spec is empty")
	}

	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 1:
		name := strings.ToLower(strings.TrimSpace(parts[0]))
		if name == "" {
			return TargetSpec{}, errors.Errorf("invalid target spec: %s", raw)
		}
		return TargetSpec{Name: name}, nil
	case 2:
		name := strings.ToLower(strings.TrimSpace(parts[0]))
		sizeStr := strings.TrimSpace(parts[1])
		if name == "" || sizeStr == "" {
			return TargetSpec{}, errors.Errorf("invalid target spec: %s", raw)
		}
		size, err := strconv.ParseFloat(sizeStr, 64)
		if err != nil {
			return TargetSpec{}, errors.Annotatef(err, "invalid size in target spec: %s", raw)
		}
		return TargetSpec{Name: name, Size: size}, nil
	default:
		return TargetSpec{}, errors.Errorf("invalid target spec: %s", raw)
	}
}

// ParseTargetList parses a comma-separated list of target specs,
// deduplicating repeated entries.
func ParseTargetList(raw string) ([]TargetSpec, error) {
	seen := make(map[string]struct{})
	var out []TargetSpec
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		spec, err := ParseTargetSpec(item)
		if err != nil {
			return nil, err
		}
		key := spec.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, spec)
	}
	if len(out) == 0 {
		return nil, errors.New("no targets given")
	}
	return out, nil
}

func (s TargetSpec) String() string {
	return fmt.Sprintf("%s:%g", s.Name, s.Size)
}
