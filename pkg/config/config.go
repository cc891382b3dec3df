/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config holds the benchmark arguments and loads them from flags, environment variables
// and an optional YAML file.
package config

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/multierr"

	"github.com/numaproj/dynograph/pkg/dserr"
)

// SortMode controls how a batch is preprocessed before it is handed to the engine.
type SortMode string

const (
	// Unsorted hands out the window-filtered batch as is
	Unsorted SortMode = "unsorted"
	// Presort sorts and deduplicates each batch
	Presort SortMode = "presort"
	// Snapshot makes each batch the deduplicated cumulative set of all edges so far
	Snapshot SortMode = "snapshot"
)

// SortModes lists the valid sort modes.
var SortModes = []SortMode{Unsorted, Presort, Snapshot}

func (m SortMode) String() string {
	return string(m)
}

// ParseSortMode parses a sort mode name.
func ParseSortMode(s string) (SortMode, error) {
	for _, m := range SortModes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", dserr.New(dserr.InvalidArgument, "sort-mode must be one of ['unsorted', 'presort', 'snapshot'], got %q", s)
}

// Defaults
const (
	DefaultWindowSize = 1.0
	DefaultNumTrials  = 1
	DefaultEngine     = "memgraph"
	DefaultRmatSeed   = 0x5eed
)

// Args are the benchmark arguments.
type Args struct {
	// Number of epochs (algorithm passes) in the benchmark
	NumEpochs int64
	// File path of the edge list to load, or an RMAT parameter string ending in .rmat
	InputPath string
	// Number of edges in each batch of insertions
	BatchSize int64
	// Algorithms to run in each epoch
	AlgNames []string
	// Batch preprocessing policy
	SortMode SortMode
	// Fraction of the timestamp range to keep in the graph, in [0, 1]
	WindowSize float64
	// Number of times to repeat the benchmark
	NumTrials int64

	// Engine is the registered name of the dynamic graph engine
	Engine string
	// RmatSeed seeds the synthetic edge generator
	RmatSeed uint64

	// Rank of this worker, 0 is the coordinator
	Rank int
	// NumWorkers is the number of ranks taking part in the run
	NumWorkers int
	// NatsURL of the server used to connect ranks running in separate processes
	NatsURL string
	// RunID namespaces the messages of one distributed run
	RunID string
	// MetricsPort serves prometheus metrics when positive
	MetricsPort int
}

// Validate checks every argument and reports all violations together.
func (a Args) Validate() error {
	var err error
	if a.NumEpochs < 1 {
		err = multierr.Append(err, fmt.Errorf("--num-epochs must be positive"))
	}
	if a.InputPath == "" {
		err = multierr.Append(err, fmt.Errorf("--input-path cannot be empty"))
	}
	if a.BatchSize < 1 {
		err = multierr.Append(err, fmt.Errorf("--batch-size must be positive"))
	}
	if a.WindowSize < 0 || a.WindowSize > 1 {
		err = multierr.Append(err, fmt.Errorf("--window-size must be in the range [0.0, 1.0]"))
	}
	if a.NumTrials < 1 {
		err = multierr.Append(err, fmt.Errorf("--num-trials must be positive"))
	}
	if _, perr := ParseSortMode(string(a.SortMode)); perr != nil {
		err = multierr.Append(err, perr)
	}
	if a.NumWorkers < 1 {
		err = multierr.Append(err, fmt.Errorf("--num-workers must be positive"))
	} else if a.Rank < 0 || a.Rank >= a.NumWorkers {
		err = multierr.Append(err, fmt.Errorf("--rank must be in the range [0, %d)", a.NumWorkers))
	}
	if err != nil {
		return dserr.Wrap(dserr.InvalidArgument, err, "invalid arguments")
	}
	return nil
}

type argsJSON struct {
	NumEpochs  int64    `json:"num_epochs"`
	InputPath  string   `json:"input_path"`
	BatchSize  int64    `json:"batch_size"`
	WindowSize float64  `json:"window_size"`
	NumTrials  int64    `json:"num_trials"`
	SortMode   string   `json:"sort_mode"`
	AlgNames   []string `json:"alg_names"`
}

// String renders the arguments as a JSON object, in the format benchmark logs are parsed from.
func (a Args) String() string {
	names := a.AlgNames
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(argsJSON{
		NumEpochs:  a.NumEpochs,
		InputPath:  a.InputPath,
		BatchSize:  a.BatchSize,
		WindowSize: a.WindowSize,
		NumTrials:  a.NumTrials,
		SortMode:   a.SortMode.String(),
		AlgNames:   names,
	})
	if err != nil {
		return fmt.Sprintf("%#v", a)
	}
	return string(b)
}

// IsDistributed reports whether more than one rank takes part in the run.
func (a Args) IsDistributed() bool {
	return a.NumWorkers > 1
}
