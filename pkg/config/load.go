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

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/numaproj/dynograph/pkg/shared/util"
)

// EnvPrefix is the prefix of environment variables overriding arguments, e.g. DYNOGRAPH_BATCH_SIZE.
const EnvPrefix = "DYNOGRAPH"

// Keys shared by flags, environment variables and the config file.
const (
	KeyNumEpochs   = "num-epochs"
	KeyInputPath   = "input-path"
	KeyBatchSize   = "batch-size"
	KeyAlgNames    = "alg-names"
	KeySortMode    = "sort-mode"
	KeyWindowSize  = "window-size"
	KeyNumTrials   = "num-trials"
	KeyEngine      = "engine"
	KeyRmatSeed    = "rmat-seed"
	KeyRank        = "rank"
	KeyNumWorkers  = "num-workers"
	KeyNatsURL     = "nats-url"
	KeyRunID       = "run-id"
	KeyMetricsPort = "metrics-port"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeySortMode, string(Unsorted))
	v.SetDefault(KeyWindowSize, DefaultWindowSize)
	v.SetDefault(KeyNumTrials, DefaultNumTrials)
	v.SetDefault(KeyEngine, DefaultEngine)
	v.SetDefault(KeyRmatSeed, DefaultRmatSeed)
	v.SetDefault(KeyNumWorkers, 1)
	v.SetDefault(KeyRunID, "dynograph")
	return v
}

// Load reads the arguments. Values come from, in increasing priority: defaults, the YAML file at
// configFile (if not empty), DYNOGRAPH_* environment variables, and flags explicitly set in flags.
// The returned arguments are not validated.
func Load(configFile string, flags *pflag.FlagSet) (Args, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Args{}, fmt.Errorf("failed to load configuration file %q, %w", configFile, err)
		}
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Args{}, fmt.Errorf("failed to bind flags, %w", err)
		}
	}
	mode, err := ParseSortMode(v.GetString(KeySortMode))
	if err != nil {
		return Args{}, err
	}
	var algNames []string
	for _, s := range v.GetStringSlice(KeyAlgNames) {
		algNames = append(algNames, util.SplitNames(s)...)
	}
	return Args{
		NumEpochs:   v.GetInt64(KeyNumEpochs),
		InputPath:   v.GetString(KeyInputPath),
		BatchSize:   v.GetInt64(KeyBatchSize),
		AlgNames:    algNames,
		SortMode:    mode,
		WindowSize:  v.GetFloat64(KeyWindowSize),
		NumTrials:   v.GetInt64(KeyNumTrials),
		Engine:      v.GetString(KeyEngine),
		RmatSeed:    v.GetUint64(KeyRmatSeed),
		Rank:        v.GetInt(KeyRank),
		NumWorkers:  v.GetInt(KeyNumWorkers),
		NatsURL:     v.GetString(KeyNatsURL),
		RunID:       v.GetString(KeyRunID),
		MetricsPort: v.GetInt(KeyMetricsPort),
	}, nil
}

// AddFlags registers the benchmark flags on fs. Defaults are left to Load so that the config file and
// environment are not shadowed by unset flags.
func AddFlags(fs *pflag.FlagSet) {
	fs.Int64(KeyNumEpochs, 0, "Number of epochs (algorithm updates) in the benchmark")
	fs.String(KeyInputPath, "", "File path to the graph edge list to load (.graph.el or .graph.bin), or RMAT parameters a-b-c-d-ne-nv.rmat")
	fs.Int64(KeyBatchSize, 0, "Number of edges in each batch of insertions")
	fs.String(KeyAlgNames, "", "Algorithms to run in each epoch, separated by spaces or commas")
	fs.String(KeySortMode, string(Unsorted), "Controls batch pre-processing: unsorted (no preprocessing), presort (sort and deduplicate before insert), or snapshot (clear out graph and reconstruct for each batch)")
	fs.Float64(KeyWindowSize, DefaultWindowSize, "Percentage of the graph to hold in memory (computed using timestamps)")
	fs.Int64(KeyNumTrials, DefaultNumTrials, "Number of times to repeat the benchmark")
	fs.String(KeyEngine, DefaultEngine, "Dynamic graph engine to benchmark")
	fs.Uint64(KeyRmatSeed, DefaultRmatSeed, "Seed of the RMAT edge generator")
	fs.Int(KeyRank, 0, "Rank of this worker, 0 is the coordinator")
	fs.Int(KeyNumWorkers, 1, "Number of workers taking part in the run")
	fs.String(KeyNatsURL, "", "NATS server URL used to connect workers in separate processes")
	fs.String(KeyRunID, "dynograph", "Identifier of the distributed run, shared by all workers")
	fs.Int(KeyMetricsPort, 0, "Port to expose prometheus metrics on, disabled when 0")
}
