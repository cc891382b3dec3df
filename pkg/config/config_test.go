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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/dynograph/pkg/dserr"
)

func validArgs() Args {
	return Args{
		NumEpochs:  2,
		InputPath:  "edges.graph.bin",
		BatchSize:  10,
		SortMode:   Unsorted,
		WindowSize: 1.0,
		NumTrials:  1,
		NumWorkers: 1,
	}
}

func TestParseSortMode(t *testing.T) {
	for _, m := range SortModes {
		got, err := ParseSortMode(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseSortMode("PRESORT")
	assert.NoError(t, err)
	assert.Equal(t, Presort, got)

	_, err = ParseSortMode("random")
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.InvalidArgument))
}

func TestArgs_Validate(t *testing.T) {
	assert.NoError(t, validArgs().Validate())

	tests := []struct {
		name    string
		mutate  func(a *Args)
		message string
	}{
		{"epochs", func(a *Args) { a.NumEpochs = 0 }, "--num-epochs must be positive"},
		{"path", func(a *Args) { a.InputPath = "" }, "--input-path cannot be empty"},
		{"batch", func(a *Args) { a.BatchSize = -1 }, "--batch-size must be positive"},
		{"window low", func(a *Args) { a.WindowSize = -0.1 }, "--window-size must be in the range [0.0, 1.0]"},
		{"window high", func(a *Args) { a.WindowSize = 1.5 }, "--window-size must be in the range [0.0, 1.0]"},
		{"trials", func(a *Args) { a.NumTrials = 0 }, "--num-trials must be positive"},
		{"sort mode", func(a *Args) { a.SortMode = "bogus" }, "sort-mode must be one of"},
		{"rank", func(a *Args) { a.NumWorkers = 2; a.Rank = 2 }, "--rank must be in the range [0, 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArgs()
			tt.mutate(&a)
			err := a.Validate()
			require.Error(t, err)
			assert.Equal(t, dserr.InvalidArgument, dserr.KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestArgs_Validate_ReportsAll(t *testing.T) {
	a := validArgs()
	a.NumEpochs = 0
	a.BatchSize = 0
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--num-epochs must be positive")
	assert.Contains(t, err.Error(), "--batch-size must be positive")
}

func TestArgs_String(t *testing.T) {
	a := validArgs()
	a.AlgNames = []string{"bfs", "cc"}
	assert.Equal(t,
		`{"num_epochs":2,"input_path":"edges.graph.bin","batch_size":10,"window_size":1,"num_trials":1,"sort_mode":"unsorted","alg_names":["bfs","cc"]}`,
		a.String())

	a.AlgNames = nil
	assert.Contains(t, a.String(), `"alg_names":[]`)
}

func TestLoad_Flags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--num-epochs=3", "--input-path=a.graph.el", "--batch-size=100",
		"--alg-names=bfs cc,pagerank", "--sort-mode=snapshot", "--window-size=0.5",
	}))
	args, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, int64(3), args.NumEpochs)
	assert.Equal(t, "a.graph.el", args.InputPath)
	assert.Equal(t, int64(100), args.BatchSize)
	assert.Equal(t, []string{"bfs", "cc", "pagerank"}, args.AlgNames)
	assert.Equal(t, Snapshot, args.SortMode)
	assert.Equal(t, 0.5, args.WindowSize)
	assert.Equal(t, int64(1), args.NumTrials)
	assert.Equal(t, DefaultEngine, args.Engine)
	assert.Equal(t, 1, args.NumWorkers)
	assert.NoError(t, args.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := []byte("num-epochs: 4\ninput-path: x.graph.bin\nbatch-size: 8\nalg-names: [bfs, cc]\nsort-mode: presort\nnum-trials: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("DYNOGRAPH_BATCH_SIZE", "16")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--num-trials=5"}))

	args, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, int64(4), args.NumEpochs)
	assert.Equal(t, int64(16), args.BatchSize)
	assert.Equal(t, []string{"bfs", "cc"}, args.AlgNames)
	assert.Equal(t, Presort, args.SortMode)
	assert.Equal(t, int64(5), args.NumTrials)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	t.Setenv("DYNOGRAPH_SORT_MODE", "shuffled")
	_, err = Load("", nil)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.InvalidArgument))
}
