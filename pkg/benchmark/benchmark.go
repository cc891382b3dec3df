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

// Package benchmark drives a dynamic graph engine through a dataset, trial after trial.
//
// For every batch the runner fetches the preprocessed batch and its window threshold, rebuilds the
// engine in snapshot mode, deletes expired edges when the window is smaller than the whole
// dataset, inserts the batch, and runs the configured algorithms when an epoch ends.
package benchmark

import (
	"context"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/numaproj/dynograph/pkg/batch"
	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/dataset"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/engine"
	"github.com/numaproj/dynograph/pkg/hooks"
	"github.com/numaproj/dynograph/pkg/metrics"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

// Summary describes a sample of durations, in seconds.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
}

// Summarize computes a Summary of samples. An empty sample yields the zero Summary.
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, nil
	}
	var (
		s   = Summary{Count: len(samples)}
		err error
	)
	if s.Mean, err = stats.Mean(samples); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(samples); err != nil {
		return Summary{}, err
	}
	if s.Max, err = stats.Max(samples); err != nil {
		return Summary{}, err
	}
	// too few samples to interpolate the percentile
	if s.P95, err = stats.Percentile(samples, 95); err != nil {
		s.P95 = s.Max
	}
	return s, nil
}

// TrialResult is what one rank observed during one trial.
type TrialResult struct {
	Trial         int64   `json:"trial"`
	Rank          int     `json:"rank"`
	Batches       int64   `json:"batches"`
	EpochsFired   int64   `json:"epochs_fired"`
	EdgesInserted int64   `json:"edges_inserted"`
	NumVertices   int64   `json:"num_vertices"`
	NumEdges      int64   `json:"num_edges"`
	Fingerprint   uint64  `json:"fingerprint"`
	Insertions    Summary `json:"insertions"`
	Deletions     Summary `json:"deletions"`
	Algorithms    Summary `json:"algorithms"`
}

// Runner runs the benchmark on one rank.
type Runner struct {
	Args    config.Args
	Dataset dataset.Dataset
	Hooks   *hooks.Hooks
	Rank    int
	// Results receives one JSON line per trial when set
	Results io.Writer
}

// Run executes Args.NumTrials trials and returns their results.
func (r *Runner) Run(ctx context.Context) ([]TrialResult, error) {
	log := logging.FromContext(ctx)
	log.Infow("Starting benchmark", zap.String("args", r.Args.String()), zap.String("engine", r.Args.Engine))
	results := make([]TrialResult, 0, r.Args.NumTrials)
	for trial := int64(0); trial < r.Args.NumTrials; trial++ {
		result, err := r.runTrial(ctx, trial)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		log.Infow("Trial finished",
			zap.Int64("trial", trial),
			zap.Int64("edgesInserted", result.EdgesInserted),
			zap.Int64("epochsFired", result.EpochsFired),
			zap.Uint64("fingerprint", result.Fingerprint))
		if r.Results != nil {
			line, err := json.Marshal(result)
			if err != nil {
				return results, err
			}
			if _, err := r.Results.Write(append(line, '\n')); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func (r *Runner) newEngine() (engine.DynamicGraph, error) {
	return engine.New(r.Args.Engine, r.Args, r.Dataset.MaxVertexID())
}

func (r *Runner) runTrial(ctx context.Context, trial int64) (TrialResult, error) {
	d := r.Dataset
	d.Reset()
	r.Hooks.SetAttr("trial", trial)
	r.Hooks.SetAttr("rank", r.Rank)

	g, err := r.newEngine()
	if err != nil {
		return TrialResult{}, err
	}
	result := TrialResult{Trial: trial, Rank: r.Rank, Batches: d.NumBatches()}
	fp := newFingerprint()
	var insertions, deletions, algorithms []float64

	for id := int64(0); id < d.NumBatches(); id++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r.Hooks.SetAttr("batch", id)
		b, threshold, err := d.Preprocessed(ctx, id)
		if err != nil {
			return result, err
		}

		if r.Args.SortMode == config.Snapshot {
			// the batch already holds every live edge, start from an empty graph
			if g, err = r.newEngine(); err != nil {
				return result, err
			}
		} else if r.Args.WindowSize < 1 {
			r.Hooks.RegionBegin("deletions")
			err = g.DeleteOlderThan(threshold)
			deletions = append(deletions, r.Hooks.RegionEnd().Seconds())
			if err != nil {
				return result, err
			}
		}

		r.Hooks.SetAttr("batch_size", b.Len())
		r.Hooks.RegionBegin("insertions")
		err = g.InsertBatch(b, threshold)
		insertions = append(insertions, r.Hooks.RegionEnd().Seconds())
		if err != nil {
			return result, err
		}
		fp.add(b)
		result.EdgesInserted += int64(b.Len())

		enable, err := d.EnableAlgsForBatch(ctx, id)
		if err != nil {
			return result, err
		}
		if !enable {
			continue
		}
		result.EpochsFired++
		r.Hooks.SetAttr("epoch", result.EpochsFired-1)
		for _, alg := range r.Args.AlgNames {
			r.Hooks.RegionBegin(alg)
			err := g.UpdateAlg(alg)
			algorithms = append(algorithms, r.Hooks.RegionEnd().Seconds())
			if err != nil {
				return result, err
			}
			metrics.AlgRuns.WithLabelValues(alg).Inc()
		}
	}

	result.NumVertices = g.NumVertices()
	result.NumEdges = g.NumEdges()
	result.Fingerprint = fp.sum()
	if result.Insertions, err = Summarize(insertions); err != nil {
		return result, err
	}
	if result.Deletions, err = Summarize(deletions); err != nil {
		return result, err
	}
	if result.Algorithms, err = Summarize(algorithms); err != nil {
		return result, err
	}
	return result, nil
}

// fingerprint hashes the sequence of inserted edges, so that trials can be compared.
type fingerprint struct {
	digest *xxhash.Digest
	buf    []byte
}

func newFingerprint() *fingerprint {
	return &fingerprint{digest: xxhash.New()}
}

func (f *fingerprint) add(b batch.Batch) {
	f.buf = edge.AppendEdges(f.buf[:0], b.Edges())
	_, _ = f.digest.Write(f.buf)
}

func (f *fingerprint) sum() uint64 {
	return f.digest.Sum64()
}
