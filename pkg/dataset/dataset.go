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

// Package dataset serves a stream of edge batches to the benchmark driver.
//
// A Dataset is backed either by an edge list file loaded into memory (EdgeListDataset) or by a
// synthetic RMAT generator (RmatDataset). Both derive the same aggregates, split the edges into
// fixed-size batches, compute the window threshold of each batch, and decide after which batches
// the algorithms run. When several ranks take part, every batch is split across them and each
// rank serves its own slice.
package dataset

import (
	"context"
	"strings"

	"github.com/numaproj/dynograph/pkg/batch"
	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/distribution"
	"github.com/numaproj/dynograph/pkg/metrics"
	"github.com/numaproj/dynograph/pkg/rmat"
)

// Dataset is the core API consumed by the benchmark driver. Calls that take a context may take
// part in a collective operation and must be made in the same order on every rank.
type Dataset interface {
	// NumBatches is the number of whole batches; trailing edges are never served.
	NumBatches() int64
	// NumEdges is the total number of edges, including trailing ones.
	NumEdges() int64
	// MaxVertexID is the largest vertex id, so engines can provision their vertex arrays.
	MaxVertexID() int64
	MinTimestamp() int64
	MaxTimestamp() int64
	IsDirected() bool
	// GetBatch returns batch id, or this rank's slice of it.
	GetBatch(ctx context.Context, id int64) (batch.Batch, error)
	// GetBatchesUpTo returns every edge from the start of the dataset through the end of batch id.
	GetBatchesUpTo(ctx context.Context, id int64) (batch.Batch, error)
	// TimestampForWindow returns the deletion threshold for batch id.
	TimestampForWindow(ctx context.Context, id int64) (int64, error)
	// EnableAlgsForBatch reports whether the algorithms run after batch id.
	EnableAlgsForBatch(ctx context.Context, id int64) (bool, error)
	// Preprocessed returns batch id as the configured sort mode prepares it, together with the
	// window threshold it was filtered with.
	Preprocessed(ctx context.Context, id int64) (batch.Batch, int64, error)
	// Reset rewinds a generator-backed dataset so the next trial sees the same edges. It is a no-op
	// for file-backed datasets.
	Reset()
}

// New returns the dataset selected by args.InputPath: a path ending in .rmat is parsed as RMAT
// parameters, anything else is loaded as an edge list.
func New(ctx context.Context, args config.Args, backend distribution.Backend) (Dataset, error) {
	if strings.HasSuffix(args.InputPath, rmat.Suffix) {
		rmatArgs, err := rmat.ParseArgs(args.InputPath)
		if err != nil {
			return nil, err
		}
		return NewRmatDataset(ctx, args, rmatArgs, backend)
	}
	return NewEdgeListDataset(ctx, args, backend)
}

// preprocess applies the sort mode pipeline to batch id of d.
func preprocess(ctx context.Context, d Dataset, mode config.SortMode, source string, id int64) (batch.Batch, int64, error) {
	threshold, err := d.TimestampForWindow(ctx, id)
	if err != nil {
		return batch.Batch{}, 0, err
	}
	var raw, cumulative batch.Batch
	var input batch.Batch
	if mode == config.Snapshot {
		cumulative, err = d.GetBatchesUpTo(ctx, id)
		input = cumulative
	} else {
		raw, err = d.GetBatch(ctx, id)
		input = raw
	}
	if err != nil {
		return batch.Batch{}, 0, err
	}
	out, err := batch.Preprocess(mode, raw, cumulative, threshold)
	if err != nil {
		return batch.Batch{}, 0, err
	}
	filtered := batch.Filtered(input, threshold).Len()
	metrics.EdgesDropped.WithLabelValues(string(mode), "window").Add(float64(input.Len() - filtered))
	metrics.EdgesDropped.WithLabelValues(string(mode), "dedup").Add(float64(filtered - out.Len()))
	metrics.WindowThreshold.Set(float64(threshold))
	metrics.BatchesServed.WithLabelValues(source, string(mode)).Inc()
	return out, threshold, nil
}
