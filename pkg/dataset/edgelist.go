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

package dataset

import (
	"context"

	"go.uber.org/zap"

	"github.com/numaproj/dynograph/pkg/batch"
	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/distribution"
	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/edgelist"
	"github.com/numaproj/dynograph/pkg/epoch"
	"github.com/numaproj/dynograph/pkg/metrics"
	"github.com/numaproj/dynograph/pkg/partition"
	"github.com/numaproj/dynograph/pkg/shared/logging"
	"github.com/numaproj/dynograph/pkg/window"
)

const sourceEdgeList = "edgelist"

// EdgeListDataset serves batches of an edge list file. The coordinator loads and validates the
// file; the other ranks only ever hold their slices.
type EdgeListDataset struct {
	args    config.Args
	backend distribution.Backend
	agg     distribution.Aggregates
	part    *partition.BatchPartitioner
	// edges is this rank's store: the whole corpus with one rank, otherwise NumBatches slices of
	// localBatchSize edges back to back
	edges          []edge.Edge
	localBatchSize int64
	// coordinator only
	window *window.Calculator
	latest []int64
}

var _ Dataset = (*EdgeListDataset)(nil)

// NewEdgeListDataset loads args.InputPath on the coordinator, shares the aggregates with every
// rank and distributes the batches. It must be called on every rank of backend.
func NewEdgeListDataset(ctx context.Context, args config.Args, backend distribution.Backend) (*EdgeListDataset, error) {
	log := logging.FromContext(ctx)
	d := &EdgeListDataset{args: args, backend: backend}

	var corpus []edge.Edge
	var agg *distribution.Aggregates
	var loadErr error
	if distribution.IsCoordinator(backend) {
		corpus, agg, loadErr = d.load(ctx)
	}
	// the other ranks learn whether the coordinator succeeded instead of blocking forever
	ok, err := distribution.BroadcastBool(ctx, backend, loadErr == nil)
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		return nil, loadErr
	}
	if !ok {
		return nil, dserr.New(dserr.Distribution, "coordinator failed to load %s", args.InputPath)
	}

	shared, err := distribution.BroadcastAggregates(ctx, backend, agg)
	if err != nil {
		return nil, err
	}
	d.agg = shared
	if d.part, err = partition.NewBatchPartitioner(shared.NumEdges, args.BatchSize, args.NumEpochs); err != nil {
		return nil, err
	}
	if d.edges, d.localBatchSize, err = distribution.Distribute(ctx, backend, corpus, shared.NumBatches, args.BatchSize); err != nil {
		return nil, err
	}
	log.Infow("Dataset ready",
		zap.Int64("numBatches", shared.NumBatches),
		zap.Int64("localBatchSize", d.localBatchSize),
		zap.Int("rank", backend.Rank()))
	return d, nil
}

// load reads and validates the corpus and derives the aggregates.
func (d *EdgeListDataset) load(ctx context.Context) ([]edge.Edge, *distribution.Aggregates, error) {
	log := logging.FromContext(ctx)
	edges, err := edgelist.Load(ctx, d.args.InputPath)
	if err != nil {
		return nil, nil, err
	}
	metrics.EdgesLoaded.WithLabelValues(sourceEdgeList).Add(float64(len(edges)))

	part, err := partition.NewBatchPartitioner(int64(len(edges)), d.args.BatchSize, d.args.NumEpochs)
	if err != nil {
		return nil, nil, err
	}
	if err := edgelist.Validate(edges); err != nil {
		return nil, nil, err
	}

	agg := &distribution.Aggregates{
		MinTimestamp: edges[0].Timestamp,
		MaxTimestamp: edges[len(edges)-1].Timestamp,
		NumBatches:   part.NumBatches(),
		NumEdges:     part.NumEdges(),
		Directed:     true,
	}
	for _, e := range edges {
		agg.MaxVertexID = max(agg.MaxVertexID, e.MaxVertex())
	}
	if d.window, err = window.NewCalculator(d.args.WindowSize, agg.MinTimestamp, agg.MaxTimestamp); err != nil {
		return nil, nil, err
	}
	// the latest timestamp of every batch, kept after the corpus is scattered
	d.latest = make([]int64, part.NumBatches())
	for id := range d.latest {
		_, end, _ := part.Range(int64(id))
		d.latest[id] = edges[end-1].Timestamp
	}
	if trailing := part.NumEdges() - part.NumBatches()*part.BatchSize(); trailing > 0 {
		log.Infow("Trailing edges are excluded from every batch", zap.Int64("trailing", trailing))
	}
	return edges, agg, nil
}

func (d *EdgeListDataset) NumBatches() int64   { return d.agg.NumBatches }
func (d *EdgeListDataset) NumEdges() int64     { return d.agg.NumEdges }
func (d *EdgeListDataset) MaxVertexID() int64  { return d.agg.MaxVertexID }
func (d *EdgeListDataset) MinTimestamp() int64 { return d.agg.MinTimestamp }
func (d *EdgeListDataset) MaxTimestamp() int64 { return d.agg.MaxTimestamp }
func (d *EdgeListDataset) IsDirected() bool    { return d.agg.Directed }

// GetBatch returns this rank's part of batch id as a view over the store.
func (d *EdgeListDataset) GetBatch(_ context.Context, id int64) (batch.Batch, error) {
	if _, _, err := d.part.Range(id); err != nil {
		return batch.Batch{}, err
	}
	begin := id * d.localBatchSize
	return batch.New(d.edges, d.agg.Directed).Slice(int(begin), int(begin+d.localBatchSize)), nil
}

func (d *EdgeListDataset) GetBatchesUpTo(_ context.Context, id int64) (batch.Batch, error) {
	if _, _, err := d.part.CumulativeRange(id); err != nil {
		return batch.Batch{}, err
	}
	return batch.New(d.edges, d.agg.Directed).Slice(0, int((id+1)*d.localBatchSize)), nil
}

// TimestampForWindow is computed by the coordinator and broadcast to every rank.
func (d *EdgeListDataset) TimestampForWindow(ctx context.Context, id int64) (int64, error) {
	if _, _, err := d.part.Range(id); err != nil {
		return 0, err
	}
	var threshold int64
	if distribution.IsCoordinator(d.backend) {
		threshold = d.window.Threshold(d.latest[id])
	}
	return distribution.BroadcastInt64(ctx, d.backend, threshold)
}

// EnableAlgsForBatch depends only on the shared batch and epoch counts, so every rank computes it
// locally.
func (d *EdgeListDataset) EnableAlgsForBatch(_ context.Context, id int64) (bool, error) {
	if _, _, err := d.part.Range(id); err != nil {
		return false, err
	}
	return epoch.EnableAlgsForBatch(id, d.agg.NumBatches, d.args.NumEpochs), nil
}

func (d *EdgeListDataset) Preprocessed(ctx context.Context, id int64) (batch.Batch, int64, error) {
	return preprocess(ctx, d, d.args.SortMode, sourceEdgeList, id)
}

func (d *EdgeListDataset) Reset() {}
