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
	"github.com/numaproj/dynograph/pkg/epoch"
	"github.com/numaproj/dynograph/pkg/metrics"
	"github.com/numaproj/dynograph/pkg/partition"
	"github.com/numaproj/dynograph/pkg/rmat"
	"github.com/numaproj/dynograph/pkg/shared/logging"
	"github.com/numaproj/dynograph/pkg/window"
)

const sourceRmat = "rmat"

// RmatDataset serves batches drawn from an RMAT generator on the coordinator. Batches must be
// requested strictly in order; Reset starts the sequence over.
//
// Every aggregate follows from the RMAT parameters and the batch size, so the ranks agree on them
// without communicating. With several ranks the coordinator scatters each generated batch.
type RmatDataset struct {
	args      config.Args
	rmatArgs  rmat.Args
	backend   distribution.Backend
	part      *partition.BatchPartitioner
	window    *window.CountCalculator
	generator *rmat.Generator // coordinator only
	sizes     []int64
	// current is the next batch id to be served
	current int64
	// history holds every edge this rank has served since Reset, in snapshot mode only
	history []edge.Edge
}

var _ Dataset = (*RmatDataset)(nil)

// NewRmatDataset validates the RMAT parameters against the batch arguments and prepares the
// generator. It must be called on every rank of backend.
func NewRmatDataset(ctx context.Context, args config.Args, rmatArgs rmat.Args, backend distribution.Backend) (*RmatDataset, error) {
	log := logging.FromContext(ctx)
	if err := rmatArgs.Validate(); err != nil {
		return nil, err
	}
	part, err := partition.NewBatchPartitioner(rmatArgs.NumEdges, args.BatchSize, args.NumEpochs)
	if err != nil {
		return nil, err
	}
	calc, err := window.NewCountCalculator(args.WindowSize, rmatArgs.NumEdges, args.BatchSize)
	if err != nil {
		return nil, err
	}
	d := &RmatDataset{
		args:     args,
		rmatArgs: rmatArgs,
		backend:  backend,
		part:     part,
		window:   calc,
		sizes:    partition.SliceSizes(args.BatchSize, backend.Size()),
	}
	if distribution.IsCoordinator(backend) {
		if d.generator, err = rmat.NewGenerator(rmatArgs, args.RmatSeed); err != nil {
			return nil, err
		}
		log.Infow("Generating RMAT graph",
			zap.String("params", rmatArgs.String()),
			zap.Int64("numBatches", part.NumBatches()),
			zap.Uint64("seed", args.RmatSeed))
	}
	return d, nil
}

func (d *RmatDataset) NumBatches() int64   { return d.part.NumBatches() }
func (d *RmatDataset) NumEdges() int64     { return d.part.NumEdges() }
func (d *RmatDataset) MaxVertexID() int64  { return d.rmatArgs.NumVertices + 1 }
func (d *RmatDataset) MinTimestamp() int64 { return 0 }
func (d *RmatDataset) MaxTimestamp() int64 { return d.window.Latest(d.part.NumBatches() - 1) }
func (d *RmatDataset) IsDirected() bool    { return true }

// Current is the id of the next batch the dataset will serve.
func (d *RmatDataset) Current() int64 {
	return d.current
}

// next generates batch id on the coordinator and hands every rank its slice.
func (d *RmatDataset) next(ctx context.Context, id int64) ([]edge.Edge, error) {
	if _, _, err := d.part.Range(id); err != nil {
		return nil, err
	}
	if id != d.current {
		return nil, dserr.New(dserr.OutOfSequence, "rmat batches must be generated in order: requested batch %d, expected %d", id, d.current)
	}
	var edges []edge.Edge
	if distribution.IsCoordinator(d.backend) {
		var err error
		if edges, err = d.generator.GetBatch(id, d.args.BatchSize); err != nil {
			return nil, err
		}
		metrics.EdgesLoaded.WithLabelValues(sourceRmat).Add(float64(len(edges)))
	}
	edges, err := distribution.ScatterEdges(ctx, d.backend, d.sizes, edges)
	if err != nil {
		return nil, err
	}
	d.current++
	if d.args.SortMode == config.Snapshot {
		d.history = append(d.history, edges...)
	}
	return edges, nil
}

// GetBatch generates batch id, which must be the next one in sequence.
func (d *RmatDataset) GetBatch(ctx context.Context, id int64) (batch.Batch, error) {
	edges, err := d.next(ctx, id)
	if err != nil {
		return batch.Batch{}, err
	}
	return batch.New(edges, true), nil
}

// GetBatchesUpTo generates batch id, which must be the next one in sequence, and returns every
// edge served since Reset. It is only available in snapshot mode, where the history is kept.
func (d *RmatDataset) GetBatchesUpTo(ctx context.Context, id int64) (batch.Batch, error) {
	if d.args.SortMode != config.Snapshot {
		return batch.Batch{}, dserr.New(dserr.InvalidArgument, "rmat datasets only keep their history in %s mode", config.Snapshot)
	}
	if _, err := d.next(ctx, id); err != nil {
		return batch.Batch{}, err
	}
	return batch.New(d.history, true).Slice(0, len(d.history)), nil
}

// TimestampForWindow uses the generator's timestamps, which count edges from 0.
func (d *RmatDataset) TimestampForWindow(_ context.Context, id int64) (int64, error) {
	if _, _, err := d.part.Range(id); err != nil {
		return 0, err
	}
	return d.window.Threshold(id), nil
}

func (d *RmatDataset) EnableAlgsForBatch(_ context.Context, id int64) (bool, error) {
	if _, _, err := d.part.Range(id); err != nil {
		return false, err
	}
	return epoch.EnableAlgsForBatch(id, d.part.NumBatches(), d.args.NumEpochs), nil
}

func (d *RmatDataset) Preprocessed(ctx context.Context, id int64) (batch.Batch, int64, error) {
	return preprocess(ctx, d, d.args.SortMode, sourceRmat, id)
}

// Reset reseeds the generator and rewinds to batch 0.
func (d *RmatDataset) Reset() {
	d.current = 0
	d.history = nil
	if d.generator != nil {
		d.generator.Reset()
	}
}
