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

package distribution

import (
	"context"

	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/partition"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

// Distribute splits every batch of the coordinator's corpus across the ranks of b. Each batch of
// batchSize edges is cut into Size() contiguous slices with partition.SliceSizes, and rank r
// receives slice r of every batch in batch order. It returns this rank's edge store, holding
// numBatches slices back to back, and the slice size, which is this rank's local batch size.
//
// numBatches must be the same on every rank; batchSize and edges are only read on the
// coordinator. With a single rank the corpus is returned unchanged.
func Distribute(ctx context.Context, b Backend, edges []edge.Edge, numBatches, batchSize int64) ([]edge.Edge, int64, error) {
	if b.Size() == 1 {
		return edges, batchSize, nil
	}
	log := logging.FromContext(ctx).With("rank", b.Rank(), "size", b.Size())
	if IsCoordinator(b) {
		if batchSize < 1 || numBatches*batchSize > int64(len(edges)) {
			return nil, 0, dserr.New(dserr.Distribution, "cannot distribute %d batches of %d edges from a corpus of %d edges", numBatches, batchSize, len(edges))
		}
		log.Infof("Distributing dataset to %d ranks...", b.Size())
	}
	edgesPerBatch, err := BroadcastInt64(ctx, b, batchSize)
	if err != nil {
		return nil, 0, err
	}
	sizes := partition.SliceSizes(edgesPerBatch, b.Size())
	localSize := sizes[b.Rank()]
	local := make([]edge.Edge, 0, numBatches*localSize)
	for id := int64(0); id < numBatches; id++ {
		var batch []edge.Edge
		if IsCoordinator(b) {
			batch = edges[id*edgesPerBatch : (id+1)*edgesPerBatch]
		}
		slice, err := ScatterEdges(ctx, b, sizes, batch)
		if err != nil {
			return nil, 0, err
		}
		if int64(len(slice)) != localSize {
			return nil, 0, dserr.New(dserr.Distribution, "batch %d: received %d edges, expected %d", id, len(slice), localSize)
		}
		local = append(local, slice...)
	}
	log.Debugw("Received local slices", "batches", numBatches, "sliceSize", localSize)
	return local, localSize, nil
}
