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

package partition

import (
	"github.com/numaproj/dynograph/pkg/dserr"
)

// BatchPartitioner maps a batch id to the half-open edge index range it covers.
type BatchPartitioner struct {
	totalEdges int64
	batchSize  int64
	numBatches int64
}

// NewBatchPartitioner validates the batch arguments against the corpus size. The batch size may not
// exceed the number of edges, and there may not be more epochs than batches.
func NewBatchPartitioner(totalEdges, batchSize, numEpochs int64) (*BatchPartitioner, error) {
	if batchSize < 1 {
		return nil, dserr.New(dserr.InvalidArgument, "batch size (%d) must be positive", batchSize)
	}
	if batchSize > totalEdges {
		return nil, dserr.New(dserr.BatchTooLarge, "batch size (%d) cannot be larger than the total number of edges in the dataset (%d)", batchSize, totalEdges)
	}
	// Intentionally rounding down to make it divide evenly
	numBatches := totalEdges / batchSize
	if numEpochs > numBatches {
		return nil, dserr.New(dserr.TooManyEpochs, "number of epochs (%d) cannot be greater than the number of batches in the dataset (%d)", numEpochs, numBatches)
	}
	return &BatchPartitioner{
		totalEdges: totalEdges,
		batchSize:  batchSize,
		numBatches: numBatches,
	}, nil
}

// NumBatches returns the number of whole batches.
func (p *BatchPartitioner) NumBatches() int64 {
	return p.numBatches
}

// BatchSize returns the number of edges per batch.
func (p *BatchPartitioner) BatchSize() int64 {
	return p.batchSize
}

// NumEdges returns the size of the corpus, including trailing edges outside any batch.
func (p *BatchPartitioner) NumEdges() int64 {
	return p.totalEdges
}

// Range returns [begin, end) of batch id.
func (p *BatchPartitioner) Range(id int64) (begin, end int64, err error) {
	if err := p.check(id); err != nil {
		return 0, 0, err
	}
	begin = id * p.batchSize
	return begin, begin + p.batchSize, nil
}

// CumulativeRange returns the range from the start of the corpus through the end of batch id.
func (p *BatchPartitioner) CumulativeRange(id int64) (begin, end int64, err error) {
	if err := p.check(id); err != nil {
		return 0, 0, err
	}
	return 0, (id + 1) * p.batchSize, nil
}

func (p *BatchPartitioner) check(id int64) error {
	if id < 0 || id >= p.numBatches {
		return dserr.New(dserr.BatchOutOfRange, "batch %d does not exist, the dataset has %d batches", id, p.numBatches)
	}
	return nil
}

// SliceSizes divides edgesPerBatch among numWorkers ranks. Every rank gets
// floor(edgesPerBatch / numWorkers) edges and the first edgesPerBatch mod numWorkers ranks get one
// more, so sizes differ by at most one and add up to edgesPerBatch.
func SliceSizes(edgesPerBatch int64, numWorkers int) []int64 {
	sizes := make([]int64, numWorkers)
	w := int64(numWorkers)
	for i := range sizes {
		sizes[i] = edgesPerBatch / w
		if int64(i) < edgesPerBatch%w {
			sizes[i]++
		}
	}
	return sizes
}

// Displacements returns the start offset of each slice, the exclusive prefix sum of sizes.
func Displacements(sizes []int64) []int64 {
	disp := make([]int64, len(sizes))
	var sum int64
	for i, s := range sizes {
		disp[i] = sum
		sum += s
	}
	return disp
}
