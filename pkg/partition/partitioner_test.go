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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/dynograph/pkg/dserr"
)

func TestNewBatchPartitioner(t *testing.T) {
	p, err := NewBatchPartitioner(105, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.NumBatches())
	assert.Equal(t, int64(10), p.BatchSize())
	assert.Equal(t, int64(105), p.NumEdges())

	_, err = NewBatchPartitioner(5, 10, 1)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.BatchTooLarge))

	_, err = NewBatchPartitioner(100, 10, 11)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.TooManyEpochs))

	_, err = NewBatchPartitioner(100, 0, 1)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.InvalidArgument))

	// equal sizes are fine
	p, err = NewBatchPartitioner(10, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.NumBatches())
}

func TestRange_Coverage(t *testing.T) {
	p, err := NewBatchPartitioner(1003, 25, 1)
	require.NoError(t, err)
	var next int64
	for i := int64(0); i < p.NumBatches(); i++ {
		begin, end, err := p.Range(i)
		require.NoError(t, err)
		assert.Equal(t, next, begin, "batches must be contiguous")
		assert.Equal(t, int64(25), end-begin)
		next = end
	}
	// trailing edges are never visited
	assert.Equal(t, int64(1000), next)

	_, _, err = p.Range(p.NumBatches())
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.BatchOutOfRange))
	_, _, err = p.Range(-1)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.BatchOutOfRange))
}

func TestCumulativeRange(t *testing.T) {
	p, err := NewBatchPartitioner(100, 10, 1)
	require.NoError(t, err)
	begin, end, err := p.CumulativeRange(3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), begin)
	assert.Equal(t, int64(40), end)
	_, _, err = p.CumulativeRange(10)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.BatchOutOfRange))
}

func TestSliceSizes(t *testing.T) {
	for epb := int64(0); epb < 50; epb++ {
		for w := 1; w <= 9; w++ {
			sizes := SliceSizes(epb, w)
			require.Len(t, sizes, w)
			var sum, lo, hi int64 = 0, sizes[0], sizes[0]
			for _, s := range sizes {
				sum += s
				lo = min(lo, s)
				hi = max(hi, s)
			}
			assert.Equal(t, epb, sum)
			assert.LessOrEqual(t, hi-lo, int64(1))
		}
	}
	assert.Equal(t, []int64{4, 3, 3}, SliceSizes(10, 3))
}

func TestDisplacements(t *testing.T) {
	assert.Equal(t, []int64{0, 4, 7}, Displacements([]int64{4, 3, 3}))
	assert.Empty(t, Displacements(nil))
}
