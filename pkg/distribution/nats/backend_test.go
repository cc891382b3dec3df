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

package nats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dynograph/pkg/distribution"
	"github.com/numaproj/dynograph/pkg/distribution/nats/natstest"
	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/partition"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

func TestNewBackend_InvalidRank(t *testing.T) {
	_, err := NewBackend(context.Background(), "nats://127.0.0.1:1", 3, 3)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.InvalidArgument))
	_, err = NewBackend(context.Background(), "nats://127.0.0.1:1", 0, 0)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.InvalidArgument))
}

func TestNewBackend_ConnectFailure(t *testing.T) {
	_, err := NewBackend(context.Background(), "nats://127.0.0.1:1", 0, 1)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.Distribution))
}

func TestNewBackend_JoinTimeout(t *testing.T) {
	s := natstest.RunNatsServer(t)
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	_, err := NewBackend(ctx, s.ClientURL(), 0, 2, WithRunID("lonely"), WithJoinTimeout(200*time.Millisecond))
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.Distribution))
}

func TestBackend_SingleRank(t *testing.T) {
	s := natstest.RunNatsServer(t)
	b, err := NewBackend(context.Background(), s.ClientURL(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Rank())
	assert.Equal(t, 1, b.Size())

	got, err := b.Broadcast(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	require.NoError(t, b.Close())
	_, err = b.Broadcast(context.Background(), []byte("hello"))
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.Distribution))
}

func TestBackend_Collectives(t *testing.T) {
	const (
		size       = 3
		numBatches = 4
		batchSize  = 50
	)
	s := natstest.RunNatsServer(t)
	ctx, cancel := context.WithTimeout(logging.WithLogger(context.Background(), logging.NewNopLogger()), 30*time.Second)
	defer cancel()

	corpus := make([]edge.Edge, numBatches*batchSize)
	for i := range corpus {
		corpus[i] = edge.Edge{Src: int64(i), Dst: int64(i + 7), Weight: int64(i % 3), Timestamp: int64(i)}
	}
	agg := distribution.Aggregates{MaxVertexID: 206, MinTimestamp: 0, MaxTimestamp: 199, NumBatches: numBatches, NumEdges: 200, Directed: true}

	stores := make([][]edge.Edge, size)
	g, gCtx := errgroup.WithContext(ctx)
	for r := 0; r < size; r++ {
		r := r
		g.Go(func() error {
			// chunks of three records force every scatter through the chunked path
			b, err := NewBackend(gCtx, s.ClientURL(), r, size, WithRunID("collectives"), WithMaxChunkSize(3*edge.RecordSize))
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			var mine *distribution.Aggregates
			var edges []edge.Edge
			if distribution.IsCoordinator(b) {
				mine, edges = &agg, corpus
			}
			got, err := distribution.BroadcastAggregates(gCtx, b, mine)
			if err != nil {
				return err
			}
			assert.Equal(t, agg, got, "rank %d", r)

			store, _, err := distribution.Distribute(gCtx, b, edges, got.NumBatches, batchSize)
			if err != nil {
				return err
			}
			stores[r] = store
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sizes := partition.SliceSizes(batchSize, size)
	displ := partition.Displacements(sizes)
	for r, store := range stores {
		require.Len(t, store, numBatches*int(sizes[r]))
		for id := int64(0); id < numBatches; id++ {
			begin := id*batchSize + displ[r]
			assert.Equal(t, corpus[begin:begin+sizes[r]], store[id*sizes[r]:(id+1)*sizes[r]], "rank %d batch %d", r, id)
		}
	}
}
