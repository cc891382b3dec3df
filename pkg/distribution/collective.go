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
	"strconv"

	"github.com/goccy/go-json"

	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/metrics"
	"github.com/numaproj/dynograph/pkg/partition"
)

// Aggregates are the dataset-wide values computed once by the coordinator and shared with every
// rank.
type Aggregates struct {
	MaxVertexID  int64 `json:"maxVertexId"`
	MinTimestamp int64 `json:"minTimestamp"`
	MaxTimestamp int64 `json:"maxTimestamp"`
	NumBatches   int64 `json:"numBatches"`
	NumEdges     int64 `json:"numEdges"`
	Directed     bool  `json:"directed"`
}

// BroadcastAggregates sends the coordinator's aggregates to every rank. Only the coordinator's
// argument is read, and it may not be nil there.
func BroadcastAggregates(ctx context.Context, b Backend, agg *Aggregates) (Aggregates, error) {
	if IsCoordinator(b) && agg == nil {
		return Aggregates{}, dserr.New(dserr.Distribution, "coordinator must supply the aggregates")
	}
	var v Aggregates
	if agg != nil {
		v = *agg
	}
	return broadcastValue(ctx, b, v)
}

// BroadcastInt64 returns the coordinator's value on every rank.
func BroadcastInt64(ctx context.Context, b Backend, v int64) (int64, error) {
	return broadcastValue(ctx, b, v)
}

// BroadcastBool returns the coordinator's value on every rank.
func BroadcastBool(ctx context.Context, b Backend, v bool) (bool, error) {
	return broadcastValue(ctx, b, v)
}

func broadcastValue[T any](ctx context.Context, b Backend, v T) (T, error) {
	var zero T
	if b.Size() == 1 {
		return v, nil
	}
	rank := strconv.Itoa(b.Rank())
	metrics.CollectiveOps.WithLabelValues(rank, "broadcast").Inc()
	var payload []byte
	if IsCoordinator(b) {
		var err error
		if payload, err = json.Marshal(v); err != nil {
			return zero, dserr.Wrap(dserr.Distribution, err, "failed to encode broadcast value")
		}
	}
	payload, err := b.Broadcast(ctx, payload)
	if err != nil {
		return zero, dserr.Wrap(dserr.Distribution, err, "broadcast failed on rank %s", rank)
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, dserr.Wrap(dserr.Distribution, err, "failed to decode broadcast value on rank %s", rank)
	}
	return out, nil
}

// ScatterEdges sends edges[displ[r] : displ[r]+sizes[r]] to rank r, where displ is the exclusive
// prefix sum of sizes, and returns this rank's slice. Only the coordinator's sizes and edges are
// read. With a single rank the input is returned as is.
func ScatterEdges(ctx context.Context, b Backend, sizes []int64, edges []edge.Edge) ([]edge.Edge, error) {
	if b.Size() == 1 {
		return edges, nil
	}
	rank := strconv.Itoa(b.Rank())
	metrics.CollectiveOps.WithLabelValues(rank, "scatter").Inc()
	var parts [][]byte
	if IsCoordinator(b) {
		if len(sizes) != b.Size() {
			return nil, dserr.New(dserr.Distribution, "scatter needs %d slice sizes, got %d", b.Size(), len(sizes))
		}
		parts = make([][]byte, len(sizes))
		displ := partition.Displacements(sizes)
		for r, n := range sizes {
			offset := displ[r]
			if n < 0 || offset+n > int64(len(edges)) {
				return nil, dserr.New(dserr.Distribution, "slice %d of size %d at offset %d exceeds %d edges", r, n, offset, len(edges))
			}
			parts[r] = edge.AppendEdges(make([]byte, 0, n*edge.RecordSize), edges[offset:offset+n])
		}
	}
	payload, err := b.Scatter(ctx, parts)
	if err != nil {
		return nil, dserr.Wrap(dserr.Distribution, err, "scatter failed on rank %s", rank)
	}
	out, err := edge.DecodeAll(nil, payload)
	if err != nil {
		return nil, dserr.Wrap(dserr.Distribution, err, "failed to decode scattered edges on rank %s", rank)
	}
	metrics.ScatteredEdges.WithLabelValues(rank).Add(float64(len(out)))
	return out, nil
}
