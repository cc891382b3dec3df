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

// Package batch implements the read-only batch views handed to a graph engine and the preprocessing
// pipeline applied to them: window filtering, deduplication and cumulative snapshots.
package batch

import (
	"github.com/numaproj/dynograph/pkg/edge"
)

// Batch is an ordered, read-only view of edges. A Batch never mutates the store it points into; the
// Deduplicated variant owns a freshly materialized slice.
type Batch struct {
	edges    []edge.Edge
	directed bool
}

// New returns a view over edges.
func New(edges []edge.Edge, directed bool) Batch {
	return Batch{edges: edges, directed: directed}
}

// Empty returns a batch with no edges.
func Empty(directed bool) Batch {
	return Batch{directed: directed}
}

// Len returns the number of edges.
func (b Batch) Len() int {
	return len(b.edges)
}

// At returns edge i.
func (b Batch) At(i int) edge.Edge {
	return b.edges[i]
}

// Edges returns the underlying slice. Callers must not modify it.
func (b Batch) Edges() []edge.Edge {
	return b.edges
}

// IsDirected reports whether edges are directed.
func (b Batch) IsDirected() bool {
	return b.directed
}

// Latest returns the timestamp of the last edge, the newest one in a timestamp-sorted batch.
// It returns false for an empty batch.
func (b Batch) Latest() (int64, bool) {
	if len(b.edges) == 0 {
		return 0, false
	}
	return b.edges[len(b.edges)-1].Timestamp, true
}

// Each calls fn for every edge in order until fn returns false.
func (b Batch) Each(fn func(e edge.Edge) bool) {
	for _, e := range b.edges {
		if !fn(e) {
			return
		}
	}
}

// Slice returns the view of edges [begin, end).
func (b Batch) Slice(begin, end int) Batch {
	return Batch{edges: b.edges[begin:end:end], directed: b.directed}
}
