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

package batch

import (
	"slices"
	"sort"

	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
)

// Filtered skips past the edges of b that are older than threshold. b must be sorted by timestamp,
// so the dropped edges form a prefix and the result is a view of b.
func Filtered(b Batch, threshold int64) Batch {
	first := sort.Search(len(b.edges), func(i int) bool {
		return b.edges[i].Timestamp >= threshold
	})
	return b.Slice(first, len(b.edges))
}

// Deduplicated copies b, sorts it with edge.Less and keeps the first edge of every run sharing
// (src, dst), which is the most recent one.
//
// Weights of duplicate edges are not combined: only the weight of the most recent edge survives.
// Benchmark results are compared against runs that behave this way, so it is kept as is.
func Deduplicated(b Batch) Batch {
	sorted := slices.Clone(b.edges)
	slices.SortStableFunc(sorted, edge.Compare)
	deduped := slices.CompactFunc(sorted, edge.SamePair)
	return Batch{edges: slices.Clip(deduped), directed: b.directed}
}

// NumVerticesAffected returns the number of distinct vertex ids appearing as src or dst in b.
func NumVerticesAffected(b Batch) int64 {
	ids := make([]int64, 0, 2*len(b.edges))
	for _, e := range Deduplicated(b).edges {
		ids = append(ids, e.Src, e.Dst)
	}
	slices.Sort(ids)
	return int64(len(slices.Compact(ids)))
}

// Preprocess applies the sort mode to a batch.
//
//	unsorted: Filtered(raw, threshold)
//	presort:  Deduplicated(Filtered(raw, threshold))
//	snapshot: Deduplicated(Filtered(cumulative, threshold))
//
// cumulative spans all edges from the start of the stream through the end of raw; it is only read in
// snapshot mode.
func Preprocess(mode config.SortMode, raw, cumulative Batch, threshold int64) (Batch, error) {
	switch mode {
	case config.Unsorted:
		return Filtered(raw, threshold), nil
	case config.Presort:
		return Deduplicated(Filtered(raw, threshold)), nil
	case config.Snapshot:
		return Deduplicated(Filtered(cumulative, threshold)), nil
	default:
		return Batch{}, dserr.New(dserr.InvalidArgument, "unknown sort mode %q", mode)
	}
}
