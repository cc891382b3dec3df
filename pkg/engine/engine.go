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

// Package engine defines the capability a dynamic graph implementation offers to the benchmark.
// The benchmark only depends on DynamicGraph; implementations register a Factory by name and one is
// selected at startup.
package engine

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/numaproj/dynograph/pkg/batch"
	"github.com/numaproj/dynograph/pkg/config"
)

// DynamicGraph is a graph that ingests batches of timestamped edges.
type DynamicGraph interface {
	// InsertBatch adds the edges of b. threshold is the current deletion threshold, for engines that
	// filter while inserting.
	InsertBatch(b batch.Batch, threshold int64) error
	// DeleteOlderThan removes every edge with a timestamp below threshold.
	DeleteOlderThan(threshold int64) error
	// UpdateAlg runs or updates the named algorithm on the current graph.
	UpdateAlg(name string) error
	NumVertices() int64
	NumEdges() int64
	OutDegree(vertexID int64) int64
}

// Factory builds an engine for a graph whose vertex ids do not exceed maxVertexID.
type Factory func(args config.Args, maxVertexID int64) (DynamicGraph, error)

var (
	registryLock sync.RWMutex
	registry     = map[string]Factory{}
)

// Register makes an engine available under name. It panics on a duplicate name.
func Register(name string, f Factory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("engine %q registered twice", name))
	}
	registry[name] = f
}

// New builds the engine registered under name.
func New(name string, args config.Args, maxVertexID int64) (DynamicGraph, error) {
	registryLock.RLock()
	f, ok := registry[name]
	registryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine %q, available engines: %v", name, Names())
	}
	return f(args, maxVertexID)
}

// Names lists the registered engines in sorted order.
func Names() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VertexDegree pairs a vertex with its out degree.
type VertexDegree struct {
	VertexID  int64
	OutDegree int64
}

// CompareVertexDegree orders by out degree, then by descending vertex id, so that among equal
// degrees the lowest id ranks highest.
func CompareVertexDegree(a, b VertexDegree) int {
	if c := cmp.Compare(a.OutDegree, b.OutDegree); c != 0 {
		return c
	}
	return cmp.Compare(b.VertexID, a.VertexID)
}

// TopDegrees returns the k highest ranked vertices of g by CompareVertexDegree, highest first.
func TopDegrees(g DynamicGraph, maxVertexID int64, k int) []VertexDegree {
	if k <= 0 {
		return nil
	}
	degrees := make([]VertexDegree, 0, maxVertexID+1)
	for v := int64(0); v <= maxVertexID; v++ {
		degrees = append(degrees, VertexDegree{VertexID: v, OutDegree: g.OutDegree(v)})
	}
	slices.SortFunc(degrees, func(a, b VertexDegree) int {
		return CompareVertexDegree(b, a)
	})
	return degrees[:min(k, len(degrees))]
}
