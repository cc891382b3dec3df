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

// Package memgraph is a reference in-memory engine backed by adjacency maps. It runs no real
// algorithm; UpdateAlg only records the invocation.
package memgraph

import (
	"fmt"

	"github.com/numaproj/dynograph/pkg/batch"
	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/engine"
)

// Name is the registered engine name.
const Name = "memgraph"

func init() {
	engine.Register(Name, func(args config.Args, maxVertexID int64) (engine.DynamicGraph, error) {
		return New(maxVertexID)
	})
}

type adjacency struct {
	weight    int64
	timestamp int64
}

// Graph is a directed multigraph collapsed to one adjacency per (src, dst): inserting an existing
// pair adds the weights and keeps the newest timestamp.
type Graph struct {
	maxVertexID int64
	out         map[int64]map[int64]adjacency
	numEdges    int64
	algRuns     map[string]int64
}

var _ engine.DynamicGraph = (*Graph)(nil)

// New returns an empty graph over vertex ids [0, maxVertexID].
func New(maxVertexID int64) (*Graph, error) {
	if maxVertexID < 0 {
		return nil, fmt.Errorf("max vertex id must be non-negative, got %d", maxVertexID)
	}
	return &Graph{
		maxVertexID: maxVertexID,
		out:         make(map[int64]map[int64]adjacency),
		algRuns:     make(map[string]int64),
	}, nil
}

func (g *Graph) InsertBatch(b batch.Batch, threshold int64) error {
	var err error
	b.Each(func(e edge.Edge) bool {
		if e.Src < 0 || e.Dst < 0 || e.MaxVertex() > g.maxVertexID {
			err = fmt.Errorf("edge %s is outside the vertex range [0, %d]", e, g.maxVertexID)
			return false
		}
		if e.Timestamp < threshold {
			return true
		}
		g.insert(e)
		return true
	})
	return err
}

func (g *Graph) insert(e edge.Edge) {
	nbrs, ok := g.out[e.Src]
	if !ok {
		nbrs = make(map[int64]adjacency)
		g.out[e.Src] = nbrs
	}
	a, ok := nbrs[e.Dst]
	if !ok {
		g.numEdges++
	}
	a.weight += e.Weight
	a.timestamp = max(a.timestamp, e.Timestamp)
	nbrs[e.Dst] = a
}

func (g *Graph) DeleteOlderThan(threshold int64) error {
	for src, nbrs := range g.out {
		for dst, a := range nbrs {
			if a.timestamp < threshold {
				delete(nbrs, dst)
				g.numEdges--
			}
		}
		if len(nbrs) == 0 {
			delete(g.out, src)
		}
	}
	return nil
}

func (g *Graph) UpdateAlg(name string) error {
	if name == "" {
		return fmt.Errorf("algorithm name cannot be empty")
	}
	g.algRuns[name]++
	return nil
}

// AlgRuns returns how many times the named algorithm was requested.
func (g *Graph) AlgRuns(name string) int64 {
	return g.algRuns[name]
}

// NumVertices counts the vertices touched by at least one live edge.
func (g *Graph) NumVertices() int64 {
	seen := make(map[int64]struct{}, len(g.out))
	for src, nbrs := range g.out {
		seen[src] = struct{}{}
		for dst := range nbrs {
			seen[dst] = struct{}{}
		}
	}
	return int64(len(seen))
}

func (g *Graph) NumEdges() int64 {
	return g.numEdges
}

func (g *Graph) OutDegree(vertexID int64) int64 {
	return int64(len(g.out[vertexID]))
}
