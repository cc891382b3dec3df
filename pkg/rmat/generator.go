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

package rmat

import (
	"math/bits"
	"math/rand/v2"

	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
)

// pcgStream is the second PCG word, fixed so that the seed alone determines the sequence.
const pcgStream = 0xda3e39cb94b95bdb

// EdgeGenerator draws (src, dst) pairs by recursively choosing one of the four quadrants of the
// adjacency matrix, once per address bit.
type EdgeGenerator struct {
	numVertices int64
	levels      int
	// cumulative quadrant thresholds, scaled to total
	a, ab, abc, total float64
	rng               *rand.Rand
}

// NewEdgeGenerator returns a generator over numVertices vertices. When the probabilities sum to
// less than 1 they are scaled up; when they are all zero the quadrants are chosen uniformly.
func NewEdgeGenerator(numVertices int64, a, b, c, d float64, seed uint64) *EdgeGenerator {
	g := &EdgeGenerator{
		numVertices: numVertices,
		rng:         rand.New(rand.NewPCG(seed, pcgStream)),
	}
	if numVertices > 1 {
		g.levels = bits.Len64(uint64(numVertices - 1))
	}
	if a+b+c+d <= 0 {
		a, b, c, d = 0.25, 0.25, 0.25, 0.25
	}
	g.a = a
	g.ab = a + b
	g.abc = a + b + c
	g.total = a + b + c + d
	return g
}

// Next returns the next pair. Pairs that land outside [0, numVertices) are redrawn.
func (g *EdgeGenerator) Next() (src, dst int64) {
	for {
		src, dst = 0, 0
		for i := 0; i < g.levels; i++ {
			src <<= 1
			dst <<= 1
			r := g.rng.Float64() * g.total
			switch {
			case r < g.a:
			case r < g.ab:
				dst |= 1
			case r < g.abc:
				src |= 1
			default:
				src |= 1
				dst |= 1
			}
		}
		if src < g.numVertices && dst < g.numVertices {
			return src, dst
		}
	}
}

// Generator is the stateful batch stream behind an RMAT dataset. It is not safe for concurrent use.
type Generator struct {
	args          Args
	seed          uint64
	edges         *EdgeGenerator
	current       int64
	nextTimestamp int64
}

// NewGenerator validates args and returns a generator positioned at batch 0.
func NewGenerator(args Args, seed uint64) (*Generator, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{args: args, seed: seed}
	g.Reset()
	return g, nil
}

// Args returns the parameters the generator was built with.
func (g *Generator) Args() Args {
	return g.args
}

// Current is the id of the next batch the generator will produce.
func (g *Generator) Current() int64 {
	return g.current
}

// GetBatch produces batch id with batchSize edges. The id must equal Current(). Self edges are
// redrawn, every weight is 1 and timestamps continue from the previous batch.
func (g *Generator) GetBatch(id, batchSize int64) ([]edge.Edge, error) {
	if id != g.current {
		return nil, dserr.New(dserr.OutOfSequence, "rmat batches must be generated in order: requested batch %d, expected %d", id, g.current)
	}
	if batchSize < 0 {
		return nil, dserr.New(dserr.InvalidArgument, "batch size must be non-negative, got %d", batchSize)
	}
	out := make([]edge.Edge, batchSize)
	for i := range out {
		e := &out[i]
		for {
			e.Src, e.Dst = g.edges.Next()
			if e.Src != e.Dst {
				break
			}
		}
		e.Weight = 1
		e.Timestamp = g.nextTimestamp
		g.nextTimestamp++
	}
	g.current++
	return out, nil
}

// Reset restores the initial state: cursor 0, timestamp 0 and a freshly seeded edge source.
func (g *Generator) Reset() {
	g.current = 0
	g.nextTimestamp = 0
	g.edges = NewEdgeGenerator(g.args.NumVertices, g.args.A, g.args.B, g.args.C, g.args.D, g.seed)
}
