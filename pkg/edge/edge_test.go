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

package edge

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLess(t *testing.T) {
	tests := []struct {
		name string
		a, b Edge
		want bool
	}{
		{"src first", Edge{Src: 1, Dst: 9}, Edge{Src: 2, Dst: 0}, true},
		{"then dst", Edge{Src: 1, Dst: 2}, Edge{Src: 1, Dst: 3}, true},
		{"newer timestamp first", Edge{Src: 1, Dst: 2, Timestamp: 5}, Edge{Src: 1, Dst: 2, Timestamp: 0}, true},
		{"older timestamp after", Edge{Src: 1, Dst: 2, Timestamp: 0}, Edge{Src: 1, Dst: 2, Timestamp: 5}, false},
		{"weight ignored", Edge{Src: 1, Dst: 2, Weight: 1}, Edge{Src: 1, Dst: 2, Weight: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Less(tt.a, tt.b))
		})
	}
}

func TestCompare_Sort(t *testing.T) {
	edges := []Edge{{3, 4, 2, 6}, {1, 2, 1, 0}, {1, 2, 9, 5}}
	slices.SortStableFunc(edges, Compare)
	assert.Equal(t, []Edge{{1, 2, 9, 5}, {1, 2, 1, 0}, {3, 4, 2, 6}}, edges)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Edge{1, 2, 3, 4}, Edge{1, 2, 3, 4}))
	assert.False(t, Equal(Edge{1, 2, 3, 4}, Edge{1, 2, 3, 5}))
	assert.True(t, SamePair(Edge{1, 2, 3, 4}, Edge{1, 2, 7, 8}))
}

func TestEdgeHelpers(t *testing.T) {
	assert.True(t, Edge{Src: 4, Dst: 4}.IsSelfEdge())
	assert.Equal(t, int64(9), Edge{Src: 9, Dst: 4}.MaxVertex())
	assert.Equal(t, "(1,2,3,4)", Edge{1, 2, 3, 4}.String())
}

func TestBinaryCodec(t *testing.T) {
	edges := []Edge{{1, 2, 3, 4}, {-1, 1 << 40, 0, -7}, {5, 6, 7, 8}}
	b := AppendEdges(nil, edges)
	require.Len(t, b, 3*RecordSize)

	got, err := DecodeAll(make([]Edge, 0, len(edges)), b)
	require.NoError(t, err)
	assert.Equal(t, edges, got)

	_, err = DecodeAll(nil, b[:RecordSize+1])
	assert.Error(t, err)
}

func TestParseLine(t *testing.T) {
	e, err := ParseLine("10 20\t3   400")
	require.NoError(t, err)
	assert.Equal(t, Edge{10, 20, 3, 400}, e)

	_, err = ParseLine("1 2 3")
	assert.Error(t, err)
	_, err = ParseLine("1 2 x 4")
	assert.Error(t, err)

	assert.Equal(t, "10 20 3 400\n", string(AppendLine(nil, e)))
}
