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

package edgelist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

func testContext() context.Context {
	return logging.WithLogger(context.Background(), logging.NewNopLogger())
}

func sampleEdges(n int) []edge.Edge {
	edges := make([]edge.Edge, n)
	for i := range edges {
		edges[i] = edge.Edge{Src: int64(i % 7), Dst: int64(i%7 + 1), Weight: int64(i * 3), Timestamp: int64(i / 2)}
	}
	return edges
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("/tmp/a.graph.bin")
	assert.NoError(t, err)
	assert.Equal(t, FormatBinary, f)
	f, err = FormatOf("a.graph.el")
	assert.NoError(t, err)
	assert.Equal(t, FormatASCII, f)
	_, err = FormatOf("a.csv")
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.UnknownFormat))
}

func TestRoundTrip(t *testing.T) {
	// more than one read chunk
	edges := sampleEdges(readChunkRecords*2 + 17)
	for _, suffix := range []string{BinarySuffix, ASCIISuffix} {
		t.Run(suffix, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "edges"+suffix)
			require.NoError(t, Write(path, edges))
			got, err := Load(testContext(), path)
			require.NoError(t, err)
			assert.Equal(t, edges, got)
			assert.Equal(t, len(edges), cap(got))
		})
	}
}

func TestLoadBinary_RecordCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.graph.bin")
	b := edge.AppendEdges(nil, sampleEdges(3))
	require.NoError(t, os.WriteFile(path, b[:len(b)-5], 0o644))
	_, err := Load(testContext(), path)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.RecordCount))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testContext(), filepath.Join(t.TempDir(), "missing.graph.bin"))
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.FileRead))
	_, err = Load(testContext(), filepath.Join(t.TempDir(), "missing.graph.el"))
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.FileRead))
}

func TestLoad_UnknownFormat(t *testing.T) {
	_, err := Load(testContext(), "edges.txt")
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.UnknownFormat))
}

func TestLoadASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.graph.el")
	// no trailing newline and a blank line in the middle
	require.NoError(t, os.WriteFile(path, []byte("1 2 1 0\n\n1 2 9 5\n3\t4 2 6"), 0o644))
	got, err := Load(testContext(), path)
	require.NoError(t, err)
	assert.Equal(t, []edge.Edge{{Src: 1, Dst: 2, Weight: 1, Timestamp: 0}, {Src: 1, Dst: 2, Weight: 9, Timestamp: 5}, {Src: 3, Dst: 4, Weight: 2, Timestamp: 6}}, got)
}

func TestLoadASCII_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.graph.el")
	require.NoError(t, os.WriteFile(path, []byte("1 2 1 0\n1 2 x 5\n"), 0o644))
	_, err := Load(testContext(), path)
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.FileRead))
	assert.Contains(t, err.Error(), "line 2")
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]int64{
		"":              0,
		"1 2 3 4\n":     1,
		"1 2 3 4":       1,
		"a\nb\nc\n":     3,
		"a\nb\nc\nlast": 4,
	}
	i := 0
	for content, want := range tests {
		path := filepath.Join(dir, "f"+string(rune('a'+i)))
		i++
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		got, err := countLines(path)
		assert.NoError(t, err)
		assert.Equal(t, want, got, "content %q", content)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]edge.Edge{{Src: 1, Dst: 2, Weight: 0, Timestamp: 1}, {Src: 2, Dst: 3, Weight: 0, Timestamp: 1}, {Src: 3, Dst: 4, Weight: 0, Timestamp: 2}}))

	err := Validate([]edge.Edge{{Src: 1, Dst: 2, Weight: 0, Timestamp: 5}, {Src: 2, Dst: 3, Weight: 0, Timestamp: 4}})
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.Unsorted))

	err = Validate([]edge.Edge{{Src: 1, Dst: 2, Weight: 0, Timestamp: 1}, {Src: 3, Dst: 3, Weight: 0, Timestamp: 2}})
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.SelfEdge))
	assert.Contains(t, err.Error(), "edge 1")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "edges.json"), sampleEdges(2))
	assert.ErrorIs(t, err, dserr.Sentinel(dserr.UnknownFormat))
}
