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

// Package edge defines the timestamped edge record shared by every part of the dataset engine,
// together with its binary and text encodings.
package edge

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// RecordSize is the encoded size of an Edge: four consecutive 64-bit integers.
const RecordSize = 32

// Edge is a weighted, timestamped, directed edge.
type Edge struct {
	Src       int64
	Dst       int64
	Weight    int64
	Timestamp int64
}

// Less orders edges by Src ascending, then Dst ascending, then Timestamp descending, so the first
// edge of a run sharing (Src, Dst) is the most recent one.
func Less(a, b Edge) bool {
	return Compare(a, b) < 0
}

// Compare is the three-way form of Less, usable with slices.SortStableFunc.
func Compare(a, b Edge) int {
	if c := cmp.Compare(a.Src, b.Src); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Dst, b.Dst); c != 0 {
		return c
	}
	return cmp.Compare(b.Timestamp, a.Timestamp)
}

// Equal reports whether all four fields match.
func Equal(a, b Edge) bool {
	return a == b
}

// SamePair reports whether a and b connect the same (Src, Dst) pair.
func SamePair(a, b Edge) bool {
	return a.Src == b.Src && a.Dst == b.Dst
}

// IsSelfEdge reports whether the edge starts and ends at the same vertex.
func (e Edge) IsSelfEdge() bool {
	return e.Src == e.Dst
}

// MaxVertex returns the larger of the two endpoints.
func (e Edge) MaxVertex() int64 {
	return max(e.Src, e.Dst)
}

func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", e.Src, e.Dst, e.Weight, e.Timestamp)
}

// Encode writes e into b in native byte order. b must hold at least RecordSize bytes.
func Encode(b []byte, e Edge) {
	_ = b[RecordSize-1]
	binary.NativeEndian.PutUint64(b[0:], uint64(e.Src))
	binary.NativeEndian.PutUint64(b[8:], uint64(e.Dst))
	binary.NativeEndian.PutUint64(b[16:], uint64(e.Weight))
	binary.NativeEndian.PutUint64(b[24:], uint64(e.Timestamp))
}

// Decode reads one record from b. b must hold at least RecordSize bytes.
func Decode(b []byte) Edge {
	_ = b[RecordSize-1]
	return Edge{
		Src:       int64(binary.NativeEndian.Uint64(b[0:])),
		Dst:       int64(binary.NativeEndian.Uint64(b[8:])),
		Weight:    int64(binary.NativeEndian.Uint64(b[16:])),
		Timestamp: int64(binary.NativeEndian.Uint64(b[24:])),
	}
}

// AppendEdges appends the binary encoding of edges to b.
func AppendEdges(b []byte, edges []Edge) []byte {
	start := len(b)
	b = append(b, make([]byte, len(edges)*RecordSize)...)
	for i, e := range edges {
		Encode(b[start+i*RecordSize:], e)
	}
	return b
}

// DecodeAll decodes every record in b and appends the edges to dst.
// It returns an error if b is not a whole number of records.
func DecodeAll(dst []Edge, b []byte) ([]Edge, error) {
	if len(b)%RecordSize != 0 {
		return dst, fmt.Errorf("buffer of %d bytes is not a multiple of the %d byte record size", len(b), RecordSize)
	}
	for off := 0; off < len(b); off += RecordSize {
		dst = append(dst, Decode(b[off:]))
	}
	return dst, nil
}

// ParseLine parses "<src> <dst> <weight> <timestamp>" with fields separated by any whitespace.
func ParseLine(line string) (Edge, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Edge{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	var vals [4]int64
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return Edge{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = v
	}
	return Edge{Src: vals[0], Dst: vals[1], Weight: vals[2], Timestamp: vals[3]}, nil
}

// AppendLine appends the text form of e, terminated by a newline, to b.
func AppendLine(b []byte, e Edge) []byte {
	b = strconv.AppendInt(b, e.Src, 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, e.Dst, 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, e.Weight, 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, e.Timestamp, 10)
	return append(b, '\n')
}
