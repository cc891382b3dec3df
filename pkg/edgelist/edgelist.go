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

// Package edgelist loads and writes edge corpora. Two formats are supported, selected by the file
// suffix: ".graph.bin" holds headerless 32-byte records (src, dst, weight, timestamp) in native byte
// order, ".graph.el" holds one "<src> <dst> <weight> <timestamp>" line per edge.
package edgelist

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/edge"
	"github.com/numaproj/dynograph/pkg/shared/logging"
	"github.com/numaproj/dynograph/pkg/shared/util"
)

const (
	BinarySuffix = ".graph.bin"
	ASCIISuffix  = ".graph.el"
)

// records decoded per read from a binary file
const readChunkRecords = 4096

// Format is an on-disk edge list format.
type Format int

const (
	FormatUnknown Format = iota
	FormatBinary
	FormatASCII
)

// FormatOf picks the format from the path suffix.
func FormatOf(path string) (Format, error) {
	suffix, ok := util.HasAnySuffix(path, BinarySuffix, ASCIISuffix)
	if !ok {
		return FormatUnknown, dserr.New(dserr.UnknownFormat, "unrecognized file extension for %s, expecting %s or %s", path, BinarySuffix, ASCIISuffix)
	}
	if suffix == BinarySuffix {
		return FormatBinary, nil
	}
	return FormatASCII, nil
}

// Load reads every edge of the file at path. The edges are returned as read; call Validate to check
// the corpus invariants.
func Load(ctx context.Context, path string) ([]edge.Edge, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatBinary {
		return loadBinary(ctx, path)
	}
	return loadASCII(ctx, path)
}

func loadBinary(ctx context.Context, path string) ([]edge.Edge, error) {
	log := logging.FromContext(ctx)
	log.Infow("Checking file size", zap.String("path", path))
	st, err := os.Stat(path)
	if err != nil {
		return nil, dserr.Wrap(dserr.FileRead, err, "failed to stat %s", path)
	}
	if st.Size()%edge.RecordSize != 0 {
		return nil, dserr.New(dserr.RecordCount, "size of %s (%d bytes) is not a multiple of the %d byte edge record", path, st.Size(), edge.RecordSize)
	}
	numEdges := st.Size() / edge.RecordSize
	log.Infow("Preloading directed edges", zap.Int64("numEdges", numEdges), zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, dserr.Wrap(dserr.FileRead, err, "failed to open %s", path)
	}
	defer f.Close()

	edges := make([]edge.Edge, 0, numEdges)
	buf := make([]byte, readChunkRecords*edge.RecordSize)
	for remaining := numEdges; remaining > 0; {
		n := min(remaining, readChunkRecords)
		chunk := buf[:n*edge.RecordSize]
		if _, err := io.ReadFull(f, chunk); err != nil {
			return nil, dserr.Wrap(dserr.FileRead, err, "failed to load graph from %s after %d edges", path, len(edges))
		}
		// chunk is a whole number of records
		edges, _ = edge.DecodeAll(edges, chunk)
		remaining -= n
	}
	return edges, nil
}

// countLines counts newline characters, plus one for a final line without a trailing newline.
func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var (
		lines int64
		last  byte = '\n'
		buf        = make([]byte, 64*1024)
	)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		lines++
	}
	return lines, nil
}

func loadASCII(ctx context.Context, path string) ([]edge.Edge, error) {
	log := logging.FromContext(ctx)
	log.Infow("Counting lines", zap.String("path", path))
	numLines, err := countLines(path)
	if err != nil {
		return nil, dserr.Wrap(dserr.FileRead, err, "failed to open %s", path)
	}
	log.Infow("Preloading directed edges", zap.Int64("numEdges", numLines), zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, dserr.Wrap(dserr.FileRead, err, "failed to open %s", path)
	}
	defer f.Close()

	edges := make([]edge.Edge, 0, numLines)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		e, err := edge.ParseLine(string(line))
		if err != nil {
			return nil, dserr.Wrap(dserr.FileRead, err, "malformed edge on line %d of %s", lineNo, path)
		}
		edges = append(edges, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, dserr.Wrap(dserr.FileRead, err, "failed to read %s", path)
	}
	return edges, nil
}

// Validate checks that edges are sorted by timestamp and contain no self-edge.
func Validate(edges []edge.Edge) error {
	for i := 1; i < len(edges); i++ {
		if edges[i].Timestamp < edges[i-1].Timestamp {
			return dserr.New(dserr.Unsorted, "edges not sorted by timestamp: edge %d has timestamp %d after %d", i, edges[i].Timestamp, edges[i-1].Timestamp)
		}
	}
	for i, e := range edges {
		if e.IsSelfEdge() {
			return dserr.New(dserr.SelfEdge, "no self-edges allowed: edge %d is %s", i, e)
		}
	}
	return nil
}

// Write stores edges at path in the format selected by its suffix.
func Write(path string, edges []edge.Edge) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s, %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	var rec []byte
	for _, e := range edges {
		rec = rec[:0]
		if format == FormatBinary {
			rec = edge.AppendEdges(rec, []edge.Edge{e})
		} else {
			rec = edge.AppendLine(rec, e)
		}
		if _, err = w.Write(rec); err != nil {
			return fmt.Errorf("failed to write %s, %w", path, err)
		}
	}
	return w.Flush()
}
