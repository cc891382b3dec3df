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

// Package rmat generates synthetic edge streams with the recursive-matrix (R-MAT) model.
//
// A Generator is stateful: batches are produced strictly in order and the only way back is Reset,
// which reseeds the source so that a new trial sees the identical edge sequence.
package rmat

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/numaproj/dynograph/pkg/dserr"
)

// Suffix marks an input path as an RMAT parameter string rather than an edge list file.
const Suffix = ".rmat"

// Args are the parameters of an RMAT graph.
type Args struct {
	A, B, C, D  float64
	NumEdges    int64
	NumVertices int64
}

// ParseArgs parses a parameter string of the form a-b-c-d-ne-nv.rmat, for example
// 0.55-0.15-0.15-0.15-500M-1M.rmat. Edge and vertex counts accept a K, M, G or T suffix
// (powers of 1024). Any leading directory is ignored.
func ParseArgs(s string) (Args, error) {
	name := strings.TrimSuffix(filepath.Base(s), Suffix)
	tokens := strings.Split(name, "-")
	if len(tokens) != 6 {
		return Args{}, dserr.New(dserr.InvalidArgument, "rmat parameters %q must have the form a-b-c-d-ne-nv%s", s, Suffix)
	}
	var args Args
	probs := []*float64{&args.A, &args.B, &args.C, &args.D}
	for i, p := range probs {
		v, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return Args{}, dserr.Wrap(dserr.InvalidArgument, err, "invalid rmat probability %q", tokens[i])
		}
		*p = v
	}
	var err error
	if args.NumEdges, err = parseCount(tokens[4]); err != nil {
		return Args{}, err
	}
	if args.NumVertices, err = parseCount(tokens[5]); err != nil {
		return Args{}, err
	}
	return args, nil
}

func parseCount(token string) (int64, error) {
	var shift uint
	switch {
	case strings.HasSuffix(token, "K"):
		shift = 10
	case strings.HasSuffix(token, "M"):
		shift = 20
	case strings.HasSuffix(token, "G"):
		shift = 30
	case strings.HasSuffix(token, "T"):
		shift = 40
	}
	digits := token
	if shift > 0 {
		digits = token[:len(token)-1]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, dserr.Wrap(dserr.InvalidArgument, err, "invalid rmat count %q", token)
	}
	if n > (1<<63-1)>>shift {
		return 0, dserr.New(dserr.InvalidArgument, "rmat count %q overflows", token)
	}
	return n << shift, nil
}

// Validate checks that the probabilities lie in [0, 1] with a sum of at most 1, and that the graph
// can hold at least one edge without self loops.
func (a Args) Validate() error {
	for _, p := range []float64{a.A, a.B, a.C, a.D} {
		if !(p >= 0 && p <= 1) {
			return dserr.New(dserr.InvalidArgument, "RMAT parameters must fall in the range [0, 1] and sum to 1")
		}
	}
	if a.A+a.B+a.C+a.D > 1.0 {
		return dserr.New(dserr.InvalidArgument, "RMAT parameters must fall in the range [0, 1] and sum to 1")
	}
	if a.NumEdges < 0 || a.NumVertices < 0 {
		return dserr.New(dserr.InvalidArgument, "RMAT graph must have a positive number of edges and vertices")
	}
	if a.NumEdges > 0 && a.NumVertices < 2 {
		return dserr.New(dserr.InvalidArgument, "RMAT graph with %d edges needs at least 2 vertices, got %d", a.NumEdges, a.NumVertices)
	}
	return nil
}

// String renders the arguments back in the a-b-c-d-ne-nv.rmat form, without count suffixes.
func (a Args) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{
		f(a.A), f(a.B), f(a.C), f(a.D),
		strconv.FormatInt(a.NumEdges, 10),
		strconv.FormatInt(a.NumVertices, 10),
	}, "-") + Suffix
}
