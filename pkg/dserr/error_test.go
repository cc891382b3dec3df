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

package dserr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := New(BatchOutOfRange, "batch %d does not exist", 7)
	assert.Equal(t, "BatchOutOfRange: batch 7 does not exist", err.Error())
	assert.True(t, errors.Is(err, Sentinel(BatchOutOfRange)))
	assert.False(t, errors.Is(err, Sentinel(Unsorted)))
}

func TestWrap(t *testing.T) {
	err := Wrap(FileRead, io.ErrUnexpectedEOF, "failed to load graph from %s", "a.graph.bin")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, Sentinel(FileRead))
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", New(SelfEdge, "edge 3 is a self-edge"))
	assert.Equal(t, SelfEdge, KindOf(wrapped))
	assert.Equal(t, Unknown, KindOf(io.EOF))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestErrKind_String(t *testing.T) {
	tests := map[ErrKind]string{
		UnknownFormat:   "UnknownFormat",
		RecordCount:     "RecordCount",
		TooManyEpochs:   "TooManyEpochs",
		OutOfSequence:   "OutOfSequence",
		Distribution:    "Distribution",
		ErrKind(100):    "Unknown",
		InvalidArgument: "InvalidArgument",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.String())
	}
}
