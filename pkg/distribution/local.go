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

package distribution

import (
	"context"

	"go.uber.org/atomic"

	"github.com/numaproj/dynograph/pkg/dserr"
)

type local struct {
	closed atomic.Bool
}

// NewLocal returns the single-rank backend. Broadcast and Scatter hand the input straight back.
func NewLocal() Backend {
	return &local{}
}

func (l *local) Rank() int { return CoordinatorRank }

func (l *local) Size() int { return 1 }

func (l *local) Broadcast(_ context.Context, payload []byte) ([]byte, error) {
	if l.closed.Load() {
		return nil, errClosed
	}
	return payload, nil
}

func (l *local) Scatter(_ context.Context, parts [][]byte) ([]byte, error) {
	if l.closed.Load() {
		return nil, errClosed
	}
	if len(parts) != 1 {
		return nil, dserr.New(dserr.Distribution, "scatter needs 1 part, got %d", len(parts))
	}
	return parts[0], nil
}

func (l *local) Close() error {
	l.closed.Store(true)
	return nil
}

var errClosed = dserr.New(dserr.Distribution, "backend is closed")
