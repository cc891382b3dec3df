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

// inboxDepth lets the coordinator run a few collective calls ahead of a slow rank.
const inboxDepth = 16

type group struct {
	inboxes []chan []byte
}

type member struct {
	rank   int
	group  *group
	closed atomic.Bool
}

// NewInMemoryGroup returns size ranks of one process connected by channels. Each returned backend
// must be driven from its own goroutine.
func NewInMemoryGroup(size int) ([]Backend, error) {
	if size < 1 {
		return nil, dserr.New(dserr.InvalidArgument, "group size must be positive, got %d", size)
	}
	g := &group{inboxes: make([]chan []byte, size)}
	members := make([]Backend, size)
	for r := range members {
		g.inboxes[r] = make(chan []byte, inboxDepth)
		members[r] = &member{rank: r, group: g}
	}
	return members, nil
}

func (m *member) Rank() int { return m.rank }

func (m *member) Size() int { return len(m.group.inboxes) }

func (m *member) Broadcast(ctx context.Context, payload []byte) ([]byte, error) {
	if m.closed.Load() {
		return nil, errClosed
	}
	if m.rank != CoordinatorRank {
		return m.receive(ctx)
	}
	for r := 1; r < m.Size(); r++ {
		if err := m.send(ctx, r, payload); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

func (m *member) Scatter(ctx context.Context, parts [][]byte) ([]byte, error) {
	if m.closed.Load() {
		return nil, errClosed
	}
	if m.rank != CoordinatorRank {
		return m.receive(ctx)
	}
	if len(parts) != m.Size() {
		return nil, dserr.New(dserr.Distribution, "scatter needs %d parts, got %d", m.Size(), len(parts))
	}
	for r := 1; r < m.Size(); r++ {
		if err := m.send(ctx, r, parts[r]); err != nil {
			return nil, err
		}
	}
	return parts[CoordinatorRank], nil
}

func (m *member) send(ctx context.Context, to int, payload []byte) error {
	select {
	case m.group.inboxes[to] <- payload:
		return nil
	case <-ctx.Done():
		return dserr.Wrap(dserr.Distribution, ctx.Err(), "send to rank %d interrupted", to)
	}
}

func (m *member) receive(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-m.group.inboxes[m.rank]:
		return payload, nil
	case <-ctx.Done():
		return nil, dserr.Wrap(dserr.Distribution, ctx.Err(), "receive on rank %d interrupted", m.rank)
	}
}

func (m *member) Close() error {
	m.closed.Store(true)
	return nil
}
