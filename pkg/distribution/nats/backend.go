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

package nats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/numaproj/dynograph/pkg/distribution"
	"github.com/numaproj/dynograph/pkg/dserr"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

const (
	// headerChunks carries the number of messages a payload was split into
	headerChunks = "Dynograph-Chunks"
	// headerReserve leaves room for headers when a chunk is sized from the server's max payload
	headerReserve      = 512
	joinRetryInterval  = 100 * time.Millisecond
	joinAttemptTimeout = 2 * time.Second
)

// Backend is a distribution.Backend on core NATS. It is driven by a single goroutine per rank.
type Backend struct {
	rank int
	size int
	opts *options
	nc   *nats.Conn
	// sub receives this rank's messages; the coordinator only sends and has none
	sub *nats.Subscription
	log *zap.SugaredLogger
}

var _ distribution.Backend = (*Backend)(nil)

// NewBackend connects rank to the NATS server at url and blocks until all size ranks have joined,
// or the join timeout expires.
func NewBackend(ctx context.Context, url string, rank, size int, opts ...Option) (*Backend, error) {
	if size < 1 || rank < 0 || rank >= size {
		return nil, dserr.New(dserr.InvalidArgument, "rank (%d) must be in [0, %d)", rank, size)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	log := logging.FromContext(ctx).With("rank", rank, "size", size, "runID", o.runID)
	nc, err := nats.Connect(url,
		nats.Name(fmt.Sprintf("dynograph-%s-rank-%d", o.runID, rank)),
		// Enable Nats auto reconnect
		nats.MaxReconnects(-1),
		nats.PingInterval(3*time.Second),
		nats.MaxPingsOutstanding(2),
		nats.FlusherTimeout(o.flushTimeout),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Errorw("Nats default: error occurred for subscription", zap.Error(err))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("Nats default: connection closed")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Errorw("Nats default: disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("Nats default: reconnected")
		}),
	)
	if err != nil {
		return nil, dserr.Wrap(dserr.Distribution, err, "failed to connect to nats url=%s", url)
	}
	b := &Backend{rank: rank, size: size, opts: o, nc: nc, log: log}
	if err := b.join(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	log.Info("All ranks joined")
	return b, nil
}

func (b *Backend) subject(tokens ...string) string {
	s := b.opts.subjectPrefix + "." + b.opts.runID
	for _, t := range tokens {
		s += "." + t
	}
	return s
}

func (b *Backend) rankSubject(rank int) string {
	return b.subject("rank", strconv.Itoa(rank))
}

func (b *Backend) join(ctx context.Context) error {
	if b.size == 1 {
		return nil
	}
	joinCtx, cancel := context.WithTimeout(ctx, b.opts.joinTimeout)
	defer cancel()
	if b.rank == distribution.CoordinatorRank {
		return b.awaitJoins(joinCtx)
	}
	sub, err := b.nc.SubscribeSync(b.rankSubject(b.rank))
	if err != nil {
		return dserr.Wrap(dserr.Distribution, err, "failed to subscribe")
	}
	// a scatter of a large batch can be far above the default pending limits
	if err := sub.SetPendingLimits(-1, -1); err != nil {
		return dserr.Wrap(dserr.Distribution, err, "failed to lift pending limits")
	}
	b.sub = sub
	if err := b.nc.FlushTimeout(b.opts.flushTimeout); err != nil {
		return dserr.Wrap(dserr.Distribution, err, "failed to flush subscription")
	}
	for {
		attemptCtx, cancelAttempt := context.WithTimeout(joinCtx, joinAttemptTimeout)
		_, err := b.nc.RequestWithContext(attemptCtx, b.subject("join"), []byte(strconv.Itoa(b.rank)))
		cancelAttempt()
		if err == nil {
			return nil
		}
		b.log.Debugw("Coordinator not ready, retrying join", zap.Error(err))
		select {
		case <-joinCtx.Done():
			return dserr.Wrap(dserr.Distribution, joinCtx.Err(), "rank %d failed to join the coordinator", b.rank)
		case <-time.After(joinRetryInterval):
		}
	}
}

func (b *Backend) awaitJoins(ctx context.Context) (err error) {
	sub, err := b.nc.SubscribeSync(b.subject("join"))
	if err != nil {
		return dserr.Wrap(dserr.Distribution, err, "failed to subscribe to joins")
	}
	defer func() {
		err = multierr.Append(err, sub.Unsubscribe())
	}()
	joined := make(map[int]struct{}, b.size-1)
	for len(joined) < b.size-1 {
		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			return dserr.Wrap(dserr.Distribution, err, "%d of %d ranks joined", len(joined)+1, b.size)
		}
		r, err := strconv.Atoi(string(msg.Data))
		if err != nil || r <= distribution.CoordinatorRank || r >= b.size {
			b.log.Warnw("Ignoring join from an unexpected rank", "data", string(msg.Data))
			continue
		}
		if err := msg.Respond([]byte("ok")); err != nil {
			return dserr.Wrap(dserr.Distribution, err, "failed to acknowledge rank %d", r)
		}
		if _, ok := joined[r]; !ok {
			joined[r] = struct{}{}
			b.log.Debugw("Rank joined", "joinedRank", r)
		}
	}
	return nil
}

func (b *Backend) Rank() int { return b.rank }

func (b *Backend) Size() int { return b.size }

func (b *Backend) Broadcast(ctx context.Context, payload []byte) ([]byte, error) {
	if b.nc.IsClosed() {
		return nil, errClosed
	}
	if b.rank != distribution.CoordinatorRank {
		return b.receive(ctx)
	}
	for r := 1; r < b.size; r++ {
		if err := b.publish(b.rankSubject(r), payload); err != nil {
			return nil, err
		}
	}
	return payload, b.flush()
}

func (b *Backend) Scatter(ctx context.Context, parts [][]byte) ([]byte, error) {
	if b.nc.IsClosed() {
		return nil, errClosed
	}
	if b.rank != distribution.CoordinatorRank {
		return b.receive(ctx)
	}
	if len(parts) != b.size {
		return nil, dserr.New(dserr.Distribution, "scatter needs %d parts, got %d", b.size, len(parts))
	}
	for r := 1; r < b.size; r++ {
		if err := b.publish(b.rankSubject(r), parts[r]); err != nil {
			return nil, err
		}
	}
	return parts[distribution.CoordinatorRank], b.flush()
}

func (b *Backend) chunkSize() int {
	if b.opts.maxChunkSize > 0 {
		return b.opts.maxChunkSize
	}
	return max(int(b.nc.MaxPayload())-headerReserve, 1)
}

func (b *Backend) publish(subject string, payload []byte) error {
	size := b.chunkSize()
	n := max((len(payload)+size-1)/size, 1)
	for i := 0; i < n; i++ {
		lo := i * size
		hi := min(lo+size, len(payload))
		msg := nats.NewMsg(subject)
		msg.Header.Set(headerChunks, strconv.Itoa(n))
		msg.Data = payload[lo:hi]
		if err := b.nc.PublishMsg(msg); err != nil {
			return dserr.Wrap(dserr.Distribution, err, "failed to publish to %s", subject)
		}
	}
	return nil
}

func (b *Backend) flush() error {
	if err := b.nc.FlushTimeout(b.opts.flushTimeout); err != nil {
		return dserr.Wrap(dserr.Distribution, err, "failed to flush")
	}
	return nil
}

func (b *Backend) receive(ctx context.Context) ([]byte, error) {
	msg, err := b.sub.NextMsgWithContext(ctx)
	if err != nil {
		return nil, dserr.Wrap(dserr.Distribution, err, "receive on rank %d failed", b.rank)
	}
	n, err := strconv.Atoi(msg.Header.Get(headerChunks))
	if err != nil || n < 1 {
		return nil, dserr.New(dserr.Distribution, "rank %d received a message without a valid %s header", b.rank, headerChunks)
	}
	if n == 1 {
		return msg.Data, nil
	}
	payload := make([]byte, 0, n*len(msg.Data))
	payload = append(payload, msg.Data...)
	for i := 1; i < n; i++ {
		if msg, err = b.sub.NextMsgWithContext(ctx); err != nil {
			return nil, dserr.Wrap(dserr.Distribution, err, "receive on rank %d failed after %d of %d chunks", b.rank, i, n)
		}
		payload = append(payload, msg.Data...)
	}
	return payload, nil
}

// Close unsubscribes and closes the connection.
func (b *Backend) Close() error {
	var err error
	if b.sub != nil && b.sub.IsValid() {
		err = multierr.Append(err, b.sub.Unsubscribe())
	}
	b.nc.Close()
	return err
}

var errClosed = dserr.New(dserr.Distribution, "nats backend is closed")
