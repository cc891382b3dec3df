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
)

// CoordinatorRank is the rank that loads the corpus and drives every collective operation.
const CoordinatorRank = 0

// Backend moves opaque payloads between ranks. Payloads sent by the coordinator must not be
// modified afterwards.
type Backend interface {
	// Rank is the id of this participant, in [0, Size()).
	Rank() int
	// Size is the number of participating ranks.
	Size() int
	// Broadcast returns the coordinator's payload on every rank. The payload passed on other
	// ranks is ignored.
	Broadcast(ctx context.Context, payload []byte) ([]byte, error)
	// Scatter returns parts[Rank()] as sent by the coordinator. The coordinator must pass exactly
	// Size() parts; other ranks pass nil.
	Scatter(ctx context.Context, parts [][]byte) ([]byte, error)
	// Close releases the backend. Collective calls after Close fail.
	Close() error
}

// IsCoordinator reports whether b is the coordinator rank.
func IsCoordinator(b Backend) bool {
	return b.Rank() == CoordinatorRank
}
