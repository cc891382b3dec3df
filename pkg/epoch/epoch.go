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

// Package epoch paces algorithm passes against insertion progress. The batches of a run are spread
// over num_epochs epochs and an algorithm pass runs at the last batch of every epoch.
package epoch

import (
	"math/bits"
)

// EnableAlgsForBatch reports whether an algorithm pass should run after batchID. With
// batches_per_epoch = numBatches / numEpochs (real division), a pass runs when
// floor(batchID / batches_per_epoch) < floor((batchID+1) / batches_per_epoch). Over
// batchID in [0, numBatches) it returns true exactly numEpochs times, the last time at
// numBatches-1, provided 1 <= numEpochs <= numBatches.
//
// The quotients are evaluated exactly as floor(batchID * numEpochs / numBatches); dividing by a
// rounded float64 batches_per_epoch drops the final pass for inputs such as 9 batches over 7 epochs.
func EnableAlgsForBatch(batchID, numBatches, numEpochs int64) bool {
	if batchID < 0 || batchID >= numBatches || numEpochs < 1 {
		return false
	}
	// How many algs run before this batch?
	before := epochsBefore(batchID, numBatches, numEpochs)
	// How many algs should run after this batch?
	after := epochsBefore(batchID+1, numBatches, numEpochs)
	// If the count changes between this batch and the next, we should run an alg now
	return after-before > 0
}

// BatchesPerEpoch is the average number of batches in an epoch.
func BatchesPerEpoch(numBatches, numEpochs int64) float64 {
	return float64(numBatches) / float64(numEpochs)
}

// epochsBefore returns floor(batchID / (numBatches / numEpochs)) without rounding error.
// batchID <= numBatches keeps the 128-bit quotient below 2^64.
func epochsBefore(batchID, numBatches, numEpochs int64) int64 {
	hi, lo := bits.Mul64(uint64(batchID), uint64(numEpochs))
	q, _ := bits.Div64(hi, lo, uint64(numBatches))
	return int64(q)
}

// Scheduler binds the batch and epoch counts of a run.
type Scheduler struct {
	NumBatches int64
	NumEpochs  int64
}

// Enabled reports whether an algorithm pass runs after batchID.
func (s Scheduler) Enabled(batchID int64) bool {
	return EnableAlgsForBatch(batchID, s.NumBatches, s.NumEpochs)
}

// FiringBatches lists the batch ids after which an algorithm pass runs.
func (s Scheduler) FiringBatches() []int64 {
	out := make([]int64, 0, max(s.NumEpochs, 0))
	for id := int64(0); id < s.NumBatches; id++ {
		if s.Enabled(id) {
			out = append(out, id)
		}
	}
	return out
}
