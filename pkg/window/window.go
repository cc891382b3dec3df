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

package window

import (
	"math"

	"github.com/numaproj/dynograph/pkg/dserr"
)

// Calculator computes thresholds from the timestamp range of a corpus.
type Calculator struct {
	minTimestamp int64
	maxTimestamp int64
	windowTime   int64
}

// NewCalculator returns a Calculator for a corpus spanning [minTimestamp, maxTimestamp].
func NewCalculator(windowSize float64, minTimestamp, maxTimestamp int64) (*Calculator, error) {
	if err := checkWindowSize(windowSize); err != nil {
		return nil, err
	}
	return &Calculator{
		minTimestamp: minTimestamp,
		maxTimestamp: maxTimestamp,
		windowTime:   roundDown(windowSize * float64(maxTimestamp-minTimestamp)),
	}, nil
}

// WindowTime returns the width of the window in timestamp units.
func (c *Calculator) WindowTime() int64 {
	return c.windowTime
}

// Threshold returns the oldest timestamp to keep for a batch whose newest edge has timestamp latest.
func (c *Calculator) Threshold(latest int64) int64 {
	return max(c.minTimestamp, latest-c.windowTime)
}

// CountCalculator computes thresholds for generated streams, where edge i of the stream has
// timestamp i and the window is measured in edges.
type CountCalculator struct {
	batchSize  int64
	windowTime int64
}

// NewCountCalculator returns a CountCalculator for a stream of numEdges edges cut into batches of
// batchSize.
func NewCountCalculator(windowSize float64, numEdges, batchSize int64) (*CountCalculator, error) {
	if err := checkWindowSize(windowSize); err != nil {
		return nil, err
	}
	return &CountCalculator{
		batchSize:  batchSize,
		windowTime: roundDown(windowSize * float64(numEdges)),
	}, nil
}

// WindowTime returns the width of the window in edges.
func (c *CountCalculator) WindowTime() int64 {
	return c.windowTime
}

// Latest returns the timestamp of the newest edge in batch id.
func (c *CountCalculator) Latest(id int64) int64 {
	return (id+1)*c.batchSize - 1
}

// Threshold returns the oldest timestamp to keep for batch id.
func (c *CountCalculator) Threshold(id int64) int64 {
	return max(0, c.Latest(id)-c.windowTime)
}

func checkWindowSize(windowSize float64) error {
	if math.IsNaN(windowSize) || windowSize < 0 || windowSize > 1 {
		return dserr.New(dserr.InvalidArgument, "window size (%v) must be in the range [0.0, 1.0]", windowSize)
	}
	return nil
}

// Round down to nearest integer
func roundDown(x float64) int64 {
	return int64(math.Floor(x))
}
