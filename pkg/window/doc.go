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

// Package window computes the retention window of a batch. A benchmark keeps only the most recent
// fraction of the corpus' timestamp range in the graph: for every batch a threshold timestamp is
// derived from the newest edge of the batch, and edges older than the threshold are excluded from the
// batch and deleted from the graph.
//
// The window width is floor(window_size * (max_timestamp - min_timestamp)). A window size of 1 keeps
// everything (the threshold never moves past min_timestamp), a window size of 0 keeps only the
// current batch. Because the newest timestamp of a batch never decreases from one batch to the next,
// the threshold is monotonically non-decreasing in the batch id.
package window
