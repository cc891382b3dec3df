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

// Package partition maps batch ids to edge index ranges. The corpus is cut into
// floor(total_edges / batch_size) batches of exactly batch_size edges; trailing edges that do not
// fill a whole batch are never visited. The package also computes how one batch is split into
// contiguous slices across worker ranks.
package partition
