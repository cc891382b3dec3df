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

// Package distribution abstracts the collective operations that split a dataset across ranks.
//
// Every rank runs the same driver loop and makes the same sequence of collective calls. Rank 0,
// the coordinator, owns the loaded corpus; it broadcasts scalar aggregates and scatters each batch
// so that rank r ends up with a contiguous slice of every batch. Each collective call blocks until
// this rank's value arrives, so a call acts as a barrier for the batch it belongs to.
//
// Three backends are provided: a single-rank identity pass-through (NewLocal), an in-process
// group of ranks connected by channels (NewInMemoryGroup), and a message-passing backend over
// NATS (package distribution/nats).
package distribution
