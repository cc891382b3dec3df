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

// Package nats implements the distribution backend on core NATS.
//
// Rank r listens on the subject "<prefix>.<run id>.rank.<r>". Before any collective call the
// workers announce themselves on "<prefix>.<run id>.join" and the coordinator waits until all of
// them have joined, so nothing the coordinator publishes can be lost to a missing subscriber.
// Payloads larger than the server's max payload are sent as a sequence of chunks.
package nats
