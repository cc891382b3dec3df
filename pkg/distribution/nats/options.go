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
	"time"

	"github.com/numaproj/dynograph/pkg/shared/util"
)

// Environment variables overriding the default timeouts, for slow clusters.
const (
	EnvJoinTimeout  = "DYNOGRAPH_NATS_JOIN_TIMEOUT"
	EnvFlushTimeout = "DYNOGRAPH_NATS_FLUSH_TIMEOUT"
)

const (
	defaultSubjectPrefix = "dynograph"
	defaultRunID         = "default"
	defaultJoinTimeout   = 60 * time.Second
	defaultFlushTimeout  = 30 * time.Second
)

type options struct {
	subjectPrefix string
	runID         string
	joinTimeout   time.Duration
	flushTimeout  time.Duration
	maxChunkSize  int
}

func defaultOptions() *options {
	return &options{
		subjectPrefix: defaultSubjectPrefix,
		runID:         defaultRunID,
		joinTimeout:   util.LookupEnvDurationOr(EnvJoinTimeout, defaultJoinTimeout),
		flushTimeout:  util.LookupEnvDurationOr(EnvFlushTimeout, defaultFlushTimeout),
	}
}

// Option configures the NATS backend.
type Option func(*options)

// WithRunID scopes every subject to one run, so concurrent runs can share a server.
func WithRunID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.runID = id
		}
	}
}

// WithSubjectPrefix sets the first subject token.
func WithSubjectPrefix(prefix string) Option {
	return func(o *options) {
		o.subjectPrefix = prefix
	}
}

// WithJoinTimeout bounds how long the ranks wait for each other at startup.
func WithJoinTimeout(d time.Duration) Option {
	return func(o *options) {
		o.joinTimeout = d
	}
}

// WithFlushTimeout bounds how long the coordinator waits for the server to accept a collective call.
func WithFlushTimeout(d time.Duration) Option {
	return func(o *options) {
		o.flushTimeout = d
	}
}

// WithMaxChunkSize caps the size of a single message. Zero means the server's max payload.
func WithMaxChunkSize(n int) Option {
	return func(o *options) {
		o.maxChunkSize = n
	}
}
