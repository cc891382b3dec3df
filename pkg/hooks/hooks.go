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

// Package hooks instruments the benchmark. Regions are timed into a prometheus histogram and
// reported as structured log lines carrying the attributes set so far.
package hooks

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/numaproj/dynograph/pkg/metrics"
)

type region struct {
	name  string
	start time.Time
}

// Hooks is not safe for concurrent use; each rank owns one.
type Hooks struct {
	log   *zap.SugaredLogger
	open  []region
	keys  []string
	attrs map[string]any
	now   func() time.Time
}

// New returns hooks that log to log.
func New(log *zap.SugaredLogger) *Hooks {
	return &Hooks{
		log:   log,
		attrs: make(map[string]any),
		now:   time.Now,
	}
}

// RegionBegin starts timing a region. Regions nest.
func (h *Hooks) RegionBegin(name string) {
	h.open = append(h.open, region{name: name, start: h.now()})
}

// RegionEnd stops the innermost region and returns its duration. It returns 0 when no region is
// open.
func (h *Hooks) RegionEnd() time.Duration {
	if len(h.open) == 0 {
		h.log.Warn("RegionEnd called without a matching RegionBegin")
		return 0
	}
	r := h.open[len(h.open)-1]
	h.open = h.open[:len(h.open)-1]
	elapsed := h.now().Sub(r.start)
	metrics.RegionDuration.WithLabelValues(r.name).Observe(elapsed.Seconds())
	fields := make([]any, 0, 4+2*len(h.keys))
	fields = append(fields, "region", r.name, "seconds", elapsed.Seconds())
	for _, k := range h.keys {
		fields = append(fields, k, h.attrs[k])
	}
	h.log.Infow("Region finished", fields...)
	return elapsed
}

// SetAttr records an attribute that is attached to every following region report.
func (h *Hooks) SetAttr(key string, value any) {
	if !slices.Contains(h.keys, key) {
		h.keys = append(h.keys, key)
	}
	h.attrs[key] = value
}

// Attr returns the current value of an attribute.
func (h *Hooks) Attr(key string) (any, bool) {
	v, ok := h.attrs[key]
	return v, ok
}
