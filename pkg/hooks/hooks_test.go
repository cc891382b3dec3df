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

package hooks

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/numaproj/dynograph/pkg/metrics"
)

func newObserved() (*Hooks, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return New(zap.New(core).Sugar()), logs
}

func regionHistogram(t *testing.T, region string) *dto.Histogram {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.RegionDuration.WithLabelValues(region).(prometheus.Metric).Write(&m))
	return m.GetHistogram()
}

func TestRegion(t *testing.T) {
	before := regionHistogram(t, "insertions")
	h, logs := newObserved()
	clock := time.Unix(100, 0)
	h.now = func() time.Time { return clock }

	h.SetAttr("trial", 0)
	h.SetAttr("batch", 3)
	h.RegionBegin("insertions")
	clock = clock.Add(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, h.RegionEnd())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Region finished", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "insertions", fields["region"])
	assert.Equal(t, 1.5, fields["seconds"])
	assert.EqualValues(t, 3, fields["batch"])
	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.RegionDuration), 1)
	after := regionHistogram(t, "insertions")
	assert.Equal(t, before.GetSampleCount()+1, after.GetSampleCount())
	assert.InDelta(t, before.GetSampleSum()+1.5, after.GetSampleSum(), 1e-9)
}

func TestRegion_Nested(t *testing.T) {
	h, _ := newObserved()
	clock := time.Unix(0, 0)
	h.now = func() time.Time { return clock }

	h.RegionBegin("outer")
	clock = clock.Add(time.Second)
	h.RegionBegin("inner")
	clock = clock.Add(time.Second)
	assert.Equal(t, time.Second, h.RegionEnd())
	assert.Equal(t, 2*time.Second, h.RegionEnd())
}

func TestRegionEnd_Unbalanced(t *testing.T) {
	h, logs := newObserved()
	assert.Equal(t, time.Duration(0), h.RegionEnd())
	assert.Equal(t, 1, logs.FilterMessage("RegionEnd called without a matching RegionBegin").Len())
}

func TestSetAttr(t *testing.T) {
	h, _ := newObserved()
	h.SetAttr("k", "v1")
	h.SetAttr("k", "v2")
	v, ok := h.Attr("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, []string{"k"}, h.keys)
	_, ok = h.Attr("missing")
	assert.False(t, ok)
}
