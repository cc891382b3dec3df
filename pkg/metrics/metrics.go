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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelVersion  = "version"
	LabelPlatform = "platform"
	LabelSource   = "source" // edge source, "edgelist" or "rmat"
	LabelSortMode = "sort_mode"
	LabelRank     = "rank"
	LabelRegion   = "region"
	LabelAlg      = "alg"
	LabelReason   = "reason"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A metric with a constant value '1', labeled by DynoGraph binary version and platform",
	}, []string{LabelVersion, LabelPlatform})
)

// Dataset metrics
var (
	// EdgesLoaded is the number of edges ingested by the coordinator, from a file or a generator
	EdgesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "dataset",
		Name:      "edges_loaded_total",
		Help:      "Total number of edges loaded into the dataset",
	}, []string{LabelSource})

	// BatchesServed is the number of batches handed out to the driver
	BatchesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "dataset",
		Name:      "batches_served_total",
		Help:      "Total number of batches returned to the benchmark driver",
	}, []string{LabelSource, LabelSortMode})

	// EdgesDropped counts edges removed by preprocessing, labeled by reason ("window" or "dedup")
	EdgesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "dataset",
		Name:      "edges_dropped_total",
		Help:      "Total number of edges removed from batches by preprocessing",
	}, []string{LabelSortMode, LabelReason})

	// WindowThreshold is the most recent deletion threshold handed to the engine
	WindowThreshold = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "dataset",
		Name:      "window_threshold",
		Help:      "The most recent window threshold timestamp",
	})
)

// Distribution metrics
var (
	// ScatteredEdges is the number of edges received by this rank from the coordinator
	ScatteredEdges = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "distribution",
		Name:      "scattered_edges_total",
		Help:      "Total number of edges received through scatter operations",
	}, []string{LabelRank})

	// CollectiveOps counts broadcast and scatter calls
	CollectiveOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "distribution",
		Name:      "collective_ops_total",
		Help:      "Total number of collective operations",
	}, []string{LabelRank, LabelReason})
)

// Benchmark metrics
var (
	// RegionDuration observes instrumented regions (insertions, deletions, algorithm passes)
	RegionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "benchmark",
		Name:      "region_duration_seconds",
		Help:      "Duration of instrumented benchmark regions (1 microsecond to ~16 minutes)",
		Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 16),
	}, []string{LabelRegion})

	// AlgRuns counts algorithm passes triggered by the epoch scheduler
	AlgRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "benchmark",
		Name:      "alg_runs_total",
		Help:      "Total number of algorithm passes",
	}, []string{LabelAlg})
)
