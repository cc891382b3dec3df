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


package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/numaproj/dynograph/pkg/benchmark"
	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/dataset"
	"github.com/numaproj/dynograph/pkg/distribution"
	"github.com/numaproj/dynograph/pkg/epoch"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

func NewInspectCommand() *cobra.Command {

	var configFile string

	command := &cobra.Command{
		Use:   "inspect",
		Short: "Print the batches, window thresholds and epochs of a dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			// inspection always runs on a single rank
			args.Rank, args.NumWorkers, args.NatsURL = 0, 1, ""
			if err := args.Validate(); err != nil {
				return err
			}
			ctx := logging.WithLogger(context.Background(), logging.NewLogger().Named("inspect"))
			return inspect(ctx, args, cmd.OutOrStdout())
		},
	}
	command.Flags().StringVar(&configFile, "config", "", "Path to a YAML file with benchmark arguments")
	config.AddFlags(command.Flags())
	return command
}

func inspect(ctx context.Context, args config.Args, out io.Writer) error {
	backend := distribution.NewLocal()
	defer func() { _ = backend.Close() }()
	ds, err := dataset.New(ctx, args, backend)
	if err != nil {
		return err
	}
	defer ds.Reset()

	fmt.Fprintf(out, "input: %s\n", args.InputPath)
	fmt.Fprintf(out, "edges: %d, batches: %d, max vertex id: %d, timestamps: [%d, %d], directed: %t\n",
		ds.NumEdges(), ds.NumBatches(), ds.MaxVertexID(), ds.MinTimestamp(), ds.MaxTimestamp(), ds.IsDirected())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tEDGES\tTHRESHOLD\tALGS")
	sizes := make([]float64, 0, ds.NumBatches())
	for id := int64(0); id < ds.NumBatches(); id++ {
		b, threshold, err := ds.Preprocessed(ctx, id)
		if err != nil {
			return err
		}
		enabled, err := ds.EnableAlgsForBatch(ctx, id)
		if err != nil {
			return err
		}
		sizes = append(sizes, float64(b.Len()))
		fmt.Fprintf(tw, "%d\t%d\t%d\t%t\n", id, b.Len(), threshold, enabled)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary, err := benchmark.Summarize(sizes)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "batch edges: mean %.1f, median %.1f, p95 %.1f, max %.0f\n", summary.Mean, summary.Median, summary.P95, summary.Max)
	scheduler := epoch.Scheduler{NumBatches: ds.NumBatches(), NumEpochs: args.NumEpochs}
	fmt.Fprintf(out, "epochs fire after batches: %v\n", scheduler.FiringBatches())
	return nil
}
