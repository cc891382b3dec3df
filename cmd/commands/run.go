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
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/dynograph"
	"github.com/numaproj/dynograph/pkg/benchmark"
	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/dataset"
	"github.com/numaproj/dynograph/pkg/distribution"
	natsbackend "github.com/numaproj/dynograph/pkg/distribution/nats"
	_ "github.com/numaproj/dynograph/pkg/engine/memgraph"
	"github.com/numaproj/dynograph/pkg/hooks"
	"github.com/numaproj/dynograph/pkg/metrics"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

func NewRunCommand() *cobra.Command {

	var configFile string

	command := &cobra.Command{
		Use:   "run",
		Short: "Run the dynamic graph benchmark",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := args.Validate(); err != nil {
				return err
			}
			logger := logging.NewLogger().Named("benchmark")
			ctx, stop := signal.NotifyContext(logging.WithLogger(context.Background(), logger), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := runBenchmark(ctx, args, cmd.OutOrStdout()); err != nil {
				logger.Errorw("Benchmark failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	command.Flags().StringVar(&configFile, "config", "", "Path to a YAML file with benchmark arguments")
	config.AddFlags(command.Flags())
	return command
}

func runBenchmark(ctx context.Context, args config.Args, out io.Writer) error {
	log := logging.FromContext(ctx)
	v := dynograph.GetVersion()
	log.Infow("Starting DynoGraph", zap.String("version", v.Version), zap.String("args", args.String()))
	metrics.BuildInfo.WithLabelValues(v.Version, v.Platform).Set(1)

	if args.MetricsPort > 0 {
		shutdown, err := metrics.NewMetricsServer(metrics.WithPort(args.MetricsPort)).Start(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warnw("Failed to shutdown metrics server", zap.Error(err))
			}
		}()
	}

	results := &lineWriter{w: out}
	switch {
	case args.NatsURL != "":
		backend, err := natsbackend.NewBackend(ctx, args.NatsURL, args.Rank, args.NumWorkers, natsbackend.WithRunID(args.RunID))
		if err != nil {
			return err
		}
		return runRank(ctx, args, backend, results)
	case args.IsDistributed():
		backends, err := distribution.NewInMemoryGroup(args.NumWorkers)
		if err != nil {
			return err
		}
		g, gCtx := errgroup.WithContext(ctx)
		for _, backend := range backends {
			g.Go(func() error {
				rankCtx := logging.WithLogger(gCtx, log.With(zap.Int("rank", backend.Rank())))
				return runRank(rankCtx, args, backend, results)
			})
		}
		return g.Wait()
	default:
		return runRank(ctx, args, distribution.NewLocal(), results)
	}
}

// runRank runs every trial on one rank and closes its backend.
func runRank(ctx context.Context, args config.Args, backend distribution.Backend, results io.Writer) (err error) {
	log := logging.FromContext(ctx)
	defer func() {
		if cErr := backend.Close(); cErr != nil {
			log.Warnw("Failed to close backend", zap.Error(cErr))
		}
	}()
	ds, err := dataset.New(ctx, args, backend)
	if err != nil {
		return err
	}
	runner := &benchmark.Runner{
		Args:    args,
		Dataset: ds,
		Hooks:   hooks.New(log),
		Rank:    backend.Rank(),
		Results: results,
	}
	_, err = runner.Run(ctx)
	return err
}

// lineWriter serializes writes from ranks sharing one output.
type lineWriter struct {
	sync.Mutex
	w io.Writer
}

func (l *lineWriter) Write(p []byte) (int, error) {
	l.Lock()
	defer l.Unlock()
	return l.w.Write(p)
}
