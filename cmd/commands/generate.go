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
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/numaproj/dynograph/pkg/config"
	"github.com/numaproj/dynograph/pkg/edgelist"
	"github.com/numaproj/dynograph/pkg/rmat"
	"github.com/numaproj/dynograph/pkg/shared/logging"
)

func NewGenerateCommand() *cobra.Command {

	var (
		params string
		output string
		seed   uint64
	)

	command := &cobra.Command{
		Use:   "generate",
		Short: "Generate an RMAT edge list file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger().Named("generate")
			if params == "" || output == "" {
				cmd.HelpFunc()(cmd, args)
				return fmt.Errorf("--rmat and --output are required")
			}
			rmatArgs, err := rmat.ParseArgs(params)
			if err != nil {
				return err
			}
			gen, err := rmat.NewGenerator(rmatArgs, seed)
			if err != nil {
				return err
			}
			edges, err := gen.GetBatch(0, rmatArgs.NumEdges)
			if err != nil {
				return err
			}
			if err := edgelist.Write(output, edges); err != nil {
				logger.Errorw("Failed to write edge list", zap.String("output", output), zap.Error(err))
				return err
			}
			logger.Infow("Generated edge list", zap.String("params", rmatArgs.String()), zap.Int("edges", len(edges)), zap.String("output", output))
			return nil
		},
	}
	command.Flags().StringVar(&params, "rmat", "", "RMAT parameters a-b-c-d-ne-nv, e.g. 0.55-0.15-0.15-0.15-1M-64K")
	command.Flags().StringVar(&output, "output", "", "Output file, ending in .graph.el or .graph.bin")
	command.Flags().Uint64Var(&seed, "seed", config.DefaultRmatSeed, "Seed of the RMAT edge generator")
	return command
}
