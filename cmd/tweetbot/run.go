package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Publish the oldest queued post once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStorage(cmd.Context(), a.cfg.Database, a.log, a.metrics)
			if err != nil {
				return err
			}
			defer st.close()

			pipeline, closePipeline, err := newPipeline(a.cfg, st, a.log, a.metrics)
			if err != nil {
				return err
			}
			defer closePipeline()

			result, runErr := pipeline.Run(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			return runErr
		},
	}
}
