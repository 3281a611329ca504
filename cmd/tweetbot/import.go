package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	model "tweetbot-service/internal/domain/models"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: `Queue posts from a JSON array of {"title", "text", "image_url"} entries`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := afero.ReadFile(afero.NewOsFs(), args[0])
			if err != nil {
				return err
			}
			var entries []*model.ImportPostDTO
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			st, err := openStorage(cmd.Context(), a.cfg.Database, a.log, a.metrics)
			if err != nil {
				return err
			}
			defer st.close()

			n, err := newPostService(st, a.log, a.metrics).ImportPosts(cmd.Context(), entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts\n", n)
			return nil
		},
	}
}
