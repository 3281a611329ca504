package main

import (
	"github.com/spf13/cobra"

	"tweetbot-service/internal/infrastructure/outbound/repository/migrator"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		ValidArgs: []string{string(migrator.Up), string(migrator.Down)},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator.Run(a.cfg.Database, migrator.Direction(args[0]), a.log)
		},
	}
}
