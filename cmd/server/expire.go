package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"zing_pool/internal/services"
	"zing_pool/internal/store"
)

func expireCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "expire-subscriptions",
		Short: "Expire subscriptions past their end date once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			if batch <= 0 {
				batch = a.cfg.ExpiryBatchSize
			}
			n, err := services.NewSweeper(a.system, batch).Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d subscriptions\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 0, "rows per run (default EXPIRY_BATCH_SIZE)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the pool tables for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(context.Background(), false)
			if err != nil {
				return err
			}
			defer a.close()
			return store.Migrate(a.serviceDB)
		},
	}
}
