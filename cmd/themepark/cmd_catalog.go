package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// themepark tickets
var ticketsCmd = &cobra.Command{
	Use:                "tickets [flags]",
	Short:              "Print the ticket catalog",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := quietLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		svc, _, err := bootService(context.Background(), args, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		out := cmd.OutOrStdout()
		for _, t := range svc.Tickets(cmd.Context()) {
			fmt.Fprintf(out, "%-22s %8s  -%s%%  = %8s  %s (%s)\n",
				t.Type(), t.Price().StringFixed(2), t.Discount(), t.DiscountedPrice().StringFixed(2),
				t.Validity(), t.Restrictions())
		}
		return nil
	},
}

// themepark revenue
var revenueCmd = &cobra.Command{
	Use:                "revenue [flags]",
	Short:              "Print the total of all recorded payments",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := quietLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		svc, _, err := bootService(context.Background(), args, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Total revenue: %s\n", svc.TotalRevenue(cmd.Context()).StringFixed(2))
		return nil
	},
}
