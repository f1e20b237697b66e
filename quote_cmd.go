package main

import (
	"fmt"

	"lablinc/pricing"
	"lablinc/utils"
	"lablinc/validator"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type quoteFlags struct {
	hourly, daily, weekly, monthly float64
	start, end, timezone           string
}

// newQuoteCmd prices a window offline against a rate card given on the
// command line. Only the rates whose flags are set are offered.
func newQuoteCmd() *cobra.Command {
	var f quoteFlags
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a booking window against a rate card",
		Example: "  lablinc quote --hourly 500 --daily 8000 " +
			"--start 2026-03-02T09:00:00+05:30 --end 2026-03-02T11:30:00+05:30",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := utils.LoadLocation(f.timezone)
			if err != nil {
				return fmt.Errorf("timezone: %w", err)
			}
			start, err := utils.ParseTimestamp(f.start, loc)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			end, err := utils.ParseTimestamp(f.end, loc)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			card := pricing.RateCard{}
			flags := cmd.Flags()
			set := func(name string, v float64) *float64 {
				if !flags.Changed(name) {
					return nil
				}
				return &v
			}
			card.Hourly = set("hourly", f.hourly)
			card.Daily = set("daily", f.daily)
			card.Weekly = set("weekly", f.weekly)
			card.Monthly = set("monthly", f.monthly)
			if err := validator.ValidateRateCard(card); err != nil {
				return err
			}

			q, err := pricing.Calculate(card, start, end)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(q, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().Float64Var(&f.hourly, "hourly", 0, "hourly rate")
	cmd.Flags().Float64Var(&f.daily, "daily", 0, "daily rate")
	cmd.Flags().Float64Var(&f.weekly, "weekly", 0, "weekly rate")
	cmd.Flags().Float64Var(&f.monthly, "monthly", 0, "monthly rate")
	cmd.Flags().StringVar(&f.start, "start", "", "window start (RFC3339 or local datetime)")
	cmd.Flags().StringVar(&f.end, "end", "", "window end (RFC3339 or local datetime)")
	cmd.Flags().StringVar(&f.timezone, "timezone", utils.DefaultTimezone, "zone for timestamps without an offset")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
