package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pethotel/internal/domain"
	"pethotel/internal/service"
)

const dateLayout = "2006-01-02"

func quoteCmd(catalogPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a booking against the catalog",
	}

	cmd.AddCommand(quoteHotelCmd(catalogPath))
	cmd.AddCommand(quoteVipCmd(catalogPath))
	cmd.AddCommand(quoteSharedCmd(catalogPath))

	return cmd
}

func quoteHotelCmd(catalogPath *string) *cobra.Command {
	var (
		roomID   string
		checkIn  string
		checkOut string
		addOnIDs []string
	)

	cmd := &cobra.Command{
		Use:   "hotel",
		Short: "Price a hotel stay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadCatalog(ctx, *catalogPath)
			if err != nil {
				return err
			}

			in, err := time.Parse(dateLayout, checkIn)
			if err != nil {
				return fmt.Errorf("check-in: %w", err)
			}
			out, err := time.Parse(dateLayout, checkOut)
			if err != nil {
				return fmt.Errorf("check-out: %w", err)
			}

			room, err := c.store.GetRoom(ctx, roomID)
			if err != nil {
				return fmt.Errorf("room %s: %w", roomID, err)
			}

			addOns := make([]domain.HotelAddOn, 0, len(addOnIDs))
			for _, id := range addOnIDs {
				addOn, err := c.store.GetAddOn(ctx, id)
				if err != nil {
					return fmt.Errorf("add-on %s: %w", id, err)
				}
				addOns = append(addOns, *addOn)
			}

			quote, err := service.QuoteHotel(room, in, out, addOns...)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s, %d night(s): %s\n", room.Name, quote.Nights, quote.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "Room ID")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "Check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "Check-out date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&addOnIDs, "add-on", nil, "Add-on ID, repeatable")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("check-in")
	_ = cmd.MarkFlagRequired("check-out")

	return cmd
}

func quoteVipCmd(catalogPath *string) *cobra.Command {
	var (
		serviceID  string
		from, to   string
		roundTrip  bool
		fallbackKm float64
		sameCityKm float64
	)

	cmd := &cobra.Command{
		Use:   "vip",
		Short: "Price a private taxi trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadCatalog(ctx, *catalogPath)
			if err != nil {
				return err
			}

			svc, err := c.store.GetTaxiService(ctx, serviceID)
			if err != nil {
				return fmt.Errorf("taxi service %s: %w", serviceID, err)
			}
			routes, err := c.store.ListCityPricing(ctx)
			if err != nil {
				return err
			}

			config := service.DefaultPricingConfig()
			config.SameCityDistanceKm = sameCityKm
			if fallbackKm > 0 {
				config.Estimator = service.FixedDistanceEstimator{Km: fallbackKm}
			}

			quote, err := service.NewPricer(routes, config).QuoteVipTaxi(svc, from, to, roundTrip)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "distance:   %.1f km\n", quote.DistanceKm)
			fmt.Fprintf(out, "base:       %s\n", quote.Base)
			fmt.Fprintf(out, "round trip: %s\n", quote.AfterTrip)
			fmt.Fprintf(out, "route fee:  %s\n", quote.AfterFee)
			fmt.Fprintf(out, "discount:  -%s\n", quote.Discount)
			fmt.Fprintf(out, "total:      %s\n", quote.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceID, "service", "", "VIP taxi service ID")
	cmd.Flags().StringVar(&from, "from", "", "Pickup city")
	cmd.Flags().StringVar(&to, "to", "", "Drop-off city")
	cmd.Flags().BoolVar(&roundTrip, "round-trip", false, "Price the return leg too")
	cmd.Flags().Float64Var(&sameCityKm, "same-city-km", service.DefaultPricingConfig().SameCityDistanceKm, "Distance for trips within one city")
	cmd.Flags().Float64Var(&fallbackKm, "fallback-km", 0, "Distance for unmapped routes, 0 to reject them")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func quoteSharedCmd(catalogPath *string) *cobra.Command {
	var (
		scheduleID string
		seats      int
	)

	cmd := &cobra.Command{
		Use:   "shared",
		Short: "Price seats on a shared taxi run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadCatalog(ctx, *catalogPath)
			if err != nil {
				return err
			}

			schedule, err := c.schedules.GetByID(ctx, scheduleID)
			if err != nil {
				return fmt.Errorf("schedule %s: %w", scheduleID, err)
			}

			total, err := service.QuoteSharedTaxiSeats(schedule, seats)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s on %s, %d seat(s): %s\n",
				schedule.FromCity, schedule.ToCity, schedule.TravelDate.Format(dateLayout), seats, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&scheduleID, "schedule", "", "Shared run ID")
	cmd.Flags().IntVar(&seats, "seats", 1, "Number of seats")
	_ = cmd.MarkFlagRequired("schedule")

	return cmd
}
