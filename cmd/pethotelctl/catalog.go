package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pethotel/internal/catalog"
	"pethotel/internal/repository/memory"
)

// loadedCatalog is a catalog file seeded into memory stores.
type loadedCatalog struct {
	file      *catalog.File
	store     *memory.CatalogStore
	schedules *memory.ScheduleStore
}

func loadCatalog(ctx context.Context, path string) (*loadedCatalog, error) {
	file, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}

	c := &loadedCatalog{
		file:      file,
		store:     memory.NewCatalogStore(),
		schedules: memory.NewScheduleStore(),
	}
	if err := catalog.Seed(ctx, file, c.store, c.schedules); err != nil {
		return nil, err
	}
	return c, nil
}

func catalogCmd(catalogPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the catalog file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List rooms, add-ons, taxi services, routes and shared runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(cmd.Context(), *catalogPath)
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), c.file)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the catalog file for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := catalog.Load(*catalogPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", *catalogPath)
			return nil
		},
	})

	return cmd
}

func printCatalog(out io.Writer, f *catalog.File) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ROOMS")
	for _, r := range f.Rooms {
		fmt.Fprintf(w, "  %s\t%s\t%s\tpets=%d\t%.2f/night\n", r.ID, r.Name, r.Type, r.Capacity, r.PricePerNight)
	}

	fmt.Fprintln(w, "ADD-ONS")
	for _, a := range f.AddOns {
		fmt.Fprintf(w, "  %s\t%s\t%.2f\n", a.ID, a.Name, a.Price)
	}

	fmt.Fprintln(w, "TAXI SERVICES")
	for _, s := range f.TaxiServices {
		fmt.Fprintf(w, "  %s\t%s\t%s\tbase=%.2f\tper_km=%.2f\n", s.ID, s.Name, s.Type, s.BasePrice, s.PricePerKm)
	}

	fmt.Fprintln(w, "ROUTES")
	for _, r := range f.Routes {
		fmt.Fprintf(w, "  %s - %s\t%.0f km\tfee=%.2f\tdiscount=%.0f%%\n", r.From, r.To, r.DistanceKm, r.AdditionalFee, r.DiscountPct)
	}

	fmt.Fprintln(w, "SHARED RUNS")
	for _, s := range f.Schedules {
		fmt.Fprintf(w, "  %s\t%s -> %s\t%s %s\tseats=%d\t%.2f/seat\n", s.ID, s.From, s.To, s.TravelDate, s.DepartureTime, s.MaxCapacity, s.PricePerSeat)
	}

	return w.Flush()
}
