package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kunok-chang/Radiation-Safety/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived simulation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		dbPath, _ := f.GetString("db")
		limit, _ := f.GetInt("limit")
		show, _ := f.GetInt64("show")

		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if show > 0 {
			r, err := s.GetRun(cmd.Context(), show)
			if err != nil {
				return err
			}
			paths, err := s.LoadPaths(cmd.Context(), show)
			if err != nil {
				return err
			}
			points := 0
			for _, p := range paths {
				points += len(p)
			}
			fmt.Fprintf(out, "Run %d (%s)\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  mu=%g radius=%g check=%g step=%g %s\n",
				r.AttenuationCoefficient, r.DomainRadius, r.BoundaryCheckRadius, r.FixedStepSize, r.Units)
			fmt.Fprintf(out, "  photons=%d seed=%d elapsed=%v\n", r.PhotonCount, r.Seed, r.Elapsed)
			fmt.Fprintf(out, "  crossed=%d absorbed=%d escaped=%d diverged=%d mean interactions=%.3f\n",
				r.CrossingCount, r.Absorbed, r.Escaped, r.Diverged, r.MeanInteractions)
			fmt.Fprintf(out, "  paths=%d points=%d\n", len(paths), points)
			return nil
		}

		runs, err := s.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tPHOTONS\tMU\tRADIUS\tCHECK\tCROSSED\tFRACTION")
		for _, r := range runs {
			frac := 0.0
			if r.PhotonCount > 0 {
				frac = float64(r.CrossingCount) / float64(r.PhotonCount)
			}
			fmt.Fprintf(tw, "%d\t%s\t%d\t%g\t%g\t%g\t%d\t%.4f\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.PhotonCount,
				r.AttenuationCoefficient, r.DomainRadius, r.BoundaryCheckRadius, r.CrossingCount, frac)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("db", "radsafety.db", "SQLite run archive")
	historyCmd.Flags().Int("limit", 20, "Maximum runs to list (0 lists all)")
	historyCmd.Flags().Int64("show", 0, "Show details of one run")
}
