package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"labeldash/internal/catalog"
)

func newTopCmd(c *cli) *cobra.Command {
	var (
		field string
		n     int
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the most collected or most wanted releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := catalog.NewLoader(c.cfg.DataFile, c.logger).Load()
			if err != nil {
				return err
			}
			top, err := catalog.TopNByField(tbl, catalog.Field(field), n)
			if err != nil {
				return err
			}
			return printReleases(cmd.OutOrStdout(), top)
		},
	}
	cmd.Flags().StringVar(&field, "field", string(catalog.FieldInCollection), "rank by in_collection, in_wantlist or year")
	cmd.Flags().IntVar(&n, "n", 5, "number of releases")
	return cmd
}

func printReleases(w io.Writer, t *catalog.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tARTIST\tTITLE\tYEAR\tWANTLIST\tCOLLECTION")
	for _, r := range t.Releases() {
		year := "-"
		if r.HasYear() {
			year = fmt.Sprint(r.Year)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", r.ID, r.Artist, r.Title, year, r.InWantlist, r.InCollection)
	}
	return tw.Flush()
}
