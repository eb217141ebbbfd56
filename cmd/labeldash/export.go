package main

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"labeldash/internal/catalog"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		artist string
		years  []int
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the releases of an artist and years to a CSV file",
		Example: `  labeldash export --artist "Loleatta Holloway" --year 1977 --year 1980
  labeldash export --out all.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := catalog.Selection{Artist: artist}
			if cmd.Flags().Changed("year") {
				sel.Years = years
				if sel.Years == nil {
					sel.Years = []int{}
				}
			}
			if out == "" {
				out = catalog.ExportFilename(sel.Artist)
			}
			n, err := c.export(sel, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d releases to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&artist, "artist", catalog.AllArtists, "artist to export")
	cmd.Flags().IntSliceVar(&years, "year", nil, "years to export (default all years of the artist)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default \"<artist>_releases.csv\")")
	return cmd
}

// export writes the selected releases to path, replacing any existing file
// in one step.
func (c *cli) export(sel catalog.Selection, path string) (int, error) {
	tbl, err := catalog.NewLoader(c.cfg.DataFile, c.logger).Load()
	if err != nil {
		return 0, err
	}
	view := catalog.Select(tbl, sel)

	var buf bytes.Buffer
	if err := catalog.WriteCSV(&buf, view); err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return view.Len(), nil
}
