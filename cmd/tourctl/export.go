package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	tour   string
	format string
	out    string
}

func newExportCmd(open openFunc) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a tour spreadsheet or text summary, or a SQL dump of every table",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			switch opts.format {
			case "xlsx", "txt":
				if opts.tour == "" {
					return fmt.Errorf("--tour is required for format %s", opts.format)
				}
				if _, err := uuid.Parse(opts.tour); err != nil {
					return fmt.Errorf("invalid --tour: %w", err)
				}
			case "sql":
			default:
				return errors.New("--format must be xlsx, txt or sql")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			defer b.close()

			f, err := os.Create(opts.out)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			ctx := cmd.Context()
			switch opts.format {
			case "xlsx":
				_, err = b.export.TourXLSX(ctx, uuid.MustParse(opts.tour), f)
			case "txt":
				_, err = b.export.TourText(ctx, uuid.MustParse(opts.tour), f)
			case "sql":
				err = b.export.SQLDump(ctx, f)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(opts.out)
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.tour, "tour", "", "Tour id (required for xlsx and txt)")
	cmd.Flags().StringVar(&opts.format, "format", "xlsx", "Output format: xlsx, txt or sql")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output file (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
