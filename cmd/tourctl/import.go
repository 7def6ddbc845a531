package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/importer"
)

type importOptions struct {
	file    string
	apply   bool
	session string
}

func newImportCmd(open openFunc) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Resolve a JSON tour batch and optionally create the tours",
		Long: "Resolves every row of a JSON import file against master data and prints the review table.\n" +
			"Nothing is written unless --apply is given and every reference resolved.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(opts.file)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if opts.session == "" {
				opts.session = uuid.NewString()
			}

			b, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			defer b.close()

			rows, err := b.imports.Preview(cmd.Context(), opts.session, data)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			out := cmd.OutOrStdout()
			if err := printReview(out, rows); err != nil {
				return err
			}

			if !opts.apply {
				fmt.Fprintln(out, "dry run: pass --apply to create the tours")
				return nil
			}

			tours := make([]domain.Tour, len(rows))
			for i, r := range rows {
				tours[i] = r.Tour
			}
			created, err := b.imports.Confirm(cmd.Context(), opts.session, tours)
			fmt.Fprintf(out, "created %d of %d tours\n", len(created), len(tours))
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "JSON import file (required)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Create the tours (default is dry-run)")
	cmd.Flags().StringVar(&opts.session, "session", "", "Import session id for reusing cached master data")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// printReview writes one line per row with the resolved reference names,
// marking unresolved ones with a trailing "?".
func printReview(w io.Writer, rows []importer.Resolution) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tCODE\tSTART\tGUESTS\tCOMPANY\tGUIDE\tNATIONALITY\tWARNINGS")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1,
			r.Tour.Code,
			dateOrBlank(r.Tour),
			r.Tour.Adults+r.Tour.Children,
			refLabel(r.Tour.CompanyRef),
			refLabel(r.Tour.GuideRef),
			refLabel(r.Tour.NationalityRef),
			strings.Join(r.Warnings, "; "),
		)
	}
	return tw.Flush()
}

func refLabel(r domain.Ref) string {
	if r.Resolved() {
		return r.NameAtBooking
	}
	if r.NameAtBooking == "" {
		return "?"
	}
	return r.NameAtBooking + "?"
}

func dateOrBlank(t domain.Tour) string {
	if t.StartDate.IsZero() {
		return "-"
	}
	return t.StartDate.Format("2006-01-02")
}
