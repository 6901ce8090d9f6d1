package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"phishguard/internal/export"
	"phishguard/internal/models"
)

var (
	historyURL   string
	historyLimit int
	exportFormat string
	exportOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		var reports []models.Report
		if historyURL != "" {
			r, found, err := pipeline.History.FindByURL(ctx, historyURL)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no report for %s", historyURL)
			}
			reports = []models.Report{r}
		} else {
			var err error
			if reports, err = pipeline.History.List(ctx); err != nil {
				return err
			}
		}
		if historyLimit > 0 && len(reports) > historyLimit {
			reports = reports[:historyLimit]
		}

		if asJSON {
			return export.WriteJSON(w, reports)
		}
		if len(reports) == 0 {
			fmt.Fprintln(w, "No records found.")
			return nil
		}
		for _, r := range reports {
			fmt.Fprintf(w, "%s  %s %-10s %7s  %s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Level.Icon(), r.Level, models.FormatScore(r.Score), r.URL)
		}

		sum := export.Summarize(reports)
		fmt.Fprintf(w, "\n%d reports: %d safe, %d suspicious, %d phishing, average score %d\n",
			sum.Total, sum.Safe, sum.Suspicious, sum.Phishing, sum.AverageScore)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the history as JSON or CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := pipeline.History.List(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		switch exportFormat {
		case "json":
			err = export.WriteJSON(w, reports)
		case "csv":
			err = export.WriteCSV(w, reports)
		default:
			return fmt.Errorf("unknown format %q (want json or csv)", exportFormat)
		}
		if err != nil {
			return err
		}
		if exportOutput != "" && exportOutput != "-" {
			fmt.Fprintf(os.Stderr, "✅ exported %d reports to %s\n", len(reports), exportOutput)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge an exported JSON archive into the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		reports, skipped, err := export.ReadJSON(f)
		if err != nil {
			return err
		}
		stored, err := export.ImportInto(cmd.Context(), pipeline.History, reports)
		if err != nil {
			return err
		}

		if asJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{
				"received": len(reports) + skipped,
				"skipped":  skipped,
				"stored":   stored,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d of %d reports (%d unreadable)\n", stored, len(reports)+skipped, skipped)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyURL, "url", "", "show only the newest report for this exact URL")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n reports")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json or csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}
