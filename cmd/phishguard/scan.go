package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"phishguard/internal/models"
	"phishguard/internal/queue"
	"phishguard/internal/scan"
)

var (
	save        bool
	manual      bool
	offline     bool
	protocol    string
	hasPassword bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Score a URL",
	Long: `Score a URL. By default the page is fetched and inspected for password
fields. With --offline nothing is fetched and the signals come from the flags.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := *pipeline.Scanner
		if !save {
			svc.History = nil
		}

		origin := models.OriginAutomatic
		if manual {
			origin = models.OriginManual
		}

		var (
			res scan.Result
			err error
		)
		if offline {
			res, err = svc.Scan(cmd.Context(), offlineSignals(args[0]), origin)
		} else {
			res, err = svc.ScanURL(cmd.Context(), args[0], origin)
		}
		if err != nil && res.Report.ID == "" {
			return err
		}

		if printErr := printResult(cmd.OutOrStdout(), res); printErr != nil {
			return printErr
		}
		return err
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <url>",
	Short: "Queue a URL for the worker to score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := pipeline.RedisClient(cmd.Context())
		if err != nil {
			return err
		}

		origin := models.OriginAutomatic
		if manual {
			origin = models.OriginManual
		}
		task, err := queue.Enqueue(cmd.Context(), client, queue.ScanTask{
			Signals: offlineSignals(args[0]),
			Origin:  origin,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📨 queued %s as task %s\n", args[0], task.ID)
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&save, "save", false, "record the report in history")
	scanCmd.Flags().BoolVar(&offline, "offline", false, "do not fetch the page; use --protocol and --password")

	for _, c := range []*cobra.Command{scanCmd, enqueueCmd} {
		c.Flags().BoolVar(&manual, "manual", false, "mark the scan as user-initiated")
		c.Flags().StringVar(&protocol, "protocol", "", "override the protocol (http, https, other)")
		c.Flags().BoolVar(&hasPassword, "password", false, "the page has a password field")
	}
}

func offlineSignals(rawURL string) models.Signals {
	s := models.SignalsFromURL(rawURL, hasPassword)
	if protocol != "" {
		s.Protocol = models.ProtocolFromScheme(protocol)
	}
	return s
}

func printResult(w io.Writer, res scan.Result) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	r := res.Report
	fmt.Fprintf(w, "%s %-10s %s  %s\n", r.Level.Icon(), r.Level, models.FormatScore(r.Score), r.Domain)
	for _, reason := range r.Reasons {
		fmt.Fprintf(w, "   • %s\n", reason)
	}
	if r.Metadata.LookupError != "" {
		fmt.Fprintf(os.Stderr, "⚠️  lookups degraded: %s\n", r.Metadata.LookupError)
	}
	if save {
		state := "saved"
		if !res.Stored {
			state = "not saved (duplicate of the latest scan)"
		}
		fmt.Fprintf(w, "   %s\n", state)
	}
	return nil
}
