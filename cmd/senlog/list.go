package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/search"
	"github.com/Zuo-Peng/sensor-logger/internal/tui"
)

func listCmd() *cobra.Command {
	var movement, status, since, filter string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse recorded sessions, newest first",
		Long: `Opens a TUI panel showing all catalogued sessions with a live preview of
their newest rows. Type to filter by session key or movement. When stdout is
not a terminal, sessions are printed as TSV:
  sessionKey, status, startedAt, rows, filePath`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			// Auto-update the catalog before listing
			if _, err := index.IndexAll(db, cfg.DataRoot, cfg.Header); err != nil {
				fmt.Fprintf(os.Stderr, "WARN: index: %v\n", err)
			}

			opts := search.Options{
				DataRoot: cfg.DataRoot,
				Filter:   filter,
				Movement: movement,
				Status:   status,
				Since:    since,
				Limit:    limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunList(db, opts, cfg.Header)
			}

			results, err := search.ListAll(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No sessions found.")
				return nil
			}
			for _, r := range results {
				started := r.StartedAt
				if started == "" {
					started = "-"
				}
				fmt.Printf("%s\t%s\t%s\t%d\t%s\n", r.SessionKey, r.Status, started, r.Rows, r.FilePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&movement, "movement", "", "Filter by movement")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (recording/complete/interrupted/imported)")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions started since date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter, "filter", "", "Initial filter text")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
