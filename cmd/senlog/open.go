package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/sensor-logger/internal/index"
	"github.com/Zuo-Peng/sensor-logger/internal/open"
)

func openCmd() *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:   "open <sessionKey>",
		Short: "Open the session CSV in $EDITOR",
		Args:  cobra.ExactArgs(1),
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

			return open.OpenSession(db, cfg.DataRoot, args[0], line)
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "Line to jump to (0 = last line)")

	return cmd
}
